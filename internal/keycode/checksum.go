package keycode

// dammTable10 is the order-10 totally anti-symmetric quasigroup used to
// chain check digits over decimal payloads. Each row and column is a
// permutation of 0-9, and chaining through it detects every single-digit
// substitution and every transposition of adjacent digits.
var dammTable10 = [10][10]uint8{
	{0, 3, 1, 7, 5, 9, 8, 6, 4, 2},
	{7, 0, 9, 2, 1, 5, 4, 8, 6, 3},
	{4, 2, 0, 6, 8, 7, 1, 3, 5, 9},
	{1, 7, 5, 0, 9, 8, 3, 4, 2, 6},
	{6, 1, 2, 3, 0, 4, 5, 9, 7, 8},
	{3, 6, 7, 4, 2, 0, 9, 5, 8, 1},
	{5, 8, 6, 9, 7, 2, 0, 1, 3, 4},
	{8, 9, 4, 5, 3, 6, 2, 0, 1, 7},
	{9, 4, 3, 8, 6, 1, 7, 2, 0, 5},
	{2, 5, 8, 1, 4, 3, 6, 7, 9, 0},
}

// checksumStep advances the running state by one payload digit. Base 5 uses
// the linear quasigroup (2s + 2d) mod 5, which is totally anti-symmetric
// because 2 and 4 are both units modulo 5.
func checksumStep(base int, state, digit uint8) uint8 {
	if base == 5 {
		return (2*state + 2*digit) % 5
	}
	return dammTable10[state][digit]
}

// checkDigits returns the check digit sequence for payload: one digit per
// started group of five, each equal to the running checksum state after its
// covered prefix. The final check digit always covers the whole payload.
func checkDigits(payload []uint8, base int) []uint8 {
	count := (len(payload) + 4) / 5
	out := make([]uint8, 0, count)
	var state uint8
	for i, d := range payload {
		state = checksumStep(base, state, d)
		if (i+1)%5 == 0 && len(out) < count-1 {
			out = append(out, state)
		}
	}
	return append(out, state)
}

// interleave merges payload and check digits into the rendered digit order,
// inserting each check digit directly after its covered prefix.
func interleave(payload, checks []uint8) []uint8 {
	out := make([]uint8, 0, len(payload)+len(checks))
	ci := 0
	for i, d := range payload {
		out = append(out, d)
		if (i+1)%5 == 0 && ci < len(checks)-1 {
			out = append(out, checks[ci])
			ci++
		}
	}
	return append(out, checks[ci:]...)
}

// deinterleave splits a rendered digit sequence back into n payload digits
// and their check digits. It is the exact inverse of interleave.
func deinterleave(merged []uint8, n int) (payload, checks []uint8) {
	count := (n + 4) / 5
	payload = make([]uint8, 0, n)
	checks = make([]uint8, 0, count)
	for _, d := range merged {
		boundary := n
		if len(checks) < count-1 {
			boundary = 5 * (len(checks) + 1)
		}
		if len(payload) == boundary {
			checks = append(checks, d)
			continue
		}
		payload = append(payload, d)
	}
	return payload, checks
}
