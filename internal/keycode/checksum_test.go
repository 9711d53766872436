package keycode

import (
	"testing"
)

func TestDammTable10IsLatinSquare(t *testing.T) {
	for i := 0; i < 10; i++ {
		var row, col [10]bool
		for j := 0; j < 10; j++ {
			row[dammTable10[i][j]] = true
			col[dammTable10[j][i]] = true
		}
		for v := 0; v < 10; v++ {
			if !row[v] {
				t.Errorf("row %d is missing value %d", i, v)
			}
			if !col[v] {
				t.Errorf("column %d is missing value %d", i, v)
			}
		}
	}
}

// Swapping two different adjacent digits must change the chained state no
// matter what state precedes them. This is the anti-symmetry property the
// check digit scheme relies on.
func TestChecksumStepDetectsAdjacentSwaps(t *testing.T) {
	for _, base := range []int{5, 10} {
		b := uint8(base)
		for s := uint8(0); s < b; s++ {
			for x := uint8(0); x < b; x++ {
				for y := uint8(0); y < b; y++ {
					if x == y {
						continue
					}
					xy := checksumStep(base, checksumStep(base, s, x), y)
					yx := checksumStep(base, checksumStep(base, s, y), x)
					if xy == yx {
						t.Errorf("base %d: state %d cannot distinguish %d%d from %d%d", base, s, x, y, y, x)
					}
				}
			}
		}
	}
}

func TestChecksumStepBase5IsQuasigroup(t *testing.T) {
	for s := uint8(0); s < 5; s++ {
		var seen [5]bool
		for d := uint8(0); d < 5; d++ {
			seen[checksumStep(5, s, d)] = true
		}
		for v := 0; v < 5; v++ {
			if !seen[v] {
				t.Errorf("state %d never reaches %d", s, v)
			}
		}
	}
}

func TestCheckDigitPlacement(t *testing.T) {
	cases := []struct {
		n      int
		checks int
		// payloadRuns is the run length of payload digits between check
		// digits in the rendered order.
		payloadRuns []int
	}{
		{n: 3, checks: 1, payloadRuns: []int{3}},
		{n: 5, checks: 1, payloadRuns: []int{5}},
		{n: 10, checks: 2, payloadRuns: []int{5, 5}},
		{n: 11, checks: 3, payloadRuns: []int{5, 5, 1}},
		{n: 13, checks: 3, payloadRuns: []int{5, 5, 3}},
		{n: 15, checks: 3, payloadRuns: []int{5, 5, 5}},
		{n: 26, checks: 6, payloadRuns: []int{5, 5, 5, 5, 5, 1}},
	}
	for _, tc := range cases {
		payload := make([]uint8, tc.n)
		for i := range payload {
			payload[i] = uint8((i*3 + 1) % 5)
		}
		checks := checkDigits(payload, 10)
		if len(checks) != tc.checks {
			t.Errorf("n=%d: got %d check digits, want %d", tc.n, len(checks), tc.checks)
			continue
		}
		merged := interleave(payload, checks)
		if len(merged) != tc.n+tc.checks {
			t.Errorf("n=%d: merged length %d, want %d", tc.n, len(merged), tc.n+tc.checks)
		}
		// Walk merged and confirm the payload run lengths between checks.
		pos := 0
		for i, run := range tc.payloadRuns {
			pos += run
			if merged[pos] != checks[i] {
				t.Errorf("n=%d: check %d not at rendered position %d", tc.n, i, pos)
			}
			pos++
		}
		gotPayload, gotChecks := deinterleave(merged, tc.n)
		if len(gotPayload) != tc.n || len(gotChecks) != tc.checks {
			t.Fatalf("n=%d: deinterleave split %d/%d, want %d/%d",
				tc.n, len(gotPayload), len(gotChecks), tc.n, tc.checks)
		}
		for i := range payload {
			if gotPayload[i] != payload[i] {
				t.Errorf("n=%d: payload digit %d not recovered", tc.n, i)
			}
		}
		for i := range checks {
			if gotChecks[i] != checks[i] {
				t.Errorf("n=%d: check digit %d not recovered", tc.n, i)
			}
		}
	}
}

func TestFinalCheckDigitCoversWholePayload(t *testing.T) {
	payload := []uint8{4, 1, 0, 3, 2, 2, 4, 0, 1, 3, 1, 2, 0}
	checks := checkDigits(payload, 5)
	var state uint8
	for _, d := range payload {
		state = checksumStep(5, state, d)
	}
	if checks[len(checks)-1] != state {
		t.Fatalf("final check digit %d does not cover all digits (want %d)",
			checks[len(checks)-1], state)
	}
	// Changing the last payload digit must change the final check digit.
	payload[len(payload)-1] = (payload[len(payload)-1] + 1) % 5
	changed := checkDigits(payload, 5)
	if changed[len(changed)-1] == checks[len(checks)-1] {
		t.Fatal("final check digit ignores the last payload digit")
	}
}
