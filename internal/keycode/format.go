package keycode

import (
	"fmt"
	"strings"

	"github.com/oduya/paygo/internal/auth"
	"github.com/oduya/paygo/internal/bitstring"
	"github.com/oduya/paygo/internal/protocol"
)

// Format renders an authenticated payload as the keypad token for its
// family. The same payload always renders to the same token.
func Format(p auth.AuthenticatedPayload) (string, error) {
	def := protocol.Lookup(p.Type)
	if def.PayloadDigits == 0 {
		return "", ErrNotRenderable
	}
	base := def.Family.Base()
	payload, ok := toDigits(p.Bits, base, def.PayloadDigits)
	if !ok {
		return "", &EncodingOverflowError{
			Type:   p.Type,
			Bits:   p.Bits.Len(),
			Digits: def.PayloadDigits,
			Base:   base,
		}
	}
	merged := interleave(payload, checkDigits(payload, base))
	if def.Family == protocol.FamilySmall {
		return renderSmall(merged), nil
	}
	return renderFull(merged), nil
}

// renderFull frames decimal digits as "*DDD DDD ...#", grouped in threes
// with a single space between groups. The last group may be short.
func renderFull(digits []uint8) string {
	var sb strings.Builder
	sb.Grow(len(digits) + len(digits)/3 + 2)
	sb.WriteByte('*')
	for i, d := range digits {
		if i > 0 && i%3 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('0' + d)
	}
	sb.WriteByte('#')
	return sb.String()
}

// renderSmall maps digit values 0-4 onto the physical keys '1'-'5' with no
// frame characters; the fixed token length delimits entry.
func renderSmall(digits []uint8) string {
	out := make([]byte, len(digits))
	for i, d := range digits {
		out[i] = '1' + d
	}
	return string(out)
}

// Verify parses a token previously rendered for message type t, re-derives
// every check digit, and returns the recovered body+digest bits. It is how
// callers confirm a token is intact before releasing it.
func Verify(t protocol.MessageType, code string) (bitstring.Bits, error) {
	def := protocol.Lookup(t)
	if def.PayloadDigits == 0 {
		return bitstring.Bits{}, ErrNotRenderable
	}
	base := def.Family.Base()
	want := def.PayloadDigits + (def.PayloadDigits+4)/5
	var merged []uint8
	var err error
	if def.Family == protocol.FamilySmall {
		merged, err = parseSmall(code, want)
	} else {
		merged, err = parseFull(code, want)
	}
	if err != nil {
		return bitstring.Bits{}, err
	}
	payload, checks := deinterleave(merged, def.PayloadDigits)
	for i, c := range checkDigits(payload, base) {
		if checks[i] != c {
			return bitstring.Bits{}, &ChecksumError{Index: i}
		}
	}
	bits, ok := fromDigits(payload, base, def.TotalBits())
	if !ok {
		return bitstring.Bits{}, &MalformedKeycodeError{
			Reason: fmt.Sprintf("digit value exceeds %d bits", def.TotalBits()),
		}
	}
	return bits, nil
}

// parseFull strips the "*...#" frame and collects exactly want decimal
// digits, ignoring the grouping spaces.
func parseFull(code string, want int) ([]uint8, error) {
	if len(code) < 2 || code[0] != '*' || code[len(code)-1] != '#' {
		return nil, &MalformedKeycodeError{Reason: "token must be framed as *...#"}
	}
	digits := make([]uint8, 0, want)
	for _, c := range code[1 : len(code)-1] {
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, uint8(c-'0'))
		case c == ' ':
		default:
			return nil, &MalformedKeycodeError{Reason: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	if len(digits) != want {
		return nil, &MalformedKeycodeError{
			Reason: fmt.Sprintf("expected %d digits, got %d", want, len(digits)),
		}
	}
	return digits, nil
}

// parseSmall maps keys '1'-'5' back to digit values 0-4 and enforces the
// fixed token length.
func parseSmall(code string, want int) ([]uint8, error) {
	if len(code) != want {
		return nil, &MalformedKeycodeError{
			Reason: fmt.Sprintf("expected %d keys, got %d", want, len(code)),
		}
	}
	digits := make([]uint8, len(code))
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < '1' || c > '5' {
			return nil, &MalformedKeycodeError{Reason: fmt.Sprintf("unexpected character %q", c)}
		}
		digits[i] = c - '1'
	}
	return digits, nil
}
