package keycode

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/oduya/paygo/internal/auth"
	"github.com/oduya/paygo/internal/bitstring"
	"github.com/oduya/paygo/internal/protocol"
)

var testKey = bytes.Repeat([]byte{0x5A}, 16)

// authPayload builds one authenticated payload, advancing the identifier as
// a real issuer would when the ambiguity check rejects it.
func authPayload(t *testing.T, typ protocol.MessageType, id uint32, values map[string]uint64) auth.AuthenticatedPayload {
	t.Helper()
	for {
		body, err := protocol.EncodeBody(typ, id, values)
		if err != nil {
			t.Fatalf("EncodeBody(%v): %v", typ, err)
		}
		p, err := auth.Authenticate(typ, id, body, testKey)
		if ce := auth.AsIdCollisionError(err); ce != nil {
			id = ce.NextID
			continue
		}
		if err != nil {
			t.Fatalf("Authenticate(%v): %v", typ, err)
		}
		return p
	}
}

// renderedCases covers one valid message per renderable registry entry.
func renderedCases(t *testing.T) map[protocol.MessageType]auth.AuthenticatedPayload {
	t.Helper()
	return map[protocol.MessageType]auth.AuthenticatedPayload{
		protocol.FullAddCredit:         authPayload(t, protocol.FullAddCredit, 72, map[string]uint64{"hours": 168}),
		protocol.FullSetCredit:         authPayload(t, protocol.FullSetCredit, 72, map[string]uint64{"hours": 99999}),
		protocol.FullWipeState:         authPayload(t, protocol.FullWipeState, 72, map[string]uint64{"flags": 1}),
		protocol.FullFactoryAllowTest:  authPayload(t, protocol.FullFactoryAllowTest, 72, nil),
		protocol.FullFactoryOQCTest:    authPayload(t, protocol.FullFactoryOQCTest, 72, map[string]uint64{"minutes": 15}),
		protocol.FullFactoryDisplayID:  authPayload(t, protocol.FullFactoryDisplayID, 72, nil),
		protocol.FullChannelPassthrough: authPayload(t, protocol.FullChannelPassthrough, 72, map[string]uint64{
			"app_id": 1, "payload": 0xDEADBEEFCAFE,
		}),
		protocol.SmallAddCredit:        authPayload(t, protocol.SmallAddCredit, 44, map[string]uint64{"increment": 30}),
		protocol.SmallPassthrough:      authPayload(t, protocol.SmallPassthrough, 0, map[string]uint64{"payload": 0x2AAAAAA}),
		protocol.SmallSetCredit:        authPayload(t, protocol.SmallSetCredit, 44, map[string]uint64{"increment": 7}),
		protocol.SmallUpdateCredit:     authPayload(t, protocol.SmallUpdateCredit, 44, map[string]uint64{"increment": 90}),
		protocol.SmallCustomCommand:    authPayload(t, protocol.SmallCustomCommand, 44, map[string]uint64{"increment": 253}),
		protocol.SmallExtendedSetCredit: authPayload(t, protocol.SmallExtendedSetCredit, 44, map[string]uint64{"increment": 245}),
		protocol.SmallMaintenanceTest:  authPayload(t, protocol.SmallMaintenanceTest, 44, map[string]uint64{"code": 2}),
	}
}

func TestFormatShapes(t *testing.T) {
	for typ, p := range renderedCases(t) {
		code, err := Format(p)
		if err != nil {
			t.Errorf("Format(%v): %v", typ, err)
			continue
		}
		def := protocol.Lookup(typ)
		digits := def.PayloadDigits + (def.PayloadDigits+4)/5
		switch def.Family {
		case protocol.FamilySmall:
			if len(code) != digits {
				t.Errorf("%v: token length %d, want %d", typ, len(code), digits)
			}
			if strings.Trim(code, "12345") != "" {
				t.Errorf("%v: token %q uses keys outside 1-5", typ, code)
			}
		default:
			if code[0] != '*' || code[len(code)-1] != '#' {
				t.Errorf("%v: token %q not framed as *...#", typ, code)
			}
			got := 0
			for i, g := range strings.Split(code[1:len(code)-1], " ") {
				if len(g) > 3 || (len(g) < 3 && got+len(g) != digits) {
					t.Errorf("%v: group %d of %q has %d digits", typ, i, code, len(g))
				}
				if strings.Trim(g, "0123456789") != "" {
					t.Errorf("%v: group %q holds non-digits", typ, g)
				}
				got += len(g)
			}
			if got != digits {
				t.Errorf("%v: token %q has %d digits, want %d", typ, code, got, digits)
			}
		}
	}
}

func TestFormatDeterministicAndIdentifierBound(t *testing.T) {
	a := authPayload(t, protocol.FullAddCredit, 44, map[string]uint64{"hours": 500})
	b := authPayload(t, protocol.FullAddCredit, 44, map[string]uint64{"hours": 500})
	c := authPayload(t, protocol.FullAddCredit, 45, map[string]uint64{"hours": 500})

	codeA, err := Format(a)
	if err != nil {
		t.Fatal(err)
	}
	codeB, err := Format(b)
	if err != nil {
		t.Fatal(err)
	}
	codeC, err := Format(c)
	if err != nil {
		t.Fatal(err)
	}
	if codeA != codeB {
		t.Fatalf("identical payloads rendered differently: %q vs %q", codeA, codeB)
	}
	if codeA == codeC {
		t.Fatalf("different identifiers rendered identically: %q", codeA)
	}
}

func TestFormatVerifyRoundTrip(t *testing.T) {
	for typ, p := range renderedCases(t) {
		code, err := Format(p)
		if err != nil {
			t.Errorf("Format(%v): %v", typ, err)
			continue
		}
		bits, err := Verify(typ, code)
		if err != nil {
			t.Errorf("Verify(%v, %q): %v", typ, code, err)
			continue
		}
		if !bits.Equal(p.Bits) {
			t.Errorf("%v: recovered bits differ from rendered payload", typ)
		}
	}
}

func TestVerifyDetectsEverySingleSubstitution(t *testing.T) {
	for _, typ := range []protocol.MessageType{protocol.FullAddCredit, protocol.SmallAddCredit} {
		var p auth.AuthenticatedPayload
		if typ == protocol.FullAddCredit {
			p = authPayload(t, typ, 19, map[string]uint64{"hours": 1234})
		} else {
			p = authPayload(t, typ, 19, map[string]uint64{"increment": 61})
		}
		code, err := Format(p)
		if err != nil {
			t.Fatal(err)
		}
		base := byte(protocol.Lookup(typ).Family.Base())
		lo, span := byte('0'), byte(10)
		if base == 5 {
			lo, span = '1', 5
		}
		for i := 0; i < len(code); i++ {
			c := code[i]
			if c < lo || c >= lo+span {
				continue
			}
			mutated := []byte(code)
			mutated[i] = lo + (c-lo+1)%span
			if _, err := Verify(typ, string(mutated)); err == nil {
				t.Errorf("%v: substitution at position %d of %q went undetected", typ, i, code)
			}
		}
	}
}

func TestVerifyDetectsAdjacentPayloadTranspositions(t *testing.T) {
	p := authPayload(t, protocol.SmallSetCredit, 21, map[string]uint64{"increment": 113})
	code, err := Format(p)
	if err != nil {
		t.Fatal(err)
	}
	def := protocol.Lookup(protocol.SmallSetCredit)
	// Mark which rendered positions carry payload digits.
	isPayload := make([]bool, len(code))
	payloadSeen, checksSeen := 0, 0
	count := (def.PayloadDigits + 4) / 5
	for i := range isPayload {
		boundary := def.PayloadDigits
		if checksSeen < count-1 {
			boundary = 5 * (checksSeen + 1)
		}
		if payloadSeen == boundary {
			checksSeen++
			continue
		}
		isPayload[i] = true
		payloadSeen++
	}
	swaps := 0
	for i := 0; i+1 < len(code); i++ {
		if !isPayload[i] || !isPayload[i+1] || code[i] == code[i+1] {
			continue
		}
		swaps++
		mutated := []byte(code)
		mutated[i], mutated[i+1] = mutated[i+1], mutated[i]
		if _, err := Verify(protocol.SmallSetCredit, string(mutated)); err == nil {
			t.Errorf("swap of positions %d,%d in %q went undetected", i, i+1, code)
		}
	}
	if swaps == 0 {
		t.Skip("token has no adjacent differing payload digits to swap")
	}
}

func TestVerifyMalformed(t *testing.T) {
	cases := []struct {
		name string
		typ  protocol.MessageType
		code string
	}{
		{"missing star", protocol.FullAddCredit, "123 456 789 012 345 678#"},
		{"missing hash", protocol.FullAddCredit, "*123 456 789 012 345 678"},
		{"letter inside", protocol.FullAddCredit, "*123 456 78A 012 345 678#"},
		{"too few digits", protocol.FullAddCredit, "*123 456#"},
		{"empty", protocol.FullAddCredit, ""},
		{"key out of range", protocol.SmallAddCredit, "1234512345123456"},
		{"too short", protocol.SmallAddCredit, "12345"},
		{"decimal digits", protocol.SmallAddCredit, "0123401234012340"},
	}
	for _, tc := range cases {
		if _, err := Verify(tc.typ, tc.code); err == nil {
			t.Errorf("%s: Verify accepted %q", tc.name, tc.code)
		} else if IsChecksumError(err) {
			t.Errorf("%s: want a malformed-token error, got %v", tc.name, err)
		}
	}
}

func TestVerifyReportsChecksumIndex(t *testing.T) {
	p := authPayload(t, protocol.SmallMaintenanceTest, 9, map[string]uint64{"code": 4})
	code, err := Format(p)
	if err != nil {
		t.Fatal(err)
	}
	// Corrupt the first check digit (rendered position 5).
	mutated := []byte(code)
	mutated[5] = '1' + (mutated[5]-'1'+1)%5
	_, err = Verify(protocol.SmallMaintenanceTest, string(mutated))
	var ce *ChecksumError
	if !errors.As(err, &ce) {
		t.Fatalf("want ChecksumError, got %v", err)
	}
	if ce.Index != 0 {
		t.Fatalf("want failure at check digit 0, got %d", ce.Index)
	}
}

func TestNestedBodiesAreNotRenderable(t *testing.T) {
	body, err := protocol.EncodeBody(protocol.ChannelUnlockAccessory, 0, map[string]uint64{
		"truncated_id": 0xBEEF, "auth": 0xABCDEF,
	})
	if err != nil {
		t.Fatal(err)
	}
	p, err := auth.Authenticate(protocol.ChannelUnlockAccessory, 0, body, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Format(p); err != ErrNotRenderable {
		t.Fatalf("Format on nested body: got %v, want ErrNotRenderable", err)
	}
	if _, err := Verify(protocol.ChannelUnlockAccessory, "123"); err != ErrNotRenderable {
		t.Fatalf("Verify on nested body: got %v, want ErrNotRenderable", err)
	}
}

func TestRadixRoundTrip(t *testing.T) {
	// 84 bits, wider than a machine word.
	var b bitstring.Builder
	b.AppendUint(0xFFFFF, 20)
	b.AppendUint(0xDEADBEEFCAFEF00D, 64)
	bs := b.Bits()
	digits, ok := toDigits(bs, 10, 26)
	if !ok {
		t.Fatal("26 decimal digits should hold any 84-bit value")
	}
	back, ok := fromDigits(digits, 10, 84)
	if !ok {
		t.Fatal("round-tripped value no longer fits 84 bits")
	}
	if !back.Equal(bs) {
		t.Fatalf("round trip mismatch: %v != %v", back, bs)
	}
}

func TestRadixOverflow(t *testing.T) {
	bs := bitstring.NewBits(999, 10)
	if _, ok := toDigits(bs, 10, 2); ok {
		t.Fatal("999 cannot fit two decimal digits")
	}
	if _, ok := toDigits(bs, 10, 3); !ok {
		t.Fatal("999 fits three decimal digits")
	}
	if _, ok := fromDigits([]uint8{9, 9, 9}, 10, 9); ok {
		t.Fatal("999 cannot fit nine bits")
	}
	if _, ok := fromDigits([]uint8{9, 9, 9}, 10, 10); !ok {
		t.Fatal("999 fits ten bits")
	}
}
