package message

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oduya/paygo/internal/auth"
	"github.com/oduya/paygo/internal/protocol"
)

var testKey = bytes.Repeat([]byte{0x37}, 16)

func TestEncodeDeterministic(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		key  []byte
	}{
		{"full unlock", FullUnlock(44), testKey},
		{"full add credit", FullAddCredit(44, 168), testKey},
		{"full wipe", FullWipeState(44, WipeIDsAll), testKey},
		{"factory allow test", FactoryAllowTest(), FactoryKey},
		{"factory oqc", FactoryOQCTest(60), FactoryKey},
		{"factory display id", FactoryDisplayID(), FactoryKey},
		{"small unlock", SmallUnlock(44), testKey},
		{"small lock", SmallLock(44), testKey},
		{"small maintenance", SmallMaintenance(MaintenanceWipeIDsAll), testKey},
		{"small test", SmallTest(TestOQC), TestKey},
		{"small passthrough", SmallPassthrough(0x155555), nil},
	}
	for _, tc := range cases {
		first, err := Encode(tc.msg, tc.key)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		second, err := Encode(tc.msg, tc.key)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if first != second {
			t.Errorf("%s: %q != %q", tc.name, first, second)
		}
	}
}

func TestEncodeTokenShapes(t *testing.T) {
	full, err := Encode(FullAddCredit(90, 720), testKey)
	if err != nil {
		t.Fatal(err)
	}
	if full[0] != '*' || full[len(full)-1] != '#' {
		t.Errorf("full token %q not framed as *...#", full)
	}
	if n := len(strings.Map(keepDigits, full)); n != 18 {
		t.Errorf("full add-credit token %q has %d digits, want 18", full, n)
	}

	small, err := Encode(SmallUnlock(90), testKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(small) != 16 {
		t.Errorf("small token %q has length %d, want 16", small, len(small))
	}
	if strings.Trim(small, "12345") != "" {
		t.Errorf("small token %q uses keys outside 1-5", small)
	}
}

func keepDigits(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}

func TestEncodeDistinctIdentifiers(t *testing.T) {
	a, err := Encode(FullSetCredit(10, 500), testKey)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(FullSetCredit(11, 500), testKey)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("identifiers 10 and 11 produced the same token %q", a)
	}
}

// Transmitted identifier 63 with a zero increment is the historical
// factory-test code and must never be issued.
func TestEncodeRefusesLegacyTestPattern(t *testing.T) {
	msg, err := SmallSetCredit(63, 1)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Encode(msg, testKey)
	ce := auth.AsIdCollisionError(err)
	if ce == nil {
		t.Fatalf("want IdCollisionError, got %v", err)
	}
	if ce.NextID != 64 {
		t.Fatalf("suggested identifier %d, want 64", ce.NextID)
	}

	code, used, err := EncodeWithRetry(msg, testKey, -1)
	if err != nil {
		t.Fatalf("EncodeWithRetry: %v", err)
	}
	if used < 64 {
		t.Fatalf("EncodeWithRetry settled on identifier %d, want >= 64", used)
	}
	if code == "" {
		t.Fatal("EncodeWithRetry returned an empty token")
	}
}

func TestEncodeWithRetryZeroBudget(t *testing.T) {
	msg, err := SmallUpdateCredit(703, 1)
	if err != nil {
		t.Fatal(err)
	}
	_, used, err := EncodeWithRetry(msg, testKey, 0)
	if !auth.IsIdCollisionError(err) {
		t.Fatalf("want IdCollisionError with no retry budget, got %v", err)
	}
	if used != 703 {
		t.Fatalf("identifier advanced to %d despite zero budget", used)
	}
}

// Reserved-band messages collide with probability 3/64 per identifier; the
// default retry budget must resolve essentially every starting identifier.
func TestEncodeWithRetryResolvesReservedBand(t *testing.T) {
	failures := 0
	for id := uint32(0); id < 512; id++ {
		_, _, err := EncodeWithRetry(SmallWipeRestrictedFlag(id), testKey, -1)
		if err != nil {
			failures++
		}
	}
	if failures > 1 {
		t.Fatalf("%d of 512 identifiers exhausted the default retry budget", failures)
	}
}

func TestConstructorDayValidation(t *testing.T) {
	if _, err := SmallAddCredit(1, 0); !protocol.IsFieldRangeError(err) {
		t.Errorf("SmallAddCredit(1, 0): got %v", err)
	}
	if _, err := SmallAddCredit(1, 406); !protocol.IsFieldRangeError(err) {
		t.Errorf("SmallAddCredit(1, 406): got %v", err)
	}
	if _, err := SmallSetCredit(1, 961); !protocol.IsFieldRangeError(err) {
		t.Errorf("SmallSetCredit(1, 961): got %v", err)
	}
	if _, err := SmallExtendedSetCredit(1, 15); !protocol.IsFieldRangeError(err) {
		t.Errorf("SmallExtendedSetCredit(1, 15): got %v", err)
	}
}

func TestEncodeFieldValidation(t *testing.T) {
	if _, err := Encode(FullAddCredit(5, 100000), testKey); !protocol.IsFieldRangeError(err) {
		t.Errorf("hours 100000: got %v", err)
	}
	if _, err := Encode(FactoryOQCTest(0), FactoryKey); !protocol.IsFieldRangeError(err) {
		t.Errorf("oqc 0 minutes: got %v", err)
	}
	if _, err := Encode(FactoryOQCTest(100), FactoryKey); !protocol.IsFieldRangeError(err) {
		t.Errorf("oqc 100 minutes: got %v", err)
	}
}

func TestEncodeRejectsShortKey(t *testing.T) {
	if _, err := Encode(FullUnlock(3), testKey[:8]); err != auth.ErrKeyTooShort {
		t.Fatalf("got %v, want ErrKeyTooShort", err)
	}
}
