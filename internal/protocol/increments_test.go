package protocol

import "testing"

func TestAddCreditIncrement(t *testing.T) {
	cases := []struct {
		days uint32
		want uint64
		ok   bool
	}{
		{0, 0, false},
		{1, 0, true},
		{180, 179, true},
		{181, 180, true},
		{183, 180, true},
		{184, 181, true},
		{405, 254, true},
		{406, 0, false},
	}
	for _, tc := range cases {
		got, err := AddCreditIncrement(tc.days)
		if tc.ok != (err == nil) {
			t.Errorf("AddCreditIncrement(%d): err = %v", tc.days, err)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("AddCreditIncrement(%d) = %d, want %d", tc.days, got, tc.want)
		}
	}
}

func TestSetCreditIncrement(t *testing.T) {
	cases := []struct {
		days uint32
		want uint64
		ok   bool
	}{
		{0, IncrementLock, true},
		{1, 0, true},
		{90, 89, true},
		{91, 90, true},
		{92, 90, true},
		{180, 134, true},
		{181, 135, true},
		{360, 179, true},
		{361, 180, true},
		{720, 224, true},
		{721, 225, true},
		{960, 239, true},
		{961, 0, false},
	}
	for _, tc := range cases {
		got, err := SetCreditIncrement(tc.days)
		if tc.ok != (err == nil) {
			t.Errorf("SetCreditIncrement(%d): err = %v", tc.days, err)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("SetCreditIncrement(%d) = %d, want %d", tc.days, got, tc.want)
		}
	}
}

// Day-mapped set-credit increments must never wander into the reserved
// custom-command band (240-253) or the lock/unlock sentinels.
func TestSetCreditIncrementAvoidsReservedBand(t *testing.T) {
	for days := uint32(1); days <= MaxSetCreditDays; days++ {
		got, err := SetCreditIncrement(days)
		if err != nil {
			t.Fatalf("SetCreditIncrement(%d): %v", days, err)
		}
		if got >= 240 {
			t.Fatalf("SetCreditIncrement(%d) = %d is inside the reserved band", days, got)
		}
	}
}

func TestExtendedSetCreditIncrement(t *testing.T) {
	buckets := ExtendedSetCreditBuckets()
	if len(buckets) != 13 {
		t.Fatalf("got %d buckets, want 13", len(buckets))
	}
	for k, days := range buckets {
		got, err := ExtendedSetCreditIncrement(days)
		if err != nil {
			t.Fatalf("ExtendedSetCreditIncrement(%d): %v", days, err)
		}
		if got != uint64(240+k) {
			t.Errorf("ExtendedSetCreditIncrement(%d) = %d, want %d", days, got, 240+k)
		}
	}
	for _, days := range []uint32{0, 2, 15, 365, 961} {
		if _, err := ExtendedSetCreditIncrement(days); err == nil {
			t.Errorf("ExtendedSetCreditIncrement(%d) accepted a non-bucket value", days)
		}
	}
}
