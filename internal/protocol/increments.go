package protocol

// Day-to-increment mappings for the small credit messages. These tables are
// protocol version 1 constants: firmware decodes increments back to days
// with the same breakpoints, so the numbers here are contractual.

const (
	// IncrementLock sets remaining credit to zero.
	IncrementLock = 254
	// IncrementUnlock removes the credit restriction entirely.
	IncrementUnlock = 255

	// MaxAddCreditDays is the largest day count an add-credit increment can
	// express.
	MaxAddCreditDays = 405
	// MaxSetCreditDays is the largest day count a set-credit increment can
	// express.
	MaxSetCreditDays = 960
)

// extendedBucketDays lists the coarse day buckets of the combined
// set-credit+wipe-flag command, in increment order starting at 240.
var extendedBucketDays = []uint32{1, 7, 14, 30, 60, 90, 120, 180, 270, 360, 540, 720, 960}

// AddCreditIncrement maps a day count onto an add-credit increment. Days
// 1-180 map one to one; 181-405 map in three-day steps.
func AddCreditIncrement(days uint32) (uint64, error) {
	switch {
	case days >= 1 && days <= 180:
		return uint64(days - 1), nil
	case days >= 181 && days <= MaxAddCreditDays:
		return uint64(180 + (days-181)/3), nil
	}
	return 0, &FieldRangeError{
		MessageType: SmallAddCredit, Field: "days",
		Value: uint64(days), Min: 1, Max: MaxAddCreditDays,
	}
}

// SetCreditIncrement maps a day count onto a set-credit increment. The
// granularity coarsens with range: one day up to 90, two days to 180, four
// to 360, eight to 720, sixteen to 960. Zero days locks the device.
func SetCreditIncrement(days uint32) (uint64, error) {
	switch {
	case days == 0:
		return IncrementLock, nil
	case days <= 90:
		return uint64(days - 1), nil
	case days <= 180:
		return uint64(90 + (days-91)/2), nil
	case days <= 360:
		return uint64(135 + (days-181)/4), nil
	case days <= 720:
		return uint64(180 + (days-361)/8), nil
	case days <= MaxSetCreditDays:
		return uint64(225 + (days-721)/16), nil
	}
	return 0, &FieldRangeError{
		MessageType: SmallSetCredit, Field: "days",
		Value: uint64(days), Min: 0, Max: MaxSetCreditDays,
	}
}

// ExtendedSetCreditIncrement maps one of the coarse day buckets onto a
// reserved-band increment (240 upward). Only exact bucket values are legal.
func ExtendedSetCreditIncrement(days uint32) (uint64, error) {
	for k, d := range extendedBucketDays {
		if d == days {
			return uint64(240 + k), nil
		}
	}
	return 0, &FieldRangeError{
		MessageType: SmallExtendedSetCredit, Field: "days",
		Value: uint64(days), Min: 1, Max: MaxSetCreditDays,
	}
}

// ExtendedSetCreditBuckets returns the legal day buckets of the combined
// set-credit+wipe-flag command, in ascending order.
func ExtendedSetCreditBuckets() []uint32 {
	out := make([]uint32, len(extendedBucketDays))
	copy(out, extendedBucketDays)
	return out
}
