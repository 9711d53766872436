package message

import "github.com/oduya/paygo/internal/protocol"

// MaintenanceType selects a small maintenance command. Maintenance bodies
// carry a set high bit to separate them from test bodies on the shared
// opcode.
type MaintenanceType uint8

const (
	MaintenanceWipeState0 MaintenanceType = 0
	MaintenanceWipeState1 MaintenanceType = 1
	MaintenanceWipeIDsAll MaintenanceType = 2
)

// TestType selects a small device-test command.
type TestType uint8

const (
	TestShort TestType = 0
	TestOQC   TestType = 1
)

// smallCredit builds a small credit message from a day count using the
// given day-to-increment table.
func smallCredit(t protocol.MessageType, id uint32, days uint32,
	table func(uint32) (uint64, error)) (Message, error) {
	inc, err := table(days)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type:   t,
		ID:     id,
		Values: map[string]uint64{"increment": inc},
	}, nil
}

// SmallAddCredit adds days of credit on a 5-button device. Days 1-180 are
// exact; 181-405 round down to three-day steps.
func SmallAddCredit(id uint32, days uint32) (Message, error) {
	return smallCredit(protocol.SmallAddCredit, id, days, protocol.AddCreditIncrement)
}

// SmallUnlock removes the credit restriction permanently.
func SmallUnlock(id uint32) Message {
	return Message{
		Type:   protocol.SmallAddCredit,
		ID:     id,
		Values: map[string]uint64{"increment": protocol.IncrementUnlock},
	}
}

// SmallSetCredit sets the remaining credit to days, rounded down to the
// table granularity. Zero days locks the device.
func SmallSetCredit(id uint32, days uint32) (Message, error) {
	return smallCredit(protocol.SmallSetCredit, id, days, protocol.SetCreditIncrement)
}

// SmallLock sets the remaining credit to zero.
func SmallLock(id uint32) Message {
	return Message{
		Type:   protocol.SmallSetCredit,
		ID:     id,
		Values: map[string]uint64{"increment": protocol.IncrementLock},
	}
}

// SmallUpdateCredit adjusts credit to days on the set-credit wire format;
// receivers treat it as a set relative to the message's position in the
// identifier window.
func SmallUpdateCredit(id uint32, days uint32) (Message, error) {
	return smallCredit(protocol.SmallUpdateCredit, id, days, protocol.SetCreditIncrement)
}

// SmallWipeRestrictedFlag clears the application-specific restricted flag.
// It travels on the set-credit opcode inside the reserved increment band,
// so encoding it is subject to the discriminator ambiguity check.
func SmallWipeRestrictedFlag(id uint32) Message {
	return Message{
		Type:   protocol.SmallCustomCommand,
		ID:     id,
		Values: map[string]uint64{"increment": 253},
	}
}

// SmallExtendedSetCredit combines a coarse set-credit bucket with clearing
// the restricted flag in one reserved-band message. Only the exact bucket
// day values are legal; see protocol.ExtendedSetCreditBuckets.
func SmallExtendedSetCredit(id uint32, days uint32) (Message, error) {
	return smallCredit(protocol.SmallExtendedSetCredit, id, days, protocol.ExtendedSetCreditIncrement)
}

// SmallMaintenance builds a maintenance command. Maintenance messages carry
// identifier 0 and may be applied any number of times.
func SmallMaintenance(t MaintenanceType) Message {
	return Message{
		Type:   protocol.SmallMaintenanceTest,
		Values: map[string]uint64{"code": uint64(t) | 0x80},
	}
}

// SmallTest builds a device-test command. Test messages carry identifier 0
// and authenticate under TestKey.
func SmallTest(t TestType) Message {
	return Message{
		Type:   protocol.SmallMaintenanceTest,
		Values: map[string]uint64{"code": uint64(t)},
	}
}

// SmallPassthrough carries an opaque 26-bit payload to application code on
// the device; the keycode layer neither authenticates nor interprets it.
func SmallPassthrough(payload uint32) Message {
	return Message{
		Type:   protocol.SmallPassthrough,
		Values: map[string]uint64{"payload": uint64(payload)},
	}
}
