package message

import "github.com/oduya/paygo/internal/protocol"

// UnlockHours is the set-credit sentinel that removes the credit
// restriction.
const UnlockHours = 99999

// WipeFlags selects what a wipe-state command clears.
type WipeFlags uint8

const (
	// WipeTargetFlags0 wipes device state except the received-message
	// bitmask.
	WipeTargetFlags0 WipeFlags = 0
	// WipeTargetFlags1 wipes device state including the received-message
	// bitmask.
	WipeTargetFlags1 WipeFlags = 1
	// WipeIDsAll clears the received-message bitmask only.
	WipeIDsAll WipeFlags = 2
	// WipeRestrictedFlag clears the application-specific restricted flag.
	WipeRestrictedFlag WipeFlags = 3
)

// FullAddCredit adds hours of credit on a full-keypad device.
func FullAddCredit(id uint32, hours uint32) Message {
	return Message{
		Type:   protocol.FullAddCredit,
		ID:     id,
		Values: map[string]uint64{"hours": uint64(hours)},
	}
}

// FullSetCredit sets the remaining credit to exactly hours.
func FullSetCredit(id uint32, hours uint32) Message {
	return Message{
		Type:   protocol.FullSetCredit,
		ID:     id,
		Values: map[string]uint64{"hours": uint64(hours)},
	}
}

// FullUnlock removes the credit restriction permanently.
func FullUnlock(id uint32) Message {
	return FullSetCredit(id, UnlockHours)
}

// FullWipeState clears the selected device state.
func FullWipeState(id uint32, flags WipeFlags) Message {
	return Message{
		Type:   protocol.FullWipeState,
		ID:     id,
		Values: map[string]uint64{"flags": uint64(flags)},
	}
}

// FactoryAllowTest briefly enables a disabled device for field testing.
// Encode it under FactoryKey.
func FactoryAllowTest() Message {
	return Message{Type: protocol.FullFactoryAllowTest}
}

// FactoryOQCTest adds minutes (1-99) of test credit for outgoing quality
// control, accepted a limited number of times per unit. Encode it under
// FactoryKey.
func FactoryOQCTest(minutes uint32) Message {
	return Message{
		Type:   protocol.FullFactoryOQCTest,
		Values: map[string]uint64{"minutes": uint64(minutes)},
	}
}

// FactoryDisplayID makes the device display its provisioned identifier.
// Encode it under FactoryKey.
func FactoryDisplayID() Message {
	return Message{Type: protocol.FullFactoryDisplayID}
}

// FullPassthrough carries an opaque 48-bit payload to the application
// identified by appID; the device keycode layer forwards it unparsed.
func FullPassthrough(appID uint8, payload uint64) Message {
	return Message{
		Type: protocol.FullChannelPassthrough,
		Values: map[string]uint64{
			"app_id":  uint64(appID),
			"payload": payload,
		},
	}
}
