package channel

import (
	"encoding/binary"

	"github.com/oduya/paygo/internal/auth"
	"github.com/oduya/paygo/internal/bitstring"
	"github.com/oduya/paygo/internal/message"
	"github.com/oduya/paygo/internal/protocol"
)

// Application ids on the full-keypad passthrough host.
const (
	AppIDUARTSecurity  = 0
	AppIDOriginCommand = 1
)

const (
	authBits      = 24
	challengeBits = 20
	argMask       = 1<<challengeBits - 1
)

// commandAuth computes the 24-bit controller authenticator over the command
// count, nested opcode, and 20-bit argument.
func commandAuth(key []byte, count uint32, opcode uint8, arg uint32) (uint64, error) {
	data := make([]byte, 9)
	binary.LittleEndian.PutUint32(data[0:4], count)
	data[4] = opcode
	binary.LittleEndian.PutUint32(data[5:9], arg)
	return auth.TruncatedDigest(key, data, authBits)
}

// hostMessage assembles the nested body for t and wraps it in the
// full-keypad passthrough host.
func hostMessage(t protocol.MessageType, argField string, arg uint32, count uint32, controllerKey []byte) (message.Message, error) {
	a, err := commandAuth(controllerKey, count, protocol.Lookup(t).Opcode, arg)
	if err != nil {
		return message.Message{}, err
	}
	body, err := protocol.EncodeBody(t, 0, map[string]uint64{
		argField: uint64(arg),
		"auth":   a,
	})
	if err != nil {
		return message.Message{}, err
	}
	payload, err := body.Uint64()
	if err != nil {
		return message.Message{}, err
	}
	return message.FullPassthrough(AppIDOriginCommand, payload), nil
}

// UnlinkAllAccessories orders the controller to delete every accessory
// link it holds.
func UnlinkAllAccessories(commandCount uint32, controllerKey []byte) (message.Message, error) {
	return hostMessage(protocol.ChannelUnlinkAllAccessories, "action_data", 0, commandCount, controllerKey)
}

// UnlockAllAccessories orders the controller to unlock every accessory
// linked to it.
func UnlockAllAccessories(commandCount uint32, controllerKey []byte) (message.Message, error) {
	return hostMessage(protocol.ChannelUnlockAllAccessories, "action_data", 0, commandCount, controllerKey)
}

// UnlockAccessory unlocks one linked accessory. Only the low 20 bits of the
// accessory identifier travel; the controller expands them against its link
// table.
func UnlockAccessory(accessoryID uint64, commandCount uint32, controllerKey []byte) (message.Message, error) {
	return hostMessage(protocol.ChannelUnlockAccessory, "truncated_id",
		uint32(accessoryID&argMask), commandCount, controllerKey)
}

// UnlinkAccessory deletes one accessory link.
func UnlinkAccessory(accessoryID uint64, commandCount uint32, controllerKey []byte) (message.Message, error) {
	return hostMessage(protocol.ChannelUnlinkAccessory, "truncated_id",
		uint32(accessoryID&argMask), commandCount, controllerKey)
}

// LinkAccessoryMode3 links an accessory via a challenge: the 20-bit
// challenge value is derived from the accessory's command count under the
// accessory key, and the controller authenticator binds it so the
// controller only relays challenges issued by the origin.
func LinkAccessoryMode3(controllerCount, accessoryCount uint32, accessoryKey, controllerKey []byte) (message.Message, error) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, accessoryCount)
	challenge, err := auth.TruncatedDigest(accessoryKey, data, challengeBits)
	if err != nil {
		return message.Message{}, err
	}
	return hostMessage(protocol.ChannelLinkAccessoryMode3, "challenge",
		uint32(challenge), controllerCount, controllerKey)
}

// Small-bearer origin command layout: app id bit, 3-bit command, 2-bit tag,
// 8-bit increment, 12-bit authenticator.
const (
	smallBearerTag = 0x3 // set credit + wipe restricted flag
	smallBearerMAC = 12
)

// SetCreditWipeRestrictedFlag combines a set-credit day table entry with
// clearing the controller's restricted flag, carried on the small-keypad
// passthrough for 5-button controllers. Zero days locks the device.
func SetCreditWipeRestrictedFlag(days uint32, commandCount uint32, controllerKey []byte) (message.Message, error) {
	increment, err := protocol.SetCreditIncrement(days)
	if err != nil {
		return message.Message{}, err
	}

	// The authenticator covers the generic-action command (6) and the
	// increment, little-endian, after the command count and origin type.
	data := make([]byte, 9)
	binary.LittleEndian.PutUint32(data[0:4], commandCount)
	data[4] = 0 // generic controller action
	binary.LittleEndian.PutUint16(data[5:7], 6)
	binary.LittleEndian.PutUint16(data[7:9], uint16(increment))
	mac, err := auth.TruncatedDigest(controllerKey, data, smallBearerMAC)
	if err != nil {
		return message.Message{}, err
	}

	var b bitstring.Builder
	b.AppendUint(1, 1) // app id: origin command
	b.AppendUint(0, 3) // generic controller action
	b.AppendUint(smallBearerTag, 2)
	b.AppendUint(increment, 8)
	b.AppendUint(mac, smallBearerMAC)
	payload, err := b.Bits().Uint64()
	if err != nil {
		return message.Message{}, err
	}
	return message.SmallPassthrough(uint32(payload)), nil
}
