package protocol

import "fmt"

// Family identifies the keypad family a message belongs to.
type Family int

const (
	// FamilyFull targets devices with a full 0-9 numeric keypad.
	FamilyFull Family = iota
	// FamilySmall targets devices with a reduced 5-button keypad.
	FamilySmall
	// FamilyChannel is the nested accessory-link sub-protocol; its bodies
	// are embedded inside a host passthrough message, never rendered alone.
	FamilyChannel
)

// String returns a human-readable family name.
func (f Family) String() string {
	switch f {
	case FamilyFull:
		return "full"
	case FamilySmall:
		return "small"
	case FamilyChannel:
		return "channel"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Base returns the digit alphabet size for rendered keycodes of this family.
func (f Family) Base() int {
	if f == FamilySmall {
		return 5
	}
	return 10
}

// MessageType is the closed enumeration of encodable commands.
type MessageType int

const (
	// Full family.
	FullAddCredit MessageType = iota
	FullSetCredit
	FullWipeState
	FullFactoryAllowTest
	FullFactoryOQCTest
	FullFactoryDisplayID
	FullChannelPassthrough

	// Small family.
	SmallAddCredit
	SmallPassthrough
	SmallSetCredit
	SmallUpdateCredit
	SmallCustomCommand
	SmallExtendedSetCredit
	SmallMaintenanceTest

	// Channel nested commands.
	ChannelUnlinkAllAccessories
	ChannelUnlockAllAccessories
	ChannelUnlockAccessory
	ChannelUnlinkAccessory
	ChannelLinkAccessoryMode3
)

// String returns the registry name of the message type.
func (t MessageType) String() string {
	if def, ok := registry[t]; ok {
		return def.Name
	}
	return fmt.Sprintf("MessageType(%d)", int(t))
}

// FieldSpec declares one body field: its name, fixed bit width, and the
// inclusive value domain enforced before packing.
type FieldSpec struct {
	Name string
	Bits int
	Min  uint64
	Max  uint64
}

// CollisionSpec is the enumerable collision table for message types whose
// digest bits double as a subtype discriminator. Reserved lists the
// discriminator patterns owned by other interpretations of the same wire
// format; a digest landing on one of them would be executed as a different
// command by the decoder.
type CollisionSpec struct {
	// DiscriminatorBits is the number of low-order digest bits the decoder
	// dispatches on.
	DiscriminatorBits int
	// Reserved holds discriminator values reserved by other interpretations.
	Reserved []uint8
	// LegacyTestGuard marks types that share a wire format with the
	// historical factory-test code (transmitted id 63, body increment 0);
	// that exact combination must never be emitted.
	LegacyTestGuard bool
}

// ReservedContains reports whether v is a discriminator pattern owned by a
// different message interpretation.
func (c *CollisionSpec) ReservedContains(v uint8) bool {
	for _, r := range c.Reserved {
		if r == v {
			return true
		}
	}
	return false
}

// Definition is the complete registry entry for one message type.
type Definition struct {
	Type   MessageType
	Name   string
	Family Family

	Opcode     uint8
	OpcodeBits int
	// IDBits is the transmitted identifier width; the full 32-bit identifier
	// is truncated to its IDBits least significant bits on the wire. Zero for
	// messages that carry no identifier (passthrough, nested commands).
	IDBits int

	Fields []FieldSpec

	// DigestBits is the truncated digest width appended after the body.
	// Zero for unauthenticated passthrough and nested bodies.
	DigestBits int

	// PayloadDigits is the fixed rendered digit count (before check digits)
	// for this type, chosen so the body+digest integer always fits. Zero for
	// nested bodies, which are never rendered directly.
	PayloadDigits int

	// Collision is non-nil for types subject to the discriminator ambiguity
	// check.
	Collision *CollisionSpec
}

// BodyBits returns the packed body width: opcode + transmitted id + fields.
func (d Definition) BodyBits() int {
	n := d.OpcodeBits + d.IDBits
	for _, f := range d.Fields {
		n += f.Bits
	}
	return n
}

// TotalBits returns the width of body plus truncated digest.
func (d Definition) TotalBits() int {
	return d.BodyBits() + d.DigestBits
}
