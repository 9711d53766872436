package protocol

// Protocol version 1 registry. Layout constants here are contractual with
// device firmware; changing a width or opcode is a breaking protocol change
// and requires a new version, not an edit.

const (
	fullOpcodeBits = 4
	fullIDBits     = 8
	fullDigestBits = 20

	smallOpcodeBits = 2
	smallIDBits     = 6
	smallDigestBits = 12

	channelOpcodeBits = 4

	// NestedBodyBits is the fixed width of a channel nested command body.
	NestedBodyBits = 48
	// SmallPassthroughBits is the opaque payload width of a small
	// passthrough message.
	SmallPassthroughBits = 26
)

// Full family opcodes.
const (
	opFullAddCredit          = 0
	opFullSetCredit          = 1
	opFullWipeState          = 2
	opFullFactoryAllowTest   = 4
	opFullFactoryOQCTest     = 5
	opFullFactoryDisplayID   = 6
	opFullChannelPassthrough = 8
)

// Small family opcodes.
const (
	opSmallAddCredit       = 0
	opSmallPassthrough     = 1
	opSmallSetCredit       = 2
	opSmallMaintenanceTest = 3
)

// Channel nested opcodes.
const (
	opChannelUnlinkAll = 0
	opChannelUnlockAll = 1
	opChannelUnlockOne = 2
	opChannelUnlinkOne = 3
	opChannelLinkMode3 = 9
)

// setCreditCollision is shared by every message type transmitted on the
// small set-credit opcode with a reserved-band body increment. Decoders
// dispatch those messages on the low 6 bits of the digest; 0x00 and 0x3F
// belong to the legacy factory-test interpretation and 0x2A to the legacy
// demo-mode interpretation.
var setCreditCollision = &CollisionSpec{
	DiscriminatorBits: 6,
	Reserved:          []uint8{0x00, 0x2A, 0x3F},
}

// plainCreditCollision guards plain set/update credit messages against the
// historical factory-test code (transmitted id 63, increment 0).
var plainCreditCollision = &CollisionSpec{
	LegacyTestGuard: true,
}

var registry = map[MessageType]Definition{
	FullAddCredit: {
		Type: FullAddCredit, Name: "full add credit", Family: FamilyFull,
		Opcode: opFullAddCredit, OpcodeBits: fullOpcodeBits, IDBits: fullIDBits,
		Fields:     []FieldSpec{{Name: "hours", Bits: 17, Min: 0, Max: 99999}},
		DigestBits: fullDigestBits, PayloadDigits: 15,
	},
	FullSetCredit: {
		Type: FullSetCredit, Name: "full set credit", Family: FamilyFull,
		Opcode: opFullSetCredit, OpcodeBits: fullOpcodeBits, IDBits: fullIDBits,
		Fields:     []FieldSpec{{Name: "hours", Bits: 17, Min: 0, Max: 99999}},
		DigestBits: fullDigestBits, PayloadDigits: 15,
	},
	FullWipeState: {
		Type: FullWipeState, Name: "full wipe state", Family: FamilyFull,
		Opcode: opFullWipeState, OpcodeBits: fullOpcodeBits, IDBits: fullIDBits,
		Fields:     []FieldSpec{{Name: "flags", Bits: 2, Min: 0, Max: 3}},
		DigestBits: fullDigestBits, PayloadDigits: 11,
	},
	FullFactoryAllowTest: {
		Type: FullFactoryAllowTest, Name: "factory allow test", Family: FamilyFull,
		Opcode: opFullFactoryAllowTest, OpcodeBits: fullOpcodeBits, IDBits: fullIDBits,
		DigestBits: fullDigestBits, PayloadDigits: 10,
	},
	FullFactoryOQCTest: {
		Type: FullFactoryOQCTest, Name: "factory OQC test", Family: FamilyFull,
		Opcode: opFullFactoryOQCTest, OpcodeBits: fullOpcodeBits, IDBits: fullIDBits,
		Fields:     []FieldSpec{{Name: "minutes", Bits: 7, Min: 1, Max: 99}},
		DigestBits: fullDigestBits, PayloadDigits: 12,
	},
	FullFactoryDisplayID: {
		Type: FullFactoryDisplayID, Name: "factory display id", Family: FamilyFull,
		Opcode: opFullFactoryDisplayID, OpcodeBits: fullOpcodeBits, IDBits: fullIDBits,
		DigestBits: fullDigestBits, PayloadDigits: 10,
	},
	FullChannelPassthrough: {
		Type: FullChannelPassthrough, Name: "full passthrough", Family: FamilyFull,
		Opcode: opFullChannelPassthrough, OpcodeBits: fullOpcodeBits, IDBits: fullIDBits,
		Fields: []FieldSpec{
			{Name: "app_id", Bits: 4, Min: 0, Max: 15},
			{Name: "payload", Bits: NestedBodyBits, Min: 0, Max: 1<<uint(NestedBodyBits) - 1},
		},
		DigestBits: fullDigestBits, PayloadDigits: 26,
	},

	SmallAddCredit: {
		Type: SmallAddCredit, Name: "small add credit", Family: FamilySmall,
		Opcode: opSmallAddCredit, OpcodeBits: smallOpcodeBits, IDBits: smallIDBits,
		Fields:     []FieldSpec{{Name: "increment", Bits: 8, Min: 0, Max: 255}},
		DigestBits: smallDigestBits, PayloadDigits: 13,
	},
	SmallPassthrough: {
		Type: SmallPassthrough, Name: "small passthrough", Family: FamilySmall,
		Opcode: opSmallPassthrough, OpcodeBits: smallOpcodeBits,
		Fields:        []FieldSpec{{Name: "payload", Bits: SmallPassthroughBits, Min: 0, Max: 1<<uint(SmallPassthroughBits) - 1}},
		PayloadDigits: 13,
	},
	SmallSetCredit: {
		Type: SmallSetCredit, Name: "small set credit", Family: FamilySmall,
		Opcode: opSmallSetCredit, OpcodeBits: smallOpcodeBits, IDBits: smallIDBits,
		Fields:     []FieldSpec{{Name: "increment", Bits: 8, Min: 0, Max: 255}},
		DigestBits: smallDigestBits, PayloadDigits: 13,
		Collision:  plainCreditCollision,
	},
	SmallUpdateCredit: {
		Type: SmallUpdateCredit, Name: "small update credit", Family: FamilySmall,
		Opcode: opSmallSetCredit, OpcodeBits: smallOpcodeBits, IDBits: smallIDBits,
		Fields:     []FieldSpec{{Name: "increment", Bits: 8, Min: 0, Max: 255}},
		DigestBits: smallDigestBits, PayloadDigits: 13,
		Collision:  plainCreditCollision,
	},
	SmallCustomCommand: {
		Type: SmallCustomCommand, Name: "small custom command", Family: FamilySmall,
		Opcode: opSmallSetCredit, OpcodeBits: smallOpcodeBits, IDBits: smallIDBits,
		// Custom commands occupy the reserved increment band 240-253.
		Fields:     []FieldSpec{{Name: "increment", Bits: 8, Min: 240, Max: 253}},
		DigestBits: smallDigestBits, PayloadDigits: 13,
		Collision:  setCreditCollision,
	},
	SmallExtendedSetCredit: {
		Type: SmallExtendedSetCredit, Name: "small extended set credit", Family: FamilySmall,
		Opcode: opSmallSetCredit, OpcodeBits: smallOpcodeBits, IDBits: smallIDBits,
		Fields:     []FieldSpec{{Name: "increment", Bits: 8, Min: 240, Max: 252}},
		DigestBits: smallDigestBits, PayloadDigits: 13,
		Collision:  setCreditCollision,
	},
	SmallMaintenanceTest: {
		Type: SmallMaintenanceTest, Name: "small maintenance/test", Family: FamilySmall,
		Opcode: opSmallMaintenanceTest, OpcodeBits: smallOpcodeBits, IDBits: smallIDBits,
		Fields:     []FieldSpec{{Name: "code", Bits: 8, Min: 0, Max: 255}},
		DigestBits: smallDigestBits, PayloadDigits: 13,
	},

	ChannelUnlinkAllAccessories: {
		Type: ChannelUnlinkAllAccessories, Name: "channel unlink all", Family: FamilyChannel,
		Opcode: opChannelUnlinkAll, OpcodeBits: channelOpcodeBits,
		Fields: []FieldSpec{
			{Name: "action_data", Bits: 20, Min: 0, Max: 0},
			{Name: "auth", Bits: 24, Min: 0, Max: 1<<24 - 1},
		},
	},
	ChannelUnlockAllAccessories: {
		Type: ChannelUnlockAllAccessories, Name: "channel unlock all", Family: FamilyChannel,
		Opcode: opChannelUnlockAll, OpcodeBits: channelOpcodeBits,
		Fields: []FieldSpec{
			{Name: "action_data", Bits: 20, Min: 0, Max: 0},
			{Name: "auth", Bits: 24, Min: 0, Max: 1<<24 - 1},
		},
	},
	ChannelUnlockAccessory: {
		Type: ChannelUnlockAccessory, Name: "channel unlock accessory", Family: FamilyChannel,
		Opcode: opChannelUnlockOne, OpcodeBits: channelOpcodeBits,
		Fields: []FieldSpec{
			{Name: "truncated_id", Bits: 20, Min: 0, Max: 1<<20 - 1},
			{Name: "auth", Bits: 24, Min: 0, Max: 1<<24 - 1},
		},
	},
	ChannelUnlinkAccessory: {
		Type: ChannelUnlinkAccessory, Name: "channel unlink accessory", Family: FamilyChannel,
		Opcode: opChannelUnlinkOne, OpcodeBits: channelOpcodeBits,
		Fields: []FieldSpec{
			{Name: "truncated_id", Bits: 20, Min: 0, Max: 1<<20 - 1},
			{Name: "auth", Bits: 24, Min: 0, Max: 1<<24 - 1},
		},
	},
	ChannelLinkAccessoryMode3: {
		Type: ChannelLinkAccessoryMode3, Name: "channel link mode 3", Family: FamilyChannel,
		Opcode: opChannelLinkMode3, OpcodeBits: channelOpcodeBits,
		Fields: []FieldSpec{
			{Name: "challenge", Bits: 20, Min: 0, Max: 1<<20 - 1},
			{Name: "auth", Bits: 24, Min: 0, Max: 1<<24 - 1},
		},
	},
}

// Lookup returns the registry definition for t. The enumeration is closed,
// so an unknown type is a programming error and panics rather than forcing
// an impossible error branch on every caller.
func Lookup(t MessageType) Definition {
	def, ok := registry[t]
	if !ok {
		panic("protocol: unknown message type")
	}
	return def
}

// Types returns all registered message types of a family, in stable
// registry-declaration order. Used by the wizard and the issuing server to
// enumerate the catalog.
func Types(f Family) []MessageType {
	order := []MessageType{
		FullAddCredit, FullSetCredit, FullWipeState, FullFactoryAllowTest,
		FullFactoryOQCTest, FullFactoryDisplayID, FullChannelPassthrough,
		SmallAddCredit, SmallPassthrough, SmallSetCredit, SmallUpdateCredit,
		SmallCustomCommand, SmallExtendedSetCredit, SmallMaintenanceTest,
		ChannelUnlinkAllAccessories, ChannelUnlockAllAccessories,
		ChannelUnlockAccessory, ChannelUnlinkAccessory, ChannelLinkAccessoryMode3,
	}
	var out []MessageType
	for _, t := range order {
		if registry[t].Family == f {
			out = append(out, t)
		}
	}
	return out
}
