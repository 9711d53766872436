package protocol

import (
	"math"
	"testing"
)

// The formatter depends on every registry entry having a payload digit count
// wide enough for the largest possible body+digest integer. Verify that
// structurally so a registry edit cannot silently introduce an overflow.
func TestRegistryPayloadDigitsFit(t *testing.T) {
	for typ, def := range registry {
		if def.Family == FamilyChannel {
			if def.PayloadDigits != 0 || def.DigestBits != 0 {
				t.Errorf("%s: nested bodies must not declare rendering or digest widths", typ)
			}
			continue
		}
		base := float64(def.Family.Base())
		needed := int(math.Ceil(float64(def.TotalBits()) * math.Log(2) / math.Log(base)))
		if def.PayloadDigits != needed {
			t.Errorf("%s: payload digits = %d, want %d for %d bits in base %d",
				typ, def.PayloadDigits, needed, def.TotalBits(), int(base))
		}
	}
}

func TestRegistryFieldDomains(t *testing.T) {
	for typ, def := range registry {
		if def.Opcode >= 1<<uint(def.OpcodeBits) {
			t.Errorf("%s: opcode %d does not fit %d bits", typ, def.Opcode, def.OpcodeBits)
		}
		for _, f := range def.Fields {
			if f.Bits <= 0 || f.Bits > 64 {
				t.Errorf("%s/%s: invalid width %d", typ, f.Name, f.Bits)
				continue
			}
			limit := uint64(math.MaxUint64)
			if f.Bits < 64 {
				limit = 1<<uint(f.Bits) - 1
			}
			if f.Max > limit {
				t.Errorf("%s/%s: max %d exceeds %d-bit field", typ, f.Name, f.Max, f.Bits)
			}
			if f.Min > f.Max {
				t.Errorf("%s/%s: min %d above max %d", typ, f.Name, f.Min, f.Max)
			}
		}
	}
}

func TestRegistryFamilyWidths(t *testing.T) {
	for typ, def := range registry {
		switch def.Family {
		case FamilySmall:
			if def.TotalBits() != 28 {
				t.Errorf("%s: small messages are 28 bits, got %d", typ, def.TotalBits())
			}
		case FamilyChannel:
			if def.BodyBits() != NestedBodyBits {
				t.Errorf("%s: nested bodies are %d bits, got %d", typ, NestedBodyBits, def.BodyBits())
			}
		}
	}
}

func TestLookupTotalOverCatalog(t *testing.T) {
	families := []Family{FamilyFull, FamilySmall, FamilyChannel}
	seen := 0
	for _, f := range families {
		for _, typ := range Types(f) {
			def := Lookup(typ)
			if def.Type != typ {
				t.Errorf("Lookup(%v).Type = %v", typ, def.Type)
			}
			if def.Family != f {
				t.Errorf("Lookup(%v).Family = %v, want %v", typ, def.Family, f)
			}
			seen++
		}
	}
	if seen != len(registry) {
		t.Errorf("Types() enumerated %d entries, registry has %d", seen, len(registry))
	}
}

func TestCollisionTables(t *testing.T) {
	// Reserved-band set-credit types carry the discriminator table; plain
	// credit types carry only the legacy guard.
	for _, typ := range []MessageType{SmallCustomCommand, SmallExtendedSetCredit} {
		c := Lookup(typ).Collision
		if c == nil || c.DiscriminatorBits != 6 || len(c.Reserved) == 0 {
			t.Errorf("%s: expected 6-bit discriminator table, got %+v", typ, c)
		}
	}
	for _, typ := range []MessageType{SmallSetCredit, SmallUpdateCredit} {
		c := Lookup(typ).Collision
		if c == nil || !c.LegacyTestGuard {
			t.Errorf("%s: expected legacy test guard", typ)
		}
	}
	if Lookup(SmallAddCredit).Collision != nil {
		t.Error("small add credit has no ambiguous interpretation")
	}

	c := Lookup(SmallCustomCommand).Collision
	if !c.ReservedContains(0x00) || !c.ReservedContains(0x3F) || !c.ReservedContains(0x2A) {
		t.Error("reserved discriminator patterns missing from table")
	}
	if c.ReservedContains(0x01) {
		t.Error("0x01 is not a reserved pattern")
	}
}
