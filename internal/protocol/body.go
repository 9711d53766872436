package protocol

import (
	"sort"

	"github.com/oduya/paygo/internal/bitstring"
)

// EncodeBody packs a message's field values into its fixed-width binary body:
// opcode bits, then the transmitted identifier (the IDBits least significant
// bits of id), then each declared field in registry order, MSB first.
//
// The supplied values must name exactly the declared fields
// (SchemaMismatchError otherwise) and every value must lie inside its
// declared domain (FieldRangeError otherwise). Both checks run before any
// bits are emitted. The result is deterministic: identical inputs always
// produce an identical body.
func EncodeBody(t MessageType, id uint32, values map[string]uint64) (bitstring.Bits, error) {
	def := Lookup(t)

	if err := checkSchema(def, values); err != nil {
		return bitstring.Bits{}, err
	}
	for _, f := range def.Fields {
		v := values[f.Name]
		if v < f.Min || v > f.Max {
			return bitstring.Bits{}, &FieldRangeError{
				MessageType: t, Field: f.Name, Value: v, Min: f.Min, Max: f.Max,
			}
		}
	}

	var b bitstring.Builder
	b.AppendUint(uint64(def.Opcode), def.OpcodeBits)
	if def.IDBits > 0 {
		b.AppendUint(uint64(id)&(1<<uint(def.IDBits)-1), def.IDBits)
	}
	for _, f := range def.Fields {
		b.AppendUint(values[f.Name], f.Bits)
	}
	return b.Bits(), nil
}

func checkSchema(def Definition, values map[string]uint64) error {
	declared := make(map[string]bool, len(def.Fields))
	var missing []string
	for _, f := range def.Fields {
		declared[f.Name] = true
		if _, ok := values[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	var unexpected []string
	for name := range values {
		if !declared[name] {
			unexpected = append(unexpected, name)
		}
	}
	sort.Strings(unexpected)
	if len(missing) > 0 || len(unexpected) > 0 {
		return &SchemaMismatchError{
			MessageType: def.Type, Missing: missing, Unexpected: unexpected,
		}
	}
	return nil
}
