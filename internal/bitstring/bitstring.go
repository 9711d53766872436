// Package bitstring provides an append-only, MSB-first bit writer.
//
// Keycode message bodies are packed as fixed-width bit fields that rarely
// align to byte boundaries (a full-protocol credit body is 49 bits, a small
// one is 28). This package accumulates such fields in order and exposes the
// result as bytes or as a single unsigned integer for radix conversion.
//
// The zero value of Builder is ready to use. Builders are not safe for
// concurrent use; share the resulting Bits instead, which is immutable.
package bitstring

import (
	"fmt"
	"math/big"
)

// Builder accumulates bit fields most-significant-bit first.
type Builder struct {
	value  big.Int
	length int
}

// AppendUint appends the low `width` bits of v, MSB first.
// Panics if v does not fit in width bits; callers are expected to have
// range-checked field values before packing (silent truncation here would
// corrupt the encoded message).
func (b *Builder) AppendUint(v uint64, width int) {
	if width < 0 || width > 64 {
		panic(fmt.Sprintf("bitstring: invalid field width %d", width))
	}
	if width < 64 && v >= 1<<uint(width) {
		panic(fmt.Sprintf("bitstring: value %d does not fit in %d bits", v, width))
	}
	b.value.Lsh(&b.value, uint(width))
	var vb big.Int
	vb.SetUint64(v)
	b.value.Or(&b.value, &vb)
	b.length += width
}

// AppendBits appends another bit string in order.
func (b *Builder) AppendBits(other Bits) {
	b.value.Lsh(&b.value, uint(other.length))
	b.value.Or(&b.value, &other.value)
	b.length += other.length
}

// Bits returns the accumulated bit string. The builder remains usable.
func (b *Builder) Bits() Bits {
	var v big.Int
	v.Set(&b.value)
	return Bits{value: v, length: b.length}
}

// Len returns the number of bits accumulated so far.
func (b *Builder) Len() int { return b.length }

// Bits is an immutable MSB-first bit string.
type Bits struct {
	value  big.Int
	length int
}

// NewBits constructs a bit string of exactly `width` bits from v.
func NewBits(v uint64, width int) Bits {
	var b Builder
	b.AppendUint(v, width)
	return b.Bits()
}

// Len returns the bit length (including leading zero bits).
func (bs Bits) Len() int { return bs.length }

// Uint interprets the bit string as an unsigned integer, MSB first.
// The returned value is a copy; mutating it does not affect bs.
func (bs Bits) Uint() *big.Int {
	var v big.Int
	v.Set(&bs.value)
	return &v
}

// Uint64 returns the value of a bit string of at most 64 bits.
func (bs Bits) Uint64() (uint64, error) {
	if bs.length > 64 {
		return 0, fmt.Errorf("bitstring: %d bits do not fit in uint64", bs.length)
	}
	return bs.value.Uint64(), nil
}

// Bytes returns the bit string left-padded with zero bits to a whole number
// of bytes, big-endian. A zero-length string yields an empty slice.
func (bs Bits) Bytes() []byte {
	n := (bs.length + 7) / 8
	out := make([]byte, n)
	bs.value.FillBytes(out)
	return out
}

// Slice returns the sub-string covering bit positions [from, to), counted
// from the most significant bit.
func (bs Bits) Slice(from, to int) (Bits, error) {
	if from < 0 || to > bs.length || from > to {
		return Bits{}, fmt.Errorf("bitstring: slice [%d,%d) out of range for %d bits", from, to, bs.length)
	}
	width := to - from
	var v big.Int
	v.Rsh(&bs.value, uint(bs.length-to))
	var mask big.Int
	mask.Lsh(big.NewInt(1), uint(width))
	mask.Sub(&mask, big.NewInt(1))
	v.And(&v, &mask)
	return Bits{value: v, length: width}, nil
}

// Equal reports whether two bit strings have identical length and content.
func (bs Bits) Equal(other Bits) bool {
	return bs.length == other.length && bs.value.Cmp(&other.value) == 0
}

// String renders the bits as "0b..." for debugging.
func (bs Bits) String() string {
	if bs.length == 0 {
		return "0b"
	}
	return fmt.Sprintf("0b%0*b", bs.length, &bs.value)
}
