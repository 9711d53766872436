package keycode

import (
	"math/big"

	"github.com/oduya/paygo/internal/bitstring"
)

// toDigits converts bs to exactly n base-b digits, most significant first,
// left-padded with zeros. It fails when the value needs more than n digits.
func toDigits(bs bitstring.Bits, base, n int) ([]uint8, bool) {
	v := bs.Uint()
	b := big.NewInt(int64(base))
	rem := new(big.Int)
	digits := make([]uint8, n)
	for i := n - 1; i >= 0; i-- {
		v.QuoRem(v, b, rem)
		digits[i] = uint8(rem.Uint64())
	}
	return digits, v.Sign() == 0
}

// fromDigits is the inverse of toDigits: it reassembles a most-significant-
// first digit sequence into a bit string of exactly width bits. It fails
// when the value does not fit the width.
func fromDigits(digits []uint8, base, width int) (bitstring.Bits, bool) {
	v := new(big.Int)
	b := big.NewInt(int64(base))
	d := new(big.Int)
	for _, dig := range digits {
		v.Mul(v, b)
		v.Add(v, d.SetUint64(uint64(dig)))
	}
	if v.BitLen() > width {
		return bitstring.Bits{}, false
	}
	return bitsFromBig(v, width), true
}

// bitsFromBig packs a non-negative integer known to fit width bits. The
// value is appended most significant chunk first so the MSB-first layout of
// the original bit string is preserved.
func bitsFromBig(v *big.Int, width int) bitstring.Bits {
	var b bitstring.Builder
	part := new(big.Int)
	chunk := (width-1)%64 + 1
	for off := width; off > 0; chunk = 64 {
		off -= chunk
		part.Rsh(v, uint(off))
		if chunk < 64 {
			part.And(part, big.NewInt(int64(1)<<chunk-1))
		} else {
			part.And(part, new(big.Int).SetUint64(^uint64(0)))
		}
		b.AppendUint(part.Uint64(), chunk)
	}
	return b.Bits()
}
