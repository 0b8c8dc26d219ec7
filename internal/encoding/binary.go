package encoding

import (
	"encoding/binary"

	"github.com/boljen/go-bitmap"
)

// Split64 uint64 to two uint32
func Split64(in uint64) (uint32, uint32) {
	return uint32(in >> 32), uint32(in)
}

// Merge32 two uint32 to uint64
func Merge32(a, b uint32) uint64 {
	return (uint64(a) << 32) + uint64(b)
}

// Stamp combines the versions of the height field & water mask into a
// single value that graphs can be tagged with.
// Any change to either version yields a different stamp.
func Stamp(heightVersion, waterVersion uint32) uint64 {
	return Merge32(heightVersion, waterVersion)
}

// ToBytes64 turns a uint64 into []byte len 8
func ToBytes64(in uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, in)
	return buf
}

// FromBytes64 turns []byte into uint64
func FromBytes64(data []byte) uint64 {
	return binary.BigEndian.Uint64(data)
}

// PackFlags packs up to 8 booleans into one byte, first flag in bit 0.
// Extra flags are ignored.
func PackFlags(flags ...bool) uint8 {
	bm := bitmap.New(8)
	for i, f := range flags {
		if i >= 8 {
			break
		}
		bm.Set(i, f)
	}
	return bm.Data(false)[0]
}

// FlagSet returns if bit i of a packed flag byte is set.
func FlagSet(packed uint8, i int) bool {
	if i < 0 || i >= 8 {
		return false
	}
	return bitmap.Bitmap([]byte{packed}).Get(i)
}
