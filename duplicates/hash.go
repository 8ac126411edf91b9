// Package duplicates finds synthetic rows copied from the real data and rows
// repeated within one dataset.
//
// Rows are compared through a 64-bit xxhash of a canonical, length-prefixed
// serialisation of their ordered values, so the same row always hashes the
// same way regardless of platform or column types.
package duplicates

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/YuminosukeSato/synthcheck/frame"
)

const (
	tagMissing byte = iota
	tagNumber
	tagString
)

// RowHash returns the hash of row i of f.
func RowHash(f *frame.Frame, i int) uint64 {
	d := xxhash.New()
	var buf [binary.MaxVarintLen64 + 1]byte
	for _, v := range f.Row(i) {
		switch {
		case v.Missing:
			buf[0] = tagMissing
			d.Write(buf[:1])
		case v.Kind == frame.Numeric:
			x := v.Float
			if x == 0 {
				x = 0 // -0 と +0 を同一視
			}
			buf[0] = tagNumber
			binary.LittleEndian.PutUint64(buf[1:9], math.Float64bits(x))
			d.Write(buf[:9])
		default:
			buf[0] = tagString
			n := binary.PutUvarint(buf[1:], uint64(len(v.Str)))
			d.Write(buf[:1+n])
			d.WriteString(v.Str)
		}
	}
	return d.Sum64()
}

// Hashes returns the hash of every row of f.
func Hashes(f *frame.Frame) []uint64 {
	out := make([]uint64, f.NRows())
	for i := range out {
		out[i] = RowHash(f, i)
	}
	return out
}

// sameRow は値が完全に一致するか確認する (ハッシュ衝突対策)
func sameRow(a, b []frame.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for j := range a {
		x, y := a[j], b[j]
		if x.Missing || y.Missing {
			if x.Missing != y.Missing {
				return false
			}
			continue
		}
		if x.Kind != y.Kind {
			return false
		}
		if x.Kind == frame.Numeric && x.Float != y.Float {
			return false
		}
		if x.Kind == frame.Categorical && x.Str != y.Str {
			return false
		}
	}
	return true
}
