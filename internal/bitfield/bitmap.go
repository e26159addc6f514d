// internal/bitfield/bitmap.go
package bitfield

// Bias separates standard ids (below) from manufacturer ids (at or above)
// in table and procedure numbering.
const Bias = 2048

// Contains reports whether bit id is set in bitmap. Ids at or beyond
// 8*dimBytes are absent by definition and the bitmap is never indexed for
// them; a bitmap shorter than dimBytes is treated the same way.
func Contains(id uint16, dimBytes int, bitmap []byte) bool {
	i, mask, ok := locate(id, dimBytes, bitmap)
	if !ok {
		return false
	}
	return bitmap[i]&mask != 0
}

// SetBit sets bit id and reports whether it was inside the bitmap.
func SetBit(id uint16, dimBytes int, bitmap []byte) bool {
	i, mask, ok := locate(id, dimBytes, bitmap)
	if ok {
		bitmap[i] |= mask
	}
	return ok
}

// ClearBit clears bit id and reports whether it was inside the bitmap.
func ClearBit(id uint16, dimBytes int, bitmap []byte) bool {
	i, mask, ok := locate(id, dimBytes, bitmap)
	if ok {
		bitmap[i] &^= mask
	}
	return ok
}

func locate(id uint16, dimBytes int, bitmap []byte) (int, byte, bool) {
	if dimBytes <= 0 || int(id) >= 8*dimBytes {
		return 0, 0, false
	}
	i := int(id) / 8
	if i >= len(bitmap) {
		return 0, 0, false
	}
	return i, 1 << (id % 8), true
}

// Set pairs a standard-range bitmap with a manufacturer-range one and
// routes ids across them by Bias.
type Set struct {
	Std    []byte
	StdDim int
	Mfg    []byte
	MfgDim int
}

// NewSet allocates zeroed bitmaps of the given byte widths.
func NewSet(stdDim, mfgDim int) Set {
	return Set{
		Std:    make([]byte, stdDim),
		StdDim: stdDim,
		Mfg:    make([]byte, mfgDim),
		MfgDim: mfgDim,
	}
}

func (s Set) route(id uint16) (uint16, int, []byte) {
	if id >= Bias {
		return id - Bias, s.MfgDim, s.Mfg
	}
	return id, s.StdDim, s.Std
}

func (s Set) Contains(id uint16) bool {
	n, dim, bm := s.route(id)
	return Contains(n, dim, bm)
}

func (s Set) SetBit(id uint16) bool {
	n, dim, bm := s.route(id)
	return SetBit(n, dim, bm)
}

func (s Set) ClearBit(id uint16) bool {
	n, dim, bm := s.route(id)
	return ClearBit(n, dim, bm)
}

// IDs lists every id present in the set, standard ids first.
func (s Set) IDs() []uint16 {
	var out []uint16
	for id := 0; id < 8*s.StdDim && id < Bias; id++ {
		if Contains(uint16(id), s.StdDim, s.Std) {
			out = append(out, uint16(id))
		}
	}
	for id := 0; id < 8*s.MfgDim && id+Bias <= 0xFFFF; id++ {
		if Contains(uint16(id), s.MfgDim, s.Mfg) {
			out = append(out, uint16(id+Bias))
		}
	}
	return out
}
