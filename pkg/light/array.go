package light

import "fmt"

// Volume is the number of voxels in one 16x16x16 section.
const Volume = 16 * 16 * 16

// Array holds the packed light of every voxel of one section. Index layout is
// y<<8 | z<<4 | x.
type Array [Volume]Value

// Index returns the array index of the in-section position (x, y, z). Each
// coordinate must lie in [0,16).
func Index(x, y, z int) int {
	if x < 0 || x > 15 || y < 0 || y > 15 || z < 0 || z > 15 {
		panic(fmt.Sprintf("light: in-section position (%d,%d,%d) out of range", x, y, z))
	}
	return y<<8 | z<<4 | x
}

// Get returns the value at index i.
func (a *Array) Get(i int) Value { return a[i] }

// Set stores v at index i.
func (a *Array) Set(i int, v Value) { a[i] = v }

// Fill sets every voxel to v.
func (a *Array) Fill(v Value) {
	for i := range a {
		a[i] = v
	}
}

// Clone returns a copy of a. Cloning nil yields nil.
func (a *Array) Clone() *Array {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// Equal reports whether both arrays hold identical values. Two nil arrays are
// equal; a nil and a non-nil array are not.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
