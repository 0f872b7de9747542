package nbt

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxDepth bounds compound and list nesting.
const maxDepth = 64

// ErrDepth is returned for documents nested deeper than maxDepth.
var ErrDepth = errors.New("nbt: nesting too deep")

// Compound is a decoded compound tag. Values are byte, int16, int32, int64,
// []byte, string, []int32, []any (lists) or Compound.
type Compound map[string]any

// Byte returns the byte tag name.
func (c Compound) Byte(name string) (byte, bool) {
	v, ok := c[name].(byte)
	return v, ok
}

// Int returns the int tag name.
func (c Compound) Int(name string) (int32, bool) {
	v, ok := c[name].(int32)
	return v, ok
}

// ByteArray returns the byte array tag name.
func (c Compound) ByteArray(name string) ([]byte, bool) {
	v, ok := c[name].([]byte)
	return v, ok
}

// IntArray returns the int array tag name.
func (c Compound) IntArray(name string) ([]int32, bool) {
	v, ok := c[name].([]int32)
	return v, ok
}

// Compound returns the nested compound tag name.
func (c Compound) Compound(name string) (Compound, bool) {
	v, ok := c[name].(Compound)
	return v, ok
}

// List returns the list tag name.
func (c Compound) List(name string) ([]any, bool) {
	v, ok := c[name].([]any)
	return v, ok
}

// Reader decodes big-endian NBT written by Writer.
type Reader struct {
	r *bufio.Reader
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Decode reads one named root compound.
func Decode(r io.Reader) (string, Compound, error) {
	return NewReader(r).ReadRoot()
}

// ReadRoot reads one named root compound.
func (r *Reader) ReadRoot() (string, Compound, error) {
	t, err := r.r.ReadByte()
	if err != nil {
		return "", nil, fmt.Errorf("read root tag: %w", err)
	}
	if Tag(t) != TagCompound {
		return "", nil, fmt.Errorf("root tag %d is not a compound", t)
	}
	name, err := r.readString()
	if err != nil {
		return "", nil, fmt.Errorf("read root name: %w", err)
	}
	c, err := r.compound(0)
	if err != nil {
		return "", nil, err
	}
	return name, c, nil
}

func (r *Reader) compound(depth int) (Compound, error) {
	if depth > maxDepth {
		return nil, ErrDepth
	}
	c := make(Compound)
	for {
		t, err := r.r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read tag: %w", err)
		}
		if Tag(t) == TagEnd {
			return c, nil
		}
		name, err := r.readString()
		if err != nil {
			return nil, fmt.Errorf("read tag name: %w", err)
		}
		v, err := r.payload(Tag(t), depth+1)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", name, err)
		}
		c[name] = v
	}
}

func (r *Reader) payload(t Tag, depth int) (any, error) {
	switch t {
	case TagByte:
		return r.r.ReadByte()
	case TagShort:
		var v int16
		err := binary.Read(r.r, binary.BigEndian, &v)
		return v, err
	case TagInt:
		return r.readInt32()
	case TagLong:
		var v int64
		err := binary.Read(r.r, binary.BigEndian, &v)
		return v, err
	case TagByteArray:
		n, err := r.length()
		if err != nil {
			return nil, err
		}
		b := make([]byte, n)
		_, err = io.ReadFull(r.r, b)
		return b, err
	case TagString:
		return r.readString()
	case TagIntArray:
		n, err := r.length()
		if err != nil {
			return nil, err
		}
		v := make([]int32, n)
		err = binary.Read(r.r, binary.BigEndian, v)
		return v, err
	case TagList:
		return r.list(depth)
	case TagCompound:
		return r.compound(depth)
	default:
		return nil, fmt.Errorf("unsupported tag type %d", t)
	}
}

func (r *Reader) list(depth int) ([]any, error) {
	if depth > maxDepth {
		return nil, ErrDepth
	}
	elem, err := r.r.ReadByte()
	if err != nil {
		return nil, err
	}
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, min(n, 1024))
	for i := 0; i < n; i++ {
		v, err := r.payload(Tag(elem), depth+1)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *Reader) readInt32() (int32, error) {
	var v int32
	err := binary.Read(r.r, binary.BigEndian, &v)
	return v, err
}

func (r *Reader) length() (int, error) {
	n, err := r.readInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative length %d", n)
	}
	return int(n), nil
}

func (r *Reader) readString() (string, error) {
	var n uint16
	if err := binary.Read(r.r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
