package nbt

import (
	"encoding/binary"
	"io"
)

// Tag is an NBT tag type ID.
type Tag byte

// NBT tag type IDs.
const (
	TagEnd       Tag = 0
	TagByte      Tag = 1
	TagShort     Tag = 2
	TagInt       Tag = 3
	TagLong      Tag = 4
	TagByteArray Tag = 7
	TagString    Tag = 8
	TagList      Tag = 9
	TagCompound  Tag = 10
	TagIntArray  Tag = 11
)

// Writer writes big-endian NBT to an io.Writer.
// All write methods accumulate errors internally; call Err() after writing
// to check for failures.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter creates a new NBT Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered during writing.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(data []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(data)
}

func (w *Writer) putByte(v byte) {
	w.write([]byte{v})
}

func (w *Writer) putUint16(v uint16) {
	w.write(binary.BigEndian.AppendUint16(nil, v))
}

func (w *Writer) putInt32(v int32) {
	w.write(binary.BigEndian.AppendUint32(nil, uint32(v)))
}

func (w *Writer) header(t Tag, name string) {
	w.putByte(byte(t))
	w.putUint16(uint16(len(name)))
	w.write([]byte(name))
}

// BeginCompound opens a named compound. Compound elements of a list have
// no header: write their fields directly and close them with EndCompound.
func (w *Writer) BeginCompound(name string) {
	w.header(TagCompound, name)
}

// EndCompound closes the innermost compound.
func (w *Writer) EndCompound() {
	w.putByte(byte(TagEnd))
}

// WriteTagByte writes a named byte tag.
func (w *Writer) WriteTagByte(name string, v byte) {
	w.header(TagByte, name)
	w.putByte(v)
}

// WriteShort writes a named short tag.
func (w *Writer) WriteShort(name string, v int16) {
	w.header(TagShort, name)
	w.putUint16(uint16(v))
}

// WriteInt writes a named int tag.
func (w *Writer) WriteInt(name string, v int32) {
	w.header(TagInt, name)
	w.putInt32(v)
}

// WriteLong writes a named long tag.
func (w *Writer) WriteLong(name string, v int64) {
	w.header(TagLong, name)
	w.write(binary.BigEndian.AppendUint64(nil, uint64(v)))
}

// WriteByteArray writes a named byte array tag.
func (w *Writer) WriteByteArray(name string, v []byte) {
	w.header(TagByteArray, name)
	w.putInt32(int32(len(v)))
	w.write(v)
}

// WriteString writes a named string tag.
func (w *Writer) WriteString(name string, v string) {
	w.header(TagString, name)
	w.putUint16(uint16(len(v)))
	w.write([]byte(v))
}

// WriteIntArray writes a named int array tag.
func (w *Writer) WriteIntArray(name string, v []int32) {
	w.header(TagIntArray, name)
	w.putInt32(int32(len(v)))
	for _, val := range v {
		w.putInt32(val)
	}
}

// BeginList writes a named list header. The count elements of type elem
// follow without headers; compound elements end with EndCompound.
func (w *Writer) BeginList(name string, elem Tag, count int) {
	w.header(TagList, name)
	w.putByte(byte(elem))
	w.putInt32(int32(count))
}
