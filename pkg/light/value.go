package light

import "fmt"

// Max is the highest level either light channel can hold.
const Max = 15

// Channel selects one of the two independent light channels of a voxel.
type Channel uint8

const (
	Block Channel = iota
	Sky
)

// Channels lists both channels in processing order.
var Channels = [...]Channel{Block, Sky}

func (c Channel) String() string {
	switch c {
	case Block:
		return "block"
	case Sky:
		return "sky"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

// Value is the packed light of one voxel: high nibble sky light, low nibble
// block light (0xSB).
type Value uint8

// New packs the two channels into a Value. Levels outside [0,15] are a
// programming error and panic.
func New(block, sky int) Value {
	checkLevel(block)
	checkLevel(sky)
	return Value(sky<<4 | block)
}

// Block returns the block light level.
func (v Value) Block() int { return int(v & 0x0F) }

// Sky returns the sky light level.
func (v Value) Sky() int { return int(v >> 4) }

// Get returns the level of channel c.
func (v Value) Get(c Channel) int {
	if c == Sky {
		return v.Sky()
	}
	return v.Block()
}

// With returns v with channel c replaced by level.
func (v Value) With(c Channel, level int) Value {
	checkLevel(level)
	if c == Sky {
		return v&0x0F | Value(level<<4)
	}
	return v&0xF0 | Value(level)
}

func (v Value) String() string {
	return fmt.Sprintf("0x%02X", uint8(v))
}

func checkLevel(level int) {
	if level < 0 || level > Max {
		panic(fmt.Sprintf("light: illegal light level %d", level))
	}
}
