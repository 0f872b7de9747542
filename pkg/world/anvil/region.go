package anvil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zlib"
)

const (
	sectorSize      = 4096
	headerSectors   = 2 // location table + timestamp table
	compressionZlib = 2
	regionChunks    = 32
)

// ChunkPos identifies a chunk column inside the region grid.
type ChunkPos struct {
	X, Z int
}

// RegionOf returns the region coordinates holding chunk (cx, cz).
func RegionOf(cx, cz int) (rx, rz int) {
	return cx >> 5, cz >> 5
}

// FileName returns the region file name of region (rx, rz).
func FileName(rx, rz int) string {
	return fmt.Sprintf("r.%d.%d.mca", rx, rz)
}

func index(pos ChunkPos) int {
	return (pos.X & (regionChunks - 1)) + (pos.Z&(regionChunks-1))*regionChunks
}

// SaveRegion writes chunks to the .mca file of region (rx, rz) in dir.
// chunks maps chunk positions to their uncompressed NBT data; every position
// must fall inside the region.
func SaveRegion(dir string, rx, rz int, chunks map[ChunkPos][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create region dir: %w", err)
	}

	positions := make([]ChunkPos, 0, len(chunks))
	for pos := range chunks {
		if x, z := RegionOf(pos.X, pos.Z); x != rx || z != rz {
			return fmt.Errorf("chunk (%d,%d) is outside region (%d,%d)", pos.X, pos.Z, rx, rz)
		}
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return index(positions[i]) < index(positions[j]) })

	locations := make([]byte, sectorSize)
	timestamps := make([]byte, sectorSize)
	now := uint32(time.Now().Unix())

	// Each chunk: 4 bytes length + 1 byte compression type + compressed data,
	// padded to a sector boundary.
	var data bytes.Buffer
	sector := uint32(headerSectors)
	for _, pos := range positions {
		var cbuf bytes.Buffer
		zw := zlib.NewWriter(&cbuf)
		if _, err := zw.Write(chunks[pos]); err != nil {
			return fmt.Errorf("compress chunk (%d,%d): %w", pos.X, pos.Z, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close zlib writer: %w", err)
		}

		payload := uint32(cbuf.Len()) + 1
		total := 4 + payload
		count := (total + sectorSize - 1) / sectorSize
		if count > 0xFF {
			return fmt.Errorf("chunk (%d,%d) needs %d sectors", pos.X, pos.Z, count)
		}

		off := index(pos) * 4
		binary.BigEndian.PutUint32(locations[off:off+4], sector<<8|count)
		binary.BigEndian.PutUint32(timestamps[off:off+4], now)

		var header [5]byte
		binary.BigEndian.PutUint32(header[0:4], payload)
		header[4] = compressionZlib
		data.Write(header[:])
		data.Write(cbuf.Bytes())
		data.Write(make([]byte, int(count)*sectorSize-int(total)))

		sector += count
	}

	path := filepath.Join(dir, FileName(rx, rz))
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp region file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	for _, part := range [][]byte{locations, timestamps, data.Bytes()} {
		if _, err := f.Write(part); err != nil {
			return fmt.Errorf("write region file: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close region file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename region file: %w", err)
	}
	return nil
}

// ReadRegion reads every chunk of the region file at path, keyed by global
// chunk position, as uncompressed NBT.
func ReadRegion(path string, rx, rz int) (map[ChunkPos][]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region file: %w", err)
	}
	if len(raw) < headerSectors*sectorSize {
		return nil, fmt.Errorf("region file %s: truncated header", path)
	}

	out := make(map[ChunkPos][]byte)
	for i := 0; i < regionChunks*regionChunks; i++ {
		loc := binary.BigEndian.Uint32(raw[i*4 : i*4+4])
		if loc == 0 {
			continue
		}
		pos := ChunkPos{X: rx*regionChunks + i%regionChunks, Z: rz*regionChunks + i/regionChunks}

		start := int(loc>>8) * sectorSize
		if start+5 > len(raw) {
			return nil, fmt.Errorf("chunk (%d,%d): offset past end of file", pos.X, pos.Z)
		}
		payload := int(binary.BigEndian.Uint32(raw[start : start+4]))
		if payload < 1 || start+4+payload > len(raw) {
			return nil, fmt.Errorf("chunk (%d,%d): bad length %d", pos.X, pos.Z, payload)
		}
		if c := raw[start+4]; c != compressionZlib {
			return nil, fmt.Errorf("chunk (%d,%d): unsupported compression %d", pos.X, pos.Z, c)
		}

		zr, err := zlib.NewReader(bytes.NewReader(raw[start+5 : start+4+payload]))
		if err != nil {
			return nil, fmt.Errorf("chunk (%d,%d): %w", pos.X, pos.Z, err)
		}
		nbt, err := io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return nil, fmt.Errorf("decompress chunk (%d,%d): %w", pos.X, pos.Z, err)
		}
		out[pos] = nbt
	}
	return out, nil
}
