package anvil

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestRegionOf(t *testing.T) {
	tests := []struct {
		cx, cz, rx, rz int
	}{
		{0, 0, 0, 0},
		{31, 31, 0, 0},
		{32, -1, 1, -1},
		{-33, 64, -2, 2},
	}
	for _, tt := range tests {
		if rx, rz := RegionOf(tt.cx, tt.cz); rx != tt.rx || rz != tt.rz {
			t.Errorf("RegionOf(%d,%d) = %d,%d, want %d,%d", tt.cx, tt.cz, rx, rz, tt.rx, tt.rz)
		}
	}
}

func TestSaveRegionLayout(t *testing.T) {
	dir := t.TempDir()
	chunks := map[ChunkPos][]byte{
		{X: 0, Z: 0}: bytes.Repeat([]byte{10}, 100),
	}
	if err := SaveRegion(dir, 0, 0, chunks); err != nil {
		t.Fatalf("SaveRegion failed: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "r.0.0.mca"))
	if err != nil {
		t.Fatalf("open region file: %v", err)
	}
	defer f.Close()

	var locations [sectorSize]byte
	if _, err := io.ReadFull(f, locations[:]); err != nil {
		t.Fatalf("read locations: %v", err)
	}
	entry := binary.BigEndian.Uint32(locations[0:4])
	if offset := entry >> 8; offset != headerSectors {
		t.Fatalf("expected offset %d, got %d", headerSectors, offset)
	}
	if entry&0xFF != 1 {
		t.Fatalf("expected 1 sector, got %d", entry&0xFF)
	}

	if _, err := f.Seek(headerSectors*sectorSize, io.SeekStart); err != nil {
		t.Fatalf("seek to chunk data: %v", err)
	}
	var header [5]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		t.Fatalf("read chunk header: %v", err)
	}
	if header[4] != compressionZlib {
		t.Fatalf("expected zlib compression (2), got %d", header[4])
	}
}

func TestRegionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	chunks := map[ChunkPos][]byte{
		{X: -32, Z: -1}: []byte("first"),
		{X: -1, Z: -32}: bytes.Repeat([]byte{0xAB}, 3*sectorSize),
		{X: -17, Z: -9}: {},
	}
	if err := SaveRegion(dir, -1, -1, chunks); err != nil {
		t.Fatalf("SaveRegion failed: %v", err)
	}

	got, err := ReadRegion(filepath.Join(dir, FileName(-1, -1)), -1, -1)
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if len(got) != len(chunks) {
		t.Fatalf("ReadRegion returned %d chunks, want %d", len(got), len(chunks))
	}
	for pos, want := range chunks {
		if !bytes.Equal(got[pos], want) {
			t.Errorf("chunk %v = %d bytes, want %d", pos, len(got[pos]), len(want))
		}
	}
	if _, err := os.Stat(filepath.Join(dir, FileName(-1, -1)+".tmp")); !os.IsNotExist(err) {
		t.Error("temporary region file left behind")
	}
}

func TestSaveRegionRejectsForeignChunk(t *testing.T) {
	err := SaveRegion(t.TempDir(), 0, 0, map[ChunkPos][]byte{{X: 32, Z: 0}: nil})
	if err == nil {
		t.Error("SaveRegion accepted a chunk from another region")
	}
}

func TestReadRegionTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(0, 0))
	if err := os.WriteFile(path, make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadRegion(path, 0, 0); err == nil {
		t.Error("ReadRegion accepted a truncated file")
	}
}
