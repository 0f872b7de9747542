package storage

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/OCharnyshevich/voxel-light/internal/config"
	"github.com/OCharnyshevich/voxel-light/internal/world/codec"
	"github.com/OCharnyshevich/voxel-light/pkg/world/anvil"
)

// snapshotMagic starts every decompressed snapshot stream.
var snapshotMagic = [4]byte{'V', 'L', 'S', '1'}

// ErrBadSnapshot is returned for snapshot files that are not in the
// expected format.
var ErrBadSnapshot = errors.New("storage: malformed snapshot")

// maxRecord bounds one encoded chunk inside a snapshot.
const maxRecord = 64 << 20

// Storage handles file-based persistence for config, light snapshots and
// region exports.
type Storage struct {
	dir string
	log *slog.Logger
}

// New creates a new Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "snapshots"),
		filepath.Join(dir, "region"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &Storage{dir: dir, log: log}, nil
}

// Dir returns the storage root.
func (s *Storage) Dir() string { return s.dir }

// LoadConfig reads config.json into cfg. If the file does not exist, cfg is unchanged.
func (s *Storage) LoadConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	s.log.Info("loaded config from file", "path", path)
	return nil
}

// SaveConfig writes cfg to config.json atomically.
func (s *Storage) SaveConfig(cfg *config.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return atomicWrite(filepath.Join(s.dir, "config.json"), append(data, '\n'))
}

func (s *Storage) snapshotPath(name string) string {
	return filepath.Join(s.dir, "snapshots", name+".lsnap")
}

// SaveSnapshot writes the light of chunks to snapshots/<name>.lsnap. The file
// is a zstd stream of a magic header, a chunk count, and one length-prefixed
// NBT chunk record per chunk in position order.
func (s *Storage) SaveSnapshot(name string, chunks []codec.ChunkLight) error {
	sorted := append([]codec.ChunkLight(nil), chunks...)
	sortChunks(sorted)

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	write := func(v any) {
		if err == nil {
			err = binary.Write(zw, binary.BigEndian, v)
		}
	}
	write(snapshotMagic)
	write(uint32(len(sorted)))
	for _, cl := range sorted {
		rec, encErr := codec.EncodeChunk(cl)
		if encErr != nil {
			zw.Close()
			return encErr
		}
		write(uint32(len(rec)))
		if err == nil {
			_, err = zw.Write(rec)
		}
	}
	if err != nil {
		zw.Close()
		return fmt.Errorf("write snapshot %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zstd writer: %w", err)
	}

	if err := atomicWrite(s.snapshotPath(name), buf.Bytes()); err != nil {
		return err
	}
	s.log.Info("saved light snapshot", "name", name, "chunks", len(sorted), "bytes", buf.Len())
	return nil
}

// LoadSnapshot reads snapshots/<name>.lsnap. It returns nil, nil if the
// snapshot does not exist.
func (s *Storage) LoadSnapshot(name string) ([]codec.ChunkLight, error) {
	f, err := os.Open(s.snapshotPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open snapshot %s: %w", name, err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()
	r := bufio.NewReader(zr)

	var magic [4]byte
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil || magic != snapshotMagic {
		return nil, fmt.Errorf("snapshot %s: %w", name, ErrBadSnapshot)
	}
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, ErrBadSnapshot)
	}

	out := make([]codec.ChunkLight, 0, min(count, 1024))
	for i := uint32(0); i < count; i++ {
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, fmt.Errorf("snapshot %s record %d: %w", name, i, ErrBadSnapshot)
		}
		if n > maxRecord {
			return nil, fmt.Errorf("snapshot %s record %d of %d bytes: %w", name, i, n, ErrBadSnapshot)
		}
		rec := make([]byte, n)
		if _, err := io.ReadFull(r, rec); err != nil {
			return nil, fmt.Errorf("snapshot %s record %d: %w", name, i, ErrBadSnapshot)
		}
		cl, err := codec.DecodeChunk(rec)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s record %d: %w", name, i, err)
		}
		out = append(out, cl)
	}
	return out, nil
}

// ExportRegions writes chunks as region files under region/, one file per
// 32x32 chunk region. It returns the number of region files written.
func (s *Storage) ExportRegions(chunks []codec.ChunkLight) (int, error) {
	type regionPos struct{ x, z int }
	regions := make(map[regionPos]map[anvil.ChunkPos][]byte)
	for _, cl := range chunks {
		rec, err := codec.EncodeChunk(cl)
		if err != nil {
			return 0, err
		}
		rx, rz := anvil.RegionOf(cl.Pos.X, cl.Pos.Z)
		key := regionPos{rx, rz}
		if regions[key] == nil {
			regions[key] = make(map[anvil.ChunkPos][]byte)
		}
		regions[key][anvil.ChunkPos{X: cl.Pos.X, Z: cl.Pos.Z}] = rec
	}

	dir := filepath.Join(s.dir, "region")
	for key, data := range regions {
		if err := anvil.SaveRegion(dir, key.x, key.z, data); err != nil {
			return 0, fmt.Errorf("export region (%d,%d): %w", key.x, key.z, err)
		}
	}
	s.log.Info("exported light regions", "regions", len(regions), "chunks", len(chunks))
	return len(regions), nil
}

// ImportRegions reads back every chunk of the region files under region/,
// in position order.
func (s *Storage) ImportRegions() ([]codec.ChunkLight, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "region", "r.*.mca"))
	if err != nil {
		return nil, fmt.Errorf("list region files: %w", err)
	}
	var out []codec.ChunkLight
	for _, path := range paths {
		var rx, rz int
		if _, err := fmt.Sscanf(filepath.Base(path), "r.%d.%d.mca", &rx, &rz); err != nil {
			s.log.Warn("skipping region file", "path", path, "error", err)
			continue
		}
		data, err := anvil.ReadRegion(path, rx, rz)
		if err != nil {
			return nil, err
		}
		for pos, rec := range data {
			cl, err := codec.DecodeChunk(rec)
			if err != nil {
				return nil, fmt.Errorf("region (%d,%d) chunk (%d,%d): %w", rx, rz, pos.X, pos.Z, err)
			}
			out = append(out, cl)
		}
	}
	sortChunks(out)
	return out, nil
}

func sortChunks(chunks []codec.ChunkLight) {
	sort.Slice(chunks, func(i, j int) bool {
		a, b := chunks[i].Pos, chunks[j].Pos
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
}

// atomicWrite writes data to path using a temp file + rename.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
