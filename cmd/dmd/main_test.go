package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	blocks := `[
  {"id":0,"name":"air","displayName":"Air","boundingBox":"empty","transparent":true,"emitLight":0,"filterLight":0},
  {"id":1,"name":"stone","displayName":"Stone","boundingBox":"block","transparent":false,"emitLight":0,"filterLight":15}
]`
	if err := os.WriteFile(filepath.Join(dir, "blocks.json"), []byte(blocks), 0o644); err != nil {
		t.Fatal(err)
	}
	n, err := check(dir)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if n != 2 {
		t.Errorf("check = %d blocks, want 2", n)
	}

	if _, err := check(t.TempDir()); err == nil {
		t.Error("check accepted a directory without blocks.json")
	}
}
