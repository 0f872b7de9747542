package gamedata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/blocks.schema.json
var blocksSchemaJSON string

var (
	blocksSchemaOnce sync.Once
	blocksSchema     *jsonschema.Schema
	blocksSchemaErr  error
)

func compiledBlocksSchema() (*jsonschema.Schema, error) {
	blocksSchemaOnce.Do(func() {
		blocksSchema, blocksSchemaErr = jsonschema.CompileString("blocks.schema.json", blocksSchemaJSON)
	})
	return blocksSchema, blocksSchemaErr
}

// rawBlock mirrors the fields of a minecraft-data blocks.json entry that the
// light engine needs.
type rawBlock struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	BoundingBox string `json:"boundingBox"`
	Material    string `json:"material"`
	Transparent bool   `json:"transparent"`
	EmitLight   int    `json:"emitLight"`
	FilterLight int    `json:"filterLight"`
}

// LoadBlocksJSON reads a minecraft-data blocks.json document, validates it
// against the embedded schema and builds a registry from it.
func LoadBlocksJSON(r io.Reader) (*Blocks, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read blocks: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse blocks: %w", err)
	}
	schema, err := compiledBlocksSchema()
	if err != nil {
		return nil, fmt.Errorf("compile blocks schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate blocks: %w", err)
	}

	var raw []rawBlock
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}

	blocks := make([]Block, 0, len(raw))
	for _, rb := range raw {
		blocks = append(blocks, Block{
			ID:          rb.ID,
			Name:        rb.Name,
			DisplayName: rb.DisplayName,
			BoundingBox: rb.BoundingBox,
			Material:    rb.Material,
			Transparent: rb.Transparent,
			EmitLight:   rb.EmitLight,
			FilterLight: rb.FilterLight,
			Light:       DeriveLight(rb.EmitLight, rb.FilterLight),
		})
	}
	return NewBlocks(blocks)
}
