// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package run persists a fetch run to a YAML record so results can be
// inspected or reloaded without re-querying the APIs.
package run

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/giangpth/Alkaptonuria/pkg/types"
)

// Record is the on-disk representation of one fetch run.
type Record struct {
	Query    string       `yaml:"query"`
	Concepts []string     `yaml:"concepts,omitempty"`
	Settings Settings     `yaml:"settings"`
	Summary  Summary      `yaml:"summary"`
	PMIDs    []types.PMID `yaml:"pmids"`
}

// Settings stores the configuration that produced the results.
type Settings struct {
	ChunkSize int `yaml:"chunk_size"`
	PageSize  int `yaml:"page_size,omitempty"`
}

// Summary stores result statistics and a timestamp.
type Summary struct {
	Collected int       `yaml:"collected"`
	Kept      int       `yaml:"kept"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteRecord saves a fetch run to path.
func WriteRecord(path string, rec Record) error {
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("marshalling run record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run record %s: %w", path, err)
	}
	return nil
}

// ReadRecord loads a previously saved fetch run from path.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("reading run record %s: %w", path, err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parsing run record %s: %w", path, err)
	}
	return rec, nil
}
