// Package metadata records and verifies what produced each cached snapshot.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest file kept next to the snapshots.
const FileName = "manifest.yaml"

// Version is written into every manifest.
const Version = "1"

// Metadata verification errors.
var (
	ErrNoEntry      = errors.New("no manifest entry")
	ErrNoHashFound  = errors.New("no hash found in manifest entry")
	ErrHashMismatch = errors.New("hash mismatch")
)

// Entry describes one snapshot file.
type Entry struct {
	File       string    `yaml:"file"`
	Rows       int       `yaml:"rows"`
	Columns    int       `yaml:"columns"`
	Hash       string    `yaml:"sha256"`
	LastModify time.Time `yaml:"built_at"`
	RunID      string    `yaml:"run_id"`
}

// Manifest maps stage names to their snapshot entries.
type Manifest struct {
	Version string           `yaml:"version"`
	Entries map[string]Entry `yaml:"entries"`
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{Version: Version, Entries: map[string]Entry{}}
}

// Load reads a manifest. A missing file yields an empty manifest.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m := New()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if m.Entries == nil {
		m.Entries = map[string]Entry{}
	}

	return m, nil
}

// Save writes the manifest to path.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Stages returns the recorded stage names, sorted.
func (m *Manifest) Stages() []string {
	names := make([]string, 0, len(m.Entries))
	for name := range m.Entries {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// CalculateHash computes the SHA-256 of a file.
func CalculateHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Sign hashes the snapshot at path and records it under stage.
func (m *Manifest) Sign(stage, path string, rows, cols int, runID string) (Entry, error) {
	hash, err := CalculateHash(path)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		File:       filepath.Base(path),
		Rows:       rows,
		Columns:    cols,
		Hash:       hash,
		LastModify: time.Now().UTC().Truncate(time.Second),
		RunID:      runID,
	}
	m.Entries[stage] = e

	return e, nil
}

// Forget drops the entry for stage.
func (m *Manifest) Forget(stage string) {
	delete(m.Entries, stage)
}

// Verify checks that the file at path still matches the hash recorded for stage.
func (m *Manifest) Verify(stage, path string) (bool, error) {
	e, ok := m.Entries[stage]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNoEntry, stage)
	}

	if e.Hash == "" {
		return false, ErrNoHashFound
	}

	calculated, err := CalculateHash(path)
	if err != nil {
		return false, err
	}

	if calculated != e.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, e.Hash, calculated)
	}

	return true, nil
}
