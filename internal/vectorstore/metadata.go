package vectorstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MetadataFileName is the sidecar file describing the index contents
const MetadataFileName = "index.meta.json"

// Metadata records which embedding configuration produced the index.
// The pipeline refuses to mix vectors from different models, so this is
// checked on startup before reusing an existing index.
type Metadata struct {
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Compatible reports whether an index built with m can be reused for the
// given embedding configuration
func (m Metadata) Compatible(provider, model string, dimensions int) bool {
	return m.Provider == provider && m.Model == model && m.Dimensions == dimensions
}

// LoadMetadata reads the metadata sidecar from dir. A missing file is not
// an error: it returns ok=false for a fresh index.
func LoadMetadata(dir string) (Metadata, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
	if errors.Is(err, os.ErrNotExist) {
		return Metadata{}, false, nil
	}
	if err != nil {
		return Metadata{}, false, fmt.Errorf("failed to read index metadata: %w", err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, false, fmt.Errorf("failed to parse index metadata: %w", err)
	}
	return m, true, nil
}

// SaveMetadata atomically writes the metadata sidecar into dir
func SaveMetadata(dir string, m Metadata) error {
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now()
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index metadata: %w", err)
	}

	path := filepath.Join(dir, MetadataFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index metadata: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace index metadata: %w", err)
	}
	return nil
}
