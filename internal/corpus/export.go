// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

// Export is the file format written by ExportYAML and ExportJSON and read
// back by ImportFile.
type Export struct {
	RunID        string                    `json:"run_id" yaml:"run_id"`
	ExportedAt   time.Time                 `json:"exported_at" yaml:"exported_at"`
	Publications []types.PublicationRecord `json:"publications" yaml:"publications"`
}

// ExportYAML writes the corpus to dir/index/export.yaml and returns the path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	exp, err := s.export(ctx)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(exp)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, indexDir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the corpus to dir/index/export.json and returns the path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	exp, err := s.export(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dir, indexDir, "export.json")
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) export(ctx context.Context) (Export, error) {
	recs, err := s.Load(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	return Export{
		RunID:        uuid.NewString(),
		ExportedAt:   time.Now().UTC().Truncate(time.Second),
		Publications: recs,
	}, nil
}
