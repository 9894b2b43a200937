// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value. Keys missing from the directory fall back to
// environment variables, which may themselves come from a .env file.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Key file names.
const (
	HuggingFaceAPIKey = "huggingface-api-key"
	CohereAPIKey      = "cohere-api-key"
	DatabaseURL       = "database-url"
	NCBIAPIKey        = "ncbi-api-key"
)

// envFallback maps key names to the environment variables consulted when
// the key file is absent.
var envFallback = map[string]string{
	HuggingFaceAPIKey: "HUGGINGFACE_API_KEY",
	CohereAPIKey:      "COHERE_API_KEY",
	DatabaseURL:       "DATABASE_URL",
	NCBIAPIKey:        "NCBI_API_KEY",
}

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all files in dir and returns their trimmed contents keyed by
// filename. A missing directory is not an error. Unreadable files are
// logged and skipped.
func Load(dir string, log *zap.SugaredLogger) (Secrets, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warnw("could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Get returns the value of key, falling back to its environment variable.
func (s Secrets) Get(key string) string {
	if v := s[key]; v != "" {
		return v
	}
	if env, ok := envFallback[key]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}
