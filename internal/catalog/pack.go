package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/miradorstack/aura/internal/models"
)

// PackFile is the YAML root structure of a scenario pack.
type PackFile struct {
	Scenarios []models.Scenario `yaml:"scenarios"`
}

// ReadPack parses a single scenario pack from disk.
func ReadPack(path string) ([]models.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario pack %s: %w", path, err)
	}
	var pack PackFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse scenario pack %s: %w", path, err)
	}
	return pack.Scenarios, nil
}

// Load builds a catalog from the built-in scenarios plus every pack matched by
// the glob patterns. Pack entries replace built-ins that share their ID.
func Load(patterns []string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	files, err := matchPacks(patterns)
	if err != nil {
		return nil, err
	}

	merged := Builtin()
	index := make(map[models.ScenarioID]int, len(merged))
	for i, s := range merged {
		index[s.ID] = i
	}

	for _, file := range files {
		scenarios, err := ReadPack(file)
		if err != nil {
			return nil, err
		}
		for _, s := range scenarios {
			if i, ok := index[s.ID]; ok {
				logger.Debug("scenario pack overrides entry", slog.String("scenario", string(s.ID)), slog.String("file", file))
				merged[i] = s
				continue
			}
			index[s.ID] = len(merged)
			merged = append(merged, s)
		}
		logger.Debug("scenario pack loaded", slog.String("file", file), slog.Int("scenarios", len(scenarios)))
	}

	c, err := New(merged...)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return c, nil
}

func matchPacks(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("scenario pack pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}
