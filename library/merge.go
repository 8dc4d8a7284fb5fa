package library

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/loopgen/file"
	"github.com/jsphweid/loopgen/model"
	"github.com/pkg/errors"
)

// MergeDir merges every <genre>-<style>.json file in dir. Each file holds
// {genre: {style: [...]}}. Files with unexpected names or shapes are skipped,
// as are entries whose pattern_id was already merged.
func MergeDir(dir string, logger *slog.Logger) (Raw, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "input directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("input directory %s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, errors.Wrap(err, "list pattern files")
	}

	merged := make(Raw)
	for _, path := range paths {
		name := filepath.Base(path)
		parts := strings.SplitN(strings.TrimSuffix(name, filepath.Ext(name)), "-", 2)
		if len(parts) != 2 {
			logger.Warn("skipping file with unexpected name format", "file", name)
			continue
		}
		genre, style := parts[0], parts[1]

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		var raw Raw
		if err := json.Unmarshal(data, &raw); err != nil {
			logger.Warn("skipping undecodable file", "file", name, "err", err)
			continue
		}
		entries, ok := raw[genre][style]
		if !ok {
			logger.Warn("skipping file with unexpected structure", "file", name, "genre", genre, "style", style)
			continue
		}

		if merged[genre] == nil {
			merged[genre] = make(map[string][]model.PatternEntry)
		}
		existing := make(map[string]bool)
		for _, e := range merged[genre][style] {
			existing[e.ID] = true
		}
		for _, e := range entries {
			if existing[e.ID] {
				logger.Warn("skipping duplicate pattern_id", "file", name, "pattern_id", e.ID)
				continue
			}
			existing[e.ID] = true
			merged[genre][style] = append(merged[genre][style], e)
		}
	}
	return merged, nil
}

// Write stores raw as indented JSON at path.
func Write(path string, raw Raw) error {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode pattern library")
	}
	return file.WriteAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}
