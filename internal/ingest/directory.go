package ingest

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avollmer/invoice-extractor/constants"
	"github.com/avollmer/invoice-extractor/internal/batch"
)

// DirStats aggregates one directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// ScanDirectory walks root recursively and collects PDF candidates for a
// batch, skipping hidden files and directories. Results are sorted by path
// so admission order is deterministic; unreadable entries are counted but do
// not abort the walk.
func ScanDirectory(root string) ([]batch.Document, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var docs []batch.Document
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil // continue walking
		}
		if IsHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !constants.IsAllowedExt(filepath.Ext(path)) {
			stats.Skipped++
			return nil
		}
		info, err := d.Info()
		if err != nil {
			stats.Failed++
			return nil
		}
		stats.Matched++
		docs = append(docs, batch.Document{
			Name: d.Name(),
			Path: path,
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, stats, nil
}
