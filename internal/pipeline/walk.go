package pipeline

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultWalkConcurrency bounds how many files IndexDir reads at once.
const DefaultWalkConcurrency = 4

// indexableExtensions are the plain-text formats IndexDir picks up.
var indexableExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true,
	".csv": true, ".json": true, ".yaml": true, ".yml": true,
	".log": true, ".html": true, ".xml": true,
}

// IndexDir walks root and indexes every supported file, reading files
// concurrently. Per-file failures are logged and counted, not fatal.
func (p *Pipeline) IndexDir(ctx context.Context, root string) (*IndexReport, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if indexableExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := &IndexReport{Path: root}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultWalkConcurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			report, err := p.IndexFile(gctx, path)
			if err != nil {
				log.Printf("pipeline: index %s: %v", path, err)
				return nil
			}

			mu.Lock()
			total.Chunks += report.Chunks
			total.CacheHits += report.CacheHits
			total.Enqueued += report.Enqueued
			total.Truncated += report.Truncated
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, nil
}

// sanitizeCategory makes an LLM-suggested label safe to use as a single
// directory name.
func sanitizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	category = strings.Trim(category, `"'.`)

	var b strings.Builder
	for _, r := range category {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "misc"
	}
	return out
}
