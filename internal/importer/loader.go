// Package importer reads passages from text and markdown files.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/iishyfishyy/trigramdb/internal/logger"
)

// Loader handles loading passage files
type Loader struct {
	parser *Parser
	logger *log.Logger
}

// NewLoader creates a new loader
func NewLoader() *Loader {
	return NewLoaderWithLogger(logger.New("importer"))
}

// NewLoaderWithLogger creates a new loader that logs to l
func NewLoaderWithLogger(l *log.Logger) *Loader {
	return &Loader{
		parser: NewParser(),
		logger: l,
	}
}

// Load reads passages from path. A directory yields one passage per .md or
// .txt file; a file with a .md extension yields one passage; any other file
// yields one passage per non-empty line.
func (l *Loader) Load(path string) ([]Passage, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.IsDir() {
		return l.LoadDir(path)
	}

	if strings.EqualFold(filepath.Ext(path), ".md") {
		passage, skipped, err := l.parser.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if skipped {
			return []Passage{}, nil
		}
		return []Passage{*passage}, nil
	}

	return l.LoadLines(path)
}

// LoadLines reads one passage per non-empty line of path
func (l *Loader) LoadLines(path string) ([]Passage, error) {
	passages, err := l.parser.ParseLines(path)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded lines", "path", path, "passages", len(passages))
	return passages, nil
}

// LoadDir loads all .md and .txt files in dir, one passage per file. Files
// that fail to parse are skipped with a warning.
func (l *Loader) LoadDir(dir string) ([]Passage, error) {
	// Check if directory exists
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []Passage{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.md", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to glob files: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	l.logger.Debug("found passage files", "dir", dir, "count", len(files))

	passages := []Passage{}
	for _, file := range files {
		basename := filepath.Base(file)
		// Skip README and files starting with _ (convention for meta files)
		if strings.EqualFold(basename, "README.md") || strings.HasPrefix(basename, "_") {
			l.logger.Debug("skipping meta file", "file", basename)
			continue
		}

		passage, skipped, err := l.parser.Parse(file)
		if err != nil {
			l.logger.Warn("skipping unreadable file", "file", basename, "err", err)
			continue
		}
		if skipped {
			l.logger.Debug("skipping file marked skip", "file", basename)
			continue
		}
		passages = append(passages, *passage)
	}

	l.logger.Debug("loaded passages", "dir", dir, "count", len(passages))
	return passages, nil
}
