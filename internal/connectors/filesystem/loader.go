// Package filesystem loads plain-text documents from a local directory
// and watches that directory for changes.
package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
	"github.com/custodia-labs/naiverag/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// TextExtension is the only file extension the loader reads.
const TextExtension = ".txt"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads the .txt files of a single directory.
// Subdirectories are not traversed.
type Loader struct {
	skipInvalid bool
}

// Option configures the loader.
type Option func(*Loader)

// WithSkipInvalid makes the loader log and skip files that are not
// valid UTF-8 instead of failing.
func WithSkipInvalid(skip bool) Option {
	return func(l *Loader) {
		l.skipInvalid = skip
	}
}

// New creates a new filesystem loader.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the documents of dir sorted by file name, with Index
// assigned from 1. Every file that fails to decode is reported; unless
// skipping is enabled, any decode failure fails the whole load.
func (l *Loader) Load(ctx context.Context, dir string) ([]domain.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrDirectoryNotFound, dir)
	}

	// os.ReadDir returns entries sorted by file name.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var (
		docs      []domain.Document
		decodeErr []error
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, entry.Name())
		if !IsTextFile(path, entry) {
			continue
		}

		content, err := readText(path)
		if err != nil {
			var de *domain.DecodeError
			if !errors.As(err, &de) {
				return nil, err
			}
			if l.skipInvalid {
				logger.Warn("skipping %s: %v", path, err)
				continue
			}
			decodeErr = append(decodeErr, err)
			continue
		}

		docs = append(docs, domain.Document{
			Index:   len(docs) + 1,
			Name:    entry.Name(),
			Path:    path,
			Content: content,
		})
	}

	if len(decodeErr) > 0 {
		return nil, errors.Join(decodeErr...)
	}

	logger.Debug("loaded %d documents from %s", len(docs), dir)
	return docs, nil
}

// IsTextFile reports whether a directory entry at path is a file with
// the .txt extension (case-insensitive). Symlinks are followed; dot-prefixed
// names are included.
func IsTextFile(path string, entry os.DirEntry) bool {
	if !isTextName(entry.Name()) {
		return false
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(path)
	if err != nil {
		logger.Debug("skipping %s: %v", path, err)
		return false
	}
	return info.Mode().IsRegular()
}

func isTextName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), TextExtension)
}

// readText reads a file and checks it is valid UTF-8.
// A leading byte order mark is dropped.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", &domain.DecodeError{Path: path}
	}
	return string(data), nil
}
