package filesystem

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/logger"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestLoader_Load(t *testing.T) {
	t.Run("reads txt files sorted by name", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "b.txt", []byte("second"))
		writeFile(t, dir, "a.txt", []byte("first"))
		writeFile(t, dir, "c.TXT", []byte("third"))

		docs, err := New().Load(context.Background(), dir)

		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "a.txt", docs[0].Name)
		assert.Equal(t, 1, docs[0].Index)
		assert.Equal(t, "first", docs[0].Content)
		assert.Equal(t, "b.txt", docs[1].Name)
		assert.Equal(t, 2, docs[1].Index)
		assert.Equal(t, "c.TXT", docs[2].Name)
		assert.Equal(t, filepath.Join(dir, "c.TXT"), docs[2].Path)
	})

	t.Run("ignores other files and subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "notes.md", []byte("markdown"))
		writeFile(t, dir, "doc.txt", []byte("kept"))
		sub := filepath.Join(dir, "nested.txt")
		require.NoError(t, os.Mkdir(sub, 0755))
		writeFile(t, sub, "inner.txt", []byte("not traversed"))

		docs, err := New().Load(context.Background(), dir)

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "doc.txt", docs[0].Name)
	})

	t.Run("reads dot-prefixed files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".notes.txt", []byte("dotted"))
		writeFile(t, dir, "a.txt", []byte("plain"))

		docs, err := New().Load(context.Background(), dir)

		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, ".notes.txt", docs[0].Name)
		assert.Equal(t, "dotted", docs[0].Content)
	})

	t.Run("follows symlinks to files", func(t *testing.T) {
		target := writeFile(t, t.TempDir(), "real.txt", []byte("linked"))
		dir := t.TempDir()
		if err := os.Symlink(target, filepath.Join(dir, "link.txt")); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}
		require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "broken.txt")))
		require.NoError(t, os.Symlink(t.TempDir(), filepath.Join(dir, "dir.txt")))

		docs, err := New().Load(context.Background(), dir)

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "link.txt", docs[0].Name)
		assert.Equal(t, "linked", docs[0].Content)
	})

	t.Run("empty directory", func(t *testing.T) {
		docs, err := New().Load(context.Background(), t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bom.txt", append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...))

		docs, err := New().Load(context.Background(), dir)

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "hello", docs[0].Content)
	})

	t.Run("stable across runs", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"z.txt", "m.txt", "a.txt"} {
			writeFile(t, dir, name, []byte(name))
		}
		first, err := New().Load(context.Background(), dir)
		require.NoError(t, err)
		second, err := New().Load(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestLoader_Load_DirectoryNotFound(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, domain.ErrDirectoryNotFound)
	})

	t.Run("path is a file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "a.txt", []byte("x"))
		_, err := New().Load(context.Background(), path)
		assert.ErrorIs(t, err, domain.ErrDirectoryNotFound)
	})
}

func TestLoader_Load_DecodeError(t *testing.T) {
	invalid := []byte{0xff, 0xfe, 0xfd}

	t.Run("reports every failing file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "good.txt", []byte("fine"))
		bad1 := writeFile(t, dir, "bad1.txt", invalid)
		bad2 := writeFile(t, dir, "bad2.txt", invalid)

		docs, err := New().Load(context.Background(), dir)

		require.Error(t, err)
		assert.Nil(t, docs)
		assert.ErrorIs(t, err, domain.ErrDecode)
		assert.Contains(t, err.Error(), bad1)
		assert.Contains(t, err.Error(), bad2)

		var de *domain.DecodeError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, bad1, de.Path)
	})

	t.Run("skip invalid logs and continues", func(t *testing.T) {
		var buf bytes.Buffer
		logger.SetOutput(&buf)
		logger.SetVerbose(true)
		defer func() {
			logger.SetVerbose(false)
			logger.SetOutput(os.Stderr)
		}()

		dir := t.TempDir()
		bad := writeFile(t, dir, "a.txt", invalid)
		writeFile(t, dir, "b.txt", []byte("fine"))

		docs, err := New(WithSkipInvalid(true)).Load(context.Background(), dir)

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "b.txt", docs[0].Name)
		assert.Equal(t, 1, docs[0].Index, "indices are assigned to loaded documents only")
		assert.True(t, strings.Contains(buf.String(), bad))
	})
}

func TestLoader_Load_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Load(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsTextName(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"a.txt", true},
		{"A.TXT", true},
		{"notes.txt.bak", false},
		{"readme.md", false},
		{".hidden.txt", true},
		{"txt", false},
		{"/some/dir/file.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isTextName(tt.name))
		})
	}
}
