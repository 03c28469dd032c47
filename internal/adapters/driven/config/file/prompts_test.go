package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
)

func TestPromptStore_ImplementsInterface(t *testing.T) {
	var _ driven.PromptStore = (*PromptStore)(nil)
}

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerInstruction)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAnswerInstruction, prompt)

	assert.FileExists(t, filepath.Join(dir, "answer_instruction.txt"))
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "Answer like a pirate."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer_instruction.txt"), []byte(custom+"\n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerInstruction)

	require.NoError(t, err)
	assert.Equal(t, custom, prompt, "whitespace is trimmed")
}

func TestPromptStore_Load_EmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer_instruction.txt"), []byte("  \n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerInstruction)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAnswerInstruction, prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptAnswerInstruction)
	require.NoError(t, err)

	path := filepath.Join(dir, "answer_instruction.txt")
	require.NoError(t, os.WriteFile(path, []byte("edited"), 0600))

	cached, err := store.Load(driven.PromptAnswerInstruction)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()

	fresh, err := store.Load(driven.PromptAnswerInstruction)
	require.NoError(t, err)
	assert.Equal(t, "edited", fresh)
}

func TestPromptStore_InitFailureFallsBack(t *testing.T) {
	// A file where the directory should be makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "prompts")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	store, err := NewPromptStore(blocker)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerInstruction)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAnswerInstruction, prompt)

	_, err = store.Load("other")
	assert.Error(t, err)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make(chan string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptAnswerInstruction)
			if err == nil {
				results <- prompt
			}
		}()
	}
	wg.Wait()
	close(results)

	count := 0
	for p := range results {
		assert.Equal(t, domain.DefaultAnswerInstruction, p)
		count++
	}
	assert.Equal(t, goroutines, count)
}
