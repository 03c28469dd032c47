package cli

import (
	"context"
	"testing"

	"github.com/custodia-labs/naiverag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driving"
	"github.com/custodia-labs/naiverag/internal/core/services"
)

// fakeRuntime hands out mock services. providerErr is returned by every
// constructor that needs a provider.
type fakeRuntime struct {
	settings    *services.SettingsService
	indexer     *mockIndexer
	watcher     *mockWatcher
	retriever   *mockRetriever
	answerer    *mockAnswerer
	status      *mockStatusService
	pingErr     error
	providerErr error
	closed      int
}

func (f *fakeRuntime) Settings() driving.SettingsService { return f.settings }

func (f *fakeRuntime) Indexer(progress driving.ProgressFunc) (driving.Indexer, error) {
	if f.providerErr != nil {
		return nil, f.providerErr
	}
	f.indexer.progress = progress
	return f.indexer, nil
}

func (f *fakeRuntime) Watcher(
	dir string,
	progress driving.ProgressFunc,
	onResult func(domain.WatchResult),
) (driving.IngestWatcher, error) {
	if f.providerErr != nil {
		return nil, f.providerErr
	}
	f.watcher.dir = dir
	f.watcher.onResult = onResult
	return f.watcher, nil
}

func (f *fakeRuntime) Retriever() (driving.Retriever, error) {
	if f.providerErr != nil {
		return nil, f.providerErr
	}
	return f.retriever, nil
}

func (f *fakeRuntime) Answerer() (driving.Answerer, error) {
	if f.providerErr != nil {
		return nil, f.providerErr
	}
	return f.answerer, nil
}

func (f *fakeRuntime) Status() (driving.StatusService, error) { return f.status, nil }

func (f *fakeRuntime) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeRuntime) Close() error {
	f.closed++
	return nil
}

type mockIndexer struct {
	chunks   int
	err      error
	dirs     []string
	progress driving.ProgressFunc
}

func (m *mockIndexer) ProcessDocuments(_ context.Context, dir string) (int, error) {
	m.dirs = append(m.dirs, dir)
	if m.progress != nil {
		for i := 1; i <= m.chunks; i++ {
			m.progress(i, m.chunks, "doc1_chunk1")
		}
	}
	return m.chunks, m.err
}

// mockWatcher reports results then returns err from Start.
type mockWatcher struct {
	results  []domain.WatchResult
	err      error
	dir      string
	onResult func(domain.WatchResult)
}

func (m *mockWatcher) Start(_ context.Context) error {
	for _, r := range m.results {
		m.onResult(r)
	}
	return m.err
}

func (m *mockWatcher) Stop() error { return nil }

type mockRetriever struct {
	chunks   []string
	err      error
	question string
	n        int
}

func (m *mockRetriever) Query(_ context.Context, question string, n int) ([]string, error) {
	m.question = question
	m.n = n
	return m.chunks, m.err
}

type mockAnswerer struct {
	answer   string
	err      error
	question string
	chunks   []string
	called   bool
}

func (m *mockAnswerer) Generate(_ context.Context, question string, chunks []string) (string, error) {
	m.called = true
	m.question = question
	m.chunks = chunks
	return m.answer, m.err
}

type mockStatusService struct {
	status *domain.Status
	err    error
}

func (m *mockStatusService) Status(_ context.Context) (*domain.Status, error) {
	return m.status, m.err
}

func (m *mockStatusService) RecentRuns(_ context.Context, _ int) ([]domain.IngestRun, error) {
	return nil, m.err
}

// setupTestRuntime installs a fakeRuntime over an in-memory config and
// resets command flags.
func setupTestRuntime(t *testing.T) *fakeRuntime {
	t.Helper()
	t.Setenv(services.EnvAPIKey, "")
	t.Setenv(services.EnvBaseURL, "")

	fake := &fakeRuntime{
		settings:  services.NewSettingsService(memory.NewConfigStore()),
		indexer:   &mockIndexer{},
		watcher:   &mockWatcher{},
		retriever: &mockRetriever{},
		answerer:  &mockAnswerer{},
		status:    &mockStatusService{status: &domain.Status{Backend: domain.StoreBackendMemory}},
	}

	original := newRuntime
	newRuntime = func(string) (Runtime, error) { return fake, nil }
	resetFlags()

	t.Cleanup(func() {
		closeRuntime()
		newRuntime = original
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return fake
}

func resetFlags() {
	verbose = false
	configPath = ""
	ingestWatch = false
	queryN = 0
	askN = 0
	askIngest = ""
	statusCheck = false
	mcpHTTPAddr = ""
	versionShort = false
}
