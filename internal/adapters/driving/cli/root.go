// Package cli provides the naiverag command-line interface.
package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driving"
	"github.com/custodia-labs/naiverag/internal/logger"
)

// Runtime builds the services the commands call.
type Runtime interface {
	Settings() driving.SettingsService
	Indexer(progress driving.ProgressFunc) (driving.Indexer, error)
	Watcher(dir string, progress driving.ProgressFunc, onResult func(domain.WatchResult)) (driving.IngestWatcher, error)
	Retriever() (driving.Retriever, error)
	Answerer() (driving.Answerer, error)
	Status() (driving.StatusService, error)
	Ping(ctx context.Context) error
	Close() error
}

// RuntimeFactory opens a Runtime for a config file. An empty path
// selects the default location.
type RuntimeFactory func(configPath string) (Runtime, error)

var (
	// version is set at build time with -ldflags.
	version = "dev"

	verbose    bool
	configPath string

	newRuntime RuntimeFactory

	rtMu sync.Mutex
	rt   Runtime
)

var rootCmd = &cobra.Command{
	Use:   "naiverag",
	Short: "Ask questions about a directory of text files",
	Long: `naiverag indexes the .txt files of a directory into a vector store and
answers questions using the most similar chunks as context.

The OpenAI API key is read from OPENAI_API_KEY, or from a .env file in the
working directory.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.naiverag/config.toml)")
}

// Execute runs the root command. factory builds the Runtime on first use.
func Execute(ctx context.Context, factory RuntimeFactory) error {
	newRuntime = factory
	defer closeRuntime()

	rootCmd.SetOut(os.Stdout)

	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, domain.ErrMissingCredential) {
		rootCmd.PrintErrln("Hint: export OPENAI_API_KEY or add it to a .env file.")
	}
	return err
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	loadDotEnv()
	closeRuntime()
	return nil
}

// loadDotEnv reads .env from the working directory. Existing
// environment variables win.
func loadDotEnv() {
	err := godotenv.Load()
	if err == nil {
		logger.Debug("loaded .env")
		return
	}
	if !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("reading .env: %v", err)
	}
}

// currentRuntime opens the Runtime on first use.
func currentRuntime() (Runtime, error) {
	rtMu.Lock()
	defer rtMu.Unlock()

	if rt != nil {
		return rt, nil
	}
	if newRuntime == nil {
		return nil, errors.New("runtime not configured")
	}
	r, err := newRuntime(configPath)
	if err != nil {
		return nil, err
	}
	rt = r
	return rt, nil
}

func closeRuntime() {
	rtMu.Lock()
	defer rtMu.Unlock()

	if rt == nil {
		return
	}
	if err := rt.Close(); err != nil {
		logger.Warn("closing runtime: %v", err)
	}
	rt = nil
}
