package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change settings stored in the config file.

The API key is never stored; it is read from OPENAI_API_KEY.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key, for example:

  naiverag config set chunking.size 500
  naiverag config set store.backend qdrant

The new value is validated against the other settings before it is saved.
Run 'naiverag config keys' for the list of keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the keys accepted by 'config set'",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, key := range services.SettingKeys() {
			if key == "store.backend" {
				cmd.Printf("%s (%s)\n", key, services.BackendChoices())
				continue
			}
			cmd.Println(key)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	r, err := currentRuntime()
	if err != nil {
		return err
	}
	settingsService := r.Settings()

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	st := newStyles(cmd.OutOrStdout())
	section := func(name string) {
		cmd.Println(st.render(st.heading, "["+name+"]"))
	}

	section("Store")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend.Description())
	switch settings.Store.Backend {
	case domain.StoreBackendSQLite:
		cmd.Printf("  Path: %s\n", settings.Store.Path)
	case domain.StoreBackendQdrant:
		cmd.Printf("  Qdrant: %s:%d\n", settings.Qdrant.Host, settings.Qdrant.Port)
		cmd.Printf("  Collection: %s\n", settings.Store.Collection)
	}
	cmd.Println()

	section("Embedding")
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	printBaseURL(cmd, settings.Embedding.BaseURL)
	cmd.Printf("  API Key: %s\n", domain.MaskSecret(settings.Embedding.APIKey))
	cmd.Println()

	section("LLM")
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	printBaseURL(cmd, settings.LLM.BaseURL)
	cmd.Printf("  API Key: %s\n", domain.MaskSecret(settings.LLM.APIKey))
	cmd.Printf("  Max context chars: %d\n", settings.LLM.MaxContextChars)
	cmd.Println()

	section("Chunking")
	cmd.Printf("  Size: %d\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	section("Indexer")
	cmd.Printf("  Workers: %d\n", settings.Indexer.Workers)
	cmd.Printf("  Queue: %d\n", settings.Indexer.Queue)
	cmd.Printf("  Skip invalid files: %t\n", settings.Loader.SkipInvalid)
	cmd.Println()

	section("Provider")
	cmd.Printf("  Timeout: %ds\n", settings.Provider.TimeoutSeconds)
	cmd.Printf("  Max retries: %d\n", settings.Provider.MaxRetries)
	cmd.Printf("  Requests/second: %g (burst %d)\n", settings.Provider.RequestsPerSecond, settings.Provider.Burst)
	cmd.Println()

	section("Retrieval")
	cmd.Printf("  Results: %d\n", settings.Retrieval.N)
	cmd.Println()

	cmd.Printf("Config file: %s\n", settingsService.ConfigPath())
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'naiverag config set KEY VALUE' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printBaseURL(cmd *cobra.Command, url string) {
	if url == "" {
		url = "(default)"
	}
	cmd.Printf("  Base URL: %s\n", url)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	r, err := currentRuntime()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := r.Settings().Set(key, value); err != nil {
		if errors.Is(err, domain.ErrInvalidConfiguration) {
			return fmt.Errorf("cannot set %s: %w", key, err)
		}
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}
