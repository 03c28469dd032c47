package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/naiverag/internal/core/domain"
)

var statusCheck bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vector store and last ingest run",
	Long: `Shows the vector store backend and location, the number of stored
chunks and the most recent ingest run.

With --check the embedding and chat providers are pinged to confirm the
API key works.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "ping the providers")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	r, err := currentRuntime()
	if err != nil {
		return err
	}
	svc, err := r.Status()
	if err != nil {
		return err
	}
	status, err := svc.Status(cmd.Context())
	if err != nil {
		return err
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.render(st.heading, "Store"))
	cmd.Printf("  Backend:   %s\n", status.Backend.Description())
	cmd.Printf("  Location:  %s\n", status.Location)
	cmd.Printf("  Entries:   %d\n", status.Entries)
	if status.Dimensions > 0 {
		cmd.Printf("  Vectors:   %d dimensions\n", status.Dimensions)
	}
	cmd.Println()

	cmd.Println(st.render(st.heading, "Models"))
	cmd.Printf("  Embedding: %s\n", status.EmbeddingModel)
	cmd.Printf("  LLM:       %s\n", status.LLMModel)
	cmd.Println()

	cmd.Println(st.render(st.heading, "Last ingest"))
	printRun(cmd, st, status.LastRun)

	if statusCheck {
		cmd.Println()
		cmd.Print("Checking providers... ")
		if err := r.Ping(cmd.Context()); err != nil {
			cmd.Println(st.render(st.failed, "FAILED"))
			return err
		}
		cmd.Println(st.render(st.ok, "OK"))
	}
	return nil
}

func printRun(cmd *cobra.Command, st styles, run *domain.IngestRun) {
	if run == nil {
		cmd.Println("  (none)")
		return
	}

	state := string(run.Status)
	switch run.Status {
	case domain.RunStatusCompleted:
		state = st.render(st.ok, state)
	case domain.RunStatusFailed, domain.RunStatusCancelled:
		state = st.render(st.failed, state)
	}

	cmd.Printf("  Status:    %s\n", state)
	cmd.Printf("  Directory: %s\n", run.Directory)
	cmd.Printf("  Documents: %d\n", run.Documents)
	cmd.Printf("  Chunks:    %d\n", run.Chunks)
	cmd.Printf("  Started:   %s\n", run.StartedAt.Local().Format(time.DateTime))
	if d := run.Duration(); d > 0 {
		cmd.Printf("  Duration:  %s\n", d.Round(time.Millisecond))
	}
	if run.Error != "" {
		cmd.Printf("  Error:     %s\n", run.Error)
	}
}
