package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askN      int
	askIngest string
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the chunks most similar to QUESTION and asks the chat model to
answer using only that context.

With --ingest DIR the directory is indexed first, so a single command
covers the whole flow.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askN, "num", "n", 0, "number of context chunks (default retrieval.n)")
	askCmd.Flags().StringVar(&askIngest, "ingest", "", "index this directory before answering")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := cmd.Context()

	r, err := currentRuntime()
	if err != nil {
		return err
	}
	n, err := resultCount(r, askN)
	if err != nil {
		return err
	}

	// 1. Optionally index the directory
	if askIngest != "" {
		progress := newProgressPrinter(cmd.ErrOrStderr())
		indexer, err := r.Indexer(progress.update)
		if err != nil {
			return err
		}
		_, err = indexer.ProcessDocuments(ctx, askIngest)
		progress.finish()
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
	}

	// 2. Retrieve context
	retriever, err := r.Retriever()
	if err != nil {
		return err
	}
	chunks, err := retriever.Query(ctx, question, n)
	if err != nil {
		return err
	}

	// 3. Generate the answer
	answerer, err := r.Answerer()
	if err != nil {
		return err
	}
	answer, err := answerer.Generate(ctx, question, chunks)
	if err != nil {
		return err
	}

	// 4. Print
	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.render(st.heading, "Answer"))
	cmd.Println(answer)
	if len(chunks) > 0 {
		cmd.Println()
		cmd.Println(st.render(st.heading, "Sources"))
		for i, chunk := range chunks {
			cmd.Printf("%s %s\n", st.render(st.label, numbered(i)), st.render(st.muted, chunk))
		}
	}
	return nil
}
