package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var queryN int

var queryCmd = &cobra.Command{
	Use:   "query QUESTION",
	Short: "Show the chunks most similar to a question",
	Long: `Embeds QUESTION and prints the closest chunks in the vector store,
most similar first. No answer is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryN, "num", "n", 0, "number of chunks (default retrieval.n)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	r, err := currentRuntime()
	if err != nil {
		return err
	}
	n, err := resultCount(r, queryN)
	if err != nil {
		return err
	}

	retriever, err := r.Retriever()
	if err != nil {
		return err
	}
	chunks, err := retriever.Query(cmd.Context(), args[0], n)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		cmd.Println("No results found. Run 'naiverag ingest DIR' first.")
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	for i, chunk := range chunks {
		cmd.Printf("%s %s\n\n", st.render(st.label, numbered(i)), chunk)
	}
	return nil
}

// resultCount falls back to the configured retrieval.n.
func resultCount(r Runtime, n int) (int, error) {
	if n > 0 {
		return n, nil
	}
	settings, err := r.Settings().Get()
	if err != nil {
		return 0, err
	}
	return settings.Retrieval.N, nil
}

func numbered(i int) string {
	return "[" + strconv.Itoa(i+1) + "]"
}
