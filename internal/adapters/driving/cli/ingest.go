package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/naiverag/internal/core/domain"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest DIR",
	Short: "Index the text files of a directory",
	Long: `Loads every .txt file in DIR, splits it into overlapping chunks, embeds
each chunk and upserts it into the vector store. Re-ingesting the same
directory overwrites the same chunk ids.

With --watch the directory is re-ingested whenever a .txt file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest when files change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	r, err := currentRuntime()
	if err != nil {
		return err
	}
	dir := args[0]
	progress := newProgressPrinter(cmd.ErrOrStderr())

	if ingestWatch {
		return watchDir(cmd, r, dir, progress)
	}

	indexer, err := r.Indexer(progress.update)
	if err != nil {
		return err
	}
	n, err := indexer.ProcessDocuments(cmd.Context(), dir)
	progress.finish()
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks from %s\n", n, dir)
	return nil
}

func watchDir(cmd *cobra.Command, r Runtime, dir string, progress *progressPrinter) error {
	onResult := func(res domain.WatchResult) {
		progress.finish()
		if res.Err != nil {
			cmd.PrintErrf("Ingest failed: %v\n", res.Err)
			return
		}
		cmd.Printf("Indexed %d chunks from %s in %s\n",
			res.Chunks, dir, res.EndedAt.Sub(res.StartedAt).Round(time.Millisecond))
	}

	watcher, err := r.Watcher(dir, progress.update, onResult)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", dir)
	err = watcher.Start(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// progressPrinter reports upserts. On a terminal it rewrites one line,
// otherwise it prints nothing until finish.
type progressPrinter struct {
	w     io.Writer
	tty   bool
	total int
	done  int
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, tty: isTerminal(w)}
}

// update matches driving.ProgressFunc. It runs on the indexer's collector
// goroutine only.
func (p *progressPrinter) update(done, total int, _ string) {
	p.done, p.total = done, total
	if p.tty {
		fmt.Fprintf(p.w, "\rInserting chunks into db: %d/%d", done, total)
	}
}

func (p *progressPrinter) finish() {
	if p.total == 0 {
		return
	}
	if p.tty {
		fmt.Fprintln(p.w)
	} else {
		fmt.Fprintf(p.w, "Inserted %d/%d chunks into db\n", p.done, p.total)
	}
	p.done, p.total = 0, 0
}
