// Command naiverag indexes a directory of text files and answers
// questions about them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/naiverag/internal/adapters/driving/cli"
	"github.com/custodia-labs/naiverag/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, func(configPath string) (cli.Runtime, error) {
		return app.New(configPath)
	})
	if err != nil {
		stop()
		os.Exit(1)
	}
}
