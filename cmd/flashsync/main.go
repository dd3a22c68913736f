// Command flashsync runs, records, sweeps and replays firefly swarms.
package main

import (
	"context"
	"fmt"
	"os"

	"flashsync/internal/cli"
)

func main() {
	if err := cli.New().Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
