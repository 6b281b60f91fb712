// Command kickstart runs the HTTP API, the sample event poller and the cron
// scheduler in one process.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrymomot/kickstart/cmd/kickstart/app"
)

func main() {
	if err := app.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
