// Package sigctx provides a context that ends on the first SIGINT or
// SIGTERM. A second signal kills the process as usual.
package sigctx

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func New() context.Context {
	ctx, cancel := context.WithCancelCause(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		signal.Stop(sigs)
		cancel(fmt.Errorf("%w: got %s", context.Canceled, sig))
	}()

	return ctx
}
