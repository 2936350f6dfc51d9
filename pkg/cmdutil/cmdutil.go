package cmdutil

import (
	"os"
	"os/signal"
	"syscall"
)

// InterruptChan returns a channel that is closed when the process
// receives SIGINT or SIGTERM.
func InterruptChan() <-chan struct{} {
	interruptChan := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		close(interruptChan)
	}()

	return interruptChan
}
