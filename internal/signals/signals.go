// Package signals watches for process termination signals and runs
// registered close handlers before the process exits.
package signals

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Watcher fans a caught signal out to registered closers.
type Watcher struct {
	doneCh  chan struct{}
	closed  bool
	mu      sync.Mutex
	closers []func()
}

// AddOnClose registers a handler to run when a signal arrives or the
// watcher is closed.
func (w *Watcher) AddOnClose(closer func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closers = append(w.closers, closer)
}

// Close runs the registered handlers exactly once.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	for _, closer := range w.closers {
		closer()
	}
	w.closers = nil
	close(w.doneCh)
}

// Done is closed once a signal has been handled.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// NewWatcher starts watching for interrupt and termination signals.
func NewWatcher() *Watcher {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	w := &Watcher{
		doneCh: make(chan struct{}),
	}
	go func() {
		<-signalCh
		w.Close()
	}()
	return w
}
