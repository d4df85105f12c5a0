package supervisor

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// signalRelay forwards SIGINT and SIGTERM received by the supervisor to
// every live child's process group. Children are launched with Setpgid, so
// signaling -pid reaches the child and anything it spawned. Receipt is
// reported on the console; the relay never terminates the supervisor
// itself, which keeps running until the children exit and drain.
type signalRelay struct {
	log     *zap.SugaredLogger
	console *console

	ch   chan os.Signal
	done chan struct{}

	mu     sync.Mutex
	groups map[string]int
}

func (s *Supervisor) startSignalRelay() *signalRelay {
	r := &signalRelay{
		log:     s.log.Named("signals"),
		console: s.console,
		ch:      make(chan os.Signal, 1),
		done:    make(chan struct{}),
		groups:  make(map[string]int),
	}
	signal.Notify(r.ch, syscall.SIGINT, syscall.SIGTERM)
	go r.loop()
	return r
}

func (r *signalRelay) loop() {
	for {
		select {
		case sig := <-r.ch:
			r.console.printf("shunt received signal %s", sig)
			r.forward(sig)
		case <-r.done:
			return
		}
	}
}

func (r *signalRelay) forward(sig os.Signal) {
	num, ok := sig.(syscall.Signal)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, pgid := range r.groups {
		if err := unix.Kill(-pgid, unix.Signal(num)); err != nil {
			r.log.Debugf("forwarding %s to %q (pgid %d): %s", sig, name, pgid, err)
		}
	}
}

// track registers a child's process group. The pgid equals the child's pid
// because the launcher sets Setpgid without overriding Pgid.
func (r *signalRelay) track(name string, pgid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[name] = pgid
}

// untrack removes a child once it has been reaped, so the relay never
// signals a recycled pid.
func (r *signalRelay) untrack(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, name)
}

func (r *signalRelay) stop() {
	signal.Stop(r.ch)
	close(r.done)
}
