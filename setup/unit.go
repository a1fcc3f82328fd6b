package setup

import "sync"

// Unit is the lifecycle half embedded in every bootstrap/share-server
// process: it exposes a Terminate RPC the SetupMaster calls to ask the
// process to shut down, and a channel the process's main loop selects on to
// actually do so.
type Unit struct {
	once    sync.Once
	stopped chan struct{}
}

// NewUnit constructs a Unit ready to receive a single Terminate call.
func NewUnit() *Unit {
	return &Unit{stopped: make(chan struct{})}
}

// Terminate is the handler body for the Terminate RPC: it signals Stopped()
// and is safe to call more than once.
func (u *Unit) Terminate() {
	u.once.Do(func() { close(u.stopped) })
}

// Stopped returns a channel that closes the first time Terminate is called,
// for the process's main loop to select on alongside its own signal
// handling.
func (u *Unit) Stopped() <-chan struct{} {
	return u.stopped
}
