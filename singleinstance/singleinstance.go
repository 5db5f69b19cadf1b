package singleinstance

import (
	"fmt"
	"net"
)

// Guard holds the loopback port that marks this process as the resident
// watch-mode instance. Closing it releases the port for the next instance.
type Guard struct {
	ln net.Listener
}

// Acquire binds the loopback guard port. A bind failure means another
// watch-mode instance already owns it.
func Acquire(port int) (*Guard, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("another instance appears to be running (port %d busy): %w", port, err)
	}
	return &Guard{ln: ln}, nil
}

// Port returns the bound guard port.
func (g *Guard) Port() int {
	return g.ln.Addr().(*net.TCPAddr).Port
}

// Close releases the guard port.
func (g *Guard) Close() error {
	return g.ln.Close()
}
