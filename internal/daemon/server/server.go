// Package server implements the gRPC server for the daemon.
package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"syscall"

	"google.golang.org/grpc"

	"github.com/barkeep-io/barkeep/internal/rpc"
	"github.com/barkeep-io/barkeep/internal/statusbar"
)

// Server is the daemon's gRPC server. It only ever listens on loopback; the
// control API is a local surface.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	port       int
	bar        *statusbar.StatusBar
	shutdown   chan struct{}
}

// New creates a new server for the given status bar.
// Pass port 0 for dynamic allocation.
func New(port int, bar *statusbar.StatusBar) (*Server, error) {
	listener, err := (&net.ListenConfig{}).Listen(context.TODO(), "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	// Get actual port if dynamically allocated
	actualPort := listener.Addr().(*net.TCPAddr).Port

	grpcServer := grpc.NewServer()

	srv := &Server{
		grpcServer: grpcServer,
		listener:   listener,
		port:       actualPort,
		bar:        bar,
		shutdown:   make(chan struct{}, 1),
	}

	rpc.RegisterStatusBarServer(grpcServer, &statusBarService{server: srv})

	return srv, nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// ShutdownRequests delivers one value per Shutdown RPC received.
func (s *Server) ShutdownRequests() <-chan struct{} {
	return s.shutdown
}

// Serve starts serving requests. This blocks until Stop is called.
func (s *Server) Serve() error {
	return s.grpcServer.Serve(s.listener)
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
}

// TrayState adapts a Server to the tray.BarState interface.
type TrayState struct {
	srv *Server
}

// NewTrayState creates a TrayState for the given server.
func NewTrayState(srv *Server) *TrayState {
	return &TrayState{srv: srv}
}

// Port returns the port the server is listening on.
func (t *TrayState) Port() int {
	return t.srv.Port()
}

// IsSectionHidden reports whether a section's contents are hidden.
func (t *TrayState) IsSectionHidden(section statusbar.Section) bool {
	return t.srv.bar.IsSectionHidden(section)
}

// ToggleSection flips a section between shown and hidden.
func (t *TrayState) ToggleSection(section statusbar.Section) {
	t.srv.bar.Toggle(section)
}

// AlwaysHiddenEnabled reports whether the always-hidden section exists.
func (t *TrayState) AlwaysHiddenEnabled() bool {
	return t.srv.bar.AlwaysHiddenEnabled()
}

// SetAlwaysHiddenEnabled enables or disables the always-hidden section and
// persists the choice to settings.
func (t *TrayState) SetAlwaysHiddenEnabled(enabled bool) {
	if err := persistAlwaysHidden(enabled); err != nil {
		// The bar still flips; only durability suffered.
		fmt.Fprintf(os.Stderr, "failed to persist settings: %v\n", err)
	}
	t.srv.bar.SetAlwaysHiddenEnabled(enabled)
}

// RequestShutdown sends SIGINT to the current process to trigger a graceful shutdown.
func (t *TrayState) RequestShutdown() {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		return
	}
	_ = p.Signal(syscall.SIGINT)
}
