package cli

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/barkeep-io/barkeep/internal/config"
	"github.com/barkeep-io/barkeep/internal/rpc"
)

// connectDaemon establishes a gRPC connection to the running daemon.
func connectDaemon() (*grpc.ClientConn, error) {
	info, err := config.LoadDaemonInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to load daemon info: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("daemon not running")
	}

	addr := fmt.Sprintf("%s:%d", info.Host, info.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}

	return conn, nil
}

// daemonClient connects to the daemon, starting it if necessary, and returns
// a typed client plus the connection for the caller to close.
func daemonClient() (*rpc.StatusBarClient, *grpc.ClientConn, error) {
	if err := EnsureDaemon(); err != nil {
		return nil, nil, err
	}
	conn, err := connectDaemon()
	if err != nil {
		return nil, nil, err
	}
	return rpc.NewStatusBarClient(conn), conn, nil
}
