// Package memdb runs a throwaway in-process MySQL-compatible server backed by
// go-mysql-server's memory engine. Nothing survives Close.
package memdb

import (
	"context"
	"fmt"
	"net"
	"time"

	sqle "github.com/dolthub/go-mysql-server"
	"github.com/dolthub/go-mysql-server/memory"
	"github.com/dolthub/go-mysql-server/server"
	"github.com/dolthub/go-mysql-server/sql"

	"bidemoloader/pkg/logger"
)

// Server is a running in-memory MySQL server.
type Server struct {
	srv      *server.Server
	database string
	port     int
	cancel   context.CancelFunc
}

// Start creates database name in a fresh memory provider and serves it on a
// free localhost port. It returns once the port accepts connections.
func Start(ctx context.Context, name string) (*Server, error) {
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("failed to get free port: %w", err)
	}

	provider := memory.NewDBProvider(memory.NewDatabase(name))
	engine := sqle.NewDefault(provider)

	cfg := server.Config{
		Protocol: "tcp",
		Address:  fmt.Sprintf("localhost:%d", port),
	}
	s, err := server.NewServer(cfg, engine, sql.NewContext, memory.NewSessionBuilder(provider), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	go func() {
		if err := s.Start(); err != nil {
			logger.Debugf("In-memory MySQL server on port %d stopped: %v", port, err)
		}
	}()
	go func() {
		<-serverCtx.Done()
		s.Close()
	}()

	readyCtx, readyCancel := context.WithTimeout(ctx, 5*time.Second)
	defer readyCancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-readyCtx.Done():
			cancel()
			return nil, fmt.Errorf("server failed to start on port %d: %w", port, readyCtx.Err())
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", cfg.Address, 100*time.Millisecond)
			if err != nil {
				continue
			}
			conn.Close()
			logger.Infof("Started in-memory MySQL server on port %d with database %s", port, name)
			return &Server{srv: s, database: name, port: port, cancel: cancel}, nil
		}
	}
}

// DSN returns a go-sql-driver/mysql DSN for the served database.
func (s *Server) DSN() string {
	return fmt.Sprintf("root@tcp(localhost:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", s.port, s.database)
}

// Port returns the TCP port the server listens on.
func (s *Server) Port() int { return s.port }

// Close stops the server.
func (s *Server) Close() error {
	err := s.srv.Close()
	if s.cancel != nil {
		s.cancel()
	}
	if err != nil {
		return fmt.Errorf("failed to close server: %w", err)
	}
	logger.Infof("Stopped in-memory MySQL server on port %d", s.port)
	return nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
