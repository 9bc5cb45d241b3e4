package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultReadTimeout     = 60 * time.Second
	DefaultWriteTimeout    = DefaultReadTimeout
	DefaultShutdownTimeout = 30 * time.Second

	gracefulEnvKey     = "IS_GRACEFUL"
	gracefulEnvValue   = gracefulEnvKey + "=1"
	gracefulListenerFD = 3
)

// Server wraps http.Server with signal driven shutdown and SIGUSR2 hand-over to a child process.
type Server struct {
	*http.Server

	listener        net.Listener
	isGraceful      bool
	log             *zap.Logger
	ShutdownTimeout time.Duration
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       DefaultReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      DefaultWriteTimeout,
		},
		isGraceful:      os.Getenv(gracefulEnvKey) != "",
		log:             log,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains in-flight requests.
func (srv *Server) Run(ctx context.Context) error {
	ln, err := srv.getNetListener()
	if err != nil {
		return err
	}
	srv.listener = ln
	return srv.serve(ctx)
}

func (srv *Server) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	restart := make(chan os.Signal, 1)
	signal.Notify(restart, syscall.SIGUSR2)
	defer signal.Stop(restart)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Server.Serve(srv.listener)
	}()

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			srv.log.Info("graceful shutting down HTTP server")
			return srv.shutdown()
		case <-restart:
			srv.log.Info("received SIGUSR2, graceful restarting HTTP server")
			pid, err := srv.startNewProcess()
			if err != nil {
				srv.log.Error("start new process failed, continue serving", zap.Error(err))
				continue
			}
			srv.log.Info("start new process succeeded", zap.Int("pid", pid))
			return srv.shutdown()
		}
	}
}

func (srv *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), srv.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	srv.log.Info("HTTP server shutdown success")
	return nil
}

func (srv *Server) getNetListener() (net.Listener, error) {
	if srv.isGraceful {
		file := os.NewFile(gracefulListenerFD, "")
		ln, err := net.FileListener(file)
		if err != nil {
			return nil, fmt.Errorf("net.FileListener error: %w", err)
		}
		return ln, nil
	}
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.Listen error: %w", err)
	}
	return ln, nil
}

// startNewProcess re-executes the binary and passes it the listening socket on fd 3.
func (srv *Server) startNewProcess() (int, error) {
	tcpLn, ok := srv.listener.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("listener is not *net.TCPListener")
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("get listener file: %w", err)
	}
	defer file.Close()

	envs := []string{}
	for _, e := range os.Environ() {
		if e != gracefulEnvValue {
			envs = append(envs, e)
		}
	}
	envs = append(envs, gracefulEnvValue)

	attr := &syscall.ProcAttr{
		Env:   envs,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	}
	pid, err := syscall.ForkExec(os.Args[0], os.Args, attr)
	if err != nil {
		return 0, fmt.Errorf("forkexec: %w", err)
	}
	return pid, nil
}
