package serviceutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// SignalContext returns a context cancelled on SIGINT/SIGTERM.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sig
		slog.Info("received signal, shutting down", "signal", s.String())
		cancel()
	}()
	return ctx
}

func Fatal(task string, err error) {
	slog.Error("fatal", "task", task, "err", err)
	os.Exit(1)
}

func StartHttpServer(port int, handler http.Handler) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: time.Second * 10,
	}
	slog.Info("http server listening", "port", port)
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		Fatal("http server", err)
	}
}
