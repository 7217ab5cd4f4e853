package server

import (
	"context"
	"fmt"
	"net/http"

	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/tracktitans/citysim/simulation"
)

// logger is the server package's child logger, following the teacher's
// parentLogger.New("module", "...") idiom.
var logger = log.New("module", "server")

// Run builds a Hub around sim per cfg and blocks serving HTTP/websocket
// traffic until ctx is cancelled, mirroring the teacher's Run(sim, addr,
// port) entrypoint.
func Run(ctx context.Context, sim *simulation.Sim, cfg Config) error {
	hub := NewHub(sim, cfg)
	go hub.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWs)
	installHTTPAPI(mux, hub)
	installMetricsRoute(mux)

	addr := fmt.Sprintf("%s:%s", cfg.Addr, cfg.Port)
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), MaxHubStartupTime)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// HttpdStart is a convenience wrapper for callers that don't need a
// cancellation context (cmd/citysimd calls Run with one instead): it builds a background context and
// runs until the process is killed.
func HttpdStart(sim *simulation.Sim, cfg Config) error {
	return Run(context.Background(), sim, cfg)
}

