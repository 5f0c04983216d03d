// cmd/camadapter/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/camera-adapter/internal/adapter"
	"github.com/tamzrod/camera-adapter/internal/config"
	"github.com/tamzrod/camera-adapter/internal/hw"
	"github.com/tamzrod/camera-adapter/internal/hw/modbus"
	"github.com/tamzrod/camera-adapter/internal/hw/sim"
	"github.com/tamzrod/camera-adapter/internal/log"
	"github.com/tamzrod/camera-adapter/internal/metrics"
	"github.com/tamzrod/camera-adapter/internal/notify"
	"github.com/tamzrod/camera-adapter/internal/status"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if len(os.Args) < 2 {
		fatal("usage: camadapter <config.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fatal("config load failed", "error", err)
	}
	if err := config.Validate(cfg); err != nil {
		fatal("config validation failed", "error", err)
	}
	config.Normalize(cfg)

	ac := cfg.Adapter
	log.Init(ac.Log.Level, ac.Log.Format)

	opts, err := adapter.OptionsFromConfig(ac)
	if err != nil {
		fatal("adapter options failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Hardware link
	// --------------------

	link, err := buildLink(ac.Hardware)
	if err != nil {
		fatal("hardware link failed", "transport", ac.Hardware.Transport, "error", err)
	}
	defer link.close()

	m := metrics.New()
	m.WatchLink(link.snapshot)

	// --------------------
	// Adapter + subscribers
	// --------------------

	hub := notify.NewHub(log.With("component", "hub"))
	a := adapter.New(
		m.Port(link.port),
		opts,
		notify.Fanout{hub, m.Subscriber()},
		log.With("component", "adapter"),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/events", hub)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		snap := link.snapshot()
		code := http.StatusOK
		if snap.Health != status.HealthOK {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transport":        ac.Hardware.Transport,
			"health":           snap.Health,
			"last_error_code":  snap.LastErrorCode,
			"seconds_in_error": snap.SecondsInError,
		})
	})
	mux.Handle("/", adapter.Handler(a))

	srv := &http.Server{
		Addr:              ac.Server.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --------------------
	// Run until signalled
	// --------------------

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return link.run(gctx) })

	if link.sim != nil {
		g.Go(func() error { return link.sim.drive(gctx, a) })
	}

	g.Go(func() error {
		// Applies the configured focus mode once the link is up.
		if err := a.SetParameters(gctx, adapter.Parameters{}); err != nil {
			log.Warn("initial parameters not applied", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("listening", "addr", srv.Addr, "transport", ac.Hardware.Transport)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		hub.Close()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("stopped with error", "error", err)
		link.close()
		os.Exit(1)
	}
	log.Info("stopped")
}

func fatal(msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}

// link bundles the port with the pieces main needs around it.
type link struct {
	port     hw.Port
	run      func(context.Context) error
	snapshot func() status.Snapshot
	close    func()
	sim      *simulator
}

func buildLink(h config.HardwareConfig) (*link, error) {
	if h.Transport == config.TransportSim {
		p := sim.New()
		s := newSimulator(p)
		return &link{
			port: p,
			run:  p.Run,
			snapshot: func() status.Snapshot {
				return status.Snapshot{Health: status.HealthOK}
			},
			close: func() {},
			sim:   s,
		}, nil
	}

	mc, err := modbus.FromHardware(h)
	if err != nil {
		return nil, err
	}
	p, err := modbus.New(mc, log.With("component", "modbus", "endpoint", h.Endpoint))
	if err != nil {
		return nil, err
	}
	return &link{
		port:     p,
		run:      p.Run,
		snapshot: p.Health().Snapshot,
		close: func() {
			if err := p.Close(); err != nil {
				log.Warn("modbus close failed", "error", err)
			}
		},
	}, nil
}
