package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Lundis/go-voicepool/audio"
	"github.com/Lundis/go-voicepool/config"
)

type globalFlags struct {
	config      string
	backend     string
	device      string
	debug       bool
	metricsAddr string
}

func rootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "voicepool",
		Short:         "Play audio through a bounded voice pool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Path to a YAML config file")
	pf.StringVar(&flags.backend, "backend", "", "Backend: soft or openal")
	pf.StringVar(&flags.device, "device", "", "Soft backend output: malgo, null or none")
	pf.BoolVarP(&flags.debug, "debug", "d", false, "Enable debug output")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	root.AddCommand(
		playCommand(flags),
		toneCommand(flags),
		sfxCommand(flags),
		playlistCommand(flags),
		infoCommand(flags),
	)
	return root
}

// session is an initialized engine plus what it needs to be torn down.
type session struct {
	logger *slog.Logger
	cfg    *config.Config
	engine *audio.Engine
	server *http.Server

	mu   sync.Mutex
	done map[audio.PlaybackID]bool
	wake chan struct{}
}

// start loads the config, applies the command line overrides and brings up
// an engine resolving sound names against assets.
func (f *globalFlags) start(assets string) (*session, error) {
	level := slog.LevelInfo
	if f.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	if f.backend != "" {
		cfg.Backend.Name = f.backend
	}
	if f.device != "" {
		cfg.Backend.Device = f.device
	}
	cfg.Assets = assets
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &session{
		logger: logger,
		cfg:    cfg,
		done:   map[audio.PlaybackID]bool{},
		wake:   make(chan struct{}, 1),
	}

	var metrics *audio.Metrics
	if f.metricsAddr != "" {
		registry := prometheus.NewRegistry()
		if metrics, err = audio.NewMetrics(registry); err != nil {
			return nil, err
		}
		s.serveMetrics(f.metricsAddr, registry)
	}

	s.engine = audio.New(cfg.NewBackend(logger), cfg.EngineOptions(logger, metrics))
	if err := s.engine.Init(); err != nil {
		s.closeServer()
		return nil, err
	}
	cfg.ApplySettings(s.engine)
	s.engine.OnComplete(s.completed)
	return s, nil
}

func (s *session) serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	}))
	s.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	s.logger.Info("serving metrics", "addr", addr)
}

func (s *session) closeServer() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.server.Shutdown(ctx)
}

func (s *session) close() {
	if err := s.engine.Shutdown(); err != nil {
		s.logger.Warn("shutdown failed", "error", err)
	}
	s.closeServer()
}

func (s *session) completed(id audio.PlaybackID) {
	s.mu.Lock()
	s.done[id] = true
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// wait blocks until every id has completed, lost its voice, or ctx is done.
// Stolen voices are not announced, so ids without a voice count as done.
func (s *session) wait(ctx context.Context, ids []audio.PlaybackID) error {
	for {
		held := map[audio.PlaybackID]bool{}
		for _, v := range s.engine.Voices() {
			if v.ID != 0 {
				held[v.ID] = true
			}
		}
		s.mu.Lock()
		pending := 0
		for _, id := range ids {
			if held[id] && !s.done[id] {
				pending++
			}
		}
		s.mu.Unlock()
		if pending == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		}
	}
}

func (s *session) debug() {
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		s.engine.DebugInfo()
	}
}

// holdFor waits for d, or until ctx is done when d is zero.
func holdFor(ctx context.Context, d time.Duration) {
	if d <= 0 {
		<-ctx.Done()
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func category(music bool) audio.Category {
	if music {
		return audio.Music
	}
	return audio.Effect
}

func describe(id audio.PlaybackID, name string) string {
	return fmt.Sprintf("#%d %s", id, name)
}
