package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/keshon/domme-music/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	tracksPlayed    *prometheus.CounterVec
	trackFailures   *prometheus.CounterVec
	playlists       *prometheus.CounterVec
	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tracksPlayed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "domme_music_tracks_played_total", Help: "Tracks handed to a voice sink"},
			[]string{"kind"},
		),
		trackFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "domme_music_track_failures_total", Help: "Tracks that could not be played"},
			[]string{"stage"},
		),
		playlists: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "domme_music_playlists_total", Help: "Playlist runs by outcome"},
			[]string{"outcome"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "domme_music_commands_total", Help: "Slash commands handled"},
			[]string{"command", "status"},
		),
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "domme_music_command_duration_seconds",
				Help:    "Time spent in slash command handlers",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"command"},
		),
	}
	m.registry.MustRegister(
		m.tracksPlayed, m.trackFailures, m.playlists, m.commands, m.commandDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) TrackPlayed(kind string) {
	m.tracksPlayed.WithLabelValues(kind).Inc()
}

func (m *Metrics) TrackFailed(stage string) {
	m.trackFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) PlaylistFinished(outcome string) {
	m.playlists.WithLabelValues(outcome).Inc()
}

// CommandTimer starts timing a command; call the returned func with the
// handler's error once it returns.
func (m *Metrics) CommandTimer(command string) func(error) {
	timer := prometheus.NewTimer(m.commandDuration.WithLabelValues(command))
	return func(err error) {
		timer.ObserveDuration()
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.commands.WithLabelValues(command, status).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	l := logging.Component("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	l.Info().Str("addr", addr).Msg("metrics exposed at /metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
