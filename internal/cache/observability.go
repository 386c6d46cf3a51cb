package cache

import (
	"io"
	"log/slog"
	"time"
)

// FetchEvent captures lightweight execution telemetry for one fetch.
type FetchEvent struct {
	Kind      Kind
	Selection string
	Outcome   string // "hit", "fetched", "empty", "error", "discarded"
	Attempts  int
	Duration  time.Duration
	Err       error
}

// Observer receives fetch telemetry events.
type Observer interface {
	ObserveFetch(event FetchEvent)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) ObserveFetch(FetchEvent) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes fetch events to the provided writer.
func NewLogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &logObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logObserver) ObserveFetch(event FetchEvent) {
	attrs := []any{
		"kind", string(event.Kind),
		"selection", event.Selection,
		"outcome", event.Outcome,
		"attempts", event.Attempts,
		"duration_ms", event.Duration.Milliseconds(),
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.Error("cache_fetch", attrs...)
		return
	}
	o.logger.Info("cache_fetch", attrs...)
}
