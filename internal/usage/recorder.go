// Package usage records per-call accounting for the external AI providers.
package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Recorder struct {
	db *pgxpool.Pool
}

func NewRecorder(db *pgxpool.Pool) *Recorder {
	return &Recorder{db: db}
}

type Entry struct {
	Provider  string
	Operation string
	Model     string
	Status    string
	LatencyMs int64
	SessionID *uuid.UUID
}

// Record writes a usage row. Accounting never blocks the pipeline: a nil
// recorder is a no-op and insert failures are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.db == nil {
		return
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO api_usage_logs (provider, operation, model, status, latency_ms, session_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.Provider, e.Operation, e.Model, e.Status, e.LatencyMs, e.SessionID,
	)
	if err != nil {
		slog.Warn("usage log insert failed",
			"provider", e.Provider,
			"operation", e.Operation,
			"error", err,
		)
	}
}

// Timer measures an operation for Record. Usage:
//
//	done := usage.Start()
//	... call provider ...
//	rec.Record(ctx, usage.Entry{..., LatencyMs: done()})
func Start() func() int64 {
	began := time.Now()
	return func() int64 {
		return time.Since(began).Milliseconds()
	}
}
