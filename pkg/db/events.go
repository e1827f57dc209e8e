package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	ourtime "github.com/margined-protocol/isotonic-lend/pkg/time"
)

// EventRecorder is the Postgres-backed audit trail for market/creditagency.Recorder:
// every committed operation is appended as one row, never read back by the protocol
// itself (SPEC_FULL.md §2 — it is purely an observability sink).
type EventRecorder struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEventRecorder wraps an already-opened *sql.DB (see NewDB) as a Recorder. A nil
// logger installs a no-op one.
func NewEventRecorder(database *sql.DB, logger *zap.Logger) *EventRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRecorder{db: database, logger: logger}
}

// Record appends one event row. Recorder has no error return (an audit-trail write
// must never fail the operation it is recording), so a write failure is logged and
// swallowed.
func (r *EventRecorder) Record(kind string, fields map[string]string) {
	if r.db == nil {
		return
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		r.logger.Error("event recorder: marshal fields", zap.String("kind", kind), zap.Error(err))
		return
	}

	recordedAt := ourtime.UnixNanoTime(time.Now())

	const insert = `INSERT INTO isotonic_events (kind, fields, recorded_at) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(insert, kind, payload, time.Time(recordedAt)); err != nil {
		r.logger.Error("event recorder: insert event", zap.String("kind", kind), zap.Error(err))
	}
}
