package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// DefaultImportLogLimit caps QueryImportLogs when the filter has no limit.
const DefaultImportLogLimit = 50

// ImportLog is one ingest run as recorded for a user.
type ImportLog struct {
	ID               int64            `json:"id"`
	UserID           int              `json:"user_id"`
	CreatedAt        time.Time        `json:"created_at"`
	Source           string           `json:"source"`
	Status           string           `json:"status"`
	WorkoutsReceived int              `json:"workouts_received"`
	WorkoutsInserted int              `json:"workouts_inserted"`
	WorkoutsRejected int              `json:"workouts_rejected"`
	SetsReceived     int              `json:"sets_received"`
	DurationMs       *int             `json:"duration_ms"`
	ErrorMessage     *string          `json:"error_message"`
	Metadata         *json.RawMessage `json:"metadata"`
}

// ImportLogFilter selects import logs. An empty Source matches every source.
type ImportLogFilter struct {
	UserID int
	Source string
	Limit  int
}

// RejectedMetadata encodes the names of rejected workouts for ImportLog.Metadata.
// It returns nil when nothing was rejected.
func RejectedMetadata(names []string) *json.RawMessage {
	if len(names) == 0 {
		return nil
	}
	b, err := json.Marshal(map[string][]string{"rejected": names})
	if err != nil {
		return nil
	}
	raw := json.RawMessage(b)
	return &raw
}

// InsertImportLog records one ingest run and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, entry ImportLog) (int64, error) {
	const q = `INSERT INTO import_logs (user_id, source, status, workouts_received, workouts_inserted,
		workouts_rejected, sets_received, duration_ms, error_message, metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id`

	var id int64
	if err := db.Pool.QueryRow(ctx, q,
		entry.UserID, entry.Source, entry.Status,
		entry.WorkoutsReceived, entry.WorkoutsInserted, entry.WorkoutsRejected, entry.SetsReceived,
		entry.DurationMs, entry.ErrorMessage, entry.Metadata,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("inserting import log for %s: %w", entry.Source, err)
	}
	return id, nil
}

// QueryImportLogs returns a user's import logs, newest first.
func (db *DB) QueryImportLogs(ctx context.Context, f ImportLogFilter) ([]ImportLog, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultImportLogLimit
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, user_id, created_at, source, status, workouts_received, workouts_inserted,
		workouts_rejected, sets_received, duration_ms, error_message, metadata
		FROM import_logs WHERE user_id = $1`)
	args := []any{f.UserID}
	if f.Source != "" {
		args = append(args, f.Source)
		fmt.Fprintf(&sb, " AND source = $%d", len(args))
	}
	args = append(args, f.Limit)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := db.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	logs, err := pgx.CollectRows(rows, scanImportLog)
	if err != nil {
		return nil, fmt.Errorf("scanning import logs: %w", err)
	}
	if logs == nil {
		logs = []ImportLog{}
	}
	return logs, nil
}

func scanImportLog(row pgx.CollectableRow) (ImportLog, error) {
	var l ImportLog
	err := row.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.Source, &l.Status,
		&l.WorkoutsReceived, &l.WorkoutsInserted, &l.WorkoutsRejected, &l.SetsReceived,
		&l.DurationMs, &l.ErrorMessage, &l.Metadata)
	return l, err
}
