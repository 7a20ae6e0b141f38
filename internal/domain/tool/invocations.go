package tool

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/matiasleandrokruk/beacon/pkg/uuid"
)

// Invocation is one recorded tool execution for a session.
type Invocation struct {
	ID         string
	SessionID  string
	ToolName   string
	Params     json.RawMessage
	Result     json.RawMessage
	Error      *string
	DurationMs int64
	CreatedAt  time.Time
}

// InvocationLog persists tool executions (append-only).
type InvocationLog struct {
	db *sql.DB
}

func NewInvocationLog(db *sql.DB) *InvocationLog {
	return &InvocationLog{db: db}
}

// Record inserts one invocation row. Params defaults to {} when empty.
func (l *InvocationLog) Record(ctx context.Context, inv *Invocation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewV7().String()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	params := inv.Params
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	var result any
	if len(inv.Result) > 0 {
		result = []byte(inv.Result)
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO tool_invocation (
			id, session_id, tool_name, params, result, error, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.ID,
		inv.SessionID,
		inv.ToolName,
		[]byte(params),
		result,
		inv.Error,
		inv.DurationMs,
		inv.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// ListBySession returns all invocations for a session in execution order.
func (l *InvocationLog) ListBySession(ctx context.Context, sessionID string) ([]*Invocation, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, session_id, tool_name, params, result, error, duration_ms, created_at
		FROM tool_invocation
		WHERE session_id = ?
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Invocation, 0)
	for rows.Next() {
		inv, scanErr := scanInvocation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanInvocation(rows *sql.Rows) (*Invocation, error) {
	var (
		inv          Invocation
		resultRaw    []byte
		errorRaw     sql.NullString
		createdAtRaw string
	)

	if err := rows.Scan(
		&inv.ID,
		&inv.SessionID,
		&inv.ToolName,
		&inv.Params,
		&resultRaw,
		&errorRaw,
		&inv.DurationMs,
		&createdAtRaw,
	); err != nil {
		return nil, err
	}

	if len(resultRaw) > 0 {
		inv.Result = json.RawMessage(resultRaw)
	}
	if errorRaw.Valid {
		v := errorRaw.String
		inv.Error = &v
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAtRaw); err == nil {
		inv.CreatedAt = ts
	}

	return &inv, nil
}
