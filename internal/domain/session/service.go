// Package session manages agent sessions: creation, persistence of the
// session state document, and resume/continue across process boundaries.
// Each live session owns one mcpusage.Tracker; the service is the only
// place that moves tracker state in and out of storage.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matiasleandrokruk/beacon/internal/domain/mcpusage"
	"github.com/matiasleandrokruk/beacon/internal/infra/eventbus"
	"github.com/matiasleandrokruk/beacon/pkg/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one persisted agent session.
type Session struct {
	ID        string
	Title     string
	State     json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service is the session store plus the registry of live trackers.
type Service struct {
	db          *sql.DB
	markerValue string

	mu       sync.Mutex
	trackers map[string]*mcpusage.Tracker
}

// NewService creates a session service. markerValue is the configured MCP
// capability flag handed to every tracker it creates.
func NewService(db *sql.DB, markerValue string) *Service {
	return &Service{
		db:          db,
		markerValue: markerValue,
		trackers:    make(map[string]*mcpusage.Tracker),
	}
}

// Tracker returns the live MCP usage tracker for a session, creating it on
// first access. The tracker starts unused; Resume merges persisted state in.
func (s *Service) Tracker(sessionID string) *mcpusage.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.trackers[sessionID]
	if !ok {
		tr = mcpusage.NewTracker(s.markerValue)
		s.trackers[sessionID] = tr
	}
	return tr
}

// Create inserts a new session with an empty state document.
func (s *Service) Create(ctx context.Context, title string) (*Session, error) {
	now := time.Now().UTC()
	item := &Session{
		ID:        uuid.NewV7().String(),
		Title:     title,
		State:     json.RawMessage(`{}`),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (id, title, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		item.ID,
		item.Title,
		[]byte(item.State),
		item.CreatedAt.Format(time.RFC3339Nano),
		item.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// Get retrieves a session by id.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, state, created_at, updated_at
		FROM session
		WHERE id = ?
	`, id)

	item, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List returns sessions ordered by recent activity, with pagination.
func (s *Service) List(ctx context.Context, limit, offset int64) ([]*Session, error) {
	if limit <= 0 {
		limit = 25
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, state, created_at, updated_at
		FROM session
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Session, 0)
	for rows.Next() {
		item, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveState merges the live tracker snapshot into the session state document
// under mcpusage.StateKey and persists the result. Other keys in the
// document belong to the host and are carried through untouched.
func (s *Service) SaveState(ctx context.Context, id string) (*Session, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := decodeStateDoc(existing.State)

	snapshot, err := json.Marshal(s.Tracker(id).Snapshot())
	if err != nil {
		return nil, fmt.Errorf("marshal usage snapshot: %w", err)
	}
	doc[mcpusage.StateKey] = snapshot

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal state document: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE session SET state = ?, updated_at = ? WHERE id = ?
	`, raw, now.Format(time.RFC3339Nano), id)
	if err != nil {
		return nil, err
	}

	existing.State = raw
	existing.UpdatedAt = now
	return existing, nil
}

// Resume loads a session and merges its persisted MCP usage snapshot into
// the live tracker. Restore is an OR-merge: a "not used" snapshot never
// clears a flag already set during this process lifetime.
func (s *Service) Resume(ctx context.Context, id string) (*Session, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := decodeStateDoc(existing.State)
	state := mcpusage.DecodeState(doc[mcpusage.StateKey])
	s.Tracker(id).Restore(state)

	return existing, nil
}

// Touch bumps a session's updated_at. Used by the activity loop.
func (s *Service) Touch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE session SET updated_at = ? WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// StartActivityLoop consumes tool.executed events and bumps the session
// activity timestamp for each. Run it in a goroutine; it returns when ctx is
// cancelled.
func (s *Service) StartActivityLoop(ctx context.Context, bus eventbus.EventBus) {
	events := bus.Subscribe(eventbus.TopicToolExecuted)
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-events:
			payload, ok := evt.Payload.(eventbus.ToolExecuted)
			if !ok {
				continue
			}
			_ = s.Touch(ctx, payload.SessionID)
		}
	}
}

// decodeStateDoc parses a state document into its top-level keys. A corrupt
// document degrades to an empty one instead of blocking save/resume.
func decodeStateDoc(raw json.RawMessage) map[string]json.RawMessage {
	doc := make(map[string]json.RawMessage)
	if len(raw) == 0 {
		return doc
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return make(map[string]json.RawMessage)
	}
	return doc
}

type sessionScanner interface {
	Scan(dest ...any) error
}

func scanSession(scan sessionScanner) (*Session, error) {
	var (
		item         Session
		stateRaw     []byte
		createdAtRaw string
		updatedAtRaw string
	)

	if err := scan.Scan(
		&item.ID,
		&item.Title,
		&stateRaw,
		&createdAtRaw,
		&updatedAtRaw,
	); err != nil {
		return nil, err
	}
	item.State = json.RawMessage(stateRaw)

	if ts, err := time.Parse(time.RFC3339Nano, createdAtRaw); err == nil {
		item.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAtRaw); err == nil {
		item.UpdatedAt = ts
	}

	return &item, nil
}
