// Package auth implements API client registration and token issuance.
// Secrets are bcrypt-hashed before storage; tokens are signed JWTs carrying
// the client id claim.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/matiasleandrokruk/beacon/pkg/auth"
	"github.com/matiasleandrokruk/beacon/pkg/uuid"
)

// ErrInvalidCredentials is returned by IssueToken when the client name or
// secret is incorrect. A single error for both cases avoids leaking whether
// a client name exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrClientNameTaken is returned by CreateClient when the name is already registered.
var ErrClientNameTaken = errors.New("client name already registered")

// Client is a registered API consumer.
type Client struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// TokenResult is returned after successful token issuance.
type TokenResult struct {
	Token    string
	ClientID string
}

// Service defines the authentication business operations.
type Service interface {
	CreateClient(ctx context.Context, name, secret string) (*Client, error)
	IssueToken(ctx context.Context, name, secret string) (*TokenResult, error)
}

// service is the concrete implementation backed by SQLite.
type service struct {
	db *sql.DB
}

// NewService creates a Service backed by the provided DB.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// CreateClient registers a new API client. The plaintext secret is never stored.
func (s *service) CreateClient(ctx context.Context, name, secret string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("client name is required")
	}
	if secret == "" {
		return nil, fmt.Errorf("client secret is required")
	}

	hash, err := pkgauth.HashSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	item := &Client{
		ID:        uuid.NewV7().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO api_client (id, name, secret_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, item.ID, item.Name, hash, item.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrClientNameTaken
		}
		return nil, err
	}

	return item, nil
}

// IssueToken verifies client credentials and returns a signed JWT.
func (s *service) IssueToken(ctx context.Context, name, secret string) (*TokenResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, secret_hash FROM api_client WHERE name = ? LIMIT 1
	`, strings.TrimSpace(name))

	var (
		clientID   string
		secretHash string
	)
	err := row.Scan(&clientID, &secretHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !pkgauth.VerifySecret(secretHash, secret) {
		return nil, ErrInvalidCredentials
	}

	token, err := pkgauth.GenerateJWT(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &TokenResult{Token: token, ClientID: clientID}, nil
}
