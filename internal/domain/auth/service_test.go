// Traces: FR-141
// No t.Parallel() — token issuance reads BEACON_JWT_SECRET via t.Setenv.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	pkgauth "github.com/matiasleandrokruk/beacon/pkg/auth"
	"github.com/matiasleandrokruk/beacon/internal/infra/sqlite"
)

func openAuthTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("sqlite.NewDB failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("sqlite.MigrateUp failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestService_CreateClient(t *testing.T) {
	svc := NewService(openAuthTestDB(t))

	client, err := svc.CreateClient(context.Background(), "agent-host", "super-secret")
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}
	if client.ID == "" || client.Name != "agent-host" {
		t.Fatalf("unexpected client: %+v", client)
	}
}

func TestService_CreateClient_DuplicateName_Fails(t *testing.T) {
	svc := NewService(openAuthTestDB(t))

	if _, err := svc.CreateClient(context.Background(), "agent-host", "a"); err != nil {
		t.Fatalf("first CreateClient returned error: %v", err)
	}
	_, err := svc.CreateClient(context.Background(), "agent-host", "b")
	if !errors.Is(err, ErrClientNameTaken) {
		t.Fatalf("expected ErrClientNameTaken, got: %v", err)
	}
}

func TestService_CreateClient_Validation(t *testing.T) {
	svc := NewService(openAuthTestDB(t))

	if _, err := svc.CreateClient(context.Background(), "  ", "secret"); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, err := svc.CreateClient(context.Background(), "agent-host", ""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestService_IssueToken(t *testing.T) {
	t.Setenv("BEACON_JWT_SECRET", "test-secret")

	svc := NewService(openAuthTestDB(t))
	created, err := svc.CreateClient(context.Background(), "agent-host", "super-secret")
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}

	result, err := svc.IssueToken(context.Background(), "agent-host", "super-secret")
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	if result.ClientID != created.ID {
		t.Fatalf("ClientID = %q; want %q", result.ClientID, created.ID)
	}

	claims, err := pkgauth.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("ParseJWT returned error: %v", err)
	}
	if claims.ClientID != created.ID {
		t.Fatalf("token ClientID = %q; want %q", claims.ClientID, created.ID)
	}
}

func TestService_IssueToken_WrongSecret_Fails(t *testing.T) {
	t.Setenv("BEACON_JWT_SECRET", "test-secret")

	svc := NewService(openAuthTestDB(t))
	if _, err := svc.CreateClient(context.Background(), "agent-host", "super-secret"); err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}

	_, err := svc.IssueToken(context.Background(), "agent-host", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestService_IssueToken_UnknownClient_Fails(t *testing.T) {
	t.Setenv("BEACON_JWT_SECRET", "test-secret")

	svc := NewService(openAuthTestDB(t))
	_, err := svc.IssueToken(context.Background(), "nobody", "secret")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}
