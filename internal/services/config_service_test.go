package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/akaris/go-dns-admin-backend/internal/repo"
)

func newConfigSvc(t *testing.T) *ConfigService {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := repo.EnsureConfigRow(db); err != nil {
		t.Fatalf("ensure row: %v", err)
	}
	return &ConfigService{DB: db}
}

func TestConfigGet_SeededDocument(t *testing.T) {
	svc := newConfigSvc(t)

	doc, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Version != 1 || doc.Data != "{}" {
		t.Fatalf("unexpected seed document: %+v", doc)
	}
}

func TestConfigUpdate_RoundTrip(t *testing.T) {
	svc := newConfigSvc(t)
	ctx := context.Background()

	updated, err := svc.Update(ctx, 1, `{"upstreams":["1.1.1.1","9.9.9.9"]}`)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("version = %d, want 2", updated.Version)
	}

	doc, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Version != 2 || doc.Data != `{"upstreams":["1.1.1.1","9.9.9.9"]}` {
		t.Fatalf("unexpected document after update: %+v", doc)
	}
}

func TestConfigUpdate_RejectsMalformedJSON(t *testing.T) {
	svc := newConfigSvc(t)

	if _, err := svc.Update(context.Background(), 1, `{not json`); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}

	// The document must be untouched.
	doc, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Version != 1 {
		t.Fatalf("rejected update still bumped the version: %+v", doc)
	}
}

func TestConfigUpdate_VersionConflict(t *testing.T) {
	svc := newConfigSvc(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, 1, `{"a":1}`); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if _, err := svc.Update(ctx, 1, `{"b":2}`); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}
}
