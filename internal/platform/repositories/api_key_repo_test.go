package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestFindActiveByLookupPrefix(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAPIKeyRepository(db)

	t.Run("Active Key", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "organization_id", "project_id", "created_by", "name", "secret_digest", "digest_algo", "fingerprint", "display_prefix", "created_at", "expires_at"}).
			AddRow("key_1", "org_1", nil, "usr_1", "ci key", "$2a$10$digest", "bcrypt", "fp", "sk_abc...", 1700000000, nil)

		mock.ExpectQuery("SELECT (.+) FROM api_keys").
			WithArgs("sk_abc", sqlmock.AnyArg()).
			WillReturnRows(rows)

		keys, err := repo.FindActiveByLookupPrefix(context.Background(), "sk_abc")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(keys) != 1 {
			t.Fatalf("Expected 1 key, got %d", len(keys))
		}
		if keys[0].LookupPrefix != "sk_abc" {
			t.Errorf("Expected lookup prefix sk_abc, got %s", keys[0].LookupPrefix)
		}
		if keys[0].ProjectID != nil {
			t.Error("Expected nil project id")
		}
	})

	t.Run("No Match", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM api_keys").
			WithArgs("sk_zzz", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "project_id", "created_by", "name", "secret_digest", "digest_algo", "fingerprint", "display_prefix", "created_at", "expires_at"}))

		keys, err := repo.FindActiveByLookupPrefix(context.Background(), "sk_zzz")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(keys) != 0 {
			t.Errorf("Expected no keys, got %d", len(keys))
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestRevoke(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAPIKeyRepository(db)

	mock.ExpectExec("UPDATE api_keys SET revoked_at").
		WithArgs(sqlmock.AnyArg(), "key_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Revoke("key_1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestRevokeExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAPIKeyRepository(db)

	mock.ExpectExec("UPDATE api_keys SET revoked_at").
		WithArgs(int64(1700000000), int64(1700000000)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	swept, err := repo.RevokeExpired(1700000000)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if swept != 3 {
		t.Errorf("Expected 3 swept keys, got %d", swept)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}
