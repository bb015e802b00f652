package workers

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"authgate/internal/engine/auth"
)

func TestTrimAuditLogsPerPlan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "plan_tier"}).
		AddRow("org_free", "free").
		AddRow("org_pro", "pro")

	mock.ExpectQuery("SELECT id, plan_tier FROM organizations").WillReturnRows(rows)

	// One delete per org; the free org's cutoff is more recent than the pro
	// org's, so its argument is the larger timestamp.
	mock.ExpectExec("DELETE FROM audit_logs").
		WithArgs("org_free", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM audit_logs").
		WithArgs("org_pro", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	gate := auth.NewEntitlementGate("production")
	if err := TrimAuditLogs(db, gate, 365); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}
