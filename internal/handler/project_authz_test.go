package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/launchform/intake-api/internal/model"
	"github.com/launchform/intake-api/internal/repository"
)

// The mutation endpoints load the acting user and the project through
// real repositories, so these tests run them over a mocked database
// and assert who may write: the owner and an admin succeed, anyone
// else is refused.

var (
	userCols = []string{"id", "external_id", "email", "password_hash",
		"first_name", "last_name", "role", "created_at", "updated_at"}
	projectCols = []string{"id", "user_id", "business_name", "industry", "website_type",
		"features", "number_of_pages", "deadline", "budget", "estimated_cost",
		"notes", "status", "created_at", "updated_at"}
)

func userRows(id uint64, role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userCols).
		AddRow(id, nil, "someone@example.com", "", "Ona", "Ward", role, now, now)
}

func projectRows(id, ownerID uint64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(projectCols).
		AddRow(id, ownerID, "Acme Bakery", nil, string(model.WebsiteBusiness),
			[]byte(`["Responsive Design"]`), 5, now.AddDate(0, 1, 0), 3000.0, 2400.0,
			nil, status, now, now)
}

func newMockedHandler(t *testing.T) (*ProjectHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	h := NewProjectHandler(
		repository.NewUserRepo(db),
		repository.NewProjectRepo(db),
		repository.NewPaymentRepo(db),
	)
	return h, mock
}

func patchStatus(h *ProjectHandler, actorID, projectID uint64, role, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/v1/projects/"+strconv.FormatUint(projectID, 10), strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", actorID)
	c.Set("role", role)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(projectID, 10))
	_ = h.UpdateStatus(c)
	return rec
}

func TestUpdateStatusForbidsNonOwner(t *testing.T) {
	h, mock := newMockedHandler(t)

	// Actor 2 is a regular user; project 10 belongs to user 1.
	mock.ExpectQuery("FROM users WHERE id=").
		WillReturnRows(userRows(2, model.RoleUser))
	mock.ExpectQuery("FROM project_forms WHERE id=").
		WillReturnRows(projectRows(10, 1, model.StatusSubmitted))

	rec := patchStatus(h, 2, 10, model.RoleUser, `{"status":"COMPLETED"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "forbidden") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusAllowsOwner(t *testing.T) {
	h, mock := newMockedHandler(t)

	mock.ExpectQuery("FROM users WHERE id=").
		WillReturnRows(userRows(1, model.RoleUser))
	mock.ExpectQuery("FROM project_forms WHERE id=").
		WillReturnRows(projectRows(10, 1, model.StatusSubmitted))
	mock.ExpectExec("UPDATE project_forms SET status=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM project_forms WHERE id=").
		WillReturnRows(projectRows(10, 1, model.StatusCompleted))

	rec := patchStatus(h, 1, 10, model.RoleUser, `{"status":"COMPLETED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), model.StatusCompleted) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusAllowsAdminOnForeignProject(t *testing.T) {
	h, mock := newMockedHandler(t)

	// Actor 3 is an admin and does not own project 10.
	mock.ExpectQuery("FROM users WHERE id=").
		WillReturnRows(userRows(3, model.RoleAdmin))
	mock.ExpectQuery("FROM project_forms WHERE id=").
		WillReturnRows(projectRows(10, 1, model.StatusSubmitted))
	mock.ExpectExec("UPDATE project_forms SET status=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM project_forms WHERE id=").
		WillReturnRows(projectRows(10, 1, model.StatusInProgress))

	rec := patchStatus(h, 3, 10, model.RoleAdmin, `{"status":"IN_PROGRESS"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusMissingProjectIs404(t *testing.T) {
	h, mock := newMockedHandler(t)

	mock.ExpectQuery("FROM users WHERE id=").
		WillReturnRows(userRows(1, model.RoleUser))
	mock.ExpectQuery("FROM project_forms WHERE id=").
		WillReturnRows(sqlmock.NewRows(projectCols))

	rec := patchStatus(h, 1, 99, model.RoleUser, `{"status":"CANCELLED"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
