package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/aereosky/flight-booking-api/internal/repository"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestContext(t *testing.T, method, path, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", role)
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return m
}

func newReservationHandler(db *sql.DB) *ReservationHandler {
	return NewReservationHandler(repository.NewReservationRepo(db), repository.NewFlightRepo(db))
}

func TestCreateReservationReservesSeatAndCommits(t *testing.T) {
	db, mock := newMock(t)
	h := newReservationHandler(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seats_available, status").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats_available", "status"}).AddRow(5, "SCHEDULED"))
	mock.ExpectExec("UPDATE flights SET seats_available = seats_available - 1").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(5), uint64(7), uint64(2)).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT id, user_id, flight_id, category_id, reserved_at, status").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "flight_id", "category_id", "reserved_at", "status"}).
			AddRow(11, 5, 7, 2, time.Now(), "PENDING"))
	mock.ExpectCommit()

	c, rec := newTestContext(t, http.MethodPost, "/reservas",
		`{"flight_id":7,"category_id":2}`, 5, "CUSTOMER")
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["status"] != "PENDING" {
		t.Errorf("status = %v, want PENDING", body["status"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateReservationSoldOutRollsBack(t *testing.T) {
	db, mock := newMock(t)
	h := newReservationHandler(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seats_available, status").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats_available", "status"}).AddRow(0, "SCHEDULED"))
	mock.ExpectRollback()

	c, rec := newTestContext(t, http.MethodPost, "/reservas",
		`{"flight_id":7,"category_id":2}`, 5, "CUSTOMER")
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCancelReservationReleasesSeat(t *testing.T) {
	db, mock := newMock(t)
	h := newReservationHandler(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT flight_id, user_id, status FROM reservations").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"flight_id", "user_id", "status"}).AddRow(7, 5, "PENDING"))
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs("CANCELLED", uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE flights SET seats_available = seats_available \+ 1`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newTestContext(t, http.MethodPatch, "/reservas/11/cancelar", "", 5, "CUSTOMER")
	c.SetParamNames("id")
	c.SetParamValues("11")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCancelNonPendingReturnsConflictWithState(t *testing.T) {
	db, mock := newMock(t)
	h := newReservationHandler(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT flight_id, user_id, status FROM reservations").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"flight_id", "user_id", "status"}).AddRow(7, 5, "CONFIRMED"))
	mock.ExpectRollback()

	c, rec := newTestContext(t, http.MethodPatch, "/reservas/11/cancelar", "", 5, "CUSTOMER")
	c.SetParamNames("id")
	c.SetParamValues("11")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "CONFIRMED" {
		t.Errorf("body status = %v, want CONFIRMED", body["status"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLegacyDeleteCancelsWithoutReleasingSeat(t *testing.T) {
	db, mock := newMock(t)
	h := newReservationHandler(db)

	// No flight update is expected anywhere in this script.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT flight_id, user_id, status FROM reservations").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"flight_id", "user_id", "status"}).AddRow(7, 5, "PENDING"))
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs("CANCELLED", uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newTestContext(t, http.MethodDelete, "/reservas/11", "", 5, "CUSTOMER")
	c.SetParamNames("id")
	c.SetParamValues("11")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCancelForeignReservationForbidden(t *testing.T) {
	db, mock := newMock(t)
	h := newReservationHandler(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT flight_id, user_id, status FROM reservations").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"flight_id", "user_id", "status"}).AddRow(7, 99, "PENDING"))
	mock.ExpectRollback()

	c, rec := newTestContext(t, http.MethodPatch, "/reservas/11/cancelar", "", 5, "CUSTOMER")
	c.SetParamNames("id")
	c.SetParamValues("11")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
