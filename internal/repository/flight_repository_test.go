package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
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

func beginTx(t *testing.T, db *sql.DB) *sql.Tx {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx
}

func TestReserveSeatTxDecrementsUnderLock(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFlightRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seats_available, status").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats_available", "status"}).AddRow(3, "SCHEDULED"))
	mock.ExpectExec("UPDATE flights SET seats_available = seats_available - 1").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx := beginTx(t, db)
	if err := repo.ReserveSeatTx(context.Background(), tx, 7); err != nil {
		t.Fatalf("ReserveSeatTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReserveSeatTxSoldOut(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFlightRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seats_available, status").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats_available", "status"}).AddRow(0, "SCHEDULED"))
	mock.ExpectRollback()

	tx := beginTx(t, db)
	if err := repo.ReserveSeatTx(context.Background(), tx, 7); !errors.Is(err, ErrNoSeats) {
		t.Fatalf("want ErrNoSeats, got %v", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReserveSeatTxNotBookable(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFlightRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seats_available, status").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"seats_available", "status"}).AddRow(5, "AIRBORNE"))
	mock.ExpectRollback()

	tx := beginTx(t, db)
	if err := repo.ReserveSeatTx(context.Background(), tx, 7); !errors.Is(err, ErrFlightUnavailable) {
		t.Fatalf("want ErrFlightUnavailable, got %v", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReserveSeatTxMissingFlight(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFlightRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT seats_available, status").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	tx := beginTx(t, db)
	if err := repo.ReserveSeatTx(context.Background(), tx, 99); !errors.Is(err, ErrFlightNotFound) {
		t.Fatalf("want ErrFlightNotFound, got %v", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReleaseSeatTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFlightRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE flights SET seats_available = seats_available \+ 1`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx := beginTx(t, db)
	if err := repo.ReleaseSeatTx(context.Background(), tx, 7); err != nil {
		t.Fatalf("ReleaseSeatTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAdjustSeatsInsufficientStock(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFlightRepo(db)

	// Positive delta is conditional on remaining stock: zero rows means
	// the guard rejected the adjustment.
	mock.ExpectExec("UPDATE flights").
		WithArgs(int64(5), uint64(7), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.AdjustSeats(context.Background(), 5, 7)
	if err != nil {
		t.Fatalf("AdjustSeats: %v", err)
	}
	if n != 0 {
		t.Fatalf("want 0 affected rows, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
