package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/confirmation-links/internal/persistence"
)

// AppointmentRepository implements persistence.AppointmentRepository using SQLite.
type AppointmentRepository struct {
	storage *Storage
}

// NewAppointmentRepository creates a SQLite backed appointment repository.
func NewAppointmentRepository(storage *Storage) *AppointmentRepository {
	return &AppointmentRepository{storage: storage}
}

// CreateAppointment inserts a new record in a single statement, letting SQLite
// assign the identifier. The signing salt and expiry land in the same insert
// as the pending status.
func (r *AppointmentRepository) CreateAppointment(ctx context.Context, appointment persistence.Appointment) (persistence.Appointment, error) {
	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	if appointment.Status == "" {
		appointment.Status = persistence.StatusPending
	}

	query := `
		INSERT INTO appointments (client_name, client_phone, scheduled_at, status, signing_salt, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.storage.db.ExecContext(ctx, query,
		appointment.ClientName,
		appointment.ClientPhone,
		appointment.ScheduledAt,
		string(appointment.Status),
		appointment.SigningSalt,
		appointment.ExpiresAt,
		appointment.CreatedAt.Format(time.RFC3339),
		appointment.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Appointment{}, fmt.Errorf("sqlite: failed to insert appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Appointment{}, fmt.Errorf("sqlite: failed to read inserted id: %w", err)
	}

	appointment.ID = id
	return appointment, nil
}

// GetAppointment retrieves an appointment by its identifier.
func (r *AppointmentRepository) GetAppointment(ctx context.Context, id int64) (persistence.Appointment, error) {
	query := `
		SELECT id, client_name, client_phone, scheduled_at, status, signing_salt, expires_at, created_at, updated_at
		FROM appointments
		WHERE id = ?
	`
	return r.scanAppointment(r.storage.db.QueryRowContext(ctx, query, id))
}

// TransitionStatus applies a pending-only compare-and-set on the status
// column. When zero rows change, a follow-up read distinguishes a missing
// record from one that was already decided.
func (r *AppointmentRepository) TransitionStatus(ctx context.Context, id int64, to persistence.Status, at time.Time) (persistence.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.storage.db.ExecContext(ctx, query,
		string(to),
		at.UTC().Format(time.RFC3339),
		id,
		string(persistence.StatusPending),
	)
	if err != nil {
		return persistence.Appointment{}, fmt.Errorf("sqlite: failed to transition status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.Appointment{}, fmt.Errorf("sqlite: failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		current, err := r.GetAppointment(ctx, id)
		if err != nil {
			return persistence.Appointment{}, err
		}
		return current, persistence.ErrStatusConflict
	}

	return r.GetAppointment(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *AppointmentRepository) scanAppointment(row rowScanner) (persistence.Appointment, error) {
	var (
		appointment persistence.Appointment
		status      string
		createdAt   string
		updatedAt   string
	)

	err := row.Scan(
		&appointment.ID,
		&appointment.ClientName,
		&appointment.ClientPhone,
		&appointment.ScheduledAt,
		&status,
		&appointment.SigningSalt,
		&appointment.ExpiresAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Appointment{}, persistence.ErrNotFound
		}
		return persistence.Appointment{}, fmt.Errorf("sqlite: failed to scan appointment: %w", err)
	}

	appointment.Status = persistence.Status(status)
	if appointment.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Appointment{}, fmt.Errorf("sqlite: invalid created_at value: %w", err)
	}
	if appointment.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Appointment{}, fmt.Errorf("sqlite: invalid updated_at value: %w", err)
	}

	return appointment, nil
}
