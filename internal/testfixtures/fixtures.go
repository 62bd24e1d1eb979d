package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/confirmation-links/internal/persistence"
)

var appointmentCounter uint64

var referenceTime = time.Date(2025, time.October, 14, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// AppointmentFixture represents a deterministic appointment record that can
// be materialised for application or persistence tests.
type AppointmentFixture struct {
	ClientName  string
	ClientPhone string
	ScheduledAt string
	Status      persistence.Status
	SigningSalt string
	ExpiresAt   int64
}

// AppointmentOption configures the generated appointment fixture.
type AppointmentOption func(*AppointmentFixture)

// NewAppointmentFixture returns a deterministic pending appointment fixture
// with optional overrides. The expiry defaults to one hour past the reference
// time.
func NewAppointmentFixture(opts ...AppointmentOption) AppointmentFixture {
	idx := atomic.AddUint64(&appointmentCounter, 1)
	fixture := AppointmentFixture{
		ClientName:  fmt.Sprintf("Client %03d", idx),
		ClientPhone: fmt.Sprintf("55359999%05d", idx),
		ScheduledAt: "15/10/2025 10:00",
		Status:      persistence.StatusPending,
		SigningSalt: fmt.Sprintf("salt%04d", idx),
		ExpiresAt:   referenceTime.Add(time.Hour).Unix(),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithStatus overrides the generated status.
func WithStatus(status persistence.Status) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.Status = status
	}
}

// WithSigningSalt overrides the generated signing salt.
func WithSigningSalt(salt string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.SigningSalt = salt
	}
}

// WithExpiresAt overrides the generated expiry.
func WithExpiresAt(expiresAt int64) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.ExpiresAt = expiresAt
	}
}

// Record materialises the fixture as a persistence model.
func (f AppointmentFixture) Record() persistence.Appointment {
	return persistence.Appointment{
		ClientName:  f.ClientName,
		ClientPhone: f.ClientPhone,
		ScheduledAt: f.ScheduledAt,
		Status:      f.Status,
		SigningSalt: f.SigningSalt,
		ExpiresAt:   f.ExpiresAt,
	}
}
