package persistence

import (
	"context"
	"time"
)

// AppointmentRepository stores appointment records and their protocol fields.
//
// TransitionStatus must be atomic: the update applies only while the record is
// still pending, so two concurrent decisions can never both observe pending
// and both transition.
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appointment Appointment) (Appointment, error)
	GetAppointment(ctx context.Context, id int64) (Appointment, error)
	TransitionStatus(ctx context.Context, id int64, to Status, at time.Time) (Appointment, error)
}
