package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// AppointmentStore captures the persistence interactions for appointment
// records. Implementations return ErrNotFound for missing records and
// ErrStatusConflict when a transition finds the record no longer pending; a
// conflict is reported together with the record's current state so callers
// can apply their idempotence policy.
type AppointmentStore interface {
	CreateAppointment(ctx context.Context, appointment Appointment) (Appointment, error)
	GetAppointment(ctx context.Context, id int64) (Appointment, error)
	TransitionStatus(ctx context.Context, id int64, to Status, at time.Time) (Appointment, error)
}

// LinkSigner derives and checks capability-link signatures.
type LinkSigner interface {
	Sign(id int64, salt string) string
	Verify(id int64, salt, presented string) bool
}

// Notifier receives persisted decisions for best-effort outbound delivery.
// Implementations must not block and must never surface failures to the
// decision path.
type Notifier interface {
	Notify(event DecisionEvent)
}

// SaltGenerator produces the per-record random salt mixed into signatures.
type SaltGenerator func() string

// ConfirmationService coordinates the capability-link protocol: minting link
// sets, validating inbound decisions, recording the state transition, and
// dispatching the decision notification.
type ConfirmationService struct {
	store        AppointmentStore
	signer       LinkSigner
	notifier     Notifier
	generateSalt SaltGenerator
	now          func() time.Time
	defaultTTL   time.Duration
	logger       *slog.Logger
}

// NewConfirmationService constructs a ConfirmationService with the provided dependencies.
func NewConfirmationService(store AppointmentStore, signer LinkSigner, notifier Notifier, generateSalt SaltGenerator, now func() time.Time, defaultTTL time.Duration) *ConfirmationService {
	return NewConfirmationServiceWithLogger(store, signer, notifier, generateSalt, now, defaultTTL, nil)
}

// NewConfirmationServiceWithLogger constructs a ConfirmationService with a specified logger.
func NewConfirmationServiceWithLogger(store AppointmentStore, signer LinkSigner, notifier Notifier, generateSalt SaltGenerator, now func() time.Time, defaultTTL time.Duration, logger *slog.Logger) *ConfirmationService {
	if generateSalt == nil {
		generateSalt = RandomSalt
	}
	if now == nil {
		now = time.Now
	}
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &ConfirmationService{
		store:        store,
		signer:       signer,
		notifier:     notifier,
		generateSalt: generateSalt,
		now:          now,
		defaultTTL:   defaultTTL,
		logger:       defaultLogger(logger),
	}
}

// RandomSalt returns 8 cryptographically random bytes, hex encoded. A
// predictable salt would defeat the signature's unforgeability.
func RandomSalt() string {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		panic(fmt.Sprintf("salt generation failed: %v", err))
	}
	return hex.EncodeToString(buf)
}

func (s *ConfirmationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ConfirmationService", operation, attrs...)
}

// Mint creates a pending appointment record with a fresh salt and expiry and
// returns the three relative link paths embedding the id and signature. Each
// minted link set is independent: compromising one record's salt or signature
// never affects another's.
func (s *ConfirmationService) Mint(ctx context.Context, params MintParams) (result MintResult, err error) {
	if s == nil {
		err = fmt.Errorf("ConfirmationService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("appointment store not configured")
		return
	}
	if s.signer == nil {
		err = fmt.Errorf("link signer not configured")
		return
	}

	logger := s.loggerWith(ctx, "Mint")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "mint failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("appointment_id", result.ID).InfoContext(ctx, "link set minted")
	}()

	if vErr := validateMintParams(params); vErr.HasErrors() {
		err = vErr
		return
	}

	ttl := s.defaultTTL
	if params.TTL != nil {
		ttl = *params.TTL
	}

	now := s.now()
	record := Appointment{
		ClientName:  strings.TrimSpace(params.ClientName),
		ClientPhone: strings.TrimSpace(params.ClientPhone),
		ScheduledAt: strings.TrimSpace(params.ScheduledAt),
		Status:      StatusPending,
		SigningSalt: s.generateSalt(),
		ExpiresAt:   now.Add(ttl).Unix(),
	}

	record, err = s.store.CreateAppointment(ctx, record)
	if err != nil {
		return
	}

	sig := s.signer.Sign(record.ID, record.SigningSalt)
	result = MintResult{
		ID:          record.ID,
		Status:      record.Status,
		ConfirmPage: confirmPagePath(record.ID, sig),
		OKPath:      actionPath(record.ID, ActionOK, sig),
		NoPath:      actionPath(record.ID, ActionNo, sig),
	}
	return
}

// Decide validates a (id, action, signature) triple and applies the state
// transition. Gates run in a fixed order: action, record lookup, expiry,
// signature, transition. Expiry and signature are independent gates; an
// expired link is rejected even when correctly signed.
func (s *ConfirmationService) Decide(ctx context.Context, params DecideParams) (result DecideResult, err error) {
	if s == nil {
		err = fmt.Errorf("ConfirmationService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("appointment store not configured")
		return
	}
	if s.signer == nil {
		err = fmt.Errorf("link signer not configured")
		return
	}

	logger := s.loggerWith(ctx, "Decide",
		"appointment_id", params.ID,
		"action", params.Action,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "decision rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"status", result.Status,
			"already_applied", result.AlreadyApplied,
		).InfoContext(ctx, "decision recorded")
	}()

	action, err := ParseAction(params.Action)
	if err != nil {
		return
	}

	record, err := s.store.GetAppointment(ctx, params.ID)
	if err != nil {
		return
	}

	// The expiry instant itself is still valid; anything past it, by however
	// little, is not. Comparing whole seconds would leave a sub-second
	// acceptance window after expiry.
	now := s.now()
	if record.ExpiresAt != 0 && now.After(time.Unix(record.ExpiresAt, 0)) {
		err = ErrLinkExpired
		return
	}

	if !s.signer.Verify(record.ID, record.SigningSalt, params.Signature) {
		err = ErrInvalidSignature
		return
	}

	target := action.TargetStatus()
	updated, err := s.store.TransitionStatus(ctx, record.ID, target, now)
	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			// Repeating the recorded action is an idempotent no-op; a
			// conflicting action is rejected and never flips the status.
			if updated.Status == target {
				err = nil
				result = DecideResult{ID: record.ID, Status: updated.Status, AlreadyApplied: true}
				return
			}
			err = ErrAlreadyDecided
		}
		return
	}

	if s.notifier != nil {
		s.notifier.Notify(DecisionEvent{ID: updated.ID, Status: updated.Status, DecidedAt: now})
	}

	result = DecideResult{ID: updated.ID, Status: updated.Status}
	return
}

// ConfirmationPageData validates a confirmation-page request and returns the
// record summary along with both action paths. The same gates as Decide apply,
// minus the transition.
func (s *ConfirmationService) ConfirmationPageData(ctx context.Context, id int64, signature string) (page ConfirmationPage, err error) {
	if s == nil {
		err = fmt.Errorf("ConfirmationService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("appointment store not configured")
		return
	}
	if s.signer == nil {
		err = fmt.Errorf("link signer not configured")
		return
	}

	logger := s.loggerWith(ctx, "ConfirmationPageData", "appointment_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "confirmation page rejected", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	record, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return
	}

	if record.ExpiresAt != 0 && s.now().After(time.Unix(record.ExpiresAt, 0)) {
		err = ErrLinkExpired
		return
	}

	if !s.signer.Verify(record.ID, record.SigningSalt, signature) {
		err = ErrInvalidSignature
		return
	}

	page = ConfirmationPage{
		Appointment: record,
		OKPath:      actionPath(record.ID, ActionOK, signature),
		NoPath:      actionPath(record.ID, ActionNo, signature),
	}
	return
}

// Status returns the current record for a status lookup. Callers render only
// public fields; the salt never reaches a response.
func (s *ConfirmationService) Status(ctx context.Context, id int64) (record Appointment, err error) {
	if s == nil {
		err = fmt.Errorf("ConfirmationService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("appointment store not configured")
		return
	}

	record, err = s.store.GetAppointment(ctx, id)
	if err != nil {
		s.loggerWith(ctx, "Status", "appointment_id", id).
			ErrorContext(ctx, "status lookup failed", "error", err, "error_kind", ErrorKind(err))
	}
	return
}

func validateMintParams(params MintParams) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(params.ClientName) == "" {
		vErr.add("client_name", "client name is required")
	}
	if strings.TrimSpace(params.ScheduledAt) == "" {
		vErr.add("scheduled_at", "scheduled time is required")
	}
	if params.TTL != nil && *params.TTL < 0 {
		vErr.add("ttl_seconds", "ttl must not be negative")
	}
	return vErr
}

func confirmPagePath(id int64, sig string) string {
	return fmt.Sprintf("/confirm/%d?sig=%s", id, url.QueryEscape(sig))
}

func actionPath(id int64, action Action, sig string) string {
	return fmt.Sprintf("/do/%d/%s?sig=%s", id, action, url.QueryEscape(sig))
}
