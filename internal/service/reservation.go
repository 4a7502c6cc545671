// Package service orchestrates the two booking paths: the direct API and
// the chat flow.  Both converge on the store's atomic check-then-create, so
// a table can never be double-booked regardless of which door the request
// came through.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lokanta/reservations/internal/availability"
	"github.com/lokanta/reservations/internal/model"
	"github.com/lokanta/reservations/internal/queue"
	"github.com/lokanta/reservations/internal/repository"
)

// upcomingLimit caps the board listing; there is no pagination beyond it.
const upcomingLimit = 100

// Defaults applied to chat bookings when the conversation never collected
// the corresponding field.
const (
	chatCustomerName = "WhatsApp guest"
	chatBookingNote  = "booked via WhatsApp bot"
)

// Chat-flow failures.  These are rendered as reply text, never as HTTP
// errors: the chat channel has no concept of a status code.
var (
	// ErrNoTableAvailable means no active table can seat the party at the
	// requested time.
	ErrNoTableAvailable = errors.New("no suitable table available")
	// ErrIncompleteState means the conversation has not collected both a
	// party size and a start instant yet.
	ErrIncompleteState = errors.New("conversation booking state incomplete")
)

// TableStore is the table lookup surface the service needs.
type TableStore interface {
	GetByID(ctx context.Context, id string) (*model.Table, error)
	// ListActive returns active tables in ascending capacity order.
	ListActive(ctx context.Context) ([]model.Table, error)
}

// ReservationStore persists reservations.  CreateIfAvailable must perform
// the availability check and the insert atomically with respect to other
// bookings on the same table.
type ReservationStore interface {
	CreateIfAvailable(ctx context.Context, res *model.Reservation) error
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, id, next string) (*model.Reservation, error)
}

// ConversationStore is the conversation surface the chat booking needs.
type ConversationStore interface {
	Get(ctx context.Context, waUserID string) (*model.Conversation, error)
	Save(ctx context.Context, c *model.Conversation) error
}

// EventPublisher publishes confirmation events.  Failures are tolerated;
// the booking stands either way.
type EventPublisher interface {
	PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}

// BookingRequest is the direct booking API payload.
type BookingRequest struct {
	CustomerName  string    `json:"customerName" validate:"required,min=2"`
	CustomerPhone string    `json:"customerPhone" validate:"required,min=8"`
	Note          *string   `json:"note,omitempty"`
	PartySize     int       `json:"partySize" validate:"required,min=1,max=20"`
	TableID       string    `json:"tableId" validate:"required"`
	ReservedAt    time.Time `json:"reservedAt" validate:"required"`
}

// ValidationError carries field-level validation messages for a rejected
// booking request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// ReservationService implements both booking paths plus the read and status
// operations of the reservations API.
type ReservationService struct {
	Tables        TableStore
	Reservations  ReservationStore
	Conversations ConversationStore
	Publisher     EventPublisher // optional
	Logger        *zap.Logger

	validate *validator.Validate
	now      func() time.Time
}

// NewReservationService wires a service from its stores.  publisher may be
// nil when no broker is configured.
func NewReservationService(tables TableStore, reservations ReservationStore, conversations ConversationStore, publisher EventPublisher, logger *zap.Logger) *ReservationService {
	if tables == nil || reservations == nil || conversations == nil {
		panic("nil store passed to NewReservationService")
	}
	return &ReservationService{
		Tables:        tables,
		Reservations:  reservations,
		Conversations: conversations,
		Publisher:     publisher,
		Logger:        logger,
		validate:      validator.New(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// BookDirect validates the request and creates a confirmed reservation on
// the requested table.  Typed failures: *ValidationError,
// repository.ErrTableNotFound, availability.ErrTableInactive,
// availability.ErrCapacityExceeded, availability.ErrConflict.
func (s *ReservationService) BookDirect(ctx context.Context, req BookingRequest) (*model.Reservation, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	res := &model.Reservation{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Note:          req.Note,
		PartySize:     req.PartySize,
		TableID:       req.TableID,
		ReservedAt:    req.ReservedAt.UTC(),
	}
	if err := s.Reservations.CreateIfAvailable(ctx, res); err != nil {
		return nil, err
	}
	s.publishConfirmed(ctx, res, "api")
	return res, nil
}

// BookForConversation books on behalf of a chat user whose conversation has
// collected a party size and a start instant.  Candidate tables are scanned
// in ascending capacity order and each is attempted through the same atomic
// check-then-create as the direct path, so the chat flow cannot slip past
// the overlap check.  On success the conversation's transient fields are
// cleared and its state returns to idle.
func (s *ReservationService) BookForConversation(ctx context.Context, waUserID string) (*model.Reservation, error) {
	convo, err := s.Conversations.Get(ctx, waUserID)
	if errors.Is(err, repository.ErrConversationNotFound) {
		return nil, ErrIncompleteState
	}
	if err != nil {
		return nil, err
	}
	if convo.PartySize == nil || convo.ReservedAt == nil {
		return nil, ErrIncompleteState
	}

	tables, err := s.Tables.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	name := chatCustomerName
	if convo.CustomerName != nil && *convo.CustomerName != "" {
		name = *convo.CustomerName
	}
	note := chatBookingNote
	if convo.Note != nil && *convo.Note != "" {
		note = *convo.Note
	}
	for _, table := range tables {
		if table.Capacity < *convo.PartySize {
			continue
		}
		res := &model.Reservation{
			CustomerName:  name,
			CustomerPhone: waUserID,
			Note:          &note,
			PartySize:     *convo.PartySize,
			TableID:       table.ID,
			ReservedAt:    convo.ReservedAt.UTC(),
		}
		err := s.Reservations.CreateIfAvailable(ctx, res)
		switch {
		case err == nil:
			convo.ResetBooking()
			if err := s.Conversations.Save(ctx, convo); err != nil {
				return nil, err
			}
			s.publishConfirmed(ctx, res, "whatsapp")
			return res, nil
		case errors.Is(err, availability.ErrConflict),
			errors.Is(err, availability.ErrCapacityExceeded),
			errors.Is(err, availability.ErrTableInactive):
			continue // try the next larger table
		default:
			return nil, err
		}
	}
	return nil, ErrNoTableAvailable
}

// Board returns the upcoming reservations (ascending start, capped) and the
// active tables (ascending capacity) for the reservations listing.
func (s *ReservationService) Board(ctx context.Context) ([]model.Reservation, []model.Table, error) {
	reservations, err := s.Reservations.ListUpcoming(ctx, s.now(), upcomingLimit)
	if err != nil {
		return nil, nil, err
	}
	tables, err := s.Tables.ListActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	return reservations, tables, nil
}

// GetReservation returns one reservation with its table relation.
func (s *ReservationService) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	return s.Reservations.GetByID(ctx, id)
}

// UpdateStatus moves a reservation through its lifecycle.  Unknown statuses
// are rejected with a *ValidationError; illegal moves surface as
// repository.ErrInvalidTransition.
func (s *ReservationService) UpdateStatus(ctx context.Context, id, next string) (*model.Reservation, error) {
	if !model.ValidStatus(next) {
		return nil, &ValidationError{Fields: map[string]string{"status": "must be one of confirmed, seated, cancelled, completed"}}
	}
	return s.Reservations.UpdateStatus(ctx, id, next)
}

func (s *ReservationService) validateRequest(req BookingRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonField(fe.Field())] = validationMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

// jsonField lowercases the first rune of a struct field name to match the
// camelCase JSON tags.
func jsonField(name string) string {
	if name == "" {
		return name
	}
	return string(name[0]|0x20) + name[1:]
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}

func (s *ReservationService) publishConfirmed(ctx context.Context, res *model.Reservation, source string) {
	if s.Publisher == nil {
		return
	}
	tableName := res.TableID
	if res.Table != nil {
		tableName = res.Table.Name
	}
	ev := queue.ReservationConfirmedEvent{
		ReservationID: res.ID,
		TableID:       res.TableID,
		TableName:     tableName,
		CustomerName:  res.CustomerName,
		CustomerPhone: res.CustomerPhone,
		PartySize:     res.PartySize,
		ReservedAt:    res.ReservedAt.Format(time.RFC3339),
		Source:        source,
		ConfirmedAt:   s.now().Format(time.RFC3339),
	}
	// best-effort: the reservation stands even when the broker is down
	if err := s.Publisher.PublishReservationConfirmed(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.Warn("publish reservation.confirmed failed", zap.String("reservation_id", res.ID), zap.Error(err))
	}
}
