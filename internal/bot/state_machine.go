// Package bot drives the chat booking dialogue.  Each inbound message
// advances a per-user conversation through the states idle →
// awaiting_party_size → awaiting_datetime → awaiting_confirmation and back
// to idle, producing a reply string for the caller to relay.  The machine
// talks to storage through narrow interfaces so it can be exercised with
// in-memory fakes.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lokanta/reservations/internal/intent"
	"github.com/lokanta/reservations/internal/model"
	"github.com/lokanta/reservations/internal/service"
)

// Provider is the messaging channel name recorded on messages and webhook
// events.
const Provider = "whatsapp"

// Reply texts.  Chat failures are always rendered as one of these, never as
// raw errors.
const (
	replyMalformed      = "Your message seems to be empty. Please send some text."
	replyAskPartySize   = "How many guests should I book for? (e.g. 4)"
	replyAskPartyAgain  = "Please send the number of guests as a digit (e.g. 4)."
	replyAskDateTime    = "When should I book? (e.g. tomorrow 20:00)"
	replyAskTimeAgain   = "I couldn't read that time. Try something like 19:30 or tomorrow 20:00."
	replyAskConfirm     = `Reply "yes" to confirm or "cancel" to abort.`
	replyCancelled      = "Okay, I've cancelled the request."
	replyNoTable        = `Sorry, no table is free for that time. Type "reservation" to try another time.`
	replyBookingBroken  = `Something went wrong with your booking. Type "reservation" to start over.`
	replyIdlePrompt     = `Type "reservation" to start a booking.`
	replyConfirmPattern = `Booking for %d guests at %s. Reply "yes" to confirm.`
	replySuccessPattern = "Your reservation is confirmed ✅ Table: %s"
)

// ConversationStore loads and saves per-user dialogue state.  Upsert must
// be atomic on the user key; Save must be a single-row write.
type ConversationStore interface {
	Upsert(ctx context.Context, waUserID string) (*model.Conversation, error)
	Save(ctx context.Context, c *model.Conversation) error
}

// MessageStore appends audit log records.
type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
}

// Booker creates a reservation from a completed conversation.
type Booker interface {
	BookForConversation(ctx context.Context, waUserID string) (*model.Reservation, error)
}

// InboundMessage is one received chat message.
type InboundMessage struct {
	WaUserID  string
	Text      string
	MessageID string // provider message id, may be empty
}

// StateMachine advances conversations.  Serialisation of concurrent
// messages from the same user is delegated to the conversation store's
// single-row semantics.
type StateMachine struct {
	Conversations ConversationStore
	Messages      MessageStore
	Booker        Booker
	Extractor     intent.Extractor
	Logger        *zap.Logger

	now func() time.Time
}

// New constructs a state machine.  All dependencies must be non-nil.
func New(conversations ConversationStore, messages MessageStore, booker Booker, extractor intent.Extractor, logger *zap.Logger) *StateMachine {
	if conversations == nil || messages == nil || booker == nil || extractor == nil {
		panic("nil dependency passed to bot.New")
	}
	return &StateMachine{
		Conversations: conversations,
		Messages:      messages,
		Booker:        booker,
		Extractor:     extractor,
		Logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Process handles one inbound message and returns the reply text.  The
// inbound message is persisted before any state advancement; persisting the
// outbound reply is the caller's job.  A non-nil error means a storage
// fault; the caller should answer with a generic server fault, never the
// error text.
func (m *StateMachine) Process(ctx context.Context, msg InboundMessage) (string, error) {
	waUserID := strings.TrimSpace(msg.WaUserID)
	text := strings.TrimSpace(msg.Text)
	if waUserID == "" || text == "" {
		return replyMalformed, nil
	}

	convo, err := m.Conversations.Upsert(ctx, waUserID)
	if err != nil {
		return "", err
	}

	var externalID *string
	if msg.MessageID != "" {
		id := msg.MessageID
		externalID = &id
	}
	if err := m.Messages.Create(ctx, &model.Message{
		ConversationID: &convo.ID,
		Provider:       Provider,
		Direction:      model.DirectionIn,
		ExternalID:     externalID,
		WaUserID:       waUserID,
		Body:           text,
	}); err != nil {
		return "", err
	}

	// The reservation keyword restarts the dialogue from any state.
	if m.Extractor.Classify(text) == intent.IntentReserve {
		convo.State = model.StateAwaitingPartySize
		if err := m.Conversations.Save(ctx, convo); err != nil {
			return "", err
		}
		return replyAskPartySize, nil
	}

	switch convo.State {
	case model.StateAwaitingPartySize:
		return m.handlePartySize(ctx, convo, text)
	case model.StateAwaitingDateTime:
		return m.handleDateTime(ctx, convo, text)
	case model.StateAwaitingConfirmation:
		return m.handleConfirmation(ctx, convo, text)
	default:
		return replyIdlePrompt, nil
	}
}

func (m *StateMachine) handlePartySize(ctx context.Context, convo *model.Conversation, text string) (string, error) {
	n, ok := m.Extractor.PartySize(text)
	if !ok {
		return replyAskPartyAgain, nil
	}
	convo.PartySize = &n
	convo.State = model.StateAwaitingDateTime
	if err := m.Conversations.Save(ctx, convo); err != nil {
		return "", err
	}
	return replyAskDateTime, nil
}

func (m *StateMachine) handleDateTime(ctx context.Context, convo *model.Conversation, text string) (string, error) {
	at, ok := m.Extractor.DateTime(text, m.now())
	if !ok {
		return replyAskTimeAgain, nil
	}
	convo.ReservedAt = &at
	convo.State = model.StateAwaitingConfirmation
	if err := m.Conversations.Save(ctx, convo); err != nil {
		return "", err
	}
	partySize := 0
	if convo.PartySize != nil {
		partySize = *convo.PartySize
	}
	return fmt.Sprintf(replyConfirmPattern, partySize, at.Format("Mon 2 Jan 15:04")), nil
}

func (m *StateMachine) handleConfirmation(ctx context.Context, convo *model.Conversation, text string) (string, error) {
	switch m.Extractor.Classify(text) {
	case intent.IntentAffirm:
		res, err := m.Booker.BookForConversation(ctx, convo.WaUserID)
		switch {
		case err == nil:
			tableName := res.TableID
			if res.Table != nil {
				tableName = res.Table.Name
			}
			return fmt.Sprintf(replySuccessPattern, tableName), nil
		case errors.Is(err, service.ErrNoTableAvailable):
			// return to idle so the dialogue cannot get stuck
			return m.resetWithReply(ctx, convo, replyNoTable)
		case errors.Is(err, service.ErrIncompleteState):
			return m.resetWithReply(ctx, convo, replyBookingBroken)
		default:
			return "", err
		}
	case intent.IntentDecline:
		return m.resetWithReply(ctx, convo, replyCancelled)
	default:
		return replyAskConfirm, nil
	}
}

func (m *StateMachine) resetWithReply(ctx context.Context, convo *model.Conversation, reply string) (string, error) {
	convo.ResetBooking()
	if err := m.Conversations.Save(ctx, convo); err != nil {
		return "", err
	}
	return reply, nil
}
