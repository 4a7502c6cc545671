package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lokanta/reservations/internal/intent"
	"github.com/lokanta/reservations/internal/model"
	"github.com/lokanta/reservations/internal/service"
)

// ---- in-memory fakes -------------------------------------------------------

type memConversations struct {
	mu    sync.Mutex
	byUID map[string]*model.Conversation
}

func newMemConversations() *memConversations {
	return &memConversations{byUID: map[string]*model.Conversation{}}
}

func (m *memConversations) Upsert(_ context.Context, waUserID string) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byUID[waUserID]; ok {
		return c, nil
	}
	c := &model.Conversation{ID: "c-" + waUserID, WaUserID: waUserID, State: model.StateIdle}
	m.byUID[waUserID] = c
	return c, nil
}

func (m *memConversations) Save(_ context.Context, c *model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUID[c.WaUserID] = c
	return nil
}

type memMessages struct {
	mu    sync.Mutex
	items []model.Message
}

func (m *memMessages) Create(_ context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *msg)
	return nil
}

// fakeBooker mimics the service: on success it resets the conversation the
// same way BookForConversation does.
type fakeBooker struct {
	convos *memConversations
	err    error
	booked []string
}

func (b *fakeBooker) BookForConversation(_ context.Context, waUserID string) (*model.Reservation, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.convos.mu.Lock()
	c := b.convos.byUID[waUserID]
	b.convos.mu.Unlock()
	if c == nil || c.PartySize == nil || c.ReservedAt == nil {
		return nil, service.ErrIncompleteState
	}
	res := &model.Reservation{
		ID:            "res-1",
		CustomerPhone: waUserID,
		PartySize:     *c.PartySize,
		TableID:       "t-mid",
		Table:         &model.Table{ID: "t-mid", Name: "Masa 2", Capacity: 4, IsActive: true},
		ReservedAt:    *c.ReservedAt,
		Status:        model.StatusConfirmed,
	}
	c.ResetBooking()
	b.booked = append(b.booked, waUserID)
	return res, nil
}

func newTestMachine(t *testing.T) (*StateMachine, *memConversations, *memMessages, *fakeBooker) {
	t.Helper()
	convos := newMemConversations()
	messages := &memMessages{}
	booker := &fakeBooker{convos: convos}
	m := New(convos, messages, booker, intent.NewKeywordExtractor(), zap.NewNop())
	m.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return m, convos, messages, booker
}

func send(t *testing.T, m *StateMachine, user, text string) string {
	t.Helper()
	reply, err := m.Process(context.Background(), InboundMessage{WaUserID: user, Text: text})
	if err != nil {
		t.Fatalf("Process(%q): %v", text, err)
	}
	return reply
}

// ---- dialogue flows --------------------------------------------------------

func TestHappyPathBooksOnConfirm(t *testing.T) {
	m, convos, messages, booker := newTestMachine(t)
	const user = "905550001"

	if got := send(t, m, user, "rezervasyon yapmak istiyorum"); got != replyAskPartySize {
		t.Fatalf("step 1 reply = %q", got)
	}
	if got := send(t, m, user, "4"); got != replyAskDateTime {
		t.Fatalf("step 2 reply = %q", got)
	}
	got := send(t, m, user, "yarın 20:00")
	if !strings.Contains(got, "4 guests") || !strings.Contains(got, "20:00") {
		t.Fatalf("confirm prompt = %q", got)
	}
	got = send(t, m, user, "evet")
	if !strings.Contains(got, "Masa 2") {
		t.Fatalf("success reply = %q, want table name", got)
	}

	if len(booker.booked) != 1 || booker.booked[0] != user {
		t.Fatalf("booked = %v, want one booking for %s", booker.booked, user)
	}
	convo := convos.byUID[user]
	if convo.State != model.StateIdle || convo.PartySize != nil || convo.ReservedAt != nil {
		t.Fatalf("conversation not reset after booking: %+v", convo)
	}
	if len(messages.items) != 4 {
		t.Fatalf("persisted %d inbound messages, want 4", len(messages.items))
	}
	for _, msg := range messages.items {
		if msg.Direction != model.DirectionIn || msg.WaUserID != user {
			t.Fatalf("bad audit record: %+v", msg)
		}
	}
}

func TestDeclineResetsToIdle(t *testing.T) {
	m, convos, _, booker := newTestMachine(t)
	const user = "905550002"

	send(t, m, user, "reservation")
	send(t, m, user, "2")
	send(t, m, user, "19:30")
	if got := send(t, m, user, "no thanks"); got != replyCancelled {
		t.Fatalf("decline reply = %q", got)
	}

	convo := convos.byUID[user]
	if convo.State != model.StateIdle || convo.PartySize != nil || convo.ReservedAt != nil {
		t.Fatalf("conversation not cleared on decline: %+v", convo)
	}
	if len(booker.booked) != 0 {
		t.Fatalf("decline produced a booking: %v", booker.booked)
	}
}

func TestRepromptsOnUnparsableInput(t *testing.T) {
	m, convos, _, _ := newTestMachine(t)
	const user = "905550003"

	send(t, m, user, "rezervasyon")
	if got := send(t, m, user, "a few of us"); got != replyAskPartyAgain {
		t.Fatalf("bad party reply = %q", got)
	}
	if got := send(t, m, user, "21"); got != replyAskPartyAgain {
		t.Fatalf("oversized party reply = %q", got)
	}
	if convos.byUID[user].State != model.StateAwaitingPartySize {
		t.Fatalf("state advanced on bad input: %q", convos.byUID[user].State)
	}

	send(t, m, user, "6")
	if got := send(t, m, user, "soonish"); got != replyAskTimeAgain {
		t.Fatalf("bad time reply = %q", got)
	}
	if convos.byUID[user].State != model.StateAwaitingDateTime {
		t.Fatalf("state advanced on bad time: %q", convos.byUID[user].State)
	}
}

func TestReserveKeywordRestartsMidDialogue(t *testing.T) {
	m, convos, _, _ := newTestMachine(t)
	const user = "905550004"

	send(t, m, user, "rezervasyon")
	send(t, m, user, "4")
	if got := send(t, m, user, "rezervasyon"); got != replyAskPartySize {
		t.Fatalf("restart reply = %q", got)
	}
	if convos.byUID[user].State != model.StateAwaitingPartySize {
		t.Fatalf("state = %q, want awaiting_party_size", convos.byUID[user].State)
	}
}

func TestConfirmationStageHoldsOnGibberish(t *testing.T) {
	m, convos, _, _ := newTestMachine(t)
	const user = "905550005"

	send(t, m, user, "reservation")
	send(t, m, user, "3")
	send(t, m, user, "tomorrow 18:00")
	if got := send(t, m, user, "hmm let me think"); got != replyAskConfirm {
		t.Fatalf("gibberish reply = %q", got)
	}
	if convos.byUID[user].State != model.StateAwaitingConfirmation {
		t.Fatalf("state = %q, want awaiting_confirmation", convos.byUID[user].State)
	}
}

func TestNoTableAvailableReturnsToIdle(t *testing.T) {
	m, convos, _, booker := newTestMachine(t)
	const user = "905550006"

	send(t, m, user, "reservation")
	send(t, m, user, "4")
	send(t, m, user, "20:00")
	booker.err = service.ErrNoTableAvailable
	if got := send(t, m, user, "yes"); got != replyNoTable {
		t.Fatalf("no-table reply = %q", got)
	}
	convo := convos.byUID[user]
	if convo.State != model.StateIdle || convo.PartySize != nil || convo.ReservedAt != nil {
		t.Fatalf("conversation stuck after no-table: %+v", convo)
	}
}

func TestBrokenStateReturnsToIdle(t *testing.T) {
	m, convos, _, booker := newTestMachine(t)
	const user = "905550007"

	send(t, m, user, "reservation")
	send(t, m, user, "4")
	send(t, m, user, "20:00")
	booker.err = service.ErrIncompleteState
	if got := send(t, m, user, "yes"); got != replyBookingBroken {
		t.Fatalf("broken-state reply = %q", got)
	}
	if convos.byUID[user].State != model.StateIdle {
		t.Fatalf("state = %q, want idle", convos.byUID[user].State)
	}
}

func TestIdleAndMalformedInput(t *testing.T) {
	m, convos, messages, _ := newTestMachine(t)

	if got := send(t, m, "905550008", "hello there"); got != replyIdlePrompt {
		t.Fatalf("idle reply = %q", got)
	}

	before := len(messages.items)
	if got := send(t, m, "905550009", "   "); got != replyMalformed {
		t.Fatalf("blank reply = %q", got)
	}
	if _, ok := convos.byUID["905550009"]; ok {
		t.Fatal("blank message created a conversation")
	}
	if len(messages.items) != before {
		t.Fatal("blank message was persisted")
	}
}
