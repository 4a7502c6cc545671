package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lokanta/reservations/internal/model"
	"github.com/lokanta/reservations/internal/repository"
)

// memEvents enforces the (provider, external_id) unique key the same way the
// database does.
type memEvents struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemEvents() *memEvents { return &memEvents{seen: map[string]bool{}} }

func (m *memEvents) Insert(_ context.Context, ev *model.WebhookEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ev.Provider + "/" + ev.ExternalID
	if m.seen[key] {
		return repository.ErrDuplicateEvent
	}
	m.seen[key] = true
	return nil
}

func TestIngestGuardAdmitsFirstDelivery(t *testing.T) {
	guard := &IngestGuard{Events: newMemEvents()}
	if err := guard.Admit(context.Background(), "whatsapp", "wamid.1", `{"x":1}`); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
}

func TestIngestGuardRejectsReplay(t *testing.T) {
	guard := &IngestGuard{Events: newMemEvents()}
	ctx := context.Background()
	if err := guard.Admit(ctx, "whatsapp", "wamid.2", `{}`); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := guard.Admit(ctx, "whatsapp", "wamid.2", `{}`); !errors.Is(err, repository.ErrDuplicateEvent) {
		t.Fatalf("replay: err = %v, want ErrDuplicateEvent", err)
	}
	// A different provider with the same id is a distinct delivery.
	if err := guard.Admit(ctx, "telegram", "wamid.2", `{}`); err != nil {
		t.Fatalf("other provider: %v", err)
	}
}

func TestIngestGuardRequiresExternalID(t *testing.T) {
	guard := &IngestGuard{Events: newMemEvents()}
	if err := guard.Admit(context.Background(), "whatsapp", "", `{}`); !errors.Is(err, ErrMissingExternalID) {
		t.Fatalf("err = %v, want ErrMissingExternalID", err)
	}
}

func TestIngestGuardConcurrentReplays(t *testing.T) {
	guard := &IngestGuard{Events: newMemEvents()}
	const deliveries = 10
	var wg sync.WaitGroup
	errs := make([]error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = guard.Admit(context.Background(), "whatsapp", "wamid.burst", `{}`)
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, repository.ErrDuplicateEvent):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if admitted != 1 {
		t.Fatalf("%d deliveries admitted, want exactly 1", admitted)
	}
}
