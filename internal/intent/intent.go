// Package intent turns free-form chat text into the structured signals the
// conversation state machine consumes: a coarse intent, a party size and a
// reservation start instant.  The Extractor interface keeps the backend
// pluggable so the deterministic keyword matcher below can later be swapped
// for a richer NLU service without touching the state machine.
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Intent is the coarse classification of one inbound message.
type Intent int

const (
	// IntentNone means no keyword matched; state-specific parsing applies.
	IntentNone Intent = iota
	// IntentReserve starts (or restarts) a booking dialogue.
	IntentReserve
	// IntentAffirm confirms a pending booking.
	IntentAffirm
	// IntentDecline cancels a pending booking.
	IntentDecline
)

// Extractor parses chat text into booking signals.
type Extractor interface {
	// Classify returns the coarse intent of the text.
	Classify(text string) Intent
	// PartySize extracts a guest count in [1,20] from the text.
	PartySize(text string) (int, bool)
	// DateTime extracts a time of day, optionally shifted to the next day
	// by a "tomorrow" keyword, anchored on now.
	DateTime(text string, now time.Time) (time.Time, bool)
}

// Party size and time-of-day are matched permissively: one or two digits,
// with an optional :MM suffix for times.
var (
	partySizeRe = regexp.MustCompile(`\b(\d{1,2})\b`)
	timeOfDayRe = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\b`)
)

// KeywordExtractor is the deterministic keyword/regex backend.  Matching is
// case-insensitive substring search, so "REZERVASYON yapmak istiyorum" and
// "a reservation please" both trigger IntentReserve.
type KeywordExtractor struct {
	Reserve  []string
	Affirm   []string
	Decline  []string
	Tomorrow []string
}

// NewKeywordExtractor returns a backend that understands the Turkish
// keywords of the original deployment alongside their English equivalents.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{
		Reserve:  []string{"rezervasyon", "reservation"},
		Affirm:   []string{"evet", "onay", "yes", "confirm"},
		Decline:  []string{"iptal", "hayır", "hayir", "cancel", "no"},
		Tomorrow: []string{"yarın", "yarin", "tomorrow"},
	}
}

// Classify returns the first matching intent.  Reserve keywords win over
// affirm/decline so a user can always restart the dialogue.
func (k *KeywordExtractor) Classify(text string) Intent {
	l := strings.ToLower(text)
	if containsAny(l, k.Reserve) {
		return IntentReserve
	}
	if containsAny(l, k.Affirm) {
		return IntentAffirm
	}
	if containsAny(l, k.Decline) {
		return IntentDecline
	}
	return IntentNone
}

// PartySize pulls the first one-or-two digit integer out of the text and
// accepts it when it falls in the bookable range [1,20].
func (k *KeywordExtractor) PartySize(text string) (int, bool) {
	m := partySizeRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 20 {
		return 0, false
	}
	return n, true
}

// DateTime parses a time of day such as "20:00", "9" or "19.30"-less forms
// ("yarın 20:00" shifts to the next day).  The result keeps now's location
// with seconds zeroed.  Hours above 23 or minutes above 59 are rejected.
func (k *KeywordExtractor) DateTime(text string, now time.Time) (time.Time, bool) {
	l := strings.ToLower(text)
	m := timeOfDayRe.FindStringSubmatch(l)
	if m == nil {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return time.Time{}, false
	}
	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return time.Time{}, false
		}
	}
	base := now
	if containsAny(l, k.Tomorrow) {
		base = base.AddDate(0, 0, 1)
	}
	at := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())
	return at, true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
