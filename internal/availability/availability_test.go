package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/lokanta/reservations/internal/model"
)

func TestCheck_Decisions(t *testing.T) {
	base := time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC)
	active := model.Table{ID: "t1", Name: "Masa 3", Capacity: 4, IsActive: true}
	inactive := model.Table{ID: "t2", Name: "Masa 9", Capacity: 4, IsActive: false}

	cases := []struct {
		name      string
		table     model.Table
		partySize int
		existing  []time.Time
		expected  error
	}{
		{"empty schedule", active, 4, nil, nil},
		{"inactive table", inactive, 2, nil, ErrTableInactive},
		{"party exceeds capacity", active, 5, nil, ErrCapacityExceeded},
		{"party equals capacity", active, 4, nil, nil},
		{"identical start", active, 2, []time.Time{base}, ErrConflict},
		{"starts 1 minute later", active, 2, []time.Time{base.Add(time.Minute)}, ErrConflict},
		{"starts 119 minutes later", active, 2, []time.Time{base.Add(119 * time.Minute)}, ErrConflict},
		{"starts exactly 120 minutes later", active, 2, []time.Time{base.Add(ReservationDuration)}, nil},
		{"starts 119 minutes earlier", active, 2, []time.Time{base.Add(-119 * time.Minute)}, ErrConflict},
		{"starts exactly 120 minutes earlier", active, 2, []time.Time{base.Add(-ReservationDuration)}, nil},
		{"starts 121 minutes earlier", active, 2, []time.Time{base.Add(-121 * time.Minute)}, nil},
		{"one far, one near", active, 2, []time.Time{base.Add(-6 * time.Hour), base.Add(30 * time.Minute)}, ErrConflict},
		{"inactive wins over conflict", inactive, 2, []time.Time{base}, ErrTableInactive},
	}

	for _, tc := range cases {
		err := Check(tc.table, tc.partySize, base, tc.existing)
		if !errors.Is(err, tc.expected) {
			t.Fatalf("%s: Check returned %v, expected %v", tc.name, err, tc.expected)
		}
	}
}

func TestWindow_Bounds(t *testing.T) {
	start := time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC)
	from, to := Window(start)
	if !from.Equal(start.Add(-2 * time.Hour)) {
		t.Fatalf("window lower bound %v, expected %v", from, start.Add(-2*time.Hour))
	}
	if !to.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("window upper bound %v, expected %v", to, start.Add(2*time.Hour))
	}
}
