package calendar

import (
	"context"
	"slices"
	"time"
)

// SlotOffset places a slot Days after today at Hour:00 local time.
type SlotOffset struct {
	Days int `mapstructure:"days"`
	Hour int `mapstructure:"hour"`
}

func DefaultOffsets() []SlotOffset {
	return []SlotOffset{
		{Days: 1, Hour: 10},
		{Days: 2, Hour: 14},
		{Days: 3, Hour: 11},
	}
}

// Static derives slots from fixed offsets relative to the current day.
type Static struct {
	offsets []SlotOffset
	now     func() time.Time
}

func NewStatic(offsets []SlotOffset) *Static {
	return &Static{offsets: slices.Clone(offsets), now: time.Now}
}

func (s *Static) ListSlots(ctx context.Context) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	slots := make([]time.Time, 0, len(s.offsets))
	for _, o := range s.offsets {
		slot := day.AddDate(0, 0, o.Days).Add(time.Duration(o.Hour) * time.Hour)
		if slot.After(now) {
			slots = append(slots, slot)
		}
	}
	slices.SortFunc(slots, func(a, b time.Time) int { return a.Compare(b) })
	return slots, nil
}
