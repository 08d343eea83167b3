package model

import "time"

// Holiday blocks a whole day. A recurring holiday repeats on its month/day every year.
type Holiday struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Date        Date      `json:"date"`
	IsRecurring bool      `json:"is_recurring"`
	CreatedAt   time.Time `json:"created_at"`
}

// Matches reports whether the holiday falls on d.
func (h *Holiday) Matches(d Date) bool {
	if h.IsRecurring {
		return h.Date.Month == d.Month && h.Date.Day == d.Day
	}
	return h.Date == d
}

func (h *Holiday) Ref() EntityRef {
	return EntityRef{Type: EntityHoliday, ID: h.ID}
}
