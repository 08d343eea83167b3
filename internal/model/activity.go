package model

import "time"

// Activity is a free-form faculty commitment (exam duty, seminar, committee).
type Activity struct {
	ID           int64     `json:"id"`
	FacultyID    int64     `json:"faculty_id"`
	Title        string    `json:"title"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Activity) Interval() TimeInterval {
	return TimeInterval{Start: a.StartTime, End: a.EndTime}
}

func (a *Activity) Ref() EntityRef {
	return EntityRef{Type: EntityActivity, ID: a.ID}
}
