package model

import (
	"fmt"
	"time"
)

// TimeInterval is a half-open span [Start, End).
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeInterval returns an interval or ErrInvalidInterval if start >= end.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	iv := TimeInterval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return TimeInterval{}, err
	}
	return iv, nil
}

func (iv TimeInterval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidInterval, iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
	}
	return nil
}

// Overlaps reports whether the two intervals share any instant. Touching
// endpoints do not overlap.
func (iv TimeInterval) Overlaps(o TimeInterval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

// Touches reports whether the intervals overlap or share an endpoint.
func (iv TimeInterval) Touches(o TimeInterval) bool {
	return !iv.Start.After(o.End) && !o.Start.After(iv.End)
}

func (iv TimeInterval) Contains(o TimeInterval) bool {
	return !o.Start.Before(iv.Start) && !o.End.After(iv.End)
}

func (iv TimeInterval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

func (iv TimeInterval) In(loc *time.Location) TimeInterval {
	return TimeInterval{Start: iv.Start.In(loc), End: iv.End.In(loc)}
}

func (iv TimeInterval) String() string {
	return iv.Start.Format("2006-01-02 15:04") + "–" + iv.End.Format("15:04")
}
