package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

// FindConflict returns the first busy entry of tl overlapping proposed,
// ignoring entries produced by exclude.
func FindConflict(tl *Timeline, proposed model.TimeInterval, exclude *model.EntityRef) *model.ConflictError {
	for _, piece := range splitByDay(proposed, tl.loc) {
		day, ok := tl.Day(model.DateOf(piece.Start))
		if !ok || !day.Busy.Overlaps(piece) {
			continue
		}
		for _, entry := range day.Entries {
			if exclude != nil && entry.Source == *exclude {
				continue
			}
			if entry.Interval.Overlaps(piece) {
				return &model.ConflictError{Entity: entry.Source, Interval: entry.Interval}
			}
		}
	}
	return nil
}

// ConflictValidator checks proposed intervals against a freshly built timeline.
type ConflictValidator struct {
	builder *TimelineBuilder
	now     func() time.Time
}

func NewConflictValidator(builder *TimelineBuilder, now func() time.Time) *ConflictValidator {
	if now == nil {
		now = time.Now
	}
	return &ConflictValidator{builder: builder, now: now}
}

// Validate returns nil when proposed is free for the faculty member, a
// *model.ConflictError naming the blocking entity otherwise. Intervals
// starting in the past are rejected with model.ErrInvalidInterval.
func (v *ConflictValidator) Validate(ctx context.Context, facultyID int64, proposed model.TimeInterval, exclude *model.EntityRef) error {
	if err := proposed.Validate(); err != nil {
		return err
	}
	if proposed.Start.Before(v.now()) {
		return fmt.Errorf("%w: %s starts in the past", model.ErrInvalidInterval, proposed)
	}

	loc := v.builder.Location()
	rng := model.DateRange{
		From: model.DateOf(proposed.Start.In(loc)),
		To:   model.DateOf(proposed.End.Add(-time.Nanosecond).In(loc)),
	}
	tl, err := v.builder.Build(ctx, facultyID, rng)
	if err != nil {
		return fmt.Errorf("build timeline: %w", err)
	}

	if conflict := FindConflict(tl, proposed, exclude); conflict != nil {
		return conflict
	}
	return nil
}
