package formatting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{in: "пн", want: time.Monday},
		{in: "Понедельник", want: time.Monday},
		{in: "wed", want: time.Wednesday},
		{in: "Friday", want: time.Friday},
		{in: "6", want: time.Saturday},
		{in: "вс", want: time.Sunday},
		{in: "someday", wantErr: true},
		{in: "9", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{count: 1, want: "слот"},
		{count: 3, want: "слота"},
		{count: 5, want: "слотов"},
		{count: 11, want: "слотов"},
		{count: 12, want: "слотов"},
		{count: 21, want: "слот"},
		{count: 24, want: "слота"},
		{count: 0, want: "слотов"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizeSlots(tt.count), tt.count)
	}
	assert.Equal(t, "встречи", PluralizeMeetings(2))
	assert.Equal(t, "занятий", PluralizeClasses(7))
}

func TestFormatInterval(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	d := model.Date{Year: 2025, Month: time.March, Day: 3}

	tests := []struct {
		name string
		iv   model.TimeInterval
		want string
	}{
		{
			name: "same day",
			iv:   model.TimeInterval{Start: d.At(10, 0, loc), End: d.At(10, 30, loc)},
			want: "03.03.2025 10:00-10:30",
		},
		{
			name: "ends at midnight",
			iv:   model.TimeInterval{Start: d.At(23, 0, loc), End: d.AddDays(1).In(loc)},
			want: "03.03.2025 23:00-00:00",
		},
		{
			name: "spans days",
			iv:   model.TimeInterval{Start: d.At(22, 0, loc), End: d.AddDays(1).At(2, 0, loc)},
			want: "03.03.2025 22:00 - 04.03.2025 02:00",
		},
		{
			name: "converted to location",
			iv:   model.TimeInterval{Start: d.At(7, 0, time.UTC), End: d.At(8, 0, time.UTC)},
			want: "03.03.2025 10:00-11:00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInterval(tt.iv, loc))
		})
	}

	assert.Equal(t, "03.03 (Пн)", FormatDate(d))
	assert.Equal(t, "1 ч 30 мин", FormatDuration(90))
}
