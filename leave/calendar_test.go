package leave_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campushq/school-engine/leave"
)

func TestBusinessDays(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int64
	}{
		{"single weekday", day(2026, time.March, 2), day(2026, time.March, 2), 1},
		{"mon to wed", day(2026, time.March, 2), day(2026, time.March, 4), 3},
		{"full week", day(2026, time.March, 2), day(2026, time.March, 8), 5},
		{"over weekend", day(2026, time.March, 6), day(2026, time.March, 9), 2},
		{"weekend only", day(2026, time.March, 7), day(2026, time.March, 8), 0},
		{"inverted range", day(2026, time.March, 9), day(2026, time.March, 2), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := leave.BusinessDays(tc.start, tc.end)
			if !got.Equal(decimal.NewFromInt(tc.want)) {
				t.Errorf("BusinessDays = %v, want %d", got, tc.want)
			}
		})
	}
}

func TestIsBusinessDay(t *testing.T) {
	if leave.IsBusinessDay(day(2026, time.March, 7)) {
		t.Error("Saturday should not be a business day")
	}
	if !leave.IsBusinessDay(day(2026, time.March, 9)) {
		t.Error("Monday should be a business day")
	}
}
