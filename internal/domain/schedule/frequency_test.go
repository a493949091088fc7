package schedule

import (
	"errors"
	"testing"
)

func TestTimesFor(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantTimes []string
		wantErr   error
	}{
		{
			name:      "once daily",
			code:      FrequencyOnceDaily,
			wantTimes: []string{"08:00 AM"},
		},
		{
			name:      "twice daily",
			code:      FrequencyTwiceDaily,
			wantTimes: []string{"08:00 AM", "08:00 PM"},
		},
		{
			name:      "three times daily",
			code:      FrequencyThreeTimesDaily,
			wantTimes: []string{"08:00 AM", "02:00 PM", "08:00 PM"},
		},
		{
			name:      "four times daily",
			code:      FrequencyFourTimesDaily,
			wantTimes: []string{"08:00 AM", "12:00 PM", "04:00 PM", "08:00 PM"},
		},
		{
			name:      "bedtime",
			code:      FrequencyBedtime,
			wantTimes: []string{"10:00 PM"},
		},
		{
			name:      "as needed has no scheduled times",
			code:      FrequencyAsNeeded,
			wantTimes: []string{},
		},
		{
			name:    "unknown code",
			code:    "EVERY_OTHER_DAY",
			wantErr: ErrUnknownFrequency,
		},
		{
			name:    "empty code",
			code:    "",
			wantErr: ErrUnknownFrequency,
		},
		{
			name:    "lowercase code is not recognized",
			code:    "once_daily",
			wantErr: ErrUnknownFrequency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times, err := TimesFor(tt.code)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("TimesFor(%q) error = %v, want %v", tt.code, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("TimesFor(%q) unexpected error: %v", tt.code, err)
			}
			if len(times) != len(tt.wantTimes) {
				t.Fatalf("TimesFor(%q) = %v, want %v", tt.code, times, tt.wantTimes)
			}
			for i := range times {
				if times[i] != tt.wantTimes[i] {
					t.Errorf("TimesFor(%q)[%d] = %q, want %q", tt.code, i, times[i], tt.wantTimes[i])
				}
			}
		})
	}
}

func TestTimesForReturnsCopy(t *testing.T) {
	times, err := TimesFor(FrequencyTwiceDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	times[0] = "mutated"

	again, err := TimesFor(FrequencyTwiceDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again[0] != "08:00 AM" {
		t.Errorf("mutating the returned slice leaked into the table: %v", again)
	}
}

func TestMinutesOfDay(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"12:00 AM", 0},
		{"08:00 AM", 8 * 60},
		{"12:00 PM", 12 * 60},
		{"02:00 PM", 14 * 60},
		{"08:00 PM", 20 * 60},
		{"10:00 PM", 22 * 60},
		{"11:59 PM", 23*60 + 59},
		{"not a time", 24 * 60},
		{"", 24 * 60},
	}

	for _, tt := range tests {
		if got := MinutesOfDay(tt.label); got != tt.want {
			t.Errorf("MinutesOfDay(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestMinutesOfDayOrdersThreeTimesDailyChronologically(t *testing.T) {
	times, err := TimesFor(FrequencyThreeTimesDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(times); i++ {
		if MinutesOfDay(times[i-1]) >= MinutesOfDay(times[i]) {
			t.Errorf("labels %q and %q are out of chronological order", times[i-1], times[i])
		}
	}
}

func TestIsKnownFrequency(t *testing.T) {
	for _, code := range []string{
		FrequencyOnceDaily, FrequencyTwiceDaily, FrequencyThreeTimesDaily,
		FrequencyFourTimesDaily, FrequencyBedtime, FrequencyAsNeeded,
	} {
		if !IsKnownFrequency(code) {
			t.Errorf("IsKnownFrequency(%q) = false, want true", code)
		}
	}
	if IsKnownFrequency("WEEKLY") {
		t.Error("IsKnownFrequency(WEEKLY) = true, want false")
	}
}
