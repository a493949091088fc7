package schedule

import (
	"errors"
	"time"
)

// ErrUnknownFrequency is returned when a frequency code is not in the table
var ErrUnknownFrequency = errors.New("unknown frequency code")

// Frequency codes understood by the dose expander
const (
	FrequencyOnceDaily       = "ONCE_DAILY"
	FrequencyTwiceDaily      = "TWICE_DAILY"
	FrequencyThreeTimesDaily = "THREE_TIMES_DAILY"
	FrequencyFourTimesDaily  = "FOUR_TIMES_DAILY"
	FrequencyBedtime         = "BEDTIME"
	FrequencyAsNeeded        = "AS_NEEDED"
)

// frequencyTimes maps a frequency code to its daily dose times. The literal
// 12-hour labels are part of the wire contract: intake logs store and return
// them verbatim. AS_NEEDED has no scheduled times; those doses are logged
// ad hoc by the patient.
var frequencyTimes = map[string][]string{
	FrequencyOnceDaily:       {"08:00 AM"},
	FrequencyTwiceDaily:      {"08:00 AM", "08:00 PM"},
	FrequencyThreeTimesDaily: {"08:00 AM", "02:00 PM", "08:00 PM"},
	FrequencyFourTimesDaily:  {"08:00 AM", "12:00 PM", "04:00 PM", "08:00 PM"},
	FrequencyBedtime:         {"10:00 PM"},
	FrequencyAsNeeded:        {},
}

// TimesFor returns the ordered dose times for a frequency code.
// Returns ErrUnknownFrequency for unrecognized codes and an empty slice for
// AS_NEEDED.
func TimesFor(code string) ([]string, error) {
	times, ok := frequencyTimes[code]
	if !ok {
		return nil, ErrUnknownFrequency
	}
	out := make([]string, len(times))
	copy(out, times)
	return out, nil
}

// IsKnownFrequency checks if a frequency code exists in the table
func IsKnownFrequency(code string) bool {
	_, ok := frequencyTimes[code]
	return ok
}

// TimeLabelLayout is the 12-hour layout used for dose time labels.
const TimeLabelLayout = "03:04 PM"

// MinutesOfDay converts a dose time label to minutes after midnight so
// labels can be ordered chronologically rather than lexically.
// Unparseable labels sort last.
func MinutesOfDay(label string) int {
	t, err := time.Parse(TimeLabelLayout, label)
	if err != nil {
		return 24 * 60
	}
	return t.Hour()*60 + t.Minute()
}
