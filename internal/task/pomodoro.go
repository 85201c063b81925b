package task

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// PomodoroDuration is the length of one work unit.
const PomodoroDuration = 25 * time.Minute

const DefaultPomodoros = 1

// ClampPomodoros raises anything below one to one.
func ClampPomodoros(n int) int {
	if n < DefaultPomodoros {
		return DefaultPomodoros
	}
	return n
}

// PomodoroCount is a leniently decoded estimate. It accepts a JSON number or
// a string with a leading integer ("3", "3 pomodoros"); anything else,
// including null, decodes to zero so that ClampPomodoros turns it into the
// default.
type PomodoroCount int

func (c *PomodoroCount) UnmarshalJSON(data []byte) error {
	*c = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*c = PomodoroCount(leadingInt(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	*c = PomodoroCount(int(f))
	return nil
}

// Int returns the clamped estimate.
func (c PomodoroCount) Int() int {
	return ClampPomodoros(int(c))
}

// leadingInt parses the optional sign and digits at the start of s, the way
// a form field like "2 sessions" is read.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// EstimatedDuration is the wall-clock time the estimate stands for.
func (t *Task) EstimatedDuration() time.Duration {
	return time.Duration(t.EstimatedPomodoros) * PomodoroDuration
}
