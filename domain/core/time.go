package core

import "time"

// Timestamp is a UTC instant that prints and marshals as RFC 3339
type Timestamp time.Time

// Now returns the current UTC timestamp
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// Age is the time elapsed between t and now
func (t Timestamp) Age(now time.Time) time.Duration {
	return now.Sub(t.Time())
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm.UTC())
	return nil
}

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }
