package chrono

import "time"

var berlin *time.Location

func init() {
	var err error
	berlin, err = time.LoadLocation("Europe/Berlin")
	if err != nil {
		panic(err)
	}
}

// Berlin returns a [*time.Location] for Europe/Berlin, the timezone every district reports in.
func Berlin() *time.Location {
	return berlin
}

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in Europe/Berlin.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now().In(berlin)
}

// FixedTime always reports the same instant.
type FixedTime struct {
	At time.Time
}

func (f FixedTime) Now() time.Time {
	return f.At.In(berlin)
}
