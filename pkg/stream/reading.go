package stream

import "time"

// Reading is the JSON body of every broker message: one instantaneous
// power value stamped with the second it was taken. time.Time marshals
// to RFC 3339, so the payload stays readable from any consumer.
type Reading struct {
	Time   time.Time `json:"time"`
	ValueW float64   `json:"value_w"`
}
