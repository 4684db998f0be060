package stream

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var csvHeader = []string{"time", "meter_w", "pv_w", "residual_w"}

// CSVRecorder appends joined rows to a CSV stream. Missing sides come
// through as NaN so the column count never varies.
type CSVRecorder struct {
	w *csv.Writer
}

// NewCSVRecorder writes the header immediately so even a run that joins
// nothing leaves a parseable file behind.
func NewCSVRecorder(w io.Writer) (*CSVRecorder, error) {
	c := &CSVRecorder{w: csv.NewWriter(w)}
	if err := c.w.Write(csvHeader); err != nil {
		return nil, errors.Wrap(err, "could not write csv header")
	}
	c.w.Flush()
	return c, errors.Wrap(c.w.Error(), "could not write csv header")
}

// Record appends one row and flushes it. At 1 Hz the extra flush is
// cheaper than losing the tail of a run to a buffer.
func (c *CSVRecorder) Record(row Row) error {
	rec := []string{
		row.Time.UTC().Format(time.RFC3339),
		formatWatts(row.MeterW),
		formatWatts(row.PVW),
		formatWatts(row.ResidualW()),
	}
	if err := c.w.Write(rec); err != nil {
		return errors.Wrap(err, "could not write csv row")
	}
	c.w.Flush()
	return errors.Wrap(c.w.Error(), "could not write csv row")
}

func formatWatts(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
