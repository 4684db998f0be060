package serialize

import (
	"io"

	"github.com/pvsim/pvsim/pkg/data"
)

// CSVSerializer writes a Point in a plain CSV form for offline analysis
type CSVSerializer struct{}

// Serialize writes Point p to the given Writer w as a single CSV row of the
// form:
//
// <measurement>,<timestamp ns>,<tag value>...,<field value>...
//
// Column names are not repeated per row; the generator emits a header block
// describing the tag and field order per measurement. A nil tag or field
// value becomes an empty cell so the column positions stay stable.
func (s *CSVSerializer) Serialize(p *data.Point, w io.Writer) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, p.MeasurementName()...)
	buf = append(buf, ',')
	buf = fastFormatAppend(p.Timestamp().UTC().UnixNano(), buf)

	for _, v := range p.TagValues() {
		buf = append(buf, ',')
		buf = fastFormatAppend(v, buf)
	}
	for _, v := range p.FieldValues() {
		buf = append(buf, ',')
		buf = fastFormatAppend(v, buf)
	}
	buf = append(buf, '\n')
	_, err := w.Write(buf)
	return err
}
