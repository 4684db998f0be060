package serialize

import (
	"io"

	"github.com/pvsim/pvsim/pkg/data"
)

// InfluxSerializer writes a Point in the InfluxDB line protocol format
type InfluxSerializer struct{}

// Serialize writes Point data to the given writer, conforming to the
// InfluxDB wire protocol.
//
// This function writes output that looks like:
// <measurement>,<tag key>=<tag value> <field name>=<field value> <timestamp>\n
//
// For example:
// pv,site=munich power_w=1020.5 100\n
func (s *InfluxSerializer) Serialize(p *data.Point, w io.Writer) (err error) {
	buf := make([]byte, 0, 1024)
	buf = append(buf, p.MeasurementName()...)

	tagKeys := p.TagKeys()
	tagValues := p.TagValues()
	fieldKeys := p.FieldKeys()
	fieldValues := p.FieldValues()

	// Tags with non-string values cannot be represented in the tag set and
	// are appended to the field set instead.
	fakeTags := make([]int, 0)
	for i := 0; i < len(tagKeys); i++ {
		if tagValues[i] == nil {
			continue
		}
		switch v := tagValues[i].(type) {
		case string:
			buf = append(buf, ',')
			buf = append(buf, tagKeys[i]...)
			buf = append(buf, '=')
			buf = append(buf, []byte(v)...)
		default:
			fakeTags = append(fakeTags, i)
		}
	}

	if len(fakeTags) > 0 || len(fieldKeys) > 0 {
		buf = append(buf, ' ')
	}
	firstFieldFormatted := false
	for i := 0; i < len(fakeTags); i++ {
		tagIndex := fakeTags[i]
		// don't append a comma before the first field
		if firstFieldFormatted {
			buf = append(buf, ',')
		}
		firstFieldFormatted = true
		buf = appendField(buf, tagKeys[tagIndex], tagValues[tagIndex])
	}

	for i := 0; i < len(fieldKeys); i++ {
		value := fieldValues[i]
		if value == nil {
			continue
		}
		// don't append a comma before the first field
		if firstFieldFormatted {
			buf = append(buf, ',')
		}
		firstFieldFormatted = true
		buf = appendField(buf, fieldKeys[i], value)
	}

	// first field wasn't formatted, because all the fields were nil,
	// InfluxDB will reject the insert
	if !firstFieldFormatted {
		return nil
	}

	buf = append(buf, ' ')
	buf = fastFormatAppend(p.Timestamp().UTC().UnixNano(), buf)
	buf = append(buf, '\n')
	_, err = w.Write(buf)

	return err
}

func appendField(buf, key []byte, v interface{}) []byte {
	buf = append(buf, key...)
	buf = append(buf, '=')

	buf = fastFormatAppend(v, buf)

	// Influx uses 'i' to indicate integers:
	switch v.(type) {
	case int, int64:
		buf = append(buf, 'i')
	}

	return buf
}
