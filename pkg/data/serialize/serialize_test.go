package serialize

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/pvsim/pvsim/pkg/data"
)

var (
	testNow         = time.Unix(1590969600, 0)
	testMeasurement = []byte("clearsky")
	testTagKeys     = [][]byte{[]byte("site"), []byte("plant")}
	testTagVals     = []interface{}{"munich", "roof_0"}
	testColFloat    = []byte("clearsky_index")
	testColInt      = []byte("cloudy")
	testColInt64    = []byte("elapsed_s")
)

const (
	testFloat             = float64(0.84311829)
	testInt               = 1
	testInt64             = int64(5000000000)
	errWriterAlwaysErr    = "bad write: I always error"
	errWriterSometimesErr = "bad write: I sometimes error"
)

type errWriter struct {
	skipOne bool
	cnt     int
}

func (w *errWriter) Write(p []byte) (n int, err error) {
	if !w.skipOne {
		return 0, fmt.Errorf(errWriterAlwaysErr)
	} else if w.cnt < 1 {
		w.cnt++
		return len(p), nil
	} else {
		return 0, fmt.Errorf(errWriterSometimesErr)
	}
}

func generateTestPoint(name []byte, tagKeys [][]byte, tagVals []interface{}, ts *time.Time, fieldKeys [][]byte, fieldValues []interface{}) *data.Point {
	p := data.NewPoint()
	p.SetMeasurementName(name)
	p.SetTimestamp(ts)
	for i, tagKey := range tagKeys {
		p.AppendTag(tagKey, tagVals[i])
	}
	for i, fieldKey := range fieldKeys {
		p.AppendField(fieldKey, fieldValues[i])
	}
	return p
}

func testPointDefault() *data.Point {
	return generateTestPoint(testMeasurement, testTagKeys, testTagVals, &testNow,
		[][]byte{testColFloat}, []interface{}{testFloat})
}

func testPointMultiField() *data.Point {
	return generateTestPoint(testMeasurement, testTagKeys, testTagVals, &testNow,
		[][]byte{testColInt64, testColInt, testColFloat},
		[]interface{}{testInt64, testInt, testFloat})
}

func testPointInt() *data.Point {
	return generateTestPoint(testMeasurement, testTagKeys, testTagVals, &testNow,
		[][]byte{testColInt}, []interface{}{testInt})
}

func testPointNoTags() *data.Point {
	return generateTestPoint(testMeasurement, [][]byte{}, []interface{}{}, &testNow,
		[][]byte{testColFloat}, []interface{}{testFloat})
}

func testPointWithNilTag() *data.Point {
	return generateTestPoint(testMeasurement, [][]byte{[]byte("site")}, []interface{}{nil}, &testNow,
		[][]byte{testColFloat}, []interface{}{testFloat})
}

func testPointWithNilField() *data.Point {
	return generateTestPoint(testMeasurement, [][]byte{}, []interface{}{}, &testNow,
		[][]byte{testColInt64, testColFloat}, []interface{}{nil, testFloat})
}

type serializeCase struct {
	desc       string
	inputPoint *data.Point
	output     string
}

func testSerializer(t *testing.T, cases []serializeCase, ps PointSerializer) {
	for _, c := range cases {
		b := new(bytes.Buffer)
		ps.Serialize(c.inputPoint, b)
		got := b.String()
		if got != c.output {
			t.Errorf("%s \nOutput incorrect: \nWant: '%s' \nGot:  '%s'", c.desc, c.output, got)
		}
	}
}
