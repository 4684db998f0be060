package inputs

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/pvsim/pvsim/pkg/data"
	"github.com/pvsim/pvsim/pkg/data/serialize"
	"github.com/pvsim/pvsim/pkg/data/usecases/clearsky"
	"github.com/pvsim/pvsim/pkg/data/usecases/common"
	"github.com/pvsim/pvsim/pkg/data/usecases/pv"
)

const (
	testTimeStart = "2020-06-01T00:00:00Z"
	testTimeEnd   = "2020-06-02T00:00:00Z"
)

func TestDataGeneratorInit(t *testing.T) {
	// Test that empty config fails
	dg := &DataGenerator{}
	err := dg.init(nil)
	if err == nil {
		t.Errorf("unexpected lack of error with empty config")
	} else if got := err.Error(); got != ErrNoConfig {
		t.Errorf("incorrect error: got\n%s\nwant\n%s", got, ErrNoConfig)
	}

	// Test that wrong type of config fails
	err = dg.init(&common.BaseConfig{})
	if err == nil {
		t.Errorf("unexpected lack of error with invalid config")
	} else if got := err.Error(); got != ErrInvalidDataConfig {
		t.Errorf("incorrect error: got\n%s\nwant\n%s", got, ErrInvalidDataConfig)
	}

	// Test that empty, invalid config fails
	err = dg.init(&common.DataGeneratorConfig{})
	if err == nil {
		t.Errorf("unexpected lack of error with empty DataGeneratorConfig")
	}

	c := &common.DataGeneratorConfig{
		BaseConfig: common.BaseConfig{
			Format: serialize.FormatCSV,
			Use:    common.UseCaseClearSky,
			Scale:  1,
		},
		LogInterval:          time.Second,
		InterleavedNumGroups: 1,
	}
	const errTimePrefix = "cannot parse time from string"

	// Test incorrect time format for start
	c.TimeStart = "2006 Jan 2"
	err = dg.init(c)
	if err == nil {
		t.Errorf("unexpected lack of error with bad start date")
	} else if got := err.Error(); !strings.HasPrefix(got, errTimePrefix) {
		t.Errorf("unexpected error for bad start date: got\n%s", got)
	}
	c.TimeStart = testTimeStart

	// Test incorrect time format for end
	c.TimeEnd = "Jan 3rd 2016"
	err = dg.init(c)
	if err == nil {
		t.Errorf("unexpected lack of error with bad end date")
	} else if got := err.Error(); !strings.HasPrefix(got, errTimePrefix) {
		t.Errorf("unexpected error for bad end date: got\n%s", got)
	}
	c.TimeEnd = testTimeEnd

	// Test that Out is set to os.Stdout if unset
	err = dg.init(c)
	if err != nil {
		t.Errorf("unexpected error when checking Out: got %v", err)
	} else if dg.Out != os.Stdout {
		t.Errorf("Out not set to Stdout")
	}

	// Test that Out is same if set
	var buf bytes.Buffer
	dg.Out = &buf
	err = dg.init(c)
	if err != nil {
		t.Errorf("unexpected error when checking Out: got %v", err)
	} else if dg.Out != &buf {
		t.Errorf("Out not set to explicit io.Writer")
	}
}

func TestDataGeneratorGenerate(t *testing.T) {
	dg := &DataGenerator{}

	// Test that an invalid config fails
	c := &common.DataGeneratorConfig{}
	err := dg.Generate(c)
	if err == nil {
		t.Errorf("unexpected lack of error with empty DataGeneratorConfig")
	}

	c = &common.DataGeneratorConfig{
		BaseConfig: common.BaseConfig{
			Seed:      123,
			Format:    serialize.FormatCSV,
			Use:       common.UseCaseClearSky,
			Scale:     1,
			TimeStart: testTimeStart,
			TimeEnd:   testTimeEnd,
		},
		Limit:                3,
		InitialScale:         1,
		LogInterval:          time.Second,
		InterleavedNumGroups: 1,
	}
	var buf bytes.Buffer
	dg.Out = &buf
	err = dg.Generate(c)
	if err != nil {
		t.Fatalf("unexpected error when generating: got %v", err)
	}

	wantHeader := []string{
		"tags,site string",
		"clearsky,clearsky_index,cloud_cover,windspeed_ms,cloudy",
		"",
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if got := len(lines); got != len(wantHeader)+3 {
		t.Fatalf("incorrect number of lines: got %d want %d:\n%s", got, len(wantHeader)+3, buf.String())
	}
	for i, want := range wantHeader {
		if lines[i] != want {
			t.Errorf("incorrect header line %d: got\n%s\nwant\n%s", i, lines[i], want)
		}
	}

	// Rows are <measurement>,<timestamp ns>,<site tag>,<4 field values>. The
	// field values depend on the seed but the shape and timestamps do not.
	startNano := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC).UnixNano()
	for i, line := range lines[len(wantHeader):] {
		cols := strings.Split(line, ",")
		if got := len(cols); got != 7 {
			t.Fatalf("incorrect number of columns in row %d: got %d want %d (%s)", i, got, 7, line)
		}
		if cols[0] != "clearsky" {
			t.Errorf("incorrect measurement in row %d: got %s want clearsky", i, cols[0])
		}
		wantTS := fmt.Sprintf("%d", startNano+int64(i)*time.Second.Nanoseconds())
		if cols[1] != wantTS {
			t.Errorf("incorrect timestamp in row %d: got %s want %s", i, cols[1], wantTS)
		}
		if cols[2] != "site_0" {
			t.Errorf("incorrect site tag in row %d: got %s want site_0", i, cols[2])
		}
	}
}

func TestDataGeneratorGenerateDeterministicForSeed(t *testing.T) {
	run := func() string {
		c := &common.DataGeneratorConfig{
			BaseConfig: common.BaseConfig{
				Seed:      42,
				Format:    serialize.FormatCSV,
				Use:       common.UseCasePV,
				Scale:     2,
				TimeStart: testTimeStart,
				TimeEnd:   testTimeEnd,
			},
			Limit:                10,
			InitialScale:         2,
			LogInterval:          time.Minute,
			InterleavedNumGroups: 1,
		}
		var buf bytes.Buffer
		dg := &DataGenerator{Out: &buf}
		if err := dg.Generate(c); err != nil {
			t.Fatalf("unexpected error when generating: got %v", err)
		}
		return buf.String()
	}

	first := run()
	second := run()
	if first != second {
		t.Errorf("same seed produced different output:\nfirst\n%s\nsecond\n%s", first, second)
	}
	if !strings.Contains(first, "pv,") {
		t.Errorf("output has no pv rows:\n%s", first)
	}
}

var keyIteration = []byte("iteration")

type testSimulator struct {
	limit            uint64
	shouldWriteLimit uint64
	iteration        uint64
}

func (s *testSimulator) Finished() bool {
	return s.iteration >= s.limit
}

func (s *testSimulator) Next(p *data.Point) bool {
	p.AppendField(keyIteration, s.iteration)
	ret := s.iteration < s.shouldWriteLimit
	s.iteration++
	return ret
}

func (s *testSimulator) Fields() map[string][]string {
	return nil
}

func (s *testSimulator) TagKeys() []string {
	return nil
}

func (s *testSimulator) TagTypes() []string {
	return nil
}

func (s *testSimulator) Headers() *common.GeneratedDataHeaders {
	return nil
}

type testSerializer struct {
	shouldError bool
}

func (s *testSerializer) Serialize(p *data.Point, w io.Writer) error {
	if s.shouldError {
		return fmt.Errorf("erroring")
	}

	w.Write(keyIteration)
	w.Write([]byte("="))
	str := fmt.Sprintf("%d", p.GetFieldValue(keyIteration).(uint64))
	w.Write([]byte(str))
	w.Write([]byte("\n"))
	return nil
}

func TestRunSimulator(t *testing.T) {
	cases := []struct {
		desc             string
		limit            uint64
		shouldWriteLimit uint64
		groupID          uint
		totalGroups      uint
		shouldError      bool
		wantPoints       uint
	}{
		{
			desc:             "shouldWriteLimit = limit",
			limit:            10,
			shouldWriteLimit: 10,
			totalGroups:      1,
			wantPoints:       10,
		},
		{
			desc:             "shouldWriteLimit < limit",
			limit:            10,
			shouldWriteLimit: 5,
			totalGroups:      1,
			wantPoints:       5,
		},
		{
			desc:             "shouldWriteLimit > limit",
			limit:            10,
			shouldWriteLimit: 15,
			totalGroups:      1,
			wantPoints:       10,
		},
		{
			desc:             "shouldWriteLimit = limit, totalGroups=2",
			limit:            10,
			shouldWriteLimit: 10,
			totalGroups:      2,
			wantPoints:       5,
		},
		{
			desc:             "shouldWriteLimit < limit, totalGroups=2",
			limit:            10,
			shouldWriteLimit: 6,
			totalGroups:      2,
			wantPoints:       3,
		},
		{
			desc:             "shouldWriteLimit < limit, totalGroups=2, other half",
			limit:            10,
			shouldWriteLimit: 6,
			groupID:          1,
			totalGroups:      2,
			wantPoints:       3,
		},
		{
			desc:             "should error in serializer",
			shouldError:      true,
			limit:            10,
			totalGroups:      1,
			shouldWriteLimit: 10,
		},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		dgc := &common.DataGeneratorConfig{
			BaseConfig: common.BaseConfig{
				Scale: 1,
			},
			Limit:                c.limit,
			InitialScale:         1,
			LogInterval:          time.Second,
			InterleavedGroupID:   c.groupID,
			InterleavedNumGroups: c.totalGroups,
		}
		g := &DataGenerator{
			config: dgc,
			bufOut: bufio.NewWriter(&buf),
		}
		sim := &testSimulator{
			limit:            c.limit,
			shouldWriteLimit: c.shouldWriteLimit,
		}
		serializer := &testSerializer{shouldError: c.shouldError}

		err := g.runSimulator(sim, serializer, dgc)
		if c.shouldError && err == nil {
			t.Errorf("%s: unexpected lack of error", c.desc)
		} else if !c.shouldError && err != nil {
			t.Errorf("%s: unexpected error: got %v", c.desc, err)
		} else if !c.shouldError {
			scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
			lines := uint(0)
			for {
				ok := scanner.Scan()
				if !ok && scanner.Err() != nil {
					t.Fatal(scanner.Err())
				} else if !ok {
					break
				}
				line := scanner.Text()
				want := fmt.Sprintf("iteration=%d", (lines*c.totalGroups)+c.groupID)
				if line != want {
					t.Errorf("%s: incorrect line: got\n%s\nwant\n%s\n", c.desc, line, want)
				}
				lines++
			}
			if lines != c.wantPoints {
				t.Errorf("%s: incorrect number of points: got %d want %d", c.desc, lines, c.wantPoints)
			}
		}
	}
}

func TestGetSimulatorConfig(t *testing.T) {
	dgc := &common.DataGeneratorConfig{
		BaseConfig: common.BaseConfig{
			Scale: 1,
			Seed:  123,
		},
		InitialScale: 1,
		LogInterval:  time.Second,
	}
	g := &DataGenerator{config: dgc}

	checkType := func(use string, want common.SimulatorConfig) {
		wantType := reflect.TypeOf(want)
		dgc.Use = use
		scfg, err := g.getSimulatorConfig(dgc)
		if err != nil {
			t.Errorf("unexpected error with use case %s: %v", use, err)
		}
		if got := reflect.TypeOf(scfg); got != wantType {
			t.Errorf("use '%s' does not give right scfg: got %v want %v", use, got, wantType)
		}
	}

	checkType(common.UseCaseClearSky, &clearsky.SimulatorConfig{})
	checkType(common.UseCasePV, &pv.SimulatorConfig{})

	dgc.Use = "bogus use case"
	_, err := g.getSimulatorConfig(dgc)
	if err == nil {
		t.Errorf("unexpected lack of error for bogus use case")
	} else {
		want := fmt.Sprintf(errUnknownUseCaseFmt, "bogus use case")
		if got := err.Error(); got != want {
			t.Errorf("incorrect error for bogus use case: got\n%s\nwant\n%s", got, want)
		}
	}
}

func TestGetSimulatorConfigStepTable(t *testing.T) {
	body := `bins:
  - upper: 0.5
    dist: t
    loc: 0.0
    scale: 0.05
    df: 3.0
  - upper: 1.0
    dist: al
    loc: 0.001
    scale: 0.04
    kappa: 1.2
`
	path := filepath.Join(t.TempDir(), "steps.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	dgc := &common.DataGeneratorConfig{
		BaseConfig: common.BaseConfig{
			Use:   common.UseCaseClearSky,
			Scale: 1,
			Seed:  123,
		},
		InitialScale: 1,
		LogInterval:  time.Second,
		StepTable:    path,
	}
	g := &DataGenerator{config: dgc}

	scfg, err := g.getSimulatorConfig(dgc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cscfg, ok := scfg.(*clearsky.SimulatorConfig)
	if !ok {
		t.Fatalf("incorrect config type: got %T", scfg)
	}
	if cscfg.Table == nil {
		t.Errorf("step table was not loaded from %s", path)
	} else if got := len(cscfg.Table.Bins); got != 2 {
		t.Errorf("incorrect number of bins: got %d want %d", got, 2)
	}

	// A missing table file surfaces as an error
	dgc.StepTable = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = g.getSimulatorConfig(dgc)
	if err == nil {
		t.Errorf("unexpected lack of error for missing step table")
	}
}

func TestGetSerializer(t *testing.T) {
	dgc := &common.DataGeneratorConfig{
		BaseConfig: common.BaseConfig{
			Use:   common.UseCaseClearSky,
			Scale: 1,
			Seed:  123,
		},
		InitialScale: 1,
		LogInterval:  time.Second,
	}
	g := &DataGenerator{config: dgc}

	scfg, err := g.getSimulatorConfig(dgc)
	if err != nil {
		t.Errorf("unexpected error creating scfg: %v", err)
	}

	sim := scfg.NewSimulator(dgc.LogInterval, 0)
	var buf bytes.Buffer
	g.bufOut = bufio.NewWriter(&buf)
	defer g.bufOut.Flush()

	checkType := func(format string, want serialize.PointSerializer) {
		wantType := reflect.TypeOf(want)
		s, err := g.getSerializer(sim, format)
		if err != nil {
			t.Errorf("unexpected error making serializer: %v", err)
		}
		if got := reflect.TypeOf(s); got != wantType {
			t.Errorf("format '%s' does not run the right serializer: got %v want %v", format, got, wantType)
		}
	}

	checkType(serialize.FormatCSV, &serialize.CSVSerializer{})
	checkType(serialize.FormatInflux, &serialize.InfluxSerializer{})

	_, err = g.getSerializer(sim, "bogus format")
	if err == nil {
		t.Errorf("unexpected lack of error creating bogus serializer")
	} else {
		want := fmt.Sprintf(errUnknownFormatFmt, "bogus format")
		if got := err.Error(); got != want {
			t.Errorf("incorrect error for bogus format: got\n%s\nwant\n%s", got, want)
		}
	}
}

func TestWriteHeader(t *testing.T) {
	start := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		desc string
		scfg common.SimulatorConfig
		want string
	}{
		{
			desc: "clearsky",
			scfg: &clearsky.SimulatorConfig{
				Start:              start,
				End:                start.Add(time.Minute),
				InitGeneratorScale: 1,
				GeneratorScale:     1,
				Seed:               42,
			},
			want: "tags,site string\n" +
				"clearsky,clearsky_index,cloud_cover,windspeed_ms,cloudy\n" +
				"\n",
		},
		{
			desc: "pv",
			scfg: &pv.SimulatorConfig{
				Start:              start,
				End:                start.Add(time.Minute),
				InitGeneratorScale: 1,
				GeneratorScale:     1,
				Seed:               42,
			},
			want: "tags,plant string,site string\n" +
				"pv,clearsky_index,ghi_wm2,power_w,cell_temp_c,ambient_temp_c\n" +
				"\n",
		},
	}

	for _, c := range cases {
		sim := c.scfg.NewSimulator(time.Second, 0)
		var buf bytes.Buffer
		g := &DataGenerator{bufOut: bufio.NewWriter(&buf)}
		g.writeHeader(sim)
		g.bufOut.Flush()

		if got := buf.String(); got != c.want {
			t.Errorf("%s: incorrect header: got\n%s\nwant\n%s", c.desc, got, c.want)
		}
	}
}

func TestPrimaryField(t *testing.T) {
	if got := string(primaryField(common.UseCaseClearSky)); got != "clearsky_index" {
		t.Errorf("incorrect primary field for clearsky: got %s", got)
	}
	if got := string(primaryField(common.UseCasePV)); got != "power_w" {
		t.Errorf("incorrect primary field for pv: got %s", got)
	}
	if got := primaryField("bogus"); got != nil {
		t.Errorf("incorrect primary field for bogus use case: got %s", got)
	}
}

func TestRecordFieldValue(t *testing.T) {
	hist := hdrhistogram.New(histLowestTrackable, histHighestTrackable, histSigFigs)
	p := data.NewPoint()
	p.AppendField([]byte("power_w"), 850.25)
	p.AppendField([]byte("cloudy"), true)

	recordFieldValue(hist, p, []byte("power_w"))
	if got := hist.TotalCount(); got != 1 {
		t.Fatalf("incorrect count after recording: got %d want %d", got, 1)
	}
	want := 850.25 * histScale
	if got := float64(hist.Max()); math.Abs(got-want) > want*0.001 {
		t.Errorf("incorrect recorded value: got %f want about %f", got, want)
	}

	// Non-numeric and missing fields are skipped
	recordFieldValue(hist, p, []byte("cloudy"))
	recordFieldValue(hist, p, []byte("no_such_field"))
	if got := hist.TotalCount(); got != 1 {
		t.Errorf("incorrect count after skipped fields: got %d want %d", got, 1)
	}

	// Out-of-range values clamp to the trackable bounds
	p.Reset()
	p.AppendField([]byte("power_w"), -5.0)
	recordFieldValue(hist, p, []byte("power_w"))
	if got := hist.Min(); got != int64(histLowestTrackable) {
		t.Errorf("negative value did not clamp to lowest trackable: got %d", got)
	}
}

func TestWriteHistogramSummary(t *testing.T) {
	hist := hdrhistogram.New(histLowestTrackable, histHighestTrackable, histSigFigs)
	// 1500 sits below the histogram's unit-resolution limit, so every
	// quantile reports it back exactly.
	for i := 0; i < 100; i++ {
		if err := hist.RecordValue(1500); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	writeHistogramSummary(&buf, hist, "power_w")
	out := buf.String()

	if !strings.HasPrefix(out, "power_w: 100 values\n") {
		t.Errorf("incorrect summary prefix: got\n%s", out)
	}
	wantLines := 7
	quantileLines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if got := len(quantileLines); got != wantLines {
		t.Fatalf("incorrect number of summary lines: got %d want %d:\n%s", got, wantLines, out)
	}
	for _, line := range quantileLines[1:] {
		if !strings.Contains(line, "1.500") {
			t.Errorf("quantile line does not report the recorded value: %s", line)
		}
	}
}
