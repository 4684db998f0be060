package inputs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/pvsim/pvsim/internal/utils"
	"github.com/pvsim/pvsim/pkg/data"
	"github.com/pvsim/pvsim/pkg/data/serialize"
	"github.com/pvsim/pvsim/pkg/data/usecases/clearsky"
	"github.com/pvsim/pvsim/pkg/data/usecases/common"
	"github.com/pvsim/pvsim/pkg/data/usecases/pv"
)

// Error messages when using a DataGenerator
const (
	ErrNoConfig          = "no GeneratorConfig provided"
	ErrInvalidDataConfig = "invalid config: DataGenerator needs a DataGeneratorConfig"

	errCannotParseTimeFmt = "cannot parse time from string '%s': %v"
	errUnknownUseCaseFmt  = "unknown use case: '%s'"
)

// Debug histogram range. Field values are recorded in thousandths of their
// natural unit, so the upper bound covers fields up to 10000 (e.g. watts of
// AC power). Anything outside the range is clamped to the nearest bound.
const (
	histLowestTrackable  = 1
	histHighestTrackable = 10000000
	histSigFigs          = 3
	histScale            = 1000.0
)

// DataGenerator is a type of Generator that writes out the serialized points
// of a use case simulator, either to a file or to an io.Writer.
type DataGenerator struct {
	// Out is the writer where data should be written. If nil, it will be
	// os.Stdout unless File is specified in the GeneratorConfig passed to
	// Generate.
	Out io.Writer

	config  *common.DataGeneratorConfig
	tsStart time.Time
	tsEnd   time.Time

	// bufOut represents the buffered writer that should actually be passed to
	// any operations that write out data.
	bufOut *bufio.Writer
}

func (g *DataGenerator) init(config common.GeneratorConfig) error {
	if config == nil {
		return fmt.Errorf(ErrNoConfig)
	}
	switch config.(type) {
	case *common.DataGeneratorConfig:
	default:
		return fmt.Errorf(ErrInvalidDataConfig)
	}
	g.config = config.(*common.DataGeneratorConfig)

	err := g.config.Validate()
	if err != nil {
		return err
	}

	g.tsStart, err = utils.ParseUTCTime(g.config.TimeStart)
	if err != nil {
		return fmt.Errorf(errCannotParseTimeFmt, g.config.TimeStart, err)
	}
	g.tsEnd, err = utils.ParseUTCTime(g.config.TimeEnd)
	if err != nil {
		return fmt.Errorf(errCannotParseTimeFmt, g.config.TimeEnd, err)
	}

	if g.Out == nil {
		g.Out = os.Stdout
	}
	g.bufOut, err = getBufferedWriter(g.config.File, g.Out)
	if err != nil {
		return err
	}

	return nil
}

// Generate runs the configured use case simulator from start to end and
// serializes every point it emits. Randomness is seeded per generator from
// the config's Seed, so equal configs produce equal output.
func (g *DataGenerator) Generate(config common.GeneratorConfig) error {
	err := g.init(config)
	if err != nil {
		return err
	}

	scfg, err := g.getSimulatorConfig(g.config)
	if err != nil {
		return err
	}

	sim := scfg.NewSimulator(g.config.LogInterval, g.config.Limit)
	serializer, err := g.getSerializer(sim, g.config.Format)
	if err != nil {
		return err
	}

	return g.runSimulator(sim, serializer, g.config)
}

func (g *DataGenerator) runSimulator(sim common.Simulator, serializer serialize.PointSerializer, dgc *common.DataGeneratorConfig) error {
	defer g.bufOut.Flush()

	var hist *hdrhistogram.Histogram
	var histField []byte
	if dgc.Debug > 0 {
		hist = hdrhistogram.New(histLowestTrackable, histHighestTrackable, histSigFigs)
		histField = primaryField(dgc.Use)
	}

	currGroupID := uint(0)
	point := data.NewPoint()
	for !sim.Finished() {
		write := sim.Next(point)
		if !write {
			point.Reset()
			continue
		}

		// in the default case this is always true
		if currGroupID == dgc.InterleavedGroupID {
			err := serializer.Serialize(point, g.bufOut)
			if err != nil {
				return fmt.Errorf("can not serialize point: %s", err)
			}
			if hist != nil {
				recordFieldValue(hist, point, histField)
			}
		}
		point.Reset()

		currGroupID = (currGroupID + 1) % dgc.InterleavedNumGroups
	}

	if hist != nil {
		writeHistogramSummary(os.Stderr, hist, string(histField))
	}
	return nil
}

func (g *DataGenerator) getSimulatorConfig(dgc *common.DataGeneratorConfig) (common.SimulatorConfig, error) {
	var table *clearsky.StepTable
	if dgc.StepTable != "" {
		t, err := clearsky.LoadStepTable(dgc.StepTable)
		if err != nil {
			return nil, err
		}
		table = t
	}

	var ret common.SimulatorConfig
	var err error
	switch dgc.Use {
	case common.UseCaseClearSky:
		ret = &clearsky.SimulatorConfig{
			Start: g.tsStart,
			End:   g.tsEnd,

			InitGeneratorScale: dgc.InitialScale,
			GeneratorScale:     dgc.Scale,
			Seed:               dgc.Seed,
			Table:              table,
		}
	case common.UseCasePV:
		ret = &pv.SimulatorConfig{
			Start: g.tsStart,
			End:   g.tsEnd,

			InitGeneratorScale: dgc.InitialScale,
			GeneratorScale:     dgc.Scale,
			Seed:               dgc.Seed,
			Table:              table,
		}
	default:
		err = fmt.Errorf(errUnknownUseCaseFmt, dgc.Use)
	}
	return ret, err
}

func (g *DataGenerator) getSerializer(sim common.Simulator, format string) (serialize.PointSerializer, error) {
	var ret serialize.PointSerializer
	var err error

	switch format {
	case serialize.FormatInflux:
		ret = &serialize.InfluxSerializer{}
	case serialize.FormatCSV:
		g.writeHeader(sim)
		ret = &serialize.CSVSerializer{}
	default:
		err = fmt.Errorf(errUnknownFormatFmt, format)
	}

	return ret, err
}

func (g *DataGenerator) writeHeader(sim common.Simulator) {
	g.bufOut.WriteString("tags")
	types := sim.TagTypes()
	for i, key := range sim.TagKeys() {
		g.bufOut.WriteString(",")
		g.bufOut.WriteString(key)
		g.bufOut.WriteString(" ")
		g.bufOut.WriteString(types[i])
	}
	g.bufOut.WriteString("\n")
	// sort the keys so the header is deterministic
	keys := make([]string, 0)
	fields := sim.Fields()
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, measurementName := range keys {
		g.bufOut.WriteString(measurementName)
		for _, field := range fields[measurementName] {
			g.bufOut.WriteString(",")
			g.bufOut.WriteString(field)
		}
		g.bufOut.WriteString("\n")
	}
	g.bufOut.WriteString("\n")
}

// primaryField names the field summarized by the debug histogram for each
// use case.
func primaryField(use string) []byte {
	switch use {
	case common.UseCaseClearSky:
		return []byte("clearsky_index")
	case common.UseCasePV:
		return []byte("power_w")
	}
	return nil
}

func recordFieldValue(hist *hdrhistogram.Histogram, p *data.Point, field []byte) {
	value, ok := p.GetFieldValue(field).(float64)
	if !ok {
		return
	}
	v := int64(value * histScale)
	if v < histLowestTrackable {
		v = histLowestTrackable
	} else if v > histHighestTrackable {
		v = histHighestTrackable
	}
	// cannot fail once clamped to the trackable range
	_ = hist.RecordValue(v)
}

func writeHistogramSummary(w io.Writer, hist *hdrhistogram.Histogram, field string) {
	fmt.Fprintf(w, "%s: %d values\n", field, hist.TotalCount())
	for _, q := range []float64{0, 50, 95, 99, 99.9, 100} {
		fmt.Fprintf(w, "  q%-5v %.3f\n", q, float64(hist.ValueAtQuantile(q))/histScale)
	}
}
