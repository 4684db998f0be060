package clearsky

import (
	"fmt"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v2"
)

// Step distribution kinds supported by a StepTable.
const (
	StepDistAsymmetricLaplace = "al"
	StepDistStudentsT         = "t"
)

// Error messages when loading a StepTable
const (
	errTableNoBins        = "step table has no bins"
	errTableUpperOrderFmt = "step table bins must have ascending upper bounds: bin %d has %v after %v"
	errTableUpperRangeFmt = "step table bin %d upper bound must be in (0, 1]: got %v"
	errTableLastUpperFmt  = "step table must cover cloud cover up to 1: last upper bound is %v"
	errTableScaleFmt      = "step table bin %d must have a positive scale: got %v"
	errTableKappaFmt      = "step table bin %d must have a positive kappa: got %v"
	errTableDfFmt         = "step table bin %d must have positive degrees of freedom: got %v"
	errTableDistFmt       = "step table bin %d has unknown dist %q"
)

// StepBin parameterises the hourly cloud-cover step distribution for states
// up to and including Upper.
type StepBin struct {
	Upper float64 `yaml:"upper"`
	Dist  string  `yaml:"dist"`
	Loc   float64 `yaml:"loc"`
	Scale float64 `yaml:"scale"`
	Kappa float64 `yaml:"kappa,omitempty"`
	Df    float64 `yaml:"df,omitempty"`
}

// StepTable maps cloud-cover bins to fitted hourly step distributions. The
// bins partition (0, 1]; a walk state selects the first bin whose upper
// bound is not below it.
type StepTable struct {
	Bins []StepBin `yaml:"bins"`
}

// DefaultStepTable returns the built-in table, fitted against hourly ERA5
// total cloud cover over Munich.
func DefaultStepTable() *StepTable {
	return &StepTable{
		Bins: []StepBin{
			{Upper: 0.1, Dist: StepDistAsymmetricLaplace, Loc: 0.0017, Scale: 0.0605, Kappa: 0.696},
			{Upper: 0.3, Dist: StepDistAsymmetricLaplace, Loc: 0.0036, Scale: 0.0913, Kappa: 0.776},
			{Upper: 0.7, Dist: StepDistAsymmetricLaplace, Loc: 0.0024, Scale: 0.1159, Kappa: 0.936},
			{Upper: 0.9, Dist: StepDistAsymmetricLaplace, Loc: 0.0075, Scale: 0.1103, Kappa: 1.099},
			{Upper: 0.99, Dist: StepDistAsymmetricLaplace, Loc: 0.0034, Scale: 0.0773, Kappa: 1.301},
			{Upper: 1.0, Dist: StepDistAsymmetricLaplace, Loc: 0.0012, Scale: 0.0456, Kappa: 1.474},
		},
	}
}

// LoadStepTable reads and validates a YAML step table from path.
func LoadStepTable(path string) (*StepTable, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read step table %s: %v", path, err)
	}
	table := &StepTable{}
	if err := yaml.UnmarshalStrict(contents, table); err != nil {
		return nil, fmt.Errorf("cannot parse step table %s: %v", path, err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks that the bins partition (0, 1] with sane parameters.
func (t *StepTable) Validate() error {
	if len(t.Bins) == 0 {
		return fmt.Errorf(errTableNoBins)
	}
	prev := 0.0
	for i, bin := range t.Bins {
		if bin.Upper <= 0 || bin.Upper > 1 {
			return fmt.Errorf(errTableUpperRangeFmt, i, bin.Upper)
		}
		if bin.Upper <= prev {
			return fmt.Errorf(errTableUpperOrderFmt, i, bin.Upper, prev)
		}
		prev = bin.Upper
		if bin.Scale <= 0 {
			return fmt.Errorf(errTableScaleFmt, i, bin.Scale)
		}
		switch bin.Dist {
		case StepDistAsymmetricLaplace:
			if bin.Kappa <= 0 {
				return fmt.Errorf(errTableKappaFmt, i, bin.Kappa)
			}
		case StepDistStudentsT:
			if bin.Df <= 0 {
				return fmt.Errorf(errTableDfFmt, i, bin.Df)
			}
		default:
			return fmt.Errorf(errTableDistFmt, i, bin.Dist)
		}
	}
	if last := t.Bins[len(t.Bins)-1].Upper; last != 1 {
		return fmt.Errorf(errTableLastUpperFmt, last)
	}
	return nil
}

// Sampler returns the step sampler for the given cloud-cover state, drawing
// from src. States at or below zero use the first bin.
func (t *StepTable) Sampler(state float64, src rand.Source) distuv.Rander {
	bin := t.Bins[len(t.Bins)-1]
	for _, b := range t.Bins {
		if state <= b.Upper {
			bin = b
			break
		}
	}
	switch bin.Dist {
	case StepDistStudentsT:
		return distuv.StudentsT{Mu: bin.Loc, Sigma: bin.Scale, Nu: bin.Df, Src: src}
	default:
		return AsymmetricLaplace{Loc: bin.Loc, Scale: bin.Scale, Kappa: bin.Kappa, Src: src}
	}
}
