package common

import (
	"fmt"
	"testing"
	"time"

	"github.com/pvsim/pvsim/pkg/data/serialize"
)

const (
	errTotalGroupsZero  = "incorrect interleaved groups configuration: total groups = 0"
	errInvalidGroupsFmt = "incorrect interleaved groups configuration: id %d >= total groups %d"
)

func TestBaseConfigValidate(t *testing.T) {
	c := &BaseConfig{
		Scale:  1,
		Seed:   123,
		Format: serialize.FormatCSV,
		Use:    UseCaseClearSky,
	}

	// Test Scale validation
	err := c.Validate()
	if err != nil {
		t.Errorf("unexpected error with scale 1: %v", err)
	}

	c.Scale = 0
	err = c.Validate()
	if err == nil {
		t.Errorf("unexpected lack of error for scale of 0")
	} else if got := err.Error(); got != ErrScaleIsZero {
		t.Errorf("incorrect error for scale of 0: got\n%s\nwant\n%s", got, ErrScaleIsZero)
	}
	c.Scale = 1

	// Test Seed validation
	err = c.Validate()
	if err != nil {
		t.Errorf("unexpected error with seed 123: %v", err)
	}
	if c.Seed != 123 {
		t.Errorf("seed was not 123 after validation")
	}

	c.Seed = 0
	err = c.Validate()
	if err != nil {
		t.Errorf("unexpected error with seed 0: %v", err)
	}
	if c.Seed == 0 {
		t.Errorf("seed was not set to nanosecond when 0")
	}

	// Test Format validation
	c.Format = serialize.FormatInflux
	err = c.Validate()
	if err != nil {
		t.Errorf("unexpected error with Format '%s': %v", serialize.FormatInflux, err)
	}

	c.Format = "unknown type"
	err = c.Validate()
	if err == nil {
		t.Errorf("unexpected lack of error for incorrect format")
	} else {
		want := fmt.Sprintf(errBadFormatFmt, "unknown type")
		if got := err.Error(); got != want {
			t.Errorf("incorrect error for incorrect format: got\n%v\nwant\n%v", got, want)
		}
	}
	c.Format = serialize.FormatCSV

	// Test Use validation
	c.Use = UseCasePV
	err = c.Validate()
	if err != nil {
		t.Errorf("unexpected error with Use '%s': %v", UseCasePV, err)
	}

	c.Use = "bad use"
	err = c.Validate()
	if err == nil {
		t.Errorf("unexpected lack of error for incorrect use")
	} else {
		want := fmt.Sprintf(errBadUseFmt, "bad use")
		if got := err.Error(); got != want {
			t.Errorf("incorrect error for incorrect use: got\n%v\nwant\n%v", got, want)
		}
	}
	c.Use = UseCaseClearSky
}

func TestDataGeneratorConfigValidate(t *testing.T) {
	c := &DataGeneratorConfig{
		BaseConfig: BaseConfig{
			Seed:   123,
			Format: serialize.FormatCSV,
			Use:    UseCaseClearSky,
			Scale:  10,
		},
		LogInterval:          time.Second,
		InitialScale:         0,
		InterleavedGroupID:   0,
		InterleavedNumGroups: 1,
	}

	// Test base validation
	err := c.Validate()
	if err != nil {
		t.Errorf("unexpected error for correct config: %v", err)
	}

	c.Format = "bad format"
	err = c.Validate()
	if err == nil {
		t.Errorf("unexpected lack of error for bad format")
	}
	c.Format = serialize.FormatCSV

	// Test InitialScale validation
	c.InitialScale = 0
	err = c.Validate()
	if err != nil {
		t.Errorf("unexpected error for InitialScale of 0: %v", err)
	}
	if c.InitialScale != c.Scale {
		t.Errorf("InitialScale not set correctly for 0: got %d want %d", c.InitialScale, c.Scale)
	}

	c.InitialScale = 5
	err = c.Validate()
	if err != nil {
		t.Errorf("unexpected error for InitialScale of 5: %v", err)
	}
	if c.InitialScale != 5 {
		t.Errorf("InitialScale not set correctly for 5: got %d want %d", c.InitialScale, 5)
	}

	// Test LogInterval validation
	c.LogInterval = 0
	err = c.Validate()
	if err == nil {
		t.Errorf("unexpected lack of error for 0 log interval")
	} else if got := err.Error(); got != errLogIntervalZero {
		t.Errorf("incorrect error for 0 log interval: got\n%s\nwant\n%s", got, errLogIntervalZero)
	}
	c.LogInterval = time.Second

	// Test groups validation
	c.InterleavedNumGroups = 0
	err = c.Validate()
	if err == nil {
		t.Errorf("unexpected lack of error for 0 groups")
	} else if got := err.Error(); got != errTotalGroupsZero {
		t.Errorf("incorrect error for 0 groups: got\n%s\nwant\n%s", got, errTotalGroupsZero)
	}
	c.InterleavedNumGroups = 1

	c.InterleavedGroupID = 2
	err = c.Validate()
	if err == nil {
		t.Errorf("unexpected lack of error for group id > num groups")
	} else {
		want := fmt.Sprintf(errInvalidGroupsFmt, 2, 1)
		if got := err.Error(); got != want {
			t.Errorf("incorrect error for group id > num groups: got\n%s\nwant\n%s", got, want)
		}
	}
}
