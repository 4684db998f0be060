package common

const (
	// Use case choices (make sure to update TestGetSimulatorConfig if adding a new one)
	UseCaseClearSky = "clearsky"
	UseCasePV       = "pv"
)

// UseCaseChoices is the set of use cases the data generator can simulate.
var UseCaseChoices = []string{
	UseCaseClearSky,
	UseCasePV,
}
