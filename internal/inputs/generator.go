package inputs

import (
	"github.com/pvsim/pvsim/pkg/data/usecases/common"
)

// Generator is an interface that defines a type that generates inputs to
// other pvsim tools. The canonical example is DataGenerator, which creates
// serialized clear-sky and PV data points for offline analysis or loading.
type Generator interface {
	Generate(common.GeneratorConfig) error
}
