package serialize

import (
	"io"

	"github.com/pvsim/pvsim/pkg/data"
)

// PointSerializer serializes a Point for writing
type PointSerializer interface {
	Serialize(p *data.Point, w io.Writer) error
}
