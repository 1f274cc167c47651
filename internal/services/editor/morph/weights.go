// Package morph converts morph sliders into the blend weights consumed by the
// asset pipeline's eight morph targets.
package morph

import (
	"fmt"

	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
)

// TargetNames are the base mesh's morph targets, in slider order.
var TargetNames = [facecode.MorphCount]string{
	"chin_size",
	"chin_shape",
	"jaw_width",
	"mouth_width",
	"nose_size",
	"cheek_bones",
	"eye_width",
	"brow_height",
}

// Weights maps each morph field to value/max in [0,1].
func Weights(layout *facecode.Layout, params facecode.Parameters) ([facecode.MorphCount]float64, error) {
	var weights [facecode.MorphCount]float64
	for i, name := range facecode.MorphFields {
		f, err := layout.FieldFor(name)
		if err != nil {
			return weights, err
		}
		value, ok := params[name]
		if !ok {
			return weights, fmt.Errorf("morph %s: %w", name, facecode.ErrFieldMissing)
		}
		if !f.InRange(value) {
			return weights, facecode.OutOfRange(f, value)
		}
		if f.Max == 0 {
			continue
		}
		weights[i] = float64(value) / float64(f.Max)
	}
	return weights, nil
}

// Named pairs each weight with its target name.
func Named(weights [facecode.MorphCount]float64) map[string]float64 {
	named := make(map[string]float64, len(weights))
	for i, w := range weights {
		named[TargetNames[i]] = w
	}
	return named
}
