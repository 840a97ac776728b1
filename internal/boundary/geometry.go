package boundary

import (
	"math"

	"github.com/san-kum/mdsim/internal/cells"
	"github.com/san-kum/mdsim/internal/dynamo"
)

// Plane is the coordinate of face f along its axis for a domain spanning
// [origin, origin+extent).
func Plane(f cells.Face, origin, extent dynamo.Vec3) float64 {
	a := f.Axis()
	if f.Upper() {
		return origin[a] + extent[a]
	}
	return origin[a]
}

// Distance is the unsigned distance from x to the plane of face f.
func Distance(x dynamo.Vec3, f cells.Face, origin, extent dynamo.Vec3) float64 {
	return math.Abs(x[f.Axis()] - Plane(f, origin, extent))
}

// Mirror reflects x across the plane of face f.
func Mirror(x dynamo.Vec3, f cells.Face, origin, extent dynamo.Vec3) dynamo.Vec3 {
	a := f.Axis()
	x[a] = 2*Plane(f, origin, extent) - x[a]
	return x
}

// Shift translates x by shift along axis.
func Shift(x dynamo.Vec3, axis int, shift float64) dynamo.Vec3 {
	x[axis] += shift
	return x
}

// Wrap maps v into [lo, lo+extent).
func Wrap(v, lo, extent float64) float64 {
	w := math.Mod(v-lo, extent)
	if w < 0 {
		w += extent
	}
	if w >= extent {
		w = 0
	}
	return lo + w
}

// exitFaces returns the faces x lies beyond.
func exitFaces(x dynamo.Vec3, origin, extent dynamo.Vec3, dims int) cells.FaceSet {
	var fs cells.FaceSet
	for d := 0; d < dims; d++ {
		switch {
		case x[d] < origin[d]:
			fs = fs.With(cells.FaceOf(d, false))
		case x[d] >= origin[d]+extent[d]:
			fs = fs.With(cells.FaceOf(d, true))
		}
	}
	return fs
}
