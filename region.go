package fractal

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Region is an axis-aligned rectangle of the complex plane.
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// FitResolution returns the largest resolution within maxWidth x maxHeight
// that has the region's aspect ratio.
func (r Region) FitResolution(maxWidth, maxHeight int) (width, height int) {
	dx := math.Abs(r.Xmax - r.Xmin)
	dy := math.Abs(r.Ymax - r.Ymin)
	if dx == 0 || dy == 0 || maxWidth <= 0 || maxHeight <= 0 {
		return max(maxWidth, 1), max(maxHeight, 1)
	}

	ratio := dx / dy
	if ratio > float64(maxWidth)/float64(maxHeight) {
		// Wider than the box: width-limited.
		width = maxWidth
		height = int(math.Round(float64(maxWidth) / ratio))
	} else {
		height = maxHeight
		width = int(math.Round(float64(maxHeight) * ratio))
	}
	return max(width, 1), max(height, 1)
}

// Classic landmarks of the Mandelbrot set.
var (
	// SeahorseValley has dense filaments and repeating "seahorse" curls.
	SeahorseValley = Region{Xmin: -0.8, Xmax: -0.7, Ymin: 0.05, Ymax: 0.15}

	// ElephantValley has a large bulb with trunk-like tendrils.
	ElephantValley = Region{Xmin: -1.85, Xmax: -1.75, Ymin: -0.10, Ymax: -0.02}

	// SpiralMinibrot is a small Mandelbrot copy with tight spiral arms.
	SpiralMinibrot = Region{Xmin: -0.7435, Xmax: -0.7420, Ymin: 0.1310, Ymax: 0.1325}

	// TripleSpiral is a threefold symmetric spiral.
	TripleSpiral = Region{Xmin: -0.7480, Xmax: -0.7450, Ymin: 0.0950, Ymax: 0.0980}

	// ValleyOfTheDragon has deep, highly detailed spiral filaments.
	ValleyOfTheDragon = Region{Xmin: -0.7400, Xmax: -0.7350, Ymin: 0.1800, Ymax: 0.1850}

	// MinibrotInMiniSpiral is a self-similar copy inside a spiral arm.
	MinibrotInMiniSpiral = Region{Xmin: -1.7390, Xmax: -1.7375, Ymin: -0.0235, Ymax: -0.0220}

	// FullSet frames the whole set.
	FullSet = Region{Xmin: -2.5, Xmax: 1.0, Ymin: -1.25, Ymax: 1.25}
)

var regions = map[string]Region{
	"full":          FullSet,
	"seahorse":      SeahorseValley,
	"elephant":      ElephantValley,
	"spiral":        SpiralMinibrot,
	"triple-spiral": TripleSpiral,
	"dragon":        ValleyOfTheDragon,
	"mini-spiral":   MinibrotInMiniSpiral,
}

// RegionByName looks up a landmark by its short name (case-insensitive).
func RegionByName(name string) (Region, error) {
	r, ok := regions[strings.ToLower(name)]
	if !ok {
		return Region{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownRegion, name, strings.Join(RegionNames(), ", "))
	}
	return r, nil
}

// RegionNames returns the sorted landmark names.
func RegionNames() []string {
	names := make([]string, 0, len(regions))
	for n := range regions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
