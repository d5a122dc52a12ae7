package fractal

import "errors"

// Errors returned by the fractal package. Detail is attached with
// fmt.Errorf("%w: ...") so callers can match with errors.Is.
var (
	// ErrInvalidViewport is returned for zero or negative resolution and for
	// non-finite or non-positive scale or centre.
	ErrInvalidViewport = errors.New("fractal: invalid viewport")

	// ErrInvalidBudget is returned for negative iteration budgets or a
	// non-positive refinement step.
	ErrInvalidBudget = errors.New("fractal: invalid iteration budget")

	// ErrInvalidEscapeRadius is returned when the escape radius is not a
	// finite value greater than 1. The smoothing formula needs log|z| > 0.
	ErrInvalidEscapeRadius = errors.New("fractal: invalid escape radius")

	// ErrUnknownPalette is returned by PaletteByName.
	ErrUnknownPalette = errors.New("fractal: unknown palette")

	// ErrUnknownRegion is returned by RegionByName.
	ErrUnknownRegion = errors.New("fractal: unknown region")
)
