// Package stripgen renders synthetic test strips with known readings.
//
// A Generator turns a set of parameter values into pad colors by
// interpolating the calibration curves, then paints the pads in a 3x2 grid
// or a single 6x1 strip on a dark background. Degrade applies blur,
// brightness, rotation and seeded Gaussian noise so tests and demos can
// exercise the analyzer under controlled, reproducible conditions.
package stripgen
