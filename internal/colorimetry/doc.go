// Package colorimetry turns pad colors into numeric readings.
//
// A Calibration holds one Curve per strip parameter, each an ordered list of
// reference colors (anchors) with their values. The built-in table is
// embedded and parsed once; LoadFile accepts a replacement of the same YAML
// shape.
//
// Sampler estimates a pad's color from a centroid and concentric rings of
// weighted samples. Matcher converts that estimate to CIELAB and interpolates
// between the nearest anchors, producing a ParameterReading whose confidence
// reflects anchor distance, sample spread and region confidence.
package colorimetry
