// Package analysis runs the complete strip pipeline and assembles the report.
//
// Analyzer wires the stages together: preprocessing, edge detection, pad
// selection, color sampling, calibration matching and quality assessment.
// ReportBuilder then merges pad readings with source-based fallbacks for
// parameters whose pad was missing or unreliable, caps each confidence by
// the image-quality composite, and derives the overall confidence, QA
// verdict, water-quality summary and recommendations.
//
// Failures are returned as *Error values; errors.Is(err, ErrInvalidInput)
// identifies unusable input. A poor but usable image is not an error: it
// produces a report with QA.Passed set to false.
package analysis
