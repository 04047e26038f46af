// Package detection turns an edge mask into candidate test-strip pads.
//
// Detection follows a three step pipeline:
//
//  1. Contour extraction: connected components of edge pixels are traced with
//     an iterative 8-connected flood fill. Components below a minimum size
//     are discarded as speckle.
//  2. Region building: each contour is reduced to its bounding rectangle and a
//     rectangularity confidence. Fragments whose rectangles overlap or sit
//     within a small gap are merged, so a pad outline broken by glare still
//     yields one region.
//  3. Pad selection: regions outside the configured area and aspect-ratio
//     window are rejected, the largest survivors are kept up to the pad
//     limit, and the result is returned in reading order (top-to-bottom rows,
//     left-to-right within a row). Index i of the result is strip position i.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// A Region's Width and Height are the spans of its contour (maxX-minX and
// maxY-minY); Rect returns the inclusive pixel rectangle.
//
// # Confidence Scores
//
// Region confidence runs from 0 to 100:
//   - 100 = every contour pixel lies on the rectangle border and the contour
//     covers the full perimeter
//   - Lower values indicate ragged, partial or textured outlines
//
// # Limitations
//
// Only axis-aligned pads are recognized. A strongly rotated strip produces
// oversized bounding boxes that the aspect-ratio window usually rejects;
// CheckLayout reports tilt so callers can warn about it.
package detection
