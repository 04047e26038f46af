package detection

import (
	"image"
	"math"

	"github.com/ironsheep/stripscan/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is a connected set of edge pixels.
type Contour []Point

// Region is the bounding rectangle of one or more contours.
type Region struct {
	X          int     `json:"x" msgpack:"x"`
	Y          int     `json:"y" msgpack:"y"`
	Width      int     `json:"width" msgpack:"width"`
	Height     int     `json:"height" msgpack:"height"`
	PixelCount int     `json:"pixel_count" msgpack:"pixel_count"`
	Confidence float64 `json:"confidence" msgpack:"confidence"` // 0-100 rectangularity
}

// Area returns Width x Height.
func (r Region) Area() int {
	return r.Width * r.Height
}

// AspectRatio returns Width / Height, or 0 for a zero-height region.
func (r Region) AspectRatio() float64 {
	if r.Height == 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

// Center returns the geometric center of the region.
func (r Region) Center() (float64, float64) {
	return float64(r.X) + float64(r.Width)/2, float64(r.Y) + float64(r.Height)/2
}

// Rect returns the region as an image.Rectangle including its far border pixels.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width+1, r.Y+r.Height+1)
}

// ExtractContours finds connected components of edge pixels in mask.
//
// Connectivity is 8-connected (includes diagonals). Components with fewer
// than minPoints pixels are discarded as noise. Contours are returned in the
// raster order of their first pixel.
func ExtractContours(mask *imaging.EdgeMask, minPoints int) []Contour {
	width, height := mask.Width, mask.Height
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	contours := make([]Contour, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask.At(x, y) && !visited[y][x] {
				contour := make(Contour, 0)
				floodFill(mask, visited, x, y, &contour)
				if len(contour) >= minPoints {
					contours = append(contours, contour)
				}
			}
		}
	}
	return contours
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large contours. Marks visited pixels and appends them to the contour.
func floodFill(mask *imaging.EdgeMask, visited [][]bool, startX, startY int, contour *Contour) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= mask.Width || p.Y < 0 || p.Y >= mask.Height {
			continue
		}
		if visited[p.Y][p.X] || !mask.At(p.X, p.Y) {
			continue
		}

		visited[p.Y][p.X] = true
		*contour = append(*contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}

// fragment is a contour group being merged into a region.
type fragment struct {
	minX, minY, maxX, maxY int
	points                 []Point
}

func newFragment(c Contour) *fragment {
	f := &fragment{minX: math.MaxInt, minY: math.MaxInt, maxX: math.MinInt, maxY: math.MinInt}
	f.add(c)
	return f
}

func (f *fragment) add(points []Point) {
	for _, p := range points {
		f.minX = min(f.minX, p.X)
		f.minY = min(f.minY, p.Y)
		f.maxX = max(f.maxX, p.X)
		f.maxY = max(f.maxY, p.Y)
	}
	f.points = append(f.points, points...)
}

// near reports whether two fragment boxes overlap or are within gap pixels.
func (f *fragment) near(o *fragment, gap int) bool {
	return f.minX-gap <= o.maxX && o.minX-gap <= f.maxX &&
		f.minY-gap <= o.maxY && o.minY-gap <= f.maxY
}

// BuildRegions reduces contours to regions, merging fragments whose bounding
// boxes overlap or lie within mergeGap pixels of each other. A negative
// mergeGap disables merging.
func BuildRegions(contours []Contour, mergeGap int) []Region {
	frags := make([]*fragment, 0, len(contours))
	for _, c := range contours {
		if len(c) > 0 {
			frags = append(frags, newFragment(c))
		}
	}

	if mergeGap >= 0 {
		for merged := true; merged; {
			merged = false
			for i := 0; i < len(frags) && !merged; i++ {
				for j := i + 1; j < len(frags); j++ {
					if frags[i].near(frags[j], mergeGap) {
						frags[i].add(frags[j].points)
						frags = append(frags[:j], frags[j+1:]...)
						merged = true
						break
					}
				}
			}
		}
	}

	regions := make([]Region, 0, len(frags))
	for _, f := range frags {
		regions = append(regions, f.region())
	}
	return regions
}

// region converts the fragment to a Region with its rectangularity score.
//
// Confidence = 100 * borderFraction * coverage, where borderFraction is the
// share of contour pixels within 2px of the bounding box border and coverage
// is min(1, pixels / perimeter).
func (f *fragment) region() Region {
	w := f.maxX - f.minX
	h := f.maxY - f.minY
	r := Region{X: f.minX, Y: f.minY, Width: w, Height: h, PixelCount: len(f.points)}

	perimeter := 2 * (w + h)
	if perimeter == 0 {
		return r
	}

	const band = 2
	onBorder := 0
	for _, p := range f.points {
		if p.X-f.minX <= band || f.maxX-p.X <= band || p.Y-f.minY <= band || f.maxY-p.Y <= band {
			onBorder++
		}
	}
	borderFraction := float64(onBorder) / float64(len(f.points))
	coverage := math.Min(1, float64(len(f.points))/float64(perimeter))
	r.Confidence = 100 * borderFraction * coverage
	return r
}
