package detection

import (
	"testing"

	"github.com/ironsheep/stripscan/internal/imaging"
)

// drawOutline marks a one-pixel rectangle outline from (x0,y0) to (x1,y1) inclusive.
func drawOutline(mask *imaging.EdgeMask, x0, y0, x1, y1 int) {
	for x := x0; x <= x1; x++ {
		mask.Set(x, y0, true)
		mask.Set(x, y1, true)
	}
	for y := y0; y <= y1; y++ {
		mask.Set(x0, y, true)
		mask.Set(x1, y, true)
	}
}

// outlineContour returns the outline of a w x h span as a contour.
func outlineContour(x0, y0, w, h int) Contour {
	mask := imaging.NewEdgeMask(x0+w+2, y0+h+2)
	drawOutline(mask, x0, y0, x0+w, y0+h)
	contours := ExtractContours(mask, 1)
	return contours[0]
}

func TestExtractContours(t *testing.T) {
	mask := imaging.NewEdgeMask(100, 60)
	drawOutline(mask, 5, 5, 30, 25)
	drawOutline(mask, 50, 10, 80, 40)
	// Speckle below the minimum size
	mask.Set(90, 50, true)
	mask.Set(91, 51, true)

	contours := ExtractContours(mask, 20)
	if len(contours) != 2 {
		t.Fatalf("got %d contours, want 2", len(contours))
	}
	if want := 2 * (25 + 20); len(contours[0]) != want {
		t.Errorf("first contour: got %d points, want %d", len(contours[0]), want)
	}

	if got := ExtractContours(mask, 1); len(got) != 3 {
		t.Errorf("minPoints=1: got %d contours, want 3 (diagonal speckle is 8-connected)", len(got))
	}
}

func TestExtractContours_Empty(t *testing.T) {
	if got := ExtractContours(imaging.NewEdgeMask(10, 10), 1); len(got) != 0 {
		t.Errorf("empty mask: got %d contours", len(got))
	}
	if got := ExtractContours(imaging.NewEdgeMask(0, 0), 1); len(got) != 0 {
		t.Errorf("zero mask: got %d contours", len(got))
	}
}

func TestBuildRegions_Outline(t *testing.T) {
	regions := BuildRegions([]Contour{outlineContour(10, 20, 40, 20)}, 2)
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	r := regions[0]
	if r.X != 10 || r.Y != 20 || r.Width != 40 || r.Height != 20 {
		t.Errorf("region: got %+v", r)
	}
	if r.Confidence != 100 {
		t.Errorf("clean outline confidence: got %f, want 100", r.Confidence)
	}
	if r.Area() != 800 || r.AspectRatio() != 2 {
		t.Errorf("area/aspect: got %d/%f", r.Area(), r.AspectRatio())
	}
	if cx, cy := r.Center(); cx != 30 || cy != 30 {
		t.Errorf("center: got (%f,%f)", cx, cy)
	}
	if rect := r.Rect(); rect.Dx() != 41 || rect.Dy() != 21 {
		t.Errorf("rect: got %v", rect)
	}
}

func TestBuildRegions_MergesFragments(t *testing.T) {
	// Top+left and bottom+right halves of one outline, traced separately.
	var topLeft, bottomRight Contour
	for x := 0; x <= 30; x++ {
		topLeft = append(topLeft, Point{X: x, Y: 0})
		bottomRight = append(bottomRight, Point{X: x, Y: 20})
	}
	for y := 1; y < 20; y++ {
		topLeft = append(topLeft, Point{X: 0, Y: y})
		bottomRight = append(bottomRight, Point{X: 30, Y: y})
	}

	merged := BuildRegions([]Contour{topLeft, bottomRight}, 2)
	if len(merged) != 1 {
		t.Fatalf("got %d regions, want 1 merged region", len(merged))
	}
	if merged[0].Width != 30 || merged[0].Height != 20 {
		t.Errorf("merged region: got %+v", merged[0])
	}

	if separate := BuildRegions([]Contour{topLeft, bottomRight}, -1); len(separate) != 2 {
		t.Errorf("merging disabled: got %d regions, want 2", len(separate))
	}
}

func TestBuildRegions_DistantFragmentsStaySeparate(t *testing.T) {
	regions := BuildRegions([]Contour{outlineContour(0, 0, 20, 20), outlineContour(30, 0, 20, 20)}, 2)
	if len(regions) != 2 {
		t.Errorf("got %d regions, want 2", len(regions))
	}
}

func TestBuildRegions_TexturedBlobScoresLow(t *testing.T) {
	var blob Contour
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			blob = append(blob, Point{X: x, Y: y})
		}
	}
	r := BuildRegions([]Contour{blob}, 2)[0]
	if r.Confidence >= 60 {
		t.Errorf("filled blob confidence: got %f, want < 60", r.Confidence)
	}
}
