package stripgen

import (
	"image"
	"math/rand/v2"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"

	"github.com/ironsheep/stripscan/internal/imaging"
)

// Degradation describes simulated capture defects. The zero value leaves
// the image untouched.
type Degradation struct {
	Blur       float64 `yaml:"blur"`       // Gaussian radius in pixels
	Brightness float64 `yaml:"brightness"` // relative change, -1 to 1
	Rotate     float64 `yaml:"rotate"`     // degrees, about the image center
	Noise      float64 `yaml:"noise"`      // standard deviation per channel
	Seed       uint64  `yaml:"seed"`
}

// Degrade returns a degraded copy of buf. Blur, brightness and rotation are
// applied in that order, then noise. Equal seeds give identical noise.
func Degrade(buf *imaging.PixelBuffer, d Degradation) (*imaging.PixelBuffer, error) {
	if buf == nil || buf.Empty() {
		return nil, imaging.ErrEmptyImage
	}

	out := buf.Clone()
	if d.Blur > 0 || d.Brightness != 0 || d.Rotate != 0 {
		var img image.Image = buf.Image()
		if d.Blur > 0 {
			img = blur.Gaussian(img, d.Blur)
		}
		if d.Brightness != 0 {
			img = adjust.Brightness(img, d.Brightness)
		}
		if d.Rotate != 0 {
			img = transform.Rotate(img, d.Rotate, nil)
		}
		var err error
		if out, err = imaging.FromImage(img); err != nil {
			return nil, err
		}
	}

	if d.Noise > 0 {
		rnd := rand.New(rand.NewPCG(d.Seed, d.Seed+1))
		for i, v := range out.Pix {
			out.Pix[i] = clampByte(float64(v) + rnd.NormFloat64()*d.Noise)
		}
	}
	return out, nil
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
