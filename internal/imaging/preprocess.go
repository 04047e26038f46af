package imaging

import "math"

// PreprocessOptions configures the preprocessing chain.
type PreprocessOptions struct {
	// BilateralRadius is the half-width of the bilateral window (2 => 5x5).
	BilateralRadius int `yaml:"bilateral_radius"`

	// SigmaSpace is the spatial standard deviation of the bilateral filter in pixels.
	SigmaSpace float64 `yaml:"sigma_space"`

	// SigmaColor is the color-distance standard deviation of the bilateral filter.
	SigmaColor float64 `yaml:"sigma_color"`

	// ContrastFloor and ContrastGain blend the equalization factor:
	// adaptive = floor + gain * min(factor, ContrastCap).
	ContrastFloor float64 `yaml:"contrast_floor"`
	ContrastGain  float64 `yaml:"contrast_gain"`
	ContrastCap   float64 `yaml:"contrast_cap"`
}

// DefaultPreprocessOptions returns the standard 5x5 bilateral window with
// spatial sigma 5, color sigma 50, and a 0.3 + 0.7*min(f, 2) contrast blend.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		BilateralRadius: 2,
		SigmaSpace:      5,
		SigmaColor:      50,
		ContrastFloor:   0.3,
		ContrastGain:    0.7,
		ContrastCap:     2,
	}
}

// Stages holds the output of every preprocessing step.
//
// Color sampling reads Denoised: it is white balanced and smoothed but has not
// been through the luma-driven contrast stretch, which scales all three
// channels by a per-pixel factor and would shift pad hues toward the anchors'
// neighbours. Edge detection reads Enhanced.
type Stages struct {
	Balanced *PixelBuffer
	Denoised *PixelBuffer
	Enhanced *PixelBuffer
}

// Preprocessor runs white balance, bilateral denoising and adaptive contrast.
type Preprocessor struct {
	opts PreprocessOptions
}

// NewPreprocessor creates a Preprocessor. Zero-valued options fall back to defaults.
func NewPreprocessor(opts PreprocessOptions) *Preprocessor {
	def := DefaultPreprocessOptions()
	if opts.BilateralRadius <= 0 {
		opts.BilateralRadius = def.BilateralRadius
	}
	if opts.SigmaSpace <= 0 {
		opts.SigmaSpace = def.SigmaSpace
	}
	if opts.SigmaColor <= 0 {
		opts.SigmaColor = def.SigmaColor
	}
	if opts.ContrastFloor == 0 && opts.ContrastGain == 0 {
		opts.ContrastFloor = def.ContrastFloor
		opts.ContrastGain = def.ContrastGain
	}
	if opts.ContrastCap <= 0 {
		opts.ContrastCap = def.ContrastCap
	}
	return &Preprocessor{opts: opts}
}

// Preprocess returns the fully preprocessed (contrast-enhanced) buffer.
func (p *Preprocessor) Preprocess(buf *PixelBuffer) (*PixelBuffer, error) {
	st, err := p.Run(buf)
	if err != nil {
		return nil, err
	}
	return st.Enhanced, nil
}

// Run applies the preprocessing chain and returns every intermediate stage.
//
// # Algorithm
//
//  1. Gray-world white balance (see WhiteBalance): each channel is scaled
//     so the near-neutral pixels average to gray.
//  2. Bilateral filter over a (2r+1)x(2r+1) window with weights
//     exp(-d²/2σs²) * exp(-Δc²/2σc²).
//  3. Adaptive contrast: the normalized luma CDF gives an equalized level
//     e(g) for each luma g; every channel is scaled by
//     floor + gain*min(e(g)/max(g,1), cap).
//
// The input buffer is never modified. Returns ErrEmptyImage for an empty buffer.
func (p *Preprocessor) Run(buf *PixelBuffer) (*Stages, error) {
	if buf.Empty() {
		return nil, ErrEmptyImage
	}
	balanced := WhiteBalance(buf)
	denoised := bilateralFilter(balanced, p.opts.BilateralRadius, p.opts.SigmaSpace, p.opts.SigmaColor)
	enhanced := p.enhanceContrast(denoised)
	return &Stages{Balanced: balanced, Denoised: denoised, Enhanced: enhanced}, nil
}

const (
	// neutralSpread is the largest (max-min)/max channel spread of a pixel
	// still counted as near-neutral by WhiteBalance.
	neutralSpread = 0.3

	// minNeutralShare is the fraction of near-neutral pixels WhiteBalance
	// needs before it estimates the cast from them alone.
	minNeutralShare = 0.05
)

// WhiteBalance applies gray-world correction and returns a new buffer.
//
// The channel levels are the per-channel medians of the near-neutral pixels,
// or of every pixel when fewer than 5% are near-neutral. Each channel is
// scaled by mean(levels) / level; a channel whose level is 0 keeps factor 1.
// Strongly colored pads are excluded from the estimate, so a strip on a
// neutral background keeps its pad colors.
func WhiteBalance(buf *PixelBuffer) *PixelBuffer {
	n := buf.Len()
	var neutral, all [3][256]int
	neutralCount := 0
	for i := 0; i < n*3; i += 3 {
		r, g, b := buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2]
		all[0][r]++
		all[1][g]++
		all[2][b]++

		hi, lo := max(r, g, b), min(r, g, b)
		if float64(hi-lo) <= neutralSpread*float64(hi) {
			neutral[0][r]++
			neutral[1][g]++
			neutral[2][b]++
			neutralCount++
		}
	}

	hist, count := &all, n
	if float64(neutralCount) >= minNeutralShare*float64(n) {
		hist, count = &neutral, neutralCount
	}

	var levels, factors [3]float64
	for c := range levels {
		levels[c] = median(hist[c], count)
	}
	gray := (levels[0] + levels[1] + levels[2]) / 3
	for c := range levels {
		factors[c] = 1
		if levels[c] > 0 {
			factors[c] = gray / levels[c]
		}
	}

	out := NewPixelBuffer(buf.Width, buf.Height)
	for i := 0; i < n*3; i += 3 {
		out.Pix[i] = clampByte(float64(buf.Pix[i]) * factors[0])
		out.Pix[i+1] = clampByte(float64(buf.Pix[i+1]) * factors[1])
		out.Pix[i+2] = clampByte(float64(buf.Pix[i+2]) * factors[2])
	}
	return out
}

// median returns the lower median level of a histogram holding count samples.
func median(hist [256]int, count int) float64 {
	half := (count + 1) / 2
	running := 0
	for level, k := range hist {
		running += k
		if running >= half {
			return float64(level)
		}
	}
	return 0
}

// bilateralFilter smooths noise while preserving edges between pads.
// Window pixels outside the buffer are skipped rather than replicated.
func bilateralFilter(buf *PixelBuffer, radius int, sigmaSpace, sigmaColor float64) *PixelBuffer {
	size := 2*radius + 1
	spatial := make([]float64, size*size)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[(dy+radius)*size+dx+radius] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}
	colorDenom := 2 * sigmaColor * sigmaColor

	w, h := buf.Width, buf.Height
	out := NewPixelBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ci := (y*w + x) * 3
			cr, cg, cb := float64(buf.Pix[ci]), float64(buf.Pix[ci+1]), float64(buf.Pix[ci+2])

			var rSum, gSum, bSum, wSum float64
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					ni := (ny*w + nx) * 3
					nr, ng, nb := float64(buf.Pix[ni]), float64(buf.Pix[ni+1]), float64(buf.Pix[ni+2])
					dc := (cr-nr)*(cr-nr) + (cg-ng)*(cg-ng) + (cb-nb)*(cb-nb)
					weight := spatial[(dy+radius)*size+dx+radius] * math.Exp(-dc/colorDenom)
					rSum += nr * weight
					gSum += ng * weight
					bSum += nb * weight
					wSum += weight
				}
			}
			// wSum always includes the center pixel's weight of 1.
			out.Pix[ci] = clampByte(rSum / wSum)
			out.Pix[ci+1] = clampByte(gSum / wSum)
			out.Pix[ci+2] = clampByte(bSum / wSum)
		}
	}
	return out
}

func (p *Preprocessor) enhanceContrast(buf *PixelBuffer) *PixelBuffer {
	n := buf.Len()
	levels := make([]uint8, n)
	var hist [256]int
	for i := 0; i < n; i++ {
		g := clampByte(buf.RGB(i%buf.Width, i/buf.Width).Luma())
		levels[i] = g
		hist[g]++
	}

	var cdf [256]float64
	running := 0
	for g := 0; g < 256; g++ {
		running += hist[g]
		cdf[g] = math.Round(float64(running) / float64(n) * 255)
	}

	var factor [256]float64
	for g := 0; g < 256; g++ {
		f := cdf[g] / math.Max(float64(g), 1)
		factor[g] = p.opts.ContrastFloor + p.opts.ContrastGain*math.Min(f, p.opts.ContrastCap)
	}

	out := NewPixelBuffer(buf.Width, buf.Height)
	for i := 0; i < n; i++ {
		f := factor[levels[i]]
		j := i * 3
		out.Pix[j] = clampByte(float64(buf.Pix[j]) * f)
		out.Pix[j+1] = clampByte(float64(buf.Pix[j+1]) * f)
		out.Pix[j+2] = clampByte(float64(buf.Pix[j+2]) * f)
	}
	return out
}
