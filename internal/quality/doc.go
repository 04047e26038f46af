// Package quality grades the photographic quality of a strip image:
// lighting, sharpness, noise, contrast and white balance, each scored 0-100.
// The weighted Composite of these scores caps how confident any reading
// taken from the image can be.
package quality
