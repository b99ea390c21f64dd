// Downscaling for oversized capture frames
package imgio

import (
	"image"

	"gocv.io/x/gocv"
)

// ResizeToFit downscales src so its longer side is at most maxSide,
// preserving aspect ratio, using Lanczos4 resampling. Images already
// within bounds (or maxSide <= 0) are returned as a plain clone. The
// caller owns the returned Mat.
//
// Masks must be produced against the resized frame; rendering rejects
// any mask whose size disagrees with the image.
func ResizeToFit(src gocv.Mat, maxSide int) gocv.Mat {
	w, h := src.Cols(), src.Rows()
	longer := w
	if h > longer {
		longer = h
	}
	if maxSide <= 0 || longer <= maxSide {
		return src.Clone()
	}

	scale := float64(maxSide) / float64(longer)
	size := image.Pt(int(float64(w)*scale+0.5), int(float64(h)*scale+0.5))

	dst := gocv.NewMat()
	gocv.Resize(src, &dst, size, 0, 0, gocv.InterpolationLanczos4)
	return dst
}
