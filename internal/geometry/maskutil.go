// Mask construction helpers for polygon-based detections
package geometry

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var white255 = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// MaskFromPolygon rasterizes a detector polygon into a binary mask
// (CV_8UC1, 0/255) of the given image dimensions. Vertices are clamped to
// the raster by the fill itself; polygons with fewer than three points
// produce an empty (all-zero) mask. The caller owns the returned Mat.
func MaskFromPolygon(width, height int, polygon []image.Point) gocv.Mat {
	mask := gocv.Zeros(height, width, gocv.MatTypeCV8UC1)

	if len(polygon) < 3 {
		return mask
	}

	pts := make([]image.Point, len(polygon))
	copy(pts, polygon)

	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(&mask, pv, white255)

	return mask
}

// MaskFromRect rasterizes a rectangular region into a binary mask,
// useful for tests and coarse box-only detectors.
func MaskFromRect(width, height int, rect image.Rectangle) gocv.Mat {
	mask := gocv.Zeros(height, width, gocv.MatTypeCV8UC1)

	rect = rect.Intersect(image.Rect(0, 0, width, height))
	if rect.Empty() {
		return mask
	}

	region := mask.Region(rect)
	defer region.Close()
	region.SetTo(gocv.NewScalar(255, 255, 255, 255))

	return mask
}
