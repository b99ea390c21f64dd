// Deterministic glitter particle layer
package render

import (
	"image"
	"image/color"
	"math/rand"

	"gocv.io/x/gocv"

	"professional-nail-renderer/internal/geometry"
	"professional-nail-renderer/internal/material"
)

// Fraction of covered pixels that become particles at density 1.0.
const glitterCoverage = 0.05

// glitterSoftenSigma slightly blurs particles so they read as embedded
// flakes rather than hard dots.
const glitterSoftenSigma = 0.5

// glitterLayer scatters sparkle particles over the region. Placement and
// per-particle brightness come entirely from the seeded generator, so a
// given (geometry, material, seed) triple always produces the same
// layer. Returns BGR floats in [0,1], three per pixel.
func glitterLayer(geom *geometry.Geometry, mat material.Material, seed int64) ([]float32, error) {
	w, h := geom.ImageSize()

	// Candidate positions: covered pixels in row-major order. The scan
	// order matters; it keeps index selection stable across runs.
	var coords []image.Point
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			if geom.Mask.Data[row+x] > 0.5 {
				coords = append(coords, image.Pt(x, y))
			}
		}
	}
	if len(coords) == 0 {
		return make([]float32, w*h*3), nil
	}

	count := int(float64(len(coords)) * mat.GlitterDensity * glitterCoverage)
	if count > len(coords) {
		count = len(coords)
	}

	canvas := gocv.Zeros(h, w, gocv.MatTypeCV8UC3)
	defer canvas.Close()

	if count > 0 {
		rng := rand.New(rand.NewSource(seed))
		order := rng.Perm(len(coords))

		radius := int(mat.GlitterSize)
		if radius < 1 {
			radius = 1
		}

		for _, idx := range order[:count] {
			brightness := 0.5 + rng.Float64()*0.5
			c := color.RGBA{
				R: uint8(mat.GlitterColor.R * brightness * 255),
				G: uint8(mat.GlitterColor.G * brightness * 255),
				B: uint8(mat.GlitterColor.B * brightness * 255),
				A: 255,
			}
			gocv.CircleWithParams(&canvas, coords[idx], radius, c, -1, gocv.LineAA, 0)
		}
	}

	soft := gocv.NewMat()
	defer soft.Close()
	gocv.GaussianBlur(canvas, &soft, image.Pt(0, 0), glitterSoftenSigma, glitterSoftenSigma, gocv.BorderDefault)

	scaled := gocv.NewMat()
	defer scaled.Close()
	soft.ConvertToWithParams(&scaled, gocv.MatTypeCV32FC3, 1.0/255.0, 0)

	ptr, err := scaled.DataPtrFloat32()
	if err != nil {
		return nil, err
	}
	out := make([]float32, w*h*3)
	copy(out, ptr)
	return out, nil
}
