package render

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"professional-nail-renderer/internal/geometry"
	"professional-nail-renderer/internal/material"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func testCompositor() *Compositor {
	return NewCompositor(DefaultLightConfig(), testLogger())
}

// nailMask rasterizes a solid ellipse the way a segmentation model would
// hand one over: CV_8UC1, 255 inside.
func nailMask(t *testing.T, width, height, cx, cy, rx, ry int) gocv.Mat {
	t.Helper()
	mask := gocv.Zeros(height, width, gocv.MatTypeCV8UC1)
	ptr, err := mask.DataPtrUint8()
	require.NoError(t, err)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fx := float64(x-cx) / float64(rx)
			fy := float64(y-cy) / float64(ry)
			if fx*fx+fy*fy <= 1.0 {
				ptr[y*width+x] = 255
			}
		}
	}
	return mask
}

func analyzeMask(t *testing.T, mask gocv.Mat) *geometry.Geometry {
	t.Helper()
	g := geometry.NewAnalyzer(testLogger()).Analyze(mask, geometry.DefaultMinArea)
	require.NotNil(t, g)
	return g
}

func blackImage(rows, cols int) gocv.Mat {
	return gocv.Zeros(rows, cols, gocv.MatTypeCV8UC3)
}

func TestRenderHighlightBrighterThanRim(t *testing.T) {
	mask := nailMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	geom := analyzeMask(t, mask)

	img := blackImage(160, 200)
	defer img.Close()

	comp := testCompositor()
	_, err := comp.Render(img, geom, material.Preset("glossy_red"), 1)
	require.NoError(t, err)

	hp := geom.HighlightPoint
	require.Equal(t, float32(1), geom.Mask.At(hp.X, hp.Y))

	// Walk from the center through the highlight until leaving the mask;
	// the last covered pixel is the rim sample on the same ray.
	dx, dy := sign(hp.X-geom.Center.X), sign(hp.Y-geom.Center.Y)
	bx, by := geom.Center.X, geom.Center.Y
	for geom.Mask.At(bx+dx, by+dy) > 0 {
		bx += dx
		by += dy
	}

	assert.Greater(t, LuminanceAt(img, hp.X, hp.Y), LuminanceAt(img, bx, by),
		"curvature shading, occlusion and feathering must all darken the rim")
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func TestRenderIdempotent(t *testing.T) {
	mask := nailMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	geom := analyzeMask(t, mask)
	comp := testCompositor()

	// Glitter is the only stochastic layer; the fixed seed must make it
	// reproducible down to the last bit.
	mat := material.Preset("glitter_pink")

	first := blackImage(160, 200)
	defer first.Close()
	second := blackImage(160, 200)
	defer second.Close()

	_, err := comp.Render(first, geom, mat, 7)
	require.NoError(t, err)
	_, err = comp.Render(second, geom, mat, 7)
	require.NoError(t, err)

	assert.Equal(t, first.ToBytes(), second.ToBytes())
}

func TestComposeGlitterSeedVariation(t *testing.T) {
	mask := nailMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	geom := analyzeMask(t, mask)
	comp := testCompositor()
	mat := material.Preset("glitter_pink")

	a, err := comp.Compose(geom, mat, 1)
	require.NoError(t, err)
	b, err := comp.Compose(geom, mat, 2)
	require.NoError(t, err)
	same, err := comp.Compose(geom, mat, 1)
	require.NoError(t, err)

	assert.Equal(t, a.Color, same.Color, "same seed places the same sparkle")
	assert.NotEqual(t, a.Color, b.Color, "different seeds scatter differently")
}

func TestComposeSpecularCutoff(t *testing.T) {
	mask := nailMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	geom := analyzeMask(t, mask)
	comp := testCompositor()

	// Below the glossiness cutoff the highlight layer is skipped entirely,
	// so the specular gain cannot matter.
	dull := material.Material{
		BaseColor:  material.RGB{R: 0.8, G: 0.1, B: 0.1},
		Glossiness: 0.05,
		Roughness:  0.95,
		Opacity:    1,
	}
	loud := dull
	loud.SpecularIntensity = material.MaxSpecularIntensity

	a, err := comp.Compose(geom, dull, 0)
	require.NoError(t, err)
	b, err := comp.Compose(geom, loud, 0)
	require.NoError(t, err)
	assert.Equal(t, a.Color, b.Color)
}

func TestComposeMatteDarkerThanChrome(t *testing.T) {
	mask := nailMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	geom := analyzeMask(t, mask)
	comp := testCompositor()

	red := material.RGB{R: 0.8, G: 0.1, B: 0.1}
	matte, err := comp.Compose(geom, material.Custom(red, material.FinishMatte), 0)
	require.NoError(t, err)
	chrome, err := comp.Compose(geom, material.Custom(red, material.FinishChrome), 0)
	require.NoError(t, err)

	assert.Greater(t, peakLuminance(chrome), peakLuminance(matte)+0.1,
		"a mirror finish must peak visibly brighter than a matte one")
}

func peakLuminance(rr *RegionRender) float64 {
	peak := 0.0
	for i := 0; i < rr.Width*rr.Height; i++ {
		l := Luminance(
			float64(rr.Color[i*3+2]),
			float64(rr.Color[i*3+1]),
			float64(rr.Color[i*3]),
		)
		if l > peak {
			peak = l
		}
	}
	return peak
}

func TestFeatheredAlphaFallsOffOutward(t *testing.T) {
	mask := nailMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	geom := analyzeMask(t, mask)
	comp := testCompositor()

	mat := material.Preset("glossy_red")
	rr, err := comp.Compose(geom, mat, 0)
	require.NoError(t, err)

	// Along the ray from the center out the right side, coverage must
	// never recover once it starts dropping.
	prev := rr.Alpha.At(100, 80)
	for x := 101; x < 200; x++ {
		cur := rr.Alpha.At(x, 80)
		assert.LessOrEqual(t, cur, prev+1e-3, "alpha rose again at x=%d", x)
		prev = cur
	}

	assert.LessOrEqual(t, float64(rr.Alpha.At(100, 80)), mat.Opacity+1e-3, "opacity caps the blend")
	assert.InDelta(t, mat.Opacity, float64(rr.Alpha.At(100, 80)), 0.05, "deep interior is fully covered")
	assert.Equal(t, float32(0), rr.Alpha.At(195, 5), "far corner untouched")
}

func TestRenderOverlapLaterRegionWins(t *testing.T) {
	maskA := nailMask(t, 200, 160, 90, 80, 30, 50)
	defer maskA.Close()
	maskB := nailMask(t, 200, 160, 120, 80, 30, 50)
	defer maskB.Close()
	geomA := analyzeMask(t, maskA)
	geomB := analyzeMask(t, maskB)

	comp := testCompositor()
	red := material.Custom(material.RGB{R: 0.8, G: 0.1, B: 0.1}, material.FinishGlossy)
	blue := material.Custom(material.RGB{R: 0.1, G: 0.1, B: 0.8}, material.FinishGlossy)

	redThenBlue := blackImage(160, 200)
	defer redThenBlue.Close()
	_, err := comp.Render(redThenBlue, geomA, red, 0)
	require.NoError(t, err)
	_, err = comp.Render(redThenBlue, geomB, blue, 1)
	require.NoError(t, err)

	blueThenRed := blackImage(160, 200)
	defer blueThenRed.Close()
	_, err = comp.Render(blueThenRed, geomB, blue, 1)
	require.NoError(t, err)
	_, err = comp.Render(blueThenRed, geomA, red, 0)
	require.NoError(t, err)

	// (105, 80) sits deep inside both regions, so whichever coat went on
	// last dominates the channel balance there.
	p1 := redThenBlue.GetVecbAt(80, 105)
	assert.Greater(t, p1[0], p1[2], "blue applied last: B channel wins")

	p2 := blueThenRed.GetVecbAt(80, 105)
	assert.Greater(t, p2[2], p2[0], "red applied last: R channel wins")

	assert.NotEqual(t, redThenBlue.ToBytes(), blueThenRed.ToBytes())
}

func TestRenderDimensionMismatch(t *testing.T) {
	mask := nailMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	geom := analyzeMask(t, mask)
	comp := testCompositor()

	small := blackImage(60, 80)
	defer small.Close()

	_, err := comp.Render(small, geom, material.Preset("glossy_red"), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestBlendRejectsWrongTarget(t *testing.T) {
	comp := testCompositor()
	rr := &RegionRender{
		Width:  10,
		Height: 10,
		Color:  make([]float32, 300),
		Alpha:  geometry.NewScalarField(10, 10),
	}

	wrongSize := blackImage(20, 20)
	defer wrongSize.Close()
	assert.True(t, errors.Is(comp.Blend(wrongSize, rr), ErrDimensionMismatch))

	gray := gocv.Zeros(10, 10, gocv.MatTypeCV8UC1)
	defer gray.Close()
	assert.Error(t, comp.Blend(gray, rr))
}

func TestBlendSkipsUncoveredPixels(t *testing.T) {
	comp := testCompositor()
	rr := &RegionRender{
		Width:  4,
		Height: 4,
		Color:  make([]float32, 48),
		Alpha:  geometry.NewScalarField(4, 4),
	}
	for i := range rr.Color {
		rr.Color[i] = 1
	}
	rr.Alpha.Set(2, 1, 1)

	dst := blackImage(4, 4)
	defer dst.Close()
	require.NoError(t, comp.Blend(dst, rr))

	assert.Equal(t, uint8(255), dst.GetVecbAt(1, 2)[0])
	assert.Equal(t, uint8(0), dst.GetVecbAt(0, 0)[0], "zero alpha leaves the background untouched")
}
