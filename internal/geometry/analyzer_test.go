package geometry

import (
	"image"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// ellipseMask rasterizes a solid axis-aligned ellipse into a CV_8UC1 mask
// without going through the drawing API, so tests control coverage exactly.
func ellipseMask(t *testing.T, width, height, cx, cy, rx, ry int) gocv.Mat {
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

func TestAnalyzeEmptyMask(t *testing.T) {
	a := NewAnalyzer(testLogger())

	empty := gocv.NewMat()
	defer empty.Close()
	assert.Nil(t, a.Analyze(empty, DefaultMinArea))

	zero := gocv.Zeros(120, 160, gocv.MatTypeCV8UC1)
	defer zero.Close()
	assert.Nil(t, a.Analyze(zero, DefaultMinArea))
}

func TestAnalyzeRejectsSmallRegion(t *testing.T) {
	a := NewAnalyzer(testLogger())

	mask := ellipseMask(t, 100, 100, 50, 50, 4, 4)
	defer mask.Close()
	assert.Nil(t, a.Analyze(mask, DefaultMinArea), "area under the threshold must be skipped")
}

func TestAnalyzeRejectsShortContour(t *testing.T) {
	a := NewAnalyzer(testLogger())

	// An axis-aligned rectangle simplifies to four contour points, too few
	// for an ellipse fit even when its area passes.
	mask := MaskFromRect(100, 100, image.Rect(20, 20, 70, 70))
	defer mask.Close()
	assert.Nil(t, a.Analyze(mask, 10))
}

func TestAnalyzeEllipseGeometry(t *testing.T) {
	a := NewAnalyzer(testLogger())

	mask := ellipseMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	g := a.Analyze(mask, DefaultMinArea)
	require.NotNil(t, g)

	w, h := g.ImageSize()
	assert.Equal(t, 200, w)
	assert.Equal(t, 160, h)

	assert.InDelta(t, 100, g.Center.X, 2)
	assert.InDelta(t, 80, g.Center.Y, 2)
	assert.InDelta(t, 100, g.Length, 8, "major axis tracks the tall extent")
	assert.InDelta(t, 60, g.MinorWidth, 8)
	assert.InDelta(t, 90, g.OrientationAngle, 5, "major axis is vertical")
	assert.True(t, g.Center.In(g.BBox))
	assert.GreaterOrEqual(t, len(g.Contour), 5)
}

func TestCurvatureMapNormalized(t *testing.T) {
	a := NewAnalyzer(testLogger())

	mask := ellipseMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	g := a.Analyze(mask, DefaultMinArea)
	require.NotNil(t, g)

	maxVal := float32(0)
	for _, v := range g.CurvatureMap.Data {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
		if v > maxVal {
			maxVal = v
		}
	}
	assert.InDelta(t, 1.0, float64(maxVal), 1e-5, "deepest point normalizes to 1")

	// The interior is more curved-looking (deeper) than points near the rim.
	assert.Greater(t, g.CurvatureMap.At(100, 80), g.CurvatureMap.At(75, 80))
	assert.Equal(t, float32(0), g.CurvatureMap.At(5, 5), "outside the region the map is 0")
}

func TestEdgeDistanceMapZeroAtBoundary(t *testing.T) {
	a := NewAnalyzer(testLogger())

	mask := ellipseMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	g := a.Analyze(mask, DefaultMinArea)
	require.NotNil(t, g)

	assert.Greater(t, g.EdgeDistanceMap.At(100, 80), float32(0.8), "far from the rim")
	assert.Less(t, g.EdgeDistanceMap.At(72, 80), float32(0.2), "near the rim")
	assert.Equal(t, float32(0), g.EdgeDistanceMap.At(0, 0))
}

func TestMaskFieldIsBinary(t *testing.T) {
	a := NewAnalyzer(testLogger())

	mask := ellipseMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	g := a.Analyze(mask, DefaultMinArea)
	require.NotNil(t, g)

	for _, v := range g.Mask.Data {
		assert.True(t, v == 0 || v == 1, "coverage value %v", v)
	}
	assert.Equal(t, float32(1), g.Mask.At(100, 80))
	assert.Equal(t, float32(0), g.Mask.At(5, 5))
}

func TestNormalsUnitLength(t *testing.T) {
	a := NewAnalyzer(testLogger())

	mask := ellipseMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	g := a.Analyze(mask, DefaultMinArea)
	require.NotNil(t, g)

	for y := 0; y < 160; y++ {
		for x := 0; x < 200; x++ {
			nx, ny, nz := g.Normals.At(x, y)
			norm := math.Sqrt(float64(nx*nx + ny*ny + nz*nz))
			require.InDelta(t, 1.0, norm, 1e-4, "normal at (%d,%d)", x, y)
			require.Greater(t, nz, float32(0), "normals face the camera")
		}
	}

	// The medial axis is locally flat, so its normal points straight up.
	_, _, nz := g.Normals.At(100, 80)
	assert.Greater(t, nz, float32(0.9))
}

func TestHighlightLeansTowardLight(t *testing.T) {
	a := NewAnalyzer(testLogger())

	mask := ellipseMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()
	g := a.Analyze(mask, DefaultMinArea)
	require.NotNil(t, g)

	// A tall region has a horizontal minor axis, so the highlight shifts
	// toward the light's x component: left of center, same row.
	assert.Less(t, g.HighlightPoint.X, g.Center.X)
	assert.InDelta(t, float64(g.Center.Y), float64(g.HighlightPoint.Y), 3)
	assert.Equal(t, float32(1), g.Mask.At(g.HighlightPoint.X, g.HighlightPoint.Y), "highlight stays inside the region")
}

func TestAnalyzePicksLargestRegion(t *testing.T) {
	a := NewAnalyzer(testLogger())

	mask := ellipseMask(t, 200, 160, 100, 80, 30, 50)
	defer mask.Close()

	// Add a smaller satellite blob; the analyzer must ignore it.
	ptr, err := mask.DataPtrUint8()
	require.NoError(t, err)
	for y := 10; y < 24; y++ {
		for x := 160; x < 174; x++ {
			fx := float64(x-167) / 7.0
			fy := float64(y-17) / 7.0
			if fx*fx+fy*fy <= 1.0 {
				ptr[y*200+x] = 255
			}
		}
	}

	g := a.Analyze(mask, DefaultMinArea)
	require.NotNil(t, g)
	assert.InDelta(t, 100, g.Center.X, 2)
	assert.Equal(t, float32(0), g.Mask.At(167, 17), "satellite blob excluded from coverage")
}
