package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestMaskFromPolygon(t *testing.T) {
	poly := []image.Point{
		image.Pt(20, 10),
		image.Pt(80, 10),
		image.Pt(80, 90),
		image.Pt(20, 90),
	}
	mask := MaskFromPolygon(100, 100, poly)
	defer mask.Close()

	assert.Equal(t, 100, mask.Cols())
	assert.Equal(t, 100, mask.Rows())
	assert.Equal(t, uint8(255), mask.GetUCharAt(50, 50), "interior filled")
	assert.Equal(t, uint8(0), mask.GetUCharAt(5, 5), "exterior untouched")
	assert.Equal(t, uint8(0), mask.GetUCharAt(95, 95))
}

func TestMaskFromPolygonTooFewPoints(t *testing.T) {
	mask := MaskFromPolygon(50, 50, []image.Point{image.Pt(10, 10), image.Pt(40, 40)})
	defer mask.Close()

	require.False(t, mask.Empty())
	assert.Equal(t, 0, gocv.CountNonZero(mask), "degenerate polygon yields a blank mask")
}

func TestMaskFromPolygonClipsToRaster(t *testing.T) {
	poly := []image.Point{
		image.Pt(-20, -20),
		image.Pt(70, -20),
		image.Pt(70, 70),
		image.Pt(-20, 70),
	}
	mask := MaskFromPolygon(50, 50, poly)
	defer mask.Close()

	assert.Equal(t, uint8(255), mask.GetUCharAt(0, 0))
	assert.Equal(t, uint8(255), mask.GetUCharAt(30, 30))
}

func TestMaskFromRect(t *testing.T) {
	mask := MaskFromRect(100, 80, image.Rect(10, 20, 40, 60))
	defer mask.Close()

	assert.Equal(t, uint8(255), mask.GetUCharAt(30, 20), "row 30 col 20 inside")
	assert.Equal(t, uint8(0), mask.GetUCharAt(70, 50), "row 70 outside")
	assert.Equal(t, 30*40, gocv.CountNonZero(mask))
}

func TestMaskFromRectClipped(t *testing.T) {
	mask := MaskFromRect(50, 50, image.Rect(40, 40, 120, 120))
	defer mask.Close()
	assert.Equal(t, 10*10, gocv.CountNonZero(mask))

	empty := MaskFromRect(50, 50, image.Rect(90, 90, 120, 120))
	defer empty.Close()
	assert.Equal(t, 0, gocv.CountNonZero(empty))
}
