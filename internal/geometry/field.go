// Scalar and vector rasters shared by the analyzer and the compositor
package geometry

import (
	"image"

	"gocv.io/x/gocv"
)

// ScalarField is a single-channel float32 raster in row-major order.
type ScalarField struct {
	Width  int
	Height int
	Data   []float32 // len = Width*Height
}

// NewScalarField allocates a zeroed field.
func NewScalarField(width, height int) *ScalarField {
	return &ScalarField{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height),
	}
}

// At returns the value at (x, y). Out-of-bounds reads return 0.
func (f *ScalarField) At(x, y int) float32 {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return 0
	}
	return f.Data[y*f.Width+x]
}

// Set writes the value at (x, y). Out-of-bounds writes are dropped.
func (f *ScalarField) Set(x, y int, v float32) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	f.Data[y*f.Width+x] = v
}

// Clone returns a deep copy of the field.
func (f *ScalarField) Clone() *ScalarField {
	c := NewScalarField(f.Width, f.Height)
	copy(c.Data, f.Data)
	return c
}

// Bounds returns the field rectangle.
func (f *ScalarField) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Mat copies the field into a freshly allocated CV_32F Mat. The caller
// owns the Mat and must Close it.
func (f *ScalarField) Mat() (gocv.Mat, error) {
	m := gocv.NewMatWithSize(f.Height, f.Width, gocv.MatTypeCV32F)
	ptr, err := m.DataPtrFloat32()
	if err != nil {
		m.Close()
		return gocv.NewMat(), err
	}
	copy(ptr, f.Data)
	return m, nil
}

// ScalarFieldFromMat copies a continuous single-channel CV_32F Mat into a
// field.
func ScalarFieldFromMat(m gocv.Mat) (*ScalarField, error) {
	ptr, err := m.DataPtrFloat32()
	if err != nil {
		return nil, err
	}
	f := NewScalarField(m.Cols(), m.Rows())
	copy(f.Data, ptr)
	return f, nil
}

// Smoothed returns a Gaussian-blurred copy of the field with the given
// standard deviation. Sigma values <= 0 return an unmodified copy.
func (f *ScalarField) Smoothed(sigma float64) (*ScalarField, error) {
	if sigma <= 0 {
		return f.Clone(), nil
	}

	src, err := f.Mat()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.GaussianBlur(src, &dst, image.Pt(0, 0), sigma, sigma, gocv.BorderDefault)

	return ScalarFieldFromMat(dst)
}

// VectorField is a per-pixel 3-vector raster (x, y, z interleaved).
type VectorField struct {
	Width  int
	Height int
	Data   []float32 // len = Width*Height*3
}

// NewVectorField allocates a zeroed vector field.
func NewVectorField(width, height int) *VectorField {
	return &VectorField{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height*3),
	}
}

// At returns the vector components at (x, y).
func (f *VectorField) At(x, y int) (vx, vy, vz float32) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return 0, 0, 0
	}
	i := (y*f.Width + x) * 3
	return f.Data[i], f.Data[i+1], f.Data[i+2]
}

// Set writes the vector components at (x, y).
func (f *VectorField) Set(x, y int, vx, vy, vz float32) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	i := (y*f.Width + x) * 3
	f.Data[i], f.Data[i+1], f.Data[i+2] = vx, vy, vz
}
