// Geometry extraction from binary nail masks.
//
// The analyzer turns a flat 2-D segmentation mask into the geometric
// structures the compositor shades against: a normalized distance
// transform standing in for surface curvature, a rim-distance map for
// occlusion effects, and a gradient-derived normal map.
package geometry

import (
	"image"
	"image/color"
	"math"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const (
	// DefaultMinArea rejects regions too small to shade meaningfully.
	DefaultMinArea = 100.0

	// defaultSteepness scales the curvature gradient when deriving
	// surface normals. Larger values exaggerate the fake bulge.
	defaultSteepness = 1.0

	// highlightFrac is the highlight offset from the region center as a
	// fraction of the minor-axis half-length.
	highlightFrac = 0.35

	// The canonical light the highlight leans toward. Must stay in sync
	// with the compositor's default light direction (x, y components).
	highlightLightX = -0.5
	highlightLightY = -0.5
)

// Geometry holds everything the compositor needs to shade one region.
// It is derived from a single mask, owned by one render call, and never
// persisted.
type Geometry struct {
	Contour          []image.Point
	Center           image.Point
	OrientationAngle float64 // fitted ellipse major-axis angle, degrees
	Length           float64 // major axis length, pixels
	MinorWidth       float64 // minor axis length, pixels
	BBox             image.Rectangle

	Mask            *ScalarField // 0/1 coverage of the analyzed region
	CurvatureMap    *ScalarField // normalized distance transform, 1 at the medial axis
	EdgeDistanceMap *ScalarField // normalized distance from the rim, 0 at the boundary
	Normals         *VectorField // unit surface normals
	HighlightPoint  image.Point
}

// ImageSize returns the raster dimensions the geometry was derived from.
func (g *Geometry) ImageSize() (width, height int) {
	return g.Mask.Width, g.Mask.Height
}

// Analyzer extracts Geometry from binary masks. It is stateless across
// calls and safe for concurrent use.
type Analyzer struct {
	// Steepness scales the curvature gradient feeding the normal map.
	Steepness float64

	logger *logrus.Logger
}

// NewAnalyzer creates an analyzer with default tuning.
func NewAnalyzer(logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Analyzer{
		Steepness: defaultSteepness,
		logger:    logger,
	}
}

// Analyze extracts geometry from a binary mask (CV_8U, zero/non-zero).
// It returns nil when the mask holds no usable region: empty input, area
// under minArea, or a contour too short for an ellipse fit. Callers must
// treat nil as "skip this detection", not as a failure.
func (a *Analyzer) Analyze(mask gocv.Mat, minArea float64) *Geometry {
	if mask.Empty() || mask.Cols() == 0 || mask.Rows() == 0 {
		a.logger.Debug("geometry: empty mask")
		return nil
	}

	// Normalize to strict 0/255 so contour tracing and the distance
	// transform see the same coverage regardless of 0/1 vs 0/255 input.
	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(mask, &bin, 0, 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		a.logger.Debug("geometry: no contours in mask")
		return nil
	}

	// Largest external contour wins; satellites are detector noise.
	best := 0
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > bestArea {
			best = i
			bestArea = area
		}
	}
	if bestArea < minArea {
		a.logger.WithFields(logrus.Fields{
			"area":     bestArea,
			"min_area": minArea,
		}).Debug("geometry: region below minimum area")
		return nil
	}

	main := contours.At(best)
	if main.Size() < 5 {
		a.logger.WithField("points", main.Size()).Debug("geometry: contour too short for ellipse fit")
		return nil
	}

	// Re-rasterize only the winning region. Everything downstream (the
	// moments, the distance transform, the compositor's coverage) refers
	// to this single blob, not to stray specks elsewhere in the mask.
	blob := gocv.Zeros(mask.Rows(), mask.Cols(), gocv.MatTypeCV8UC1)
	defer blob.Close()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.DrawContours(&blob, contours, best, white, -1)

	m := gocv.Moments(blob, true)
	if m["m00"] == 0 {
		a.logger.Debug("geometry: degenerate moments")
		return nil
	}
	center := image.Pt(int(m["m10"]/m["m00"]), int(m["m01"]/m["m00"]))

	ellipse := gocv.FitEllipse(main)
	length := math.Max(float64(ellipse.Width), float64(ellipse.Height))
	minor := math.Min(float64(ellipse.Width), float64(ellipse.Height))

	// The fitted box angle is the width-axis angle; report the major
	// axis regardless of which extent won.
	angle := ellipse.Angle
	if ellipse.Width <= ellipse.Height {
		angle += 90
	}
	if angle >= 180 {
		angle -= 180
	}

	bbox := gocv.BoundingRect(main)

	curvature, err := a.curvatureField(blob)
	if err != nil {
		a.logger.WithError(err).Debug("geometry: distance transform failed")
		return nil
	}

	// The rim map is the same transform normalized on its own: 0 exactly
	// at the boundary, growing inward. Occlusion and edge darkening read
	// it in the opposite sense from curvature shading.
	edgeDist := curvature.Clone()

	normals := a.normalField(curvature)

	maskField, err := binaryField(blob)
	if err != nil {
		a.logger.WithError(err).Debug("geometry: mask conversion failed")
		return nil
	}

	return &Geometry{
		Contour:          main.ToPoints(),
		Center:           center,
		OrientationAngle: angle,
		Length:           length,
		MinorWidth:       minor,
		BBox:             bbox,
		Mask:             maskField,
		CurvatureMap:     curvature,
		EdgeDistanceMap:  edgeDist,
		Normals:          normals,
		HighlightPoint:   highlightPoint(center, angle, minor),
	}
}

// curvatureField computes the L2 distance transform of the blob,
// normalized so the deepest interior point maps to 1.
func (a *Analyzer) curvatureField(blob gocv.Mat) (*ScalarField, error) {
	dist := gocv.NewMat()
	defer dist.Close()
	labels := gocv.NewMat()
	defer labels.Close()
	gocv.DistanceTransform(blob, &dist, &labels, gocv.DistL2, gocv.DistanceMask5, gocv.DistanceLabelCComp)

	field, err := ScalarFieldFromMat(dist)
	if err != nil {
		return nil, err
	}

	_, maxVal, _, _ := gocv.MinMaxLoc(dist)
	if maxVal > 0 {
		inv := 1.0 / maxVal
		for i := range field.Data {
			field.Data[i] *= inv
		}
	}
	return field, nil
}

// normalField derives unit surface normals from the curvature gradient.
// The vector (-k*dx, -k*dy, 1) always has a positive z component, so the
// normalized result is well defined at every pixel.
func (a *Analyzer) normalField(curvature *ScalarField) *VectorField {
	w, h := curvature.Width, curvature.Height
	normals := NewVectorField(w, h)

	src, err := curvature.Mat()
	if err != nil {
		return normals
	}
	defer src.Close()

	gradX := gocv.NewMat()
	defer gradX.Close()
	gradY := gocv.NewMat()
	defer gradY.Close()
	gocv.Sobel(src, &gradX, gocv.MatTypeCV32F, 1, 0, 5, 1, 0, gocv.BorderDefault)
	gocv.Sobel(src, &gradY, gocv.MatTypeCV32F, 0, 1, 5, 1, 0, gocv.BorderDefault)

	gx, errX := gradX.DataPtrFloat32()
	gy, errY := gradY.DataPtrFloat32()
	if errX != nil || errY != nil {
		return normals
	}

	k := float32(a.Steepness)
	for i := 0; i < w*h; i++ {
		nx := -gx[i] * k
		ny := -gy[i] * k
		nz := float32(1.0)
		inv := 1.0 / float32(math.Sqrt(float64(nx*nx+ny*ny+nz*nz)))
		normals.Data[i*3] = nx * inv
		normals.Data[i*3+1] = ny * inv
		normals.Data[i*3+2] = nz * inv
	}
	return normals
}

// highlightPoint places the canonical specular peak: offset from the
// center along the ellipse minor axis, leaning toward the up-left light.
// angleDeg is the major-axis angle; the minor axis is its perpendicular.
func highlightPoint(center image.Point, angleDeg, minorAxis float64) image.Point {
	theta := angleDeg * math.Pi / 180
	dx := -math.Sin(theta)
	dy := math.Cos(theta)
	if dx*highlightLightX+dy*highlightLightY < 0 {
		dx, dy = -dx, -dy
	}
	offset := highlightFrac * minorAxis / 2
	return image.Pt(center.X+int(offset*dx), center.Y+int(offset*dy))
}

// binaryField converts an 8-bit 0/255 blob mask to a 0/1 float field.
func binaryField(blob gocv.Mat) (*ScalarField, error) {
	f32 := gocv.NewMat()
	defer f32.Close()
	blob.ConvertToWithParams(&f32, gocv.MatTypeCV32F, 1.0/255.0, 0)
	return ScalarFieldFromMat(f32)
}
