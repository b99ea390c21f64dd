// Photo-realistic nail polish compositing.
//
// The compositor builds six weighted layers over one region's geometry
// (base color, curvature shading, Blinn-Phong specular, ambient
// occlusion, edge darkening, glitter), combines them in linear color
// space, and alpha-blends the feathered result onto a BGR destination
// buffer. Every operation is a pure function of its inputs; nothing is
// retained between calls.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"professional-nail-renderer/internal/geometry"
	"professional-nail-renderer/internal/material"
)

// ErrDimensionMismatch reports a mask or geometry whose raster size does
// not match the destination image. This is a caller contract violation
// and always fails the frame instead of being skipped.
var ErrDimensionMismatch = errors.New("mask dimensions do not match image")

const (
	// Curvature shading: gamma = shadingGammaBase - roughness*shadingGammaScale,
	// strength = shadingStrengthBase + glossiness*shadingStrengthScale.
	shadingStrengthBase  = 0.3
	shadingStrengthScale = 0.5
	shadingGammaBase     = 1.5
	shadingGammaScale    = 0.5

	// Blinn-Phong shininess = shininessBase + glossiness*shininessScale.
	shininessBase  = 10.0
	shininessScale = 200.0

	// Below this glossiness the specular layer is skipped entirely.
	minSpecularGloss = 0.1

	// Above this metallic value the highlight picks up the base color.
	metallicTintThreshold = 0.5

	// Gaussian sigmas for the smoothing passes.
	aoSmoothSigma   = 2.0
	edgeSmoothSigma = 3.0
	featherSigma    = 5.0

	// Mild exponent on the feathered alpha: keeps the interior solid
	// while softening the rim falloff.
	featherExponent = 1.5

	// Glitter contributes at reduced weight so sparkles sit in the coat
	// instead of on top of it.
	glitterLayerWeight = 0.6
)

// RegionRender is the result of compositing one region before the merge:
// the shaded color buffer in display space plus the feathered alpha that
// will blend it onto the destination. Kept around mainly so tests and
// diagnostics can inspect exactly what a region contributed.
type RegionRender struct {
	Width  int
	Height int

	// Color holds display-space (sRGB encoded) values in [0,1], three
	// floats per pixel in B, G, R order matching the destination Mat.
	Color []float32

	// Alpha is the feathered coverage including material opacity.
	Alpha *geometry.ScalarField
}

// Compositor renders regions under a fixed lighting setup. It holds no
// per-call state and is safe for concurrent use.
type Compositor struct {
	light  LightConfig
	logger *logrus.Logger
}

// NewCompositor creates a compositor with the given lighting.
func NewCompositor(light LightConfig, logger *logrus.Logger) *Compositor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Compositor{light: light, logger: logger}
}

// Render composites one region onto dst (CV_8UC3, BGR) in place. The
// seed drives glitter placement and must be stable per region identity
// so repeated renders are bit-identical. Returns the region result for
// diagnostics.
func (c *Compositor) Render(dst gocv.Mat, geom *geometry.Geometry, mat material.Material, seed int64) (*RegionRender, error) {
	w, h := geom.ImageSize()
	if dst.Cols() != w || dst.Rows() != h {
		return nil, fmt.Errorf("%w: geometry %dx%d vs image %dx%d",
			ErrDimensionMismatch, w, h, dst.Cols(), dst.Rows())
	}

	rr, err := c.Compose(geom, mat, seed)
	if err != nil {
		return nil, err
	}
	if err := c.Blend(dst, rr); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"bbox":   geom.BBox,
		"finish": mat.FinishType().String(),
	}).Debug("region rendered")
	return rr, nil
}

// Compose evaluates the full layer stack for one region without touching
// any destination buffer. The result can be merged later with Blend,
// which is how the frame pipeline runs regions in parallel while keeping
// the merge order deterministic.
func (c *Compositor) Compose(geom *geometry.Geometry, mat material.Material, seed int64) (*RegionRender, error) {
	mat = mat.Normalized()
	w, h := geom.ImageSize()

	// Multiplicative occlusion and edge-darkening fields, pre-smoothed.
	aoField, err := c.ambientOcclusion(geom, mat)
	if err != nil {
		return nil, fmt.Errorf("ambient occlusion: %w", err)
	}
	edgeField, err := c.edgeDarkening(geom, mat)
	if err != nil {
		return nil, fmt.Errorf("edge darkening: %w", err)
	}

	var glitter []float32
	if mat.HasGlitter {
		glitter, err = glitterLayer(geom, mat, seed)
		if err != nil {
			return nil, fmt.Errorf("glitter: %w", err)
		}
	}

	// Everything below runs per pixel in linear space.
	linBase := mat.BaseColor.ToLinear()

	strength := shadingStrengthBase + mat.Glossiness*shadingStrengthScale
	minLight := 1.0 - strength
	gamma := shadingGammaBase - mat.Roughness*shadingGammaScale

	shininess := shininessBase + mat.Glossiness*shininessScale
	specOn := mat.Glossiness >= minSpecularGloss
	tint := c.specularTint(mat)
	halfX := float32(c.light.Half.X())
	halfY := float32(c.light.Half.Y())
	halfZ := float32(c.light.Half.Z())

	out := &RegionRender{
		Width:  w,
		Height: h,
		Color:  make([]float32, w*h*3),
	}

	curv := geom.CurvatureMap.Data
	maskData := geom.Mask.Data
	normals := geom.Normals.Data

	for i := 0; i < w*h; i++ {
		coverage := float64(maskData[i])

		// Layers 1+2: solid base shaped by the curvature falloff.
		shade := minLight + math.Pow(float64(curv[i]), gamma)*strength
		mul := shade * float64(aoField.Data[i]) * float64(edgeField.Data[i])

		b := linBase.B * coverage * mul
		g := linBase.G * coverage * mul
		r := linBase.R * coverage * mul

		// Layer 3: additive Blinn-Phong highlight.
		if specOn && coverage > 0 {
			ndh := float64(normals[i*3]*halfX + normals[i*3+1]*halfY + normals[i*3+2]*halfZ)
			if ndh > 0 {
				spec := math.Pow(ndh, shininess) * mat.SpecularIntensity * coverage
				b += spec * tint.B
				g += spec * tint.G
				r += spec * tint.R
			}
		}

		// Layer 6: additive glitter at reduced weight.
		if glitter != nil {
			b += float64(glitter[i*3]) * glitterLayerWeight
			g += float64(glitter[i*3+1]) * glitterLayerWeight
			r += float64(glitter[i*3+2]) * glitterLayerWeight
		}

		out.Color[i*3] = float32(material.LinearToSRGB(clamp01(b)))
		out.Color[i*3+1] = float32(material.LinearToSRGB(clamp01(g)))
		out.Color[i*3+2] = float32(material.LinearToSRGB(clamp01(r)))
	}

	alpha, err := featherAlpha(geom.Mask, mat.Opacity)
	if err != nil {
		return nil, fmt.Errorf("feather: %w", err)
	}
	out.Alpha = alpha

	return out, nil
}

// Blend merges a composed region onto dst (CV_8UC3, BGR) in place using
// the region's feathered alpha.
func (c *Compositor) Blend(dst gocv.Mat, rr *RegionRender) error {
	if dst.Cols() != rr.Width || dst.Rows() != rr.Height {
		return fmt.Errorf("%w: region %dx%d vs image %dx%d",
			ErrDimensionMismatch, rr.Width, rr.Height, dst.Cols(), dst.Rows())
	}
	if dst.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("blend target must be CV_8UC3, got type %d", dst.Type())
	}

	pix, err := dst.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("blend target not continuous: %w", err)
	}

	alpha := rr.Alpha.Data
	for i := 0; i < rr.Width*rr.Height; i++ {
		a := float64(alpha[i])
		if a <= 0 {
			continue
		}
		for ch := 0; ch < 3; ch++ {
			bg := float64(pix[i*3+ch]) / 255.0
			v := bg*(1-a) + float64(rr.Color[i*3+ch])*a
			pix[i*3+ch] = uint8(clamp01(v)*255 + 0.5)
		}
	}
	return nil
}

// ambientOcclusion builds the multiplicative contact-shadow field:
// 1 - (1 - edgeDistance)*aoIntensity, smoothed to hide the transform's
// integer steps.
func (c *Compositor) ambientOcclusion(geom *geometry.Geometry, mat material.Material) (*geometry.ScalarField, error) {
	edge := geom.EdgeDistanceMap
	ao := geometry.NewScalarField(edge.Width, edge.Height)
	intensity := float32(mat.AOIntensity)
	for i, v := range edge.Data {
		ao.Data[i] = 1 - (1-v)*intensity
	}
	return ao.Smoothed(aoSmoothSigma)
}

// edgeDarkening builds the rim band: a linear ramp from full brightness
// at EdgeWidth inward down to (1 - EdgeDarkness) at the boundary, then
// Gaussian-smoothed to avoid banding.
func (c *Compositor) edgeDarkening(geom *geometry.Geometry, mat material.Material) (*geometry.ScalarField, error) {
	edge := geom.EdgeDistanceMap
	dark := geometry.NewScalarField(edge.Width, edge.Height)

	if mat.EdgeDarkness <= 0 || mat.EdgeWidth <= 0 {
		for i := range dark.Data {
			dark.Data[i] = 1
		}
		return dark, nil
	}

	width := float32(mat.EdgeWidth)
	darkness := float32(mat.EdgeDarkness)
	for i, v := range edge.Data {
		band := v / width
		if band > 1 {
			band = 1
		}
		dark.Data[i] = 1 - (1-band)*darkness
	}
	return dark.Smoothed(edgeSmoothSigma)
}

// specularTint combines the material highlight tint with the light
// color, shifting toward the base color for strongly metallic coats.
func (c *Compositor) specularTint(mat material.Material) material.RGB {
	tint := material.RGB{
		R: mat.SpecularTint.R * c.light.Color.R,
		G: mat.SpecularTint.G * c.light.Color.G,
		B: mat.SpecularTint.B * c.light.Color.B,
	}
	if mat.Metallic > metallicTintThreshold {
		m := mat.Metallic
		tint.R *= (1 - m) + mat.BaseColor.R*m
		tint.G *= (1 - m) + mat.BaseColor.G*m
		tint.B *= (1 - m) + mat.BaseColor.B*m
	}
	return tint
}

// featherAlpha blurs the hard mask into a soft coverage gradient and
// applies the rim-softening exponent plus material opacity.
func featherAlpha(mask *geometry.ScalarField, opacity float64) (*geometry.ScalarField, error) {
	alpha, err := mask.Smoothed(featherSigma)
	if err != nil {
		return nil, err
	}
	op := float32(opacity)
	for i, v := range alpha.Data {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		alpha.Data[i] = float32(math.Pow(float64(v), featherExponent)) * op
	}
	return alpha, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
