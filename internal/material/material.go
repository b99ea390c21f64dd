// Material model for photo-realistic nail polish rendering.
// Properties follow physically-based rendering conventions: a base albedo
// plus glossiness/metallic/roughness knobs that drive the compositor's
// shading layers.
package material

// Finish is a named polish category. Each finish maps to a default
// numeric template used by Custom.
type Finish int

const (
	FinishGlossy Finish = iota
	FinishMatte
	FinishMetallic
	FinishGlitter
	FinishChrome
	FinishSatin
)

// String returns the lowercase finish name.
func (f Finish) String() string {
	switch f {
	case FinishGlossy:
		return "glossy"
	case FinishMatte:
		return "matte"
	case FinishMetallic:
		return "metallic"
	case FinishGlitter:
		return "glitter"
	case FinishChrome:
		return "chrome"
	case FinishSatin:
		return "satin"
	}
	return "unknown"
}

// ParseFinish maps a finish name to its enum value. Unknown names fall
// back to FinishGlossy.
func ParseFinish(name string) Finish {
	switch name {
	case "matte":
		return FinishMatte
	case "metallic":
		return FinishMetallic
	case "glitter":
		return FinishGlitter
	case "chrome":
		return FinishChrome
	case "satin":
		return FinishSatin
	}
	return FinishGlossy
}

// MaxSpecularIntensity bounds SpecularIntensity; highlights brighter than
// this clip to pure white over the whole lobe and stop reading as polish.
const MaxSpecularIntensity = 3.0

// Material describes the optical properties of one polish coat. It is a
// value type: pass it by value and it cannot be mutated behind the
// caller's back. Every scalar field is kept in range by Normalized, which
// all constructors apply.
type Material struct {
	BaseColor RGB // sRGB, components in [0,1]

	Glossiness float64 // 0 = matte, 1 = mirror-like
	Metallic   float64 // 0 = dielectric, 1 = metal
	Roughness  float64 // microfacet roughness, usually 1-Glossiness

	Opacity           float64 // alpha of the final composite
	SpecularIntensity float64 // highlight gain, [0, MaxSpecularIntensity]
	SpecularTint      RGB     // highlight color

	HasGlitter     bool
	GlitterDensity float64 // fraction of covered pixels that sparkle
	GlitterSize    float64 // particle radius in pixels
	GlitterColor   RGB

	EdgeDarkness float64 // darkening multiplier applied at the rim
	EdgeWidth    float64 // rim band width relative to the region
	AOIntensity  float64 // contact-shadow strength at the boundary
}

// Normalized returns a copy with every field clamped to its documented
// range. Zero-value tint and glitter colors are replaced with the
// conventional defaults (neutral white highlight, warm gold sparkle).
func (m Material) Normalized() Material {
	m.BaseColor = m.BaseColor.Clamped()
	m.Glossiness = clamp01(m.Glossiness)
	m.Metallic = clamp01(m.Metallic)
	m.Roughness = clamp01(m.Roughness)
	m.Opacity = clamp01(m.Opacity)
	m.SpecularIntensity = clampRange(m.SpecularIntensity, 0, MaxSpecularIntensity)
	m.GlitterDensity = clamp01(m.GlitterDensity)
	if m.GlitterSize < 0 {
		m.GlitterSize = 0
	}
	m.EdgeDarkness = clamp01(m.EdgeDarkness)
	m.EdgeWidth = clamp01(m.EdgeWidth)
	m.AOIntensity = clamp01(m.AOIntensity)

	if m.SpecularTint == (RGB{}) {
		m.SpecularTint = RGB{R: 1, G: 1, B: 1}
	} else {
		m.SpecularTint = m.SpecularTint.Clamped()
	}
	if m.GlitterColor == (RGB{}) {
		m.GlitterColor = RGB{R: 1, G: 0.9, B: 0.7}
	} else {
		m.GlitterColor = m.GlitterColor.Clamped()
	}

	return m
}

// FinishType classifies the material back into the finish category its
// numbers imply.
func (m Material) FinishType() Finish {
	switch {
	case m.HasGlitter:
		return FinishGlitter
	case m.Metallic > 0.7 && m.Roughness < 0.1:
		return FinishChrome
	case m.Metallic > 0.7:
		return FinishMetallic
	case m.Glossiness > 0.7:
		return FinishGlossy
	case m.Glossiness < 0.3:
		return FinishMatte
	}
	return FinishSatin
}

// finishTemplate holds the default numeric ranges per finish.
type finishTemplate struct {
	glossiness        float64
	metallic          float64
	roughness         float64
	specularIntensity float64
	hasGlitter        bool
	glitterDensity    float64
}

var finishTemplates = map[Finish]finishTemplate{
	FinishGlossy:   {glossiness: 0.9, metallic: 0.0, roughness: 0.1, specularIntensity: 1.2},
	FinishMatte:    {glossiness: 0.2, metallic: 0.0, roughness: 0.8, specularIntensity: 0.3},
	FinishMetallic: {glossiness: 0.75, metallic: 0.85, roughness: 0.25, specularIntensity: 1.5},
	FinishChrome:   {glossiness: 0.98, metallic: 0.95, roughness: 0.02, specularIntensity: 2.5},
	FinishSatin:    {glossiness: 0.5, metallic: 0.0, roughness: 0.5, specularIntensity: 0.7},
	FinishGlitter:  {glossiness: 0.8, metallic: 0.2, roughness: 0.2, specularIntensity: 1.0, hasGlitter: true, glitterDensity: 0.4},
}

// Custom builds a material with the given base color and the default
// template of the requested finish.
func Custom(color RGB, finish Finish) Material {
	tpl, ok := finishTemplates[finish]
	if !ok {
		tpl = finishTemplates[FinishGlossy]
	}

	return Material{
		BaseColor:         color,
		Glossiness:        tpl.glossiness,
		Metallic:          tpl.metallic,
		Roughness:         tpl.roughness,
		Opacity:           0.85,
		SpecularIntensity: tpl.specularIntensity,
		HasGlitter:        tpl.hasGlitter,
		GlitterDensity:    tpl.glitterDensity,
		GlitterSize:       2.0,
		EdgeDarkness:      0.3,
		EdgeWidth:         0.15,
		AOIntensity:       0.4,
	}.Normalized()
}

// FromRequest builds a material from the knobs a rendering request
// carries: a base color plus glossiness, metallic and overall intensity
// (opacity). The highlight gain scales with glossiness the same way the
// serving layer historically derived it.
func FromRequest(color RGB, glossiness, metallic, intensity float64) Material {
	return Material{
		BaseColor:         color,
		Glossiness:        glossiness,
		Metallic:          metallic,
		Roughness:         1.0 - clamp01(glossiness),
		Opacity:           intensity,
		SpecularIntensity: 1.0 + clamp01(glossiness)*0.5,
		GlitterSize:       2.0,
		EdgeDarkness:      0.3,
		EdgeWidth:         0.15,
		AOIntensity:       0.4,
	}.Normalized()
}
