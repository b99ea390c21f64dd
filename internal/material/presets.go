// Preset catalog of common nail polish materials
package material

import "sort"

// DefaultPresetName is substituted whenever a caller asks for a preset
// the catalog does not know.
const DefaultPresetName = "glossy_red"

// catalog is the process-wide preset table. It is populated once here and
// only ever read afterwards, so concurrent lookups need no locking.
// Preset returns copies; the table itself is never handed out.
var catalog = buildCatalog()

func buildCatalog() map[string]Material {
	base := func(m Material) Material {
		if m.EdgeWidth == 0 {
			m.EdgeWidth = 0.15
		}
		if m.AOIntensity == 0 {
			m.AOIntensity = 0.4
		}
		if m.GlitterSize == 0 {
			m.GlitterSize = 2.0
		}
		return m.Normalized()
	}

	return map[string]Material{
		"glossy_red": base(Material{
			BaseColor:         RGB{0.8, 0.1, 0.1},
			Glossiness:        0.9,
			Roughness:         0.1,
			Opacity:           0.95,
			SpecularIntensity: 1.2,
			EdgeDarkness:      0.35,
		}),
		"glossy_nude": base(Material{
			BaseColor:         RGB{0.92, 0.78, 0.68},
			Glossiness:        0.85,
			Roughness:         0.15,
			Opacity:           0.75,
			SpecularIntensity: 0.9,
			EdgeDarkness:      0.25,
		}),
		"matte_black": base(Material{
			BaseColor:         RGB{0.15, 0.15, 0.15},
			Glossiness:        0.2,
			Roughness:         0.8,
			Opacity:           0.98,
			SpecularIntensity: 0.3,
			EdgeDarkness:      0.2,
		}),
		"matte_pink": base(Material{
			BaseColor:         RGB{0.95, 0.6, 0.7},
			Glossiness:        0.25,
			Roughness:         0.75,
			Opacity:           0.85,
			SpecularIntensity: 0.4,
			EdgeDarkness:      0.3,
		}),
		"metallic_gold": base(Material{
			BaseColor:         RGB{0.85, 0.65, 0.13},
			Glossiness:        0.75,
			Metallic:          0.9,
			Roughness:         0.25,
			Opacity:           0.95,
			SpecularIntensity: 1.5,
			SpecularTint:      RGB{1.0, 0.9, 0.6},
			EdgeDarkness:      0.4,
		}),
		"metallic_silver": base(Material{
			BaseColor:         RGB{0.75, 0.75, 0.75},
			Glossiness:        0.85,
			Metallic:          0.95,
			Roughness:         0.15,
			Opacity:           0.98,
			SpecularIntensity: 1.8,
			SpecularTint:      RGB{0.95, 0.95, 1.0},
			EdgeDarkness:      0.45,
		}),
		"chrome_mirror": base(Material{
			BaseColor:         RGB{0.85, 0.85, 0.9},
			Glossiness:        0.98,
			Metallic:          0.98,
			Roughness:         0.02,
			Opacity:           0.99,
			SpecularIntensity: 2.5,
			SpecularTint:      RGB{0.9, 0.95, 1.0},
			EdgeDarkness:      0.5,
		}),
		"glitter_pink": base(Material{
			BaseColor:         RGB{0.95, 0.5, 0.65},
			Glossiness:        0.8,
			Metallic:          0.1,
			Roughness:         0.2,
			Opacity:           0.9,
			SpecularIntensity: 1.0,
			HasGlitter:        true,
			GlitterDensity:    0.3,
			GlitterSize:       2.5,
			GlitterColor:      RGB{1.0, 0.84, 0.0},
			EdgeDarkness:      0.35,
		}),
		"glitter_silver": base(Material{
			BaseColor:         RGB{0.95, 0.92, 0.95},
			Glossiness:        0.85,
			Metallic:          0.2,
			Roughness:         0.15,
			Opacity:           0.7,
			SpecularIntensity: 1.2,
			HasGlitter:        true,
			GlitterDensity:    0.5,
			GlitterSize:       3.0,
			GlitterColor:      RGB{0.9, 0.9, 0.95},
			EdgeDarkness:      0.3,
		}),
		"holographic": base(Material{
			BaseColor:         RGB{0.85, 0.75, 0.95},
			Glossiness:        0.95,
			Metallic:          0.6,
			Roughness:         0.05,
			Opacity:           0.92,
			SpecularIntensity: 2.0,
			SpecularTint:      RGB{0.9, 0.8, 1.0},
			HasGlitter:        true,
			GlitterDensity:    0.6,
			GlitterSize:       1.5,
			GlitterColor:      RGB{1.0, 0.9, 1.0},
			EdgeDarkness:      0.4,
		}),
		"satin_burgundy": base(Material{
			BaseColor:         RGB{0.45, 0.1, 0.15},
			Glossiness:        0.5,
			Roughness:         0.5,
			Opacity:           0.95,
			SpecularIntensity: 0.7,
			EdgeDarkness:      0.35,
		}),
	}
}

// Preset returns the named preset material. Unknown names resolve to
// DefaultPresetName rather than failing; a noisy caller never aborts a
// render over a bad material string.
func Preset(name string) Material {
	if m, ok := catalog[name]; ok {
		return m
	}
	return catalog[DefaultPresetName]
}

// IsPreset reports whether name exists in the catalog.
func IsPreset(name string) bool {
	_, ok := catalog[name]
	return ok
}

// Presets returns a copy of the full preset catalog.
func Presets() map[string]Material {
	out := make(map[string]Material, len(catalog))
	for name, m := range catalog {
		out[name] = m
	}
	return out
}

// PresetNames returns all catalog names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
