// Lighting configuration for the compositor
package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"professional-nail-renderer/internal/material"
)

// LightConfig holds the light and view setup shared by every layer of
// one compositor. Direction vectors are stored normalized and the
// Blinn-Phong half-vector is precomputed once.
type LightConfig struct {
	Direction mgl64.Vec3 // toward the light
	View      mgl64.Vec3 // toward the camera
	Half      mgl64.Vec3 // normalize(Direction + View)
	Color     material.RGB
}

// DefaultLightConfig returns the canonical up-left studio light with a
// straight-on camera.
func DefaultLightConfig() LightConfig {
	return NewLightConfig(
		mgl64.Vec3{-0.5, -0.5, 0.8},
		mgl64.Vec3{0, 0, 1},
		material.RGB{R: 1, G: 1, B: 1},
	)
}

// NewLightConfig builds a LightConfig from raw direction vectors,
// normalizing both and precomputing the half-vector. The light color
// multiplies into the specular tint; white leaves highlights untinted.
func NewLightConfig(direction, view mgl64.Vec3, lightColor material.RGB) LightConfig {
	dir := direction.Normalize()
	v := view.Normalize()
	return LightConfig{
		Direction: dir,
		View:      v,
		Half:      dir.Add(v).Normalize(),
		Color:     lightColor.Clamped(),
	}
}
