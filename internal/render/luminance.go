// Brightness diagnostics used by tests and debug logging
package render

import "gocv.io/x/gocv"

// Luminance returns the Rec. 709 relative luminance of a display-space
// color given as components in [0,1].
func Luminance(r, g, b float64) float64 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// LuminanceAt samples one pixel of a BGR CV_8UC3 Mat and returns its
// luminance in [0,1].
func LuminanceAt(img gocv.Mat, x, y int) float64 {
	v := img.GetVecbAt(y, x)
	return Luminance(float64(v[2])/255, float64(v[1])/255, float64(v[0])/255)
}
