// Debug visualization of extracted geometry. Tooling only; nothing in
// the render path depends on this.
package geometry

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Visualize renders the extracted structures of one geometry into a BGR
// debug image: the curvature map as a heatmap, the contour, the center,
// the highlight point, and the orientation axis. The caller owns the
// returned Mat.
func Visualize(g *Geometry) (gocv.Mat, error) {
	curv, err := g.CurvatureMap.Mat()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("curvature to mat: %w", err)
	}
	defer curv.Close()

	// Heatmap background from the curvature map.
	gray := gocv.NewMat()
	defer gray.Close()
	curv.ConvertToWithParams(&gray, gocv.MatTypeCV8U, 255, 0)

	vis := gocv.NewMat()
	gocv.ApplyColorMap(gray, &vis, gocv.ColormapJet)

	contours := gocv.NewPointsVectorFromPoints([][]image.Point{g.Contour})
	defer contours.Close()
	gocv.DrawContours(&vis, contours, -1, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2)

	gocv.Circle(&vis, g.Center, 5, color.RGBA{G: 255, A: 255}, -1)
	gocv.Circle(&vis, g.HighlightPoint, 8, color.RGBA{R: 255, G: 255, A: 255}, -1)

	theta := g.OrientationAngle * math.Pi / 180
	axisEnd := image.Pt(
		g.Center.X+int(g.Length*0.5*math.Cos(theta)),
		g.Center.Y+int(g.Length*0.5*math.Sin(theta)),
	)
	gocv.ArrowedLine(&vis, g.Center, axisEnd, color.RGBA{G: 255, B: 255, A: 255}, 2)

	gocv.PutText(&vis, fmt.Sprintf("Angle: %.1fdeg", g.OrientationAngle),
		image.Pt(10, 30), gocv.FontHersheySimplex, 0.6, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2)
	gocv.PutText(&vis, fmt.Sprintf("Size: %.0fx%.0f", g.Length, g.MinorWidth),
		image.Pt(10, 60), gocv.FontHersheySimplex, 0.6, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2)

	return vis, nil
}
