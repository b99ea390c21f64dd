// Interactive preview tool for the nail renderer. Loads an image plus
// masks, renders the selected material preset, and shows the source,
// geometry visualization, and result side by side.
package main

import (
	"flag"
	"image"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"professional-nail-renderer/internal/geometry"
	"professional-nail-renderer/internal/imgio"
	"professional-nail-renderer/internal/material"
	"professional-nail-renderer/internal/render"
)

const AppID = "com.nailrenderer.viewer"

type viewer struct {
	logger *logrus.Logger
	frame  *render.FrameRenderer

	source     gocv.Mat
	detections []render.Detection

	sourceView   *canvas.Image
	geometryView *canvas.Image
	resultView   *canvas.Image
	status       *widget.Label
}

func main() {
	imagePath := flag.String("image", "", "source image file (required)")
	maskGlob := flag.String("masks", "", "glob of binary mask image files (required)")
	minArea := flag.Float64("min-area", geometry.DefaultMinArea, "minimum region area in pixels")
	debugMode := flag.Bool("debug", false, "enable verbose logging")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debugMode {
		logger.SetLevel(logrus.DebugLevel)
	}

	if *imagePath == "" || *maskGlob == "" {
		logger.Fatal("-image and -masks are required")
	}

	v, err := newViewer(logger, *imagePath, *maskGlob, *minArea)
	if err != nil {
		logger.WithError(err).Fatal("viewer startup failed")
	}
	defer v.close()

	fyneApp := app.NewWithID(AppID)
	w := fyneApp.NewWindow("Nail Renderer Preview")
	w.SetContent(v.buildUI())
	w.Resize(fyne.NewSize(1200, 700))

	v.apply(material.DefaultPresetName)
	w.ShowAndRun()
}

func newViewer(logger *logrus.Logger, imagePath, maskGlob string, minArea float64) (*viewer, error) {
	loader := imgio.NewLoader(logger)

	source, err := loader.Load(imagePath)
	if err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(maskGlob)
	if err != nil {
		return nil, err
	}

	var detections []render.Detection
	for _, p := range paths {
		mask, err := loader.LoadMask(p)
		if err != nil {
			logger.WithError(err).Warn("skipping mask")
			continue
		}
		detections = append(detections, render.Detection{Mask: mask, Score: 1.0})
	}

	analyzer := geometry.NewAnalyzer(logger)
	compositor := render.NewCompositor(render.DefaultLightConfig(), logger)
	frame := render.NewFrameRenderer(analyzer, compositor, logger)
	frame.MinArea = minArea

	return &viewer{
		logger:     logger,
		frame:      frame,
		source:     source,
		detections: detections,
	}, nil
}

func (v *viewer) buildUI() fyne.CanvasObject {
	v.sourceView = newImageView()
	v.geometryView = newImageView()
	v.resultView = newImageView()
	v.status = widget.NewLabel("")

	if img, err := v.source.ToImage(); err == nil {
		v.sourceView.Image = img
		v.sourceView.Refresh()
	}
	v.updateGeometryView()

	presets := widget.NewSelect(material.PresetNames(), func(name string) {
		v.apply(name)
	})
	presets.SetSelected(material.DefaultPresetName)

	tabs := container.NewAppTabs(
		container.NewTabItem("Original", widget.NewCard("Original", "", v.sourceView)),
		container.NewTabItem("Geometry", widget.NewCard("Geometry", "", v.geometryView)),
		container.NewTabItem("Rendered", widget.NewCard("Rendered", "", v.resultView)),
	)

	controls := container.NewBorder(nil, nil, widget.NewLabel("Material:"), v.status, presets)
	return container.NewBorder(controls, nil, nil, nil, tabs)
}

// apply renders all regions with the named preset onto a fresh copy of
// the source and refreshes the result tab.
func (v *viewer) apply(name string) {
	working := v.source.Clone()
	defer working.Close()

	rendered, err := v.frame.Render(working, v.detections, material.Preset(name))
	if err != nil {
		v.logger.WithError(err).Error("render failed")
		v.status.SetText("render failed: " + err.Error())
		return
	}

	if img, err := working.ToImage(); err == nil {
		v.resultView.Image = img
		v.resultView.Refresh()
	}
	v.status.SetText(statusText(rendered, len(v.detections)))
}

func (v *viewer) updateGeometryView() {
	for _, d := range v.detections {
		geom := v.frame.Analyzer().Analyze(d.Mask, v.frame.MinArea)
		if geom == nil {
			continue
		}
		vis, err := geometry.Visualize(geom)
		if err != nil {
			continue
		}
		img, err := vis.ToImage()
		vis.Close()
		if err == nil {
			v.geometryView.Image = img
			v.geometryView.Refresh()
		}
		return
	}
}

func (v *viewer) close() {
	v.source.Close()
	for _, d := range v.detections {
		d.Mask.Close()
	}
}

func newImageView() *canvas.Image {
	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 320, 240)))
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(640, 480))
	return img
}

func statusText(rendered, total int) string {
	if rendered == 0 {
		return "no regions rendered"
	}
	if rendered == total {
		return "all regions rendered"
	}
	return "some regions skipped"
}
