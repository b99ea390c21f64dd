// Professional nail polish renderer - command line front end
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"

	"professional-nail-renderer/internal/geometry"
	"professional-nail-renderer/internal/imgio"
	"professional-nail-renderer/internal/material"
	"professional-nail-renderer/internal/render"
)

const (
	AppName    = "Professional Nail Renderer"
	AppVersion = "1.0.0"
)

type options struct {
	imagePath  string
	maskGlob   string
	detections string
	outPath    string
	vizDir     string

	materialName string
	colorHex     string
	finishName   string
	glossiness   float64
	metallic     float64
	intensity    float64

	minArea float64
	workers int
	maxSize int
}

func main() {
	var opts options
	flag.StringVar(&opts.imagePath, "image", "", "source image file (required)")
	flag.StringVar(&opts.maskGlob, "masks", "", "glob of binary mask image files, one per nail")
	flag.StringVar(&opts.detections, "detections", "", "detector output JSON with nail polygons")
	flag.StringVar(&opts.outPath, "out", "out.png", "output image file (.webp uses the native encoder)")
	flag.StringVar(&opts.vizDir, "viz", "", "directory for per-region geometry visualizations")
	flag.StringVar(&opts.materialName, "material", material.DefaultPresetName, "material preset name")
	flag.StringVar(&opts.colorHex, "color", "", "custom base color as #RRGGBB, overrides -material")
	flag.StringVar(&opts.finishName, "finish", "", "finish for -color: glossy|matte|metallic|glitter|chrome|satin")
	flag.Float64Var(&opts.glossiness, "glossiness", 0.8, "custom material glossiness")
	flag.Float64Var(&opts.metallic, "metallic", 0.0, "custom material metallic")
	flag.Float64Var(&opts.intensity, "intensity", 0.85, "custom material opacity")
	flag.Float64Var(&opts.minArea, "min-area", geometry.DefaultMinArea, "minimum region area in pixels")
	flag.IntVar(&opts.workers, "workers", runtime.NumCPU(), "concurrent region renders")
	flag.IntVar(&opts.maxSize, "max-size", 0, "downscale the image so its longer side fits (detections input only)")
	debugMode := flag.Bool("debug", false, "enable debug mode with verbose logging")
	flag.Parse()

	logger := initLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version": AppVersion,
	}).Info("Starting " + AppName)

	if err := run(logger, opts); err != nil {
		logger.WithError(err).Fatal("render failed")
	}
}

func run(logger *logrus.Logger, opts options) error {
	if opts.imagePath == "" {
		return fmt.Errorf("-image is required")
	}
	if opts.maskGlob == "" && opts.detections == "" {
		return fmt.Errorf("either -masks or -detections is required")
	}
	if opts.maskGlob != "" && opts.maxSize > 0 {
		return fmt.Errorf("-max-size only applies to -detections input; raster masks must match the image")
	}

	loader := imgio.NewLoader(logger)

	img, err := loader.Load(opts.imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	scale := 1.0
	if opts.maxSize > 0 {
		resized := imgio.ResizeToFit(img, opts.maxSize)
		if resized.Cols() != img.Cols() {
			scale = float64(resized.Cols()) / float64(img.Cols())
			logger.WithFields(logrus.Fields{
				"width":  resized.Cols(),
				"height": resized.Rows(),
			}).Info("image downscaled")
		}
		img.Close()
		img = resized
	}

	detections, err := loadDetections(logger, loader, opts, img.Cols(), img.Rows(), scale)
	if err != nil {
		return err
	}
	defer func() {
		for _, d := range detections {
			d.Mask.Close()
		}
	}()

	mat, err := resolveMaterial(logger, opts)
	if err != nil {
		return err
	}

	analyzer := geometry.NewAnalyzer(logger)
	compositor := render.NewCompositor(render.DefaultLightConfig(), logger)
	frame := render.NewFrameRenderer(analyzer, compositor, logger)
	frame.MinArea = opts.minArea
	frame.Workers = opts.workers

	if opts.vizDir != "" {
		if err := writeVisualizations(logger, loader, analyzer, detections, opts); err != nil {
			return err
		}
	}

	rendered, err := frame.Render(img, detections, mat)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"rendered": rendered,
	}).Info("frame complete")

	return loader.Save(img, opts.outPath)
}

// detectionFile mirrors the detector service response: image dimensions
// plus one polygon and confidence score per nail.
type detectionFile struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Nails  []struct {
		ID      int         `json:"id"`
		Score   float64     `json:"score"`
		Polygon [][]float64 `json:"polygon"`
	} `json:"nails"`
}

func loadDetections(logger *logrus.Logger, loader *imgio.Loader, opts options, width, height int, scale float64) ([]render.Detection, error) {
	if opts.detections != "" {
		return loadPolygonDetections(logger, opts.detections, width, height, scale)
	}

	paths, err := filepath.Glob(opts.maskGlob)
	if err != nil {
		return nil, fmt.Errorf("bad mask glob %q: %w", opts.maskGlob, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no masks match %q", opts.maskGlob)
	}

	detections := make([]render.Detection, 0, len(paths))
	for _, p := range paths {
		mask, err := loader.LoadMask(p)
		if err != nil {
			for _, d := range detections {
				d.Mask.Close()
			}
			return nil, err
		}
		detections = append(detections, render.Detection{Mask: mask, Score: 1.0})
	}
	return detections, nil
}

func loadPolygonDetections(logger *logrus.Logger, path string, width, height int, scale float64) ([]render.Detection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var df detectionFile
	if err := json.Unmarshal(raw, &df); err != nil {
		return nil, fmt.Errorf("parse detections %s: %w", path, err)
	}

	detections := make([]render.Detection, 0, len(df.Nails))
	for _, nail := range df.Nails {
		poly := make([]image.Point, 0, len(nail.Polygon))
		for _, pt := range nail.Polygon {
			if len(pt) < 2 {
				continue
			}
			poly = append(poly, image.Pt(int(pt[0]*scale+0.5), int(pt[1]*scale+0.5)))
		}
		mask := geometry.MaskFromPolygon(width, height, poly)
		detections = append(detections, render.Detection{Mask: mask, Score: nail.Score})
	}

	logger.WithField("count", len(detections)).Info("detections loaded")
	return detections, nil
}

func resolveMaterial(logger *logrus.Logger, opts options) (material.Material, error) {
	if opts.colorHex != "" {
		rgb, err := material.ParseHex(opts.colorHex)
		if err != nil {
			return material.Material{}, err
		}
		if opts.finishName != "" {
			return material.Custom(rgb, material.ParseFinish(opts.finishName)), nil
		}
		return material.FromRequest(rgb, opts.glossiness, opts.metallic, opts.intensity), nil
	}

	if !material.IsPreset(opts.materialName) {
		logger.WithFields(logrus.Fields{
			"requested": opts.materialName,
			"fallback":  material.DefaultPresetName,
		}).Warn("unknown material preset")
	}
	return material.Preset(opts.materialName), nil
}

func writeVisualizations(logger *logrus.Logger, loader *imgio.Loader, analyzer *geometry.Analyzer, detections []render.Detection, opts options) error {
	if err := os.MkdirAll(opts.vizDir, 0o755); err != nil {
		return err
	}

	for i, d := range detections {
		geom := analyzer.Analyze(d.Mask, opts.minArea)
		if geom == nil {
			continue
		}
		vis, err := geometry.Visualize(geom)
		if err != nil {
			return err
		}
		path := filepath.Join(opts.vizDir, fmt.Sprintf("geometry_%02d.png", i))
		err = loader.Save(vis, path)
		vis.Close()
		if err != nil {
			return err
		}
		logger.WithField("path", path).Debug("geometry visualization written")
	}
	return nil
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
