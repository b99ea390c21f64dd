// Per-frame rendering pipeline: analyze and compose regions in
// parallel, then merge in detection order.
package render

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"professional-nail-renderer/internal/geometry"
	"professional-nail-renderer/internal/material"
)

// glitterBaseSeed anchors per-region glitter seeds. Each region offsets
// it by its detection index, so every region sparkles differently but
// identically on every render of the same frame.
const glitterBaseSeed = 42

// Detection is one upstream detector result: a binary mask aligned to
// the frame plus its confidence score. The score is carried for logging
// only; confidence filtering already happened upstream.
type Detection struct {
	Mask  gocv.Mat
	Score float64
}

// FrameRenderer runs the full per-frame pipeline over a list of
// detections sharing one destination image.
type FrameRenderer struct {
	// MinArea is passed through to geometry analysis.
	MinArea float64

	// Workers bounds the number of regions composed concurrently.
	Workers int

	analyzer   *geometry.Analyzer
	compositor *Compositor
	logger     *logrus.Logger
}

// NewFrameRenderer wires an analyzer and compositor into a frame
// pipeline with default tuning.
func NewFrameRenderer(analyzer *geometry.Analyzer, compositor *Compositor, logger *logrus.Logger) *FrameRenderer {
	if logger == nil {
		logger = logrus.New()
	}
	return &FrameRenderer{
		MinArea:    geometry.DefaultMinArea,
		Workers:    runtime.NumCPU(),
		analyzer:   analyzer,
		compositor: compositor,
		logger:     logger,
	}
}

// Analyzer returns the geometry analyzer the pipeline uses, so tools
// can run standalone analysis with the same tuning.
func (fr *FrameRenderer) Analyzer() *geometry.Analyzer {
	return fr.analyzer
}

// Render composites every renderable detection onto img (CV_8UC3, BGR)
// in place and returns how many regions were actually rendered.
//
// Region composition runs concurrently, but the merge happens on this
// goroutine in ascending detection order: later detections draw over
// earlier ones wherever they overlap, reproducibly. Detections whose
// geometry analysis rejects the mask are skipped silently; a mask whose
// size disagrees with the image fails the whole frame with
// ErrDimensionMismatch before anything is drawn.
func (fr *FrameRenderer) Render(img gocv.Mat, detections []Detection, mat material.Material) (int, error) {
	for i, d := range detections {
		if d.Mask.Cols() != img.Cols() || d.Mask.Rows() != img.Rows() {
			return 0, fmt.Errorf("detection %d: %w: mask %dx%d vs image %dx%d",
				i, ErrDimensionMismatch, d.Mask.Cols(), d.Mask.Rows(), img.Cols(), img.Rows())
		}
	}
	if len(detections) == 0 {
		return 0, nil
	}

	start := time.Now()
	mat = mat.Normalized()

	results := make([]*RegionRender, len(detections))

	workers := fr.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(detections) {
		workers = len(detections)
	}

	jobs := make(chan int, len(detections))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = fr.composeRegion(idx, detections[idx], mat)
			}
		}()
	}
	for i := range detections {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Deterministic merge: detection index ascending.
	rendered := 0
	for i, rr := range results {
		if rr == nil {
			continue
		}
		if err := fr.compositor.Blend(img, rr); err != nil {
			return rendered, fmt.Errorf("detection %d: %w", i, err)
		}
		rendered++
	}

	fr.logger.WithFields(logrus.Fields{
		"detections": len(detections),
		"rendered":   rendered,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("frame rendered")

	return rendered, nil
}

func (fr *FrameRenderer) composeRegion(idx int, d Detection, mat material.Material) *RegionRender {
	geom := fr.analyzer.Analyze(d.Mask, fr.MinArea)
	if geom == nil {
		fr.logger.WithFields(logrus.Fields{
			"detection": idx,
			"score":     d.Score,
		}).Debug("region skipped: no usable geometry")
		return nil
	}

	rr, err := fr.compositor.Compose(geom, mat, glitterBaseSeed+int64(idx))
	if err != nil {
		// Compose failures are per-region conditions (degenerate
		// buffers); they do not abort the rest of the frame.
		fr.logger.WithError(err).WithField("detection", idx).Warn("region skipped: compose failed")
		return nil
	}
	return rr
}
