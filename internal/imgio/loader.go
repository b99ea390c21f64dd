// Image file loading and saving for the render tools
package imgio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Loader handles image file operations for the CLI and viewer tools.
type Loader struct {
	logger *logrus.Logger
}

// NewLoader creates a loader.
func NewLoader(logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.New()
	}
	return &Loader{logger: logger}
}

var readFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp", ".webp"}

// Load reads a color image as a BGR CV_8UC3 Mat. The caller owns the
// returned Mat.
func (l *Loader) Load(path string) (gocv.Mat, error) {
	if !supportedFormat(path) {
		return gocv.NewMat(), fmt.Errorf("unsupported image format: %s", path)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return gocv.NewMat(), fmt.Errorf("failed to load image: %s", path)
	}

	l.logger.WithFields(logrus.Fields{
		"path":   path,
		"width":  mat.Cols(),
		"height": mat.Rows(),
	}).Debug("image loaded")

	return mat, nil
}

// LoadMask reads a mask file as grayscale CV_8UC1. Any non-zero pixel
// counts as covered.
func (l *Loader) LoadMask(path string) (gocv.Mat, error) {
	if !supportedFormat(path) {
		return gocv.NewMat(), fmt.Errorf("unsupported mask format: %s", path)
	}

	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	if mat.Empty() {
		return gocv.NewMat(), fmt.Errorf("failed to load mask: %s", path)
	}

	l.logger.WithFields(logrus.Fields{
		"path":   path,
		"width":  mat.Cols(),
		"height": mat.Rows(),
	}).Debug("mask loaded")

	return mat, nil
}

// Save writes a BGR Mat to disk. ".webp" goes through the native WebP
// encoder; everything else through OpenCV's writers.
func (l *Loader) Save(mat gocv.Mat, path string) error {
	if mat.Empty() {
		return fmt.Errorf("cannot save empty image")
	}

	if strings.EqualFold(filepath.Ext(path), ".webp") {
		return l.saveWebP(mat, path)
	}

	if !supportedFormat(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}
	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("failed to save image: %s", path)
	}

	l.logger.WithField("path", path).Debug("image saved")
	return nil
}

func (l *Loader) saveWebP(mat gocv.Mat, path string) error {
	// ToImage already swaps the Mat's BGR layout into RGBA.
	img, err := mat.ToImage()
	if err != nil {
		return fmt.Errorf("convert for webp: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}

	l.logger.WithField("path", path).Debug("webp saved")
	return nil
}

func supportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range readFormats {
		if ext == f {
			return true
		}
	}
	return false
}
