package assets

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/upscaler/internal/common"
)

// Algorithm names a resampling strategy offered to the user.
type Algorithm string

const (
	AlgorithmNearest    Algorithm = "nearest"
	AlgorithmBilinear   Algorithm = "bilinear"
	AlgorithmBicubic    Algorithm = "bicubic"
	AlgorithmLanczos    Algorithm = "lanczos"
	AlgorithmAIEnhanced Algorithm = "ai-enhanced"
)

// Algorithms lists every accepted algorithm, fastest first.
var Algorithms = []Algorithm{
	AlgorithmNearest,
	AlgorithmBilinear,
	AlgorithmBicubic,
	AlgorithmLanczos,
	AlgorithmAIEnhanced,
}

const (
	MinScaleFactor     = 1.0
	MaxScaleFactor     = 8.0
	ScaleFactorStep    = 0.5
	DefaultScaleFactor = 2.0
	DefaultQuality     = 90
)

// ProcessingSettings are the user's choices for one processing run.
type ProcessingSettings struct {
	ScaleFactor float64
	Algorithm   Algorithm
	Quality     int
}

// DefaultSettings returns 2x bicubic at quality 90.
func DefaultSettings() ProcessingSettings {
	return ProcessingSettings{
		ScaleFactor: DefaultScaleFactor,
		Algorithm:   AlgorithmBicubic,
		Quality:     DefaultQuality,
	}
}

// ParseAlgorithm validates an algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: unknown algorithm %q", common.ErrorInvalidSettings, name)
}

// Validate checks ranges. The scale factor moves in half steps between 1 and 8.
func (s ProcessingSettings) Validate() error {
	if math.IsNaN(s.ScaleFactor) || s.ScaleFactor < MinScaleFactor || s.ScaleFactor > MaxScaleFactor {
		return fmt.Errorf("%w: scale factor %v out of range [%v, %v]",
			common.ErrorInvalidSettings, s.ScaleFactor, MinScaleFactor, MaxScaleFactor)
	}
	if math.Mod(s.ScaleFactor, ScaleFactorStep) != 0 {
		return fmt.Errorf("%w: scale factor %v is not a multiple of %v",
			common.ErrorInvalidSettings, s.ScaleFactor, ScaleFactorStep)
	}
	if _, err := ParseAlgorithm(string(s.Algorithm)); err != nil {
		return err
	}
	if s.Quality < 1 || s.Quality > 100 {
		return fmt.Errorf("%w: quality %d out of range [1, 100]", common.ErrorInvalidSettings, s.Quality)
	}
	return nil
}

// TargetSize returns the dimensions an image of w×h would have after scaling.
func (s ProcessingSettings) TargetSize(w, h int) (int, int) {
	return int(math.Round(float64(w) * s.ScaleFactor)), int(math.Round(float64(h) * s.ScaleFactor))
}
