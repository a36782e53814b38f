package assets

import (
	"math"
	"testing"

	"github.com/dmitrijs2005/upscaler/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		s       ProcessingSettings
		wantErr bool
	}{
		{name: "defaults", s: DefaultSettings()},
		{name: "min scale", s: ProcessingSettings{ScaleFactor: 1, Algorithm: AlgorithmNearest, Quality: 1}},
		{name: "max scale", s: ProcessingSettings{ScaleFactor: 8, Algorithm: AlgorithmAIEnhanced, Quality: 100}},
		{name: "half step", s: ProcessingSettings{ScaleFactor: 3.5, Algorithm: AlgorithmBilinear, Quality: 50}},
		{name: "below one", s: ProcessingSettings{ScaleFactor: 0.5, Algorithm: AlgorithmBicubic, Quality: 90}, wantErr: true},
		{name: "above eight", s: ProcessingSettings{ScaleFactor: 8.5, Algorithm: AlgorithmBicubic, Quality: 90}, wantErr: true},
		{name: "off step", s: ProcessingSettings{ScaleFactor: 2.25, Algorithm: AlgorithmBicubic, Quality: 90}, wantErr: true},
		{name: "nan", s: ProcessingSettings{ScaleFactor: math.NaN(), Algorithm: AlgorithmBicubic, Quality: 90}, wantErr: true},
		{name: "unknown algorithm", s: ProcessingSettings{ScaleFactor: 2, Algorithm: "magic", Quality: 90}, wantErr: true},
		{name: "quality zero", s: ProcessingSettings{ScaleFactor: 2, Algorithm: AlgorithmBicubic, Quality: 0}, wantErr: true},
		{name: "quality too high", s: ProcessingSettings{ScaleFactor: 2, Algorithm: AlgorithmBicubic, Quality: 101}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrorInvalidSettings)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, a := range Algorithms {
		got, err := ParseAlgorithm(string(a))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseAlgorithm("Bicubic")
	assert.ErrorIs(t, err, common.ErrorInvalidSettings)
}

func TestTargetSize(t *testing.T) {
	s := ProcessingSettings{ScaleFactor: 1.5}
	w, h := s.TargetSize(3, 0)
	assert.Equal(t, 5, w)
	assert.Equal(t, 0, h)
}
