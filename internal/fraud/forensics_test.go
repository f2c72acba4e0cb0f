package fraud

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompressionScore(t *testing.T) {
	// A flat image has all spectral energy at DC.
	uniform := makeRaster(dctBlockSize, dctBlockSize)
	assert.InDelta(t, 1.0, compressionScore(uniform), 1e-9)

	// A one-pixel checkerboard is pure high frequency.
	checker := makeRaster(dctBlockSize, dctBlockSize)
	for y := 0; y < checker.H; y++ {
		for x := 0; x < checker.W; x++ {
			if (x+y)%2 == 0 {
				checker.Gray[y*checker.W+x] = 0
			}
		}
	}
	assert.InDelta(t, 0.3, compressionScore(checker), 1e-9)
}

func TestNoiseScore(t *testing.T) {
	// No residual at all reads as synthetic.
	uniform := makeRaster(64, 64)
	assert.InDelta(t, 0.4, noiseScore(uniform), 1e-9)

	// A hard checkerboard leaves a residual far above the capture band.
	checker := makeRaster(64, 64)
	for y := 0; y < checker.H; y++ {
		for x := 0; x < checker.W; x++ {
			if (x+y)%2 == 0 {
				checker.Gray[y*checker.W+x] = 0
			}
		}
	}
	assert.InDelta(t, 0.4, noiseScore(checker), 1e-9)
}

func TestColorScore_RestrainedPalette(t *testing.T) {
	assert.InDelta(t, 1.0, colorScore(makeRaster(32, 32)), 1e-9)
}

func TestEdgeScore(t *testing.T) {
	// No edges at all is suspicious but not damning.
	assert.InDelta(t, 0.6, edgeScore(makeRaster(64, 64)), 1e-9)

	// A handful of separated blocks reads as normal content.
	blocks := makeRaster(200, 200)
	for i := 0; i < 6; i++ {
		fillRect(blocks, 10+i*30, 50, 20+i*30, 70)
	}
	assert.InDelta(t, 1.0, edgeScore(blocks), 1e-9)
}

func TestAnalyzeForensics_NilRaster(t *testing.T) {
	res := AnalyzeForensics(nil)
	assert.Zero(t, res.Score)
	assert.Contains(t, res.Issues, "Invalid image file")
}
