package fraud

// Forensics component weights.
const (
	forensicsCompressionWeight = 0.3
	forensicsNoiseWeight       = 0.3
	forensicsColorWeight       = 0.2
	forensicsEdgeWeight        = 0.2
)

// AnalyzeForensics probes the pixel statistics for editing traces: compression
// artifacts, noise patterns, color distribution, and edge fragmentation.
func AnalyzeForensics(r *Raster) AnalyzerResult {
	if r == nil {
		return AnalyzerResult{Score: 0, Issues: []string{"Invalid image file"}}
	}

	var issues []string

	compression := compressionScore(r)
	if compression < 0.7 {
		issues = append(issues, "Heavy compression artifacts suggest re-saving after edits")
	}

	noise := noiseScore(r)
	if noise < 0.7 {
		issues = append(issues, "Noise pattern inconsistent with a single capture")
	}

	color := colorScore(r)
	if color < 0.7 {
		issues = append(issues, "Color distribution is unusually wide")
	}

	edges := edgeScore(r)
	if edges < 0.7 {
		issues = append(issues, "Edge structure shows tampering signs")
	}

	score := forensicsCompressionWeight*compression +
		forensicsNoiseWeight*noise +
		forensicsColorWeight*color +
		forensicsEdgeWeight*edges
	return AnalyzerResult{Score: score, Issues: issues}
}

// compressionScore measures the high-frequency share of the DCT spectrum on a
// downsampled copy. Recompressed or heavily edited images push energy into the
// high bands.
func compressionScore(r *Raster) float64 {
	block := downsample(r.Gray, r.W, r.H, dctBlockSize)
	coeffs := dct2(block, dctBlockSize)

	var total, high float64
	for y := 0; y < dctBlockSize; y++ {
		for x := 0; x < dctBlockSize; x++ {
			v := coeffs[y*dctBlockSize+x]
			if v < 0 {
				v = -v
			}
			total += v
			if y >= 8 && x >= 8 {
				high += v
			}
		}
	}
	if total == 0 {
		return 1.0
	}
	ratio := high / total
	switch {
	case ratio > 0.3:
		return 0.3
	case ratio > 0.2:
		return 0.6
	default:
		return 1.0
	}
}

// noiseScore compares the image against a blurred copy. Scanned or
// photographed documents carry a characteristic residual band; synthetic or
// smoothed regions fall outside it.
func noiseScore(r *Raster) float64 {
	blurred := boxBlur(r.Gray, r.W, r.H, 2)
	residual := absDiff(r.Gray, blurred)
	mean, std := meanStd(residual)
	switch {
	case mean >= 5 && mean <= 15 && std >= 10 && std <= 30:
		return 1.0
	case mean < 2 || mean > 25:
		return 0.4
	default:
		return 0.7
	}
}

// colorScore penalizes wide HSV spreads. Official documents use a restrained
// palette.
func colorScore(r *Raster) float64 {
	hueStd, satStd, valStd := hsvStats(r)
	score := 1.0
	if hueStd > 50 {
		score -= 0.2
	}
	if satStd > 40 {
		score -= 0.2
	}
	if valStd > 60 {
		score -= 0.2
	}
	if score < 0 {
		score = 0
	}
	return score
}

// edgeScore counts connected edge regions. Spliced content fragments the edge
// map; a near-empty one is not a document at all.
func edgeScore(r *Raster) float64 {
	mask := edgeMask(r.Gray, r.W, r.H, 30)
	regions := countComponents(mask, r.W, r.H)
	switch {
	case regions > 1000:
		return 0.3
	case regions < 5:
		return 0.6
	default:
		return 1.0
	}
}
