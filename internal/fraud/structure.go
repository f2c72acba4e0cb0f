package fraud

// AnalyzerResult is the common shape every analyzer returns: a 0-1 score where
// 1 is clean, plus the issues that pulled it down.
type AnalyzerResult struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues,omitempty"`
}

// Structure component weights.
const (
	structureMarginWeight  = 0.3
	structureDensityWeight = 0.4
	structureLayoutWeight  = 0.3
)

// AnalyzeStructure scores document layout plausibility: whether the content
// keeps sane margins, how much of the page is ink, and whether the ruled-line
// layout looks like a form rather than a collage.
func AnalyzeStructure(r *Raster) AnalyzerResult {
	if r == nil {
		return AnalyzerResult{Score: 0, Issues: []string{"Invalid image file"}}
	}

	var issues []string

	margins := marginScore(r)
	if margins < 0.7 {
		issues = append(issues, "Content runs into the page margins")
	}

	density := textDensityScore(r)
	if density < 0.6 {
		issues = append(issues, "Unusual text density for an official document")
	}

	layout := layoutScore(r)
	if layout < 0.8 {
		issues = append(issues, "Layout structure looks irregular")
	}

	score := structureMarginWeight*margins + structureDensityWeight*density + structureLayoutWeight*layout
	return AnalyzerResult{Score: score, Issues: issues}
}

// textDensityScore rates the fraction of dark pixels. Genuine documents sit in
// a narrow band: mostly white page with a predictable amount of ink.
func textDensityScore(r *Raster) float64 {
	mask := darkMask(r.Gray, 128)
	var dark int
	for _, d := range mask {
		if d {
			dark++
		}
	}
	density := float64(dark) / float64(len(mask))
	switch {
	case density >= 0.1 && density <= 0.4:
		return 1.0
	case density < 0.05 || density > 0.6:
		return 0.3
	default:
		return 0.7
	}
}

// marginMinPx is the narrowest acceptable whitespace border.
const marginMinPx = 20

// marginScore penalizes ink closer than marginMinPx to a page edge, one
// deduction per axis.
func marginScore(r *Raster) float64 {
	mask := darkMask(r.Gray, 128)
	top, bottom, left, right := contentBounds(mask, r.W, r.H)
	if top < 0 {
		// Blank page: margins are trivially fine.
		return 1.0
	}
	score := 1.0
	if left < marginMinPx || r.W-1-right < marginMinPx {
		score -= 0.3
	}
	if top < marginMinPx || r.H-1-bottom < marginMinPx {
		score -= 0.3
	}
	if score < 0 {
		score = 0
	}
	return score
}

// contentBounds returns the bounding box of dark pixels, or top=-1 when the
// mask is empty.
func contentBounds(mask []bool, w, h int) (top, bottom, left, right int) {
	top, bottom, left, right = -1, -1, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			if top == -1 || y < top {
				top = y
			}
			if y > bottom {
				bottom = y
			}
			if left == -1 || x < left {
				left = x
			}
			if x > right {
				right = x
			}
		}
	}
	return top, bottom, left, right
}

// layoutScore rates the ruled-line structure. Official documents carry a few
// horizontal rules and at most a handful of vertical ones.
func layoutScore(r *Raster) float64 {
	horizontal, vertical := countLines(r.Gray, r.W, r.H)
	switch {
	case horizontal >= 2 && horizontal <= 10 && vertical <= 5:
		return 1.0
	case horizontal > 15 || vertical > 10:
		return 0.4
	default:
		return 0.7
	}
}
