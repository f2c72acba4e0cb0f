package fraud

import (
	"bytes"
	"fmt"
	"image"
	"math"

	_ "image/jpeg"
	_ "image/png"
)

// Raster is a decoded image in a form the analyzers can work on directly:
// float grayscale plus the RGB planes, all in the 0-255 range.
type Raster struct {
	W, H    int
	Gray    []float64
	R, G, B []float64
}

// LoadRaster decodes PNG or JPEG bytes.
func LoadRaster(data []byte) (*Raster, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty image")
	}
	r := &Raster{
		W:    w,
		H:    h,
		Gray: make([]float64, w*h),
		R:    make([]float64, w*h),
		G:    make([]float64, w*h),
		B:    make([]float64, w*h),
	}
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			fr := float64(cr >> 8)
			fg := float64(cg >> 8)
			fb := float64(cb >> 8)
			r.R[i] = fr
			r.G[i] = fg
			r.B[i] = fb
			r.Gray[i] = 0.299*fr + 0.587*fg + 0.114*fb
			i++
		}
	}
	return r, nil
}

// meanStd returns the mean and population standard deviation of vs.
func meanStd(vs []float64) (float64, float64) {
	if len(vs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	mean := sum / float64(len(vs))
	var variance float64
	for _, v := range vs {
		d := v - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(vs)))
}

// boxBlur applies a (2r+1)x(2r+1) mean filter with edge clamping.
func boxBlur(src []float64, w, h, radius int) []float64 {
	tmp := make([]float64, w*h)
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			var n int
			for dx := -radius; dx <= radius; dx++ {
				xx := x + dx
				if xx < 0 || xx >= w {
					continue
				}
				sum += src[y*w+xx]
				n++
			}
			tmp[y*w+x] = sum / float64(n)
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			var n int
			for dy := -radius; dy <= radius; dy++ {
				yy := y + dy
				if yy < 0 || yy >= h {
					continue
				}
				sum += tmp[yy*w+x]
				n++
			}
			out[y*w+x] = sum / float64(n)
		}
	}
	return out
}

// absDiff returns |a - b| per pixel.
func absDiff(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = math.Abs(a[i] - b[i])
	}
	return out
}

// darkMask marks pixels below the threshold, the usual proxy for ink.
func darkMask(gray []float64, threshold float64) []bool {
	out := make([]bool, len(gray))
	for i, v := range gray {
		out[i] = v < threshold
	}
	return out
}

// edgeMask marks pixels whose gradient magnitude exceeds the threshold.
func edgeMask(gray []float64, w, h int, threshold float64) []bool {
	out := make([]bool, w*h)
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			gx := gray[y*w+x+1] - gray[y*w+x]
			gy := gray[(y+1)*w+x] - gray[y*w+x]
			if math.Hypot(gx, gy) > threshold {
				out[y*w+x] = true
			}
		}
	}
	return out
}

// countComponents counts 4-connected regions in the mask with an iterative
// flood fill.
func countComponents(mask []bool, w, h int) int {
	seen := make([]bool, len(mask))
	var stack []int
	count := 0
	for start := range mask {
		if !mask[start] || seen[start] {
			continue
		}
		count++
		stack = stack[:0]
		stack = append(stack, start)
		seen[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x := idx % w
			for _, n := range [4]int{idx - 1, idx + 1, idx - w, idx + w} {
				if n < 0 || n >= len(mask) {
					continue
				}
				// Stay on the same row for horizontal neighbors.
				if (n == idx-1 && x == 0) || (n == idx+1 && x == w-1) {
					continue
				}
				if mask[n] && !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}
	}
	return count
}

// countLines counts horizontal and vertical ruled lines: dark runs spanning at
// least half the image along their axis.
func countLines(gray []float64, w, h int) (horizontal, vertical int) {
	mask := darkMask(gray, 128)
	minRunH := w / 2
	if minRunH < 1 {
		minRunH = 1
	}
	for y := 0; y < h; y++ {
		run, best := 0, 0
		for x := 0; x < w; x++ {
			if mask[y*w+x] {
				run++
				if run > best {
					best = run
				}
			} else {
				run = 0
			}
		}
		if best >= minRunH {
			horizontal++
		}
	}
	minRunV := h / 2
	if minRunV < 1 {
		minRunV = 1
	}
	for x := 0; x < w; x++ {
		run, best := 0, 0
		for y := 0; y < h; y++ {
			if mask[y*w+x] {
				run++
				if run > best {
					best = run
				}
			} else {
				run = 0
			}
		}
		if best >= minRunV {
			vertical++
		}
	}
	return horizontal, vertical
}

// dctBlockSize is the square the compression probe downsamples to before its
// frequency transform.
const dctBlockSize = 128

// downsample resizes gray to size x size by box averaging.
func downsample(gray []float64, w, h, size int) []float64 {
	out := make([]float64, size*size)
	for oy := 0; oy < size; oy++ {
		y0 := oy * h / size
		y1 := (oy + 1) * h / size
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for ox := 0; ox < size; ox++ {
			x0 := ox * w / size
			x1 := (ox + 1) * w / size
			if x1 <= x0 {
				x1 = x0 + 1
			}
			var sum float64
			var n int
			for y := y0; y < y1 && y < h; y++ {
				for x := x0; x < x1 && x < w; x++ {
					sum += gray[y*w+x]
					n++
				}
			}
			if n > 0 {
				out[oy*size+ox] = sum / float64(n)
			}
		}
	}
	return out
}

// dct2 computes a separable 2D DCT-II of a size x size block.
func dct2(block []float64, size int) []float64 {
	cosTable := make([]float64, size*size)
	for k := 0; k < size; k++ {
		for n := 0; n < size; n++ {
			cosTable[k*size+n] = math.Cos(math.Pi * float64(k) * (float64(n) + 0.5) / float64(size))
		}
	}
	rows := make([]float64, size*size)
	for y := 0; y < size; y++ {
		for k := 0; k < size; k++ {
			var sum float64
			for n := 0; n < size; n++ {
				sum += block[y*size+n] * cosTable[k*size+n]
			}
			rows[y*size+k] = sum
		}
	}
	out := make([]float64, size*size)
	for x := 0; x < size; x++ {
		for k := 0; k < size; k++ {
			var sum float64
			for n := 0; n < size; n++ {
				sum += rows[n*size+x] * cosTable[k*size+n]
			}
			out[k*size+x] = sum
		}
	}
	return out
}

// hsvStats returns the standard deviation of the hue, saturation, and value
// channels. Hue is in degrees, saturation and value scaled to 0-255.
func hsvStats(r *Raster) (hueStd, satStd, valStd float64) {
	n := len(r.Gray)
	hue := make([]float64, n)
	sat := make([]float64, n)
	val := make([]float64, n)
	for i := 0; i < n; i++ {
		h, s, v := rgbToHSV(r.R[i], r.G[i], r.B[i])
		hue[i] = h
		sat[i] = s * 255
		val[i] = v
	}
	_, hueStd = meanStd(hue)
	_, satStd = meanStd(sat)
	_, valStd = meanStd(val)
	return hueStd, satStd, valStd
}

func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max
	delta := max - min
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}
