package ring

import (
	"bytes"
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/packybar/internal/domain"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const (
	imageSize   = 44
	ringRadius  = 17.0
	trackWidth  = 3.5
	segmentsPer = 12

	ringFileMode    = 0o644
	ringDirMode     = 0o755
	tempFilePattern = ".ring-*.png.tmp"
)

// Options are the full inputs of one ring render. Equal options produce an
// equal Signature, and an unchanged signature skips the redraw entirely.
type Options struct {
	Percent   int
	Colored   bool
	ColorMode string
	Reverse   bool
	Label     string
}

// Signature is the memoization key: identical signature means no redraw and
// no disk write.
func (o Options) Signature() string {
	return fmt.Sprintf("p%d-c%t-%s-r%t-l%s", o.Percent, o.Colored, o.ColorMode, o.Reverse, o.Label)
}

// Renderer rasterizes the circular progress overlay into a small PNG.
type Renderer struct {
	path string

	mu            sync.Mutex
	lastSignature string
}

func NewRenderer(path string) *Renderer {
	return &Renderer{path: filepath.Clean(path)}
}

// SetLastSignature seeds the memoization key, typically from the persisted
// state snapshot, so an unchanged ring survives a process restart without a
// redraw.
func (r *Renderer) SetLastSignature(signature string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSignature = signature
}

func (r *Renderer) Path() string {
	return r.path
}

// Render draws the ring unless the signature matches the previous render.
// It reports whether a new image was written.
func (r *Renderer) Render(opts Options) (bool, error) {
	signature := opts.Signature()

	r.mu.Lock()
	defer r.mu.Unlock()

	if signature == r.lastSignature {
		return false, nil
	}

	data, err := rasterize(opts)
	if err != nil {
		return false, err
	}

	if err := r.writeAtomic(data); err != nil {
		return false, err
	}

	r.lastSignature = signature
	return true, nil
}

func rasterize(opts Options) ([]byte, error) {
	percent := opts.Percent
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	dc := gg.NewContext(imageSize, imageSize)
	center := float64(imageSize) / 2

	// Faint full-circle track.
	dc.SetLineWidth(trackWidth)
	dc.SetRGBA(0.5, 0.5, 0.5, 0.35)
	dc.DrawCircle(center, center, ringRadius)
	dc.Stroke()

	sweepPercent := percent
	if opts.Reverse {
		sweepPercent = 100 - percent
	}

	if sweepPercent > 0 {
		drawArcForPercent(dc, center, percent, sweepPercent, opts)
	}

	if opts.Label != "" {
		dc.SetFontFace(basicfont.Face7x13)
		if opts.Colored {
			dc.SetRGB(0.15, 0.15, 0.15)
		} else {
			dc.SetRGB(0, 0, 0)
		}
		dc.DrawStringAnchored(opts.Label, center, center, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode ring image: %w", err)
	}

	return buf.Bytes(), nil
}

// drawArcForPercent strokes the progress arc clockwise from 12 o'clock.
// Gradient mode approximates the green-yellow-red ramp with short segments;
// the other modes stroke a single arc.
func drawArcForPercent(dc *gg.Context, center float64, percent, sweepPercent int, opts Options) {
	startAngle := -math.Pi / 2
	sweep := 2 * math.Pi * float64(sweepPercent) / 100

	dc.SetLineWidth(trackWidth)

	if opts.Colored && opts.ColorMode == domain.RingColorGradient {
		for i := 0; i < segmentsPer; i++ {
			from := startAngle + sweep*float64(i)/segmentsPer
			to := startAngle + sweep*float64(i+1)/segmentsPer
			r, g, b := gradientColor(float64(i) / float64(segmentsPer-1))
			dc.SetRGB(r, g, b)
			dc.DrawArc(center, center, ringRadius, from, to)
			dc.Stroke()
		}
		return
	}

	r, g, b := arcColor(percent, opts)
	dc.SetRGB(r, g, b)
	dc.DrawArc(center, center, ringRadius, startAngle, startAngle+sweep)
	dc.Stroke()
}

func arcColor(percent int, opts Options) (float64, float64, float64) {
	if !opts.Colored {
		return 0, 0, 0
	}

	switch opts.ColorMode {
	case domain.RingColorFlat:
		return 0.13, 0.59, 0.95
	default: // threshold
		switch {
		case percent <= 60:
			return 0.30, 0.69, 0.31
		case percent <= 85:
			return 1.00, 0.76, 0.03
		default:
			return 0.96, 0.26, 0.21
		}
	}
}

// gradientColor maps t in [0,1] across green, yellow, red.
func gradientColor(t float64) (float64, float64, float64) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	if t <= 0.5 {
		// green -> yellow
		f := t / 0.5
		return 0.30 + (1.00-0.30)*f, 0.69 + (0.76-0.69)*f, 0.31 - 0.28*f
	}

	// yellow -> red
	f := (t - 0.5) / 0.5
	return 1.00 - 0.04*f, 0.76 - 0.50*f, 0.03 + 0.18*f
}

func (r *Renderer) writeAtomic(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(r.path), ringDirMode); err != nil {
		return fmt.Errorf("create ring directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp ring file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp ring file: %w", err)
	}

	if err := tempFile.Chmod(ringFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp ring file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp ring file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace ring file: %w", err)
	}

	cleanup = false
	return nil
}
