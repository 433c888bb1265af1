package export

import (
	"errors"
	"fmt"
	"html"
	"io"
	"math"
	"os"
	"strings"

	"github.com/san-kum/rocketmc/internal/storage"
)

var ErrTooFewPoints = errors.New("export: need at least two points")

const margin = 40

// SeriesToSVG draws ys against xs as a single polyline with min/max labels
// on both axes.
func SeriesToSVG(xs, ys []float64, width, height int, stroke, caption string) (string, error) {
	n := min(len(xs), len(ys))
	if n < 2 {
		return "", ErrTooFewPoints
	}

	minX, maxX := bounds(xs[:n])
	minY, maxY := bounds(ys[:n])

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	plotW := float64(width - 2*margin)
	plotH := float64(height - 2*margin)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="#444466" stroke-width="1">
<line x1="%d" y1="%d" x2="%d" y2="%d"/>
<line x1="%d" y1="%d" x2="%d" y2="%d"/>
</g>
`, width, height, width, height,
		margin, height-margin, width-margin, height-margin,
		margin, margin, margin, height-margin)

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, html.EscapeString(stroke))
	for i := 0; i < n; i++ {
		x := float64(margin) + (xs[i]-minX)/rangeX*plotW
		y := float64(height-margin) - (ys[i]-minY)/rangeY*plotH
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")

	fmt.Fprintf(&sb, `<g fill="#888899" font-family="monospace" font-size="11">
<text x="%d" y="%d">%s</text>
<text x="%d" y="%d" text-anchor="end">%s</text>
<text x="%d" y="%d">%s</text>
<text x="%d" y="%d">%s</text>
<text x="%d" y="%d" text-anchor="middle" fill="#00ffff">%s</text>
</g>
</svg>
`,
		margin, height-margin/3, label(minX),
		width-margin, height-margin/3, label(maxX),
		2, height-margin, label(minY),
		2, margin, label(maxY),
		width/2, margin/2, html.EscapeString(caption))

	return sb.String(), nil
}

// ResultSVG plots one telemetry column of a result against time.
func ResultSVG(res *storage.Result, timeCol, column string, width, height int) (string, error) {
	ts, ok := res.Column(timeCol)
	if !ok {
		return "", fmt.Errorf("export: no %q column in %s", timeCol, res.Path)
	}
	ys, ok := res.Column(column)
	if !ok {
		return "", fmt.Errorf("export: no %q column in %s", column, res.Path)
	}
	return SeriesToSVG(ts, ys, width, height, "#00ff88", column)
}

func WriteFile(path, svg string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.WriteString(f, svg); err != nil {
		return err
	}
	return f.Close()
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func label(v float64) string {
	return fmt.Sprintf("%.4g", v)
}
