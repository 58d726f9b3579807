package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/dotglobe/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

// GlobeOptions controls GlobeToSVG.
type GlobeOptions struct {
	Size       int
	DotSize    float64
	Color      string
	Background string
	CullBack   bool
}

func DefaultGlobeOptions() GlobeOptions {
	return GlobeOptions{Size: 800, DotSize: 0.01, Color: "#bcd2ff", Background: "#0a0a0a"}
}

type projected struct {
	x, y, depth float64
}

// GlobeToSVG draws particles as circles seen through cam. Points are painted
// far to near, and far points fade toward the background.
func GlobeToSVG(pts []r3.Vec, cam *viz.Camera, opts GlobeOptions) (string, error) {
	fg, err := colorful.Hex(opts.Color)
	if err != nil {
		return "", fmt.Errorf("dot colour: %w", err)
	}
	bg, err := colorful.Hex(opts.Background)
	if err != nil {
		return "", fmt.Errorf("background colour: %w", err)
	}
	if opts.Size <= 0 {
		return "", fmt.Errorf("size must be positive, got %d", opts.Size)
	}

	size := opts.Size
	scale := cam.Scale(size, size)
	proj := make([]projected, 0, len(pts))
	for _, p := range pts {
		rot := cam.Rotate(p)
		if rot.Z >= cam.Distance-0.1 || (opts.CullBack && rot.Z < 0) {
			continue
		}
		persp := cam.Distance / (cam.Distance - rot.Z)
		proj = append(proj, projected{
			x:     rot.X*scale*persp + float64(size)/2,
			y:     -rot.Y*scale*persp + float64(size)/2,
			depth: rot.Z,
		})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<g>
`, size, size, size, size, bg.Hex()))

	r := opts.DotSize * scale
	for _, p := range proj {
		// depth runs -1 (far) to 1 (near)
		t := 0.35 + 0.65*(p.depth+1)/2
		fill := bg.BlendLab(fg, min(1, max(0, t))).Clamped().Hex()
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s"/>
`, p.x, p.y, r, fill))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String(), nil
}

// SeriesToSVG draws values as a polyline filling the given box.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = min(minY, v)
		maxY = max(maxY, v)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(values) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
