package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	defaultDistance = 4.0
	minZoom         = 0.4
	maxZoom         = 4.0
	maxPitch        = math.Pi/2 - 0.01
)

// Camera orbits the origin. Yaw spins the globe about +y, pitch tilts it
// toward the viewer; the viewer looks down -z from Distance.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64
	Distance   float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1, Distance: defaultDistance}
}

func (c *Camera) Reset() { *c = *NewCamera() }

func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw = math.Mod(c.Yaw+dyaw, 2*math.Pi)
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, c.Pitch+dpitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(maxZoom, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(minZoom, c.Zoom/1.2) }

// Rotate maps a world point into view space.
func (c *Camera) Rotate(p r3.Vec) r3.Vec {
	cy, sy := math.Cos(c.Yaw), math.Sin(c.Yaw)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cx, sx := math.Cos(c.Pitch), math.Sin(c.Pitch)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// Unrotate is the inverse of Rotate.
func (c *Camera) Unrotate(p r3.Vec) r3.Vec {
	cx, sx := math.Cos(c.Pitch), math.Sin(c.Pitch)
	p.Y, p.Z = p.Y*cx+p.Z*sx, -p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.Yaw), math.Sin(c.Yaw)
	p.X, p.Z = p.X*cy-p.Z*sy, p.X*sy+p.Z*cy
	return p
}

// Scale is the number of sub-pixels one world unit spans at the origin.
func (c *Camera) Scale(sw, sh int) float64 {
	return float64(min(sw, sh)) / 2.4 * c.Zoom
}

// Project converts a world point to sub-pixel coordinates. It returns the
// view-space depth (positive toward the viewer) and whether the point
// lands on screen.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	rot := c.Rotate(p)
	if rot.Z >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - rot.Z)
	scale := c.Scale(sw, sh) * persp
	sx := int(math.Round(rot.X*scale)) + sw/2
	sy := int(math.Round(-rot.Y*scale)) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// RenderDots plots every point as a disc of world radius dotSize and
// returns how many were drawn. With cullBack set, points on the far
// hemisphere are skipped.
func RenderDots(cv *Canvas, pts []r3.Vec, cam *Camera, dotSize float64, cullBack bool) int {
	if cv == nil || cam == nil {
		return 0
	}
	sw, sh := cv.SubSize()
	r := int(math.Round(dotSize * cam.Scale(sw, sh)))
	drawn := 0
	for _, p := range pts {
		x, y, depth, ok := cam.Project(p, sw, sh)
		if !ok || (cullBack && depth < 0) {
			continue
		}
		cv.Disc(x, y, r)
		drawn++
	}
	return drawn
}

// DrawMarker draws a small cross over p when it faces the viewer.
func DrawMarker(cv *Canvas, p r3.Vec, cam *Camera, size int) bool {
	sw, sh := cv.SubSize()
	x, y, depth, ok := cam.Project(p, sw, sh)
	if !ok || depth < 0 {
		return false
	}
	cv.DrawLine(x-size, y, x+size, y)
	cv.DrawLine(x, y-size, x, y+size)
	return true
}
