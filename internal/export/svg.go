package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/mdsim/internal/dynamo"
)

// ParticlesToSVG draws the x/y projection of a particle set inside its
// domain rectangle. Circles have diameter sigma and are shaded by speed.
func ParticlesToSVG(ps []dynamo.Particle, origin, domain dynamo.Vec3, width int) string {
	if !(domain[0] > 0) || !(domain[1] > 0) || width <= 0 {
		return ""
	}

	scale := float64(width) / domain[0]
	height := int(math.Ceil(domain[1] * scale))

	maxSpeed := 0.0
	for _, p := range ps {
		maxSpeed = math.Max(maxSpeed, p.V.Norm())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<rect x="0.5" y="0.5" width="%d" height="%d" fill="none" stroke="#444444"/>
<g>
`, width, height, width, height, width-1, height-1))

	for _, p := range ps {
		x := (p.X[0] - origin[0]) * scale
		y := float64(height) - (p.X[1]-origin[1])*scale
		r := math.Max(0.5*p.Sigma*scale, 1)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>
`, x, y, r, speedColor(p.V.Norm(), maxSpeed, p.Immovable)))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// speedColor maps a speed onto a blue to red ramp. Immovable particles are
// grey.
func speedColor(speed, maxSpeed float64, immovable bool) string {
	if immovable {
		return "#888888"
	}
	f := 0.0
	if maxSpeed > 0 {
		f = speed / maxSpeed
	}
	r := int(40 + 215*f)
	b := int(255 - 215*f)
	return fmt.Sprintf("#%02x%02x%02x", r, 120, b)
}

type Point struct{ X, Y float64 }

// SeriesToSVG draws a polyline of a time series, such as the particle count
// of a run.
func SeriesToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
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
