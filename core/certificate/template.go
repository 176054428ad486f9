package certificate

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// defaultTemplate synthesizes the built-in certificate background: a dark
// vertical gradient framed by an ornamental border with corner flourishes and
// the wordmark at the top. Used whenever no template file can be loaded.
func (r *Renderer) defaultTemplate() *image.NRGBA {
	width, height := BaseWidth, BaseHeight
	img := imaging.New(width, height, color.NRGBA{R: 26, G: 26, B: 46, A: 255})

	// vertical gradient, row by row
	for y := 0; y < height; y++ {
		progress := float64(y) / float64(height)
		fillRect(img, image.Rect(0, y, width, y+1), color.NRGBA{
			R: uint8(20 + (12-20)*progress),
			G: uint8(20 + (28-20)*progress),
			B: uint8(40 + (55-40)*progress),
			A: 255,
		})
	}

	// outer border frame
	borderColor := color.NRGBA{R: 233, G: 69, B: 96, A: 255}
	strokeRect(img, img.Bounds(), 16, borderColor)

	// inner decorative border
	const innerMargin = 60
	inner := image.Rect(innerMargin, innerMargin, width-innerMargin, height-innerMargin)
	strokeRect(img, inner, 3, color.NRGBA{R: 233, G: 69, B: 96, A: 120})

	// corner flourishes
	const (
		cornerSize  = 120
		cornerWidth = 5
	)
	cornerColor := color.NRGBA{R: 233, G: 69, B: 96, A: 200}
	for _, c := range []struct{ x, y, dx, dy int }{
		{inner.Min.X, inner.Min.Y, 1, 1},   // top-left
		{inner.Max.X, inner.Min.Y, -1, 1},  // top-right
		{inner.Min.X, inner.Max.Y, 1, -1},  // bottom-left
		{inner.Max.X, inner.Max.Y, -1, -1}, // bottom-right
	} {
		hLine(img, c.x, c.x+c.dx*cornerSize, c.y, cornerWidth, cornerColor)
		vLine(img, c.x, c.y, c.y+c.dy*cornerSize, cornerWidth, cornerColor)
	}

	// wordmark with a rule and dots beneath it
	drawCentered(img, "Guruji", width/2, 140, r.face(96, true), primaryColor)

	const lineY, lineHalfWidth = 220, 400
	ruleColor := color.NRGBA{R: 233, G: 69, B: 96, A: 150}
	hLine(img, width/2-lineHalfWidth, width/2+lineHalfWidth, lineY, 4, ruleColor)
	for _, offset := range []int{-300, 300} {
		fillCircle(img, width/2+offset, lineY, 8, ruleColor)
	}

	return img
}

// Drawing primitives

func fillRect(img *image.NRGBA, rect image.Rectangle, col color.Color) {
	draw.Draw(img, rect.Canon(), image.NewUniform(col), image.Point{}, draw.Over)
}

// strokeRect draws the outline of rect with the given stroke width, inset
// into the rectangle.
func strokeRect(img *image.NRGBA, rect image.Rectangle, width int, col color.Color) {
	fillRect(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+width), col)
	fillRect(img, image.Rect(rect.Min.X, rect.Max.Y-width, rect.Max.X, rect.Max.Y), col)
	fillRect(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+width, rect.Max.Y), col)
	fillRect(img, image.Rect(rect.Max.X-width, rect.Min.Y, rect.Max.X, rect.Max.Y), col)
}

// hLine draws a horizontal line from x0 to x1 centered on y.
func hLine(img *image.NRGBA, x0, x1, y, width int, col color.Color) {
	fillRect(img, image.Rect(x0, y-width/2, x1, y-width/2+width), col)
}

// vLine draws a vertical line from y0 to y1 centered on x.
func vLine(img *image.NRGBA, x, y0, y1, width int, col color.Color) {
	fillRect(img, image.Rect(x-width/2, y0, x-width/2+width, y1), col)
}

func fillCircle(img *image.NRGBA, cx, cy, radius int, col color.Color) {
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				img.Set(cx+dx, cy+dy, col)
			}
		}
	}
}
