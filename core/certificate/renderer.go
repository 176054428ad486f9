package certificate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gurujilabs/guruji/core"
)

const (
	// Target canvas resolution (4K). Templates narrower than BaseWidth are
	// upscaled to it; wider ones are composited at their native size.
	BaseWidth  = 3840
	BaseHeight = 2160

	// DefaultTemplate is the template file used when none is requested.
	DefaultTemplate = "template.png"

	minFontSize        = 12.0
	underlineThickness = 2
	sharpenSigma       = 0.5
)

// Color scheme - consistent primary color
var (
	primaryColor   = color.NRGBA{R: 0xe9, G: 0x45, B: 0x60, A: 0xff}
	secondaryColor = color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	labelColor     = color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
)

// Renderer composites certificate fields onto a background template and
// encodes the result as PNG or a single-page PDF.
//
// Rendering is a pure function of the certificate plus the template and font
// files on disk: a Renderer holds no per-call state beyond the lazily loaded,
// read-only fonts, so a single instance is safe for concurrent use.
type Renderer struct {
	templateDir string
	fontsDir    string

	fontsOnce sync.Once
	regular   *opentype.Font
	bold      *opentype.Font
}

func NewRenderer(conf core.CertificateConfig) *Renderer {
	return &Renderer{
		templateDir: conf.TemplateDir,
		fontsDir:    conf.FontsDir,
	}
}

// RenderImage draws the certificate over the named template (or the default
// one) and returns the encoded PNG. Missing templates and fonts degrade to
// built-in fallbacks; a certificate is always producible.
func (r *Renderer) RenderImage(cert Certificate, templateName ...string) (*bytes.Buffer, error) {
	name := DefaultTemplate
	if len(templateName) > 0 && templateName[0] != "" {
		name = templateName[0]
	}
	img := r.loadTemplate(name)

	b := img.Bounds()
	width := b.Dx()
	w, h := float64(width), float64(b.Dy())

	// Everything below is positioned as fractions of the canvas so the same
	// layout holds for the synthetic template and user-supplied ones of any
	// resolution. Font sizes scale with canvas height.
	titleFace := r.face(h*0.04, true)
	subtitleFace := r.face(h*0.025, false)
	nameFace := r.fitFace(cert.StudentName, h*0.07, true, int(w*0.88))
	courseFace := r.fitFace(cert.CourseTitle, h*0.05, true, int(w*0.88))
	attendanceFace := r.face(h*0.022, false)

	cx := width / 2
	drawCentered(img, "CERTIFICATE OF COMPLETION", cx, int(h*0.20), titleFace, primaryColor)
	drawCentered(img, "This is to certify that", cx, int(h*0.30), subtitleFace, secondaryColor)
	drawCentered(img, cert.StudentName, cx, int(h*0.39), nameFace, primaryColor)
	drawCentered(img, "has successfully completed the course", cx, int(h*0.48), subtitleFace, secondaryColor)
	drawCentered(img, cert.CourseTitle, cx, int(h*0.56), courseFace, primaryColor)
	drawCentered(img, attendanceLine(cert), cx, int(h*0.65), attendanceFace, secondaryColor)

	// Bottom row: instructor, issue date and certificate id share a baseline,
	// each underlined and captioned.
	bottomY := int(h * 0.78)
	maxFieldW := int(w * 0.28)
	r.drawUnderlined(img, cert.InstructorName, "Course Instructor", int(w*0.18), bottomY, h, maxFieldW)
	r.drawUnderlined(img, cert.IssuedAt.Format("January 02, 2006"), "Date Issued", cx, bottomY, h, maxFieldW)
	r.drawUnderlined(img, cert.Code, "Certificate ID", int(w*0.82), bottomY, h, maxFieldW)

	out := imaging.Sharpen(img, sharpenSigma)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, out, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "encoding png")
	}
	return buf, nil
}

// loadTemplate opens the named template, upscaling it to BaseWidth when it is
// narrower. Any load failure falls back to the synthetic default template.
func (r *Renderer) loadTemplate(name string) *image.NRGBA {
	src, err := imaging.Open(filepath.Join(r.templateDir, name))
	if err != nil {
		return r.defaultTemplate()
	}
	img := imaging.Clone(src)
	if img.Bounds().Dx() < BaseWidth {
		img = imaging.Resize(img, BaseWidth, 0, imaging.Lanczos)
	}
	return img
}

// drawUnderlined draws text centered at (cx, baseY) with an underline rule
// sized to the text width and a caption label beneath it.
func (r *Renderer) drawUnderlined(img *image.NRGBA, text, label string, cx, baseY int, h float64, maxW int) {
	infoFace := r.fitFace(text, h*0.024, true, maxW)
	labelFace := r.face(h*0.018, false)

	drawCentered(img, text, cx, baseY, infoFace, primaryColor)

	tw, _ := measureString(infoFace, text)
	lineY := baseY + int(h*0.02)
	fillRect(img, image.Rect(cx-tw/2, lineY, cx+tw/2, lineY+underlineThickness), labelColor)

	drawCentered(img, label, cx, baseY+int(h*0.04), labelFace, labelColor)
}

// fitFace returns a face at the requested size, shrunk until the text fits
// maxW. Keeps overlong names and titles from overlapping neighboring fields.
func (r *Renderer) fitFace(text string, size float64, bold bool, maxW int) font.Face {
	face := r.face(size, bold)
	for size > minFontSize {
		if tw, _ := measureString(face, text); tw <= maxW {
			break
		}
		size *= 0.95
		face = r.face(size, bold)
	}
	return face
}

func attendanceLine(cert Certificate) string {
	return fmt.Sprintf("Attendance: %d/%d classes (%.1f%%)",
		cert.AttendanceCount, cert.TotalClasses, cert.AttendancePercentage)
}

// drawCentered draws text centered on (x, y), computed from the measured
// bounding box so proportional fonts center correctly.
func drawCentered(dst draw.Image, text string, x, y int, face font.Face, col color.Color) {
	bounds, _ := font.BoundString(face, text)
	tw := (bounds.Max.X - bounds.Min.X).Ceil()
	th := (bounds.Max.Y - bounds.Min.Y).Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.P(
			x-tw/2-bounds.Min.X.Floor(),
			y-th/2-bounds.Min.Y.Floor(),
		),
	}
	d.DrawString(text)
}

func measureString(face font.Face, text string) (w, h int) {
	bounds, _ := font.BoundString(face, text)
	return (bounds.Max.X - bounds.Min.X).Ceil(), (bounds.Max.Y - bounds.Min.Y).Ceil()
}
