package certificate

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurujilabs/guruji/core"
)

func testCert() Certificate {
	return Certificate{
		Code:                 "AB12-CD34-EF56",
		StudentName:          "Asha Gurung",
		CourseTitle:          "Intro to Numerical Linear Algebra",
		InstructorName:       "Dr. Rai",
		AttendanceCount:      9,
		TotalClasses:         10,
		AttendancePercentage: 90.0,
		IssuedAt:             time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
	}
}

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	dir := t.TempDir() // no templates, no bundled fonts
	return NewRenderer(core.CertificateConfig{TemplateDir: dir, FontsDir: dir})
}

func saveTemplate(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 30, G: 30, B: 50, A: 255})
	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		t.Fatalf("saveTemplate() failed: %v", err)
	}
}

func decodeSize(t *testing.T, buf *bytes.Buffer) (w, h int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decoding png: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestRenderImage_noTemplate(t *testing.T) {
	r := testRenderer(t)

	buf, err := r.RenderImage(testCert())
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	w, h := decodeSize(t, buf)
	assert.Equal(t, BaseWidth, w)
	assert.Equal(t, BaseHeight, h)
}

func TestRenderImage_deterministic(t *testing.T) {
	r := testRenderer(t)
	cert := testCert()

	buf1, err := r.RenderImage(cert)
	require.NoError(t, err)
	buf2, err := r.RenderImage(cert)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(buf1.Bytes(), buf2.Bytes()), "repeated renders differ")
}

func TestRenderImage_narrowTemplateUpscaled(t *testing.T) {
	r := testRenderer(t)
	saveTemplate(t, r.templateDir, "small.png", 960, 540)

	buf, err := r.RenderImage(testCert(), "small.png")
	require.NoError(t, err)

	w, _ := decodeSize(t, buf)
	assert.Equal(t, BaseWidth, w)
}

func TestRenderImage_wideTemplateKept(t *testing.T) {
	r := testRenderer(t)
	saveTemplate(t, r.templateDir, "wide.png", 4096, 2304)

	buf, err := r.RenderImage(testCert(), "wide.png")
	require.NoError(t, err)

	w, _ := decodeSize(t, buf)
	assert.Equal(t, 4096, w)
}

func TestRenderImage_missingTemplateFallsBack(t *testing.T) {
	r := testRenderer(t)

	buf, err := r.RenderImage(testCert(), "nope.png")
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestRenderImage_missingFontsStillRenders(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(core.CertificateConfig{
		TemplateDir: dir,
		FontsDir:    filepath.Join(dir, "no-such-dir"),
	})
	// skip the system font candidates so the built-in fallback engages
	r.fontsOnce.Do(func() {})

	buf, err := r.RenderImage(testCert())
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestRenderImage_overlongFieldsShrinkToFit(t *testing.T) {
	r := testRenderer(t)
	cert := testCert()
	cert.StudentName = "Prof. Maximiliano Alejandro de la Cruz y Fernandez-Villalobos the Third of His Name"
	cert.CourseTitle = "A Very Thorough and Unreasonably Long Course Title About Numerical Methods for Partial Differential Equations"

	buf, err := r.RenderImage(cert)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestAttendanceLine(t *testing.T) {
	line := attendanceLine(testCert())
	assert.Contains(t, line, "9/10 classes (90.0%)")
}

func TestRenderPDF(t *testing.T) {
	r := testRenderer(t)

	buf, err := r.RenderPDF(testCert())
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("/Count 1")), "expected exactly one page")
}

func TestPDFPageSizeMatchesImageAspect(t *testing.T) {
	w, h := pdfPageSize(BaseWidth, BaseHeight)
	assert.Equal(t, pdfPageHeight, h)
	assert.InDelta(t, float64(BaseWidth)/float64(BaseHeight), w/h, 1e-9)

	w, h = pdfPageSize(4096, 2304)
	assert.InDelta(t, float64(4096)/float64(2304), w/h, 1e-9)
}

func TestAttachmentFilename(t *testing.T) {
	cert := testCert()
	assert.Equal(t, "Certificate_Asha_Gurung_Intro_to_Numerical_Linear_Alge.pdf", cert.AttachmentFilename())

	cert.StudentName = "A/B\\C:D"
	cert.CourseTitle = "Go!"
	assert.Equal(t, "Certificate_ABCD_Go.pdf", cert.AttachmentFilename())
}

func TestGenerateCode(t *testing.T) {
	codeFmt := regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.Regexp(t, codeFmt, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}
