package certificate

import (
	"bytes"
	"image/png"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
)

// pdfPageHeight is the fixed reference page height in points (A4 portrait
// height); the page width is scaled to the rendered image's aspect ratio so
// the raster fills the page edge to edge.
const pdfPageHeight = 841.89

func pdfPageSize(imgWidth, imgHeight int) (w, h float64) {
	aspect := float64(imgWidth) / float64(imgHeight)
	return pdfPageHeight * aspect, pdfPageHeight
}

// RenderPDF renders the certificate image and wraps it as the sole full-page
// image of a single-page PDF. The document creation date is pinned to the
// certificate issue date so output is reproducible.
func (r *Renderer) RenderPDF(cert Certificate, templateName ...string) (*bytes.Buffer, error) {
	imgBuf, err := r.RenderImage(cert, templateName...)
	if err != nil {
		return nil, err
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(imgBuf.Bytes()))
	if err != nil {
		return nil, errors.Wrap(err, "reading png dimensions")
	}
	pageW, pageH := pdfPageSize(cfg.Width, cfg.Height)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetCreationDate(cert.IssuedAt)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("certificate", opts, bytes.NewReader(imgBuf.Bytes()))
	pdf.ImageOptions("certificate", 0, 0, pageW, pageH, false, opts, 0, "")

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return buf, nil
}
