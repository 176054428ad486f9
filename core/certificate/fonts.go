package certificate

import (
	"io/ioutil"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Preferred bundled fonts, looked up in the configured fonts dir.
const (
	preferredRegular = "Poppins-Regular.ttf"
	preferredBold    = "Poppins-Bold.ttf"
)

// Common system fonts tried in order when the bundled fonts are absent.
var (
	systemRegularFonts = []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		"/usr/share/fonts/truetype/freefont/FreeSans.ttf",
		"/Library/Fonts/Arial.ttf",
		"C:\\Windows\\Fonts\\arial.ttf",
	}
	systemBoldFonts = []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
		"/usr/share/fonts/truetype/freefont/FreeSansBold.ttf",
		"/Library/Fonts/Arial Bold.ttf",
		"C:\\Windows\\Fonts\\arialbd.ttf",
	}
)

// loadFonts resolves the regular and bold fonts once per Renderer.
// A nil font means no loadable candidate was found; face() then degrades
// to the built-in bitmap font so rendering never fails on missing assets.
func (r *Renderer) loadFonts() {
	r.regular = loadFirstFont(append(
		[]string{filepath.Join(r.fontsDir, preferredRegular)}, systemRegularFonts...))
	r.bold = loadFirstFont(append(
		[]string{filepath.Join(r.fontsDir, preferredBold)}, systemBoldFonts...))
}

func loadFirstFont(paths []string) *opentype.Font {
	for _, path := range paths {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			continue
		}
		fnt, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		return fnt
	}
	return nil
}

// face returns a font face for the given pixel size, falling back across
// weights and finally to the built-in font. It never fails.
func (r *Renderer) face(size float64, bold bool) font.Face {
	r.fontsOnce.Do(r.loadFonts)

	fnt := r.regular
	if bold {
		fnt = r.bold
	}
	if fnt == nil { // try the other weight before giving up
		if bold {
			fnt = r.regular
		} else {
			fnt = r.bold
		}
	}
	if fnt == nil {
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}
