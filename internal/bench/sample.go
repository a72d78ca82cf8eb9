// Package bench compares OCR and speech engines on fixed samples.
//
// The OCR harness reads a rendered multilingual test card with every
// configured engine and checks what kinds of content each one recovered.
// The speech harness synthesizes a short lyric with every engine and records
// latency and clip size.
package bench

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	SampleWidth  = 900
	SampleHeight = 700

	sampleFontSize   = 20
	sampleLineHeight = 30
	sampleMargin     = 30
)

// FrenchSample and EnglishSample are the blocks drawn on the test card.
const (
	FrenchSample = `Bonjour! Ceci est un test OCR.
Les chiffres: 123456789 et 0
Caractères spéciaux: @#$%&*()
Email: test@example.com
Prix: 99.99€ ou $49.50`

	EnglishSample = `Hello! This is an OCR test.
Numbers: 123456789 and 0
Special chars: @#$%&*()
Email: test@example.com
Price: €99.99 or $49.50`
)

var headingColor = color.RGBA{B: 255, A: 255}

// RenderSample draws the multilingual test card: a French and an English
// block, each under a blue heading, in black Go Regular on white.
func RenderSample() (image.Image, error) {
	face, err := sampleFace()
	if err != nil {
		return nil, err
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, SampleWidth, SampleHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	y := 40
	drawLine := func(text string, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(sampleMargin, y+sampleFontSize),
		}
		d.DrawString(text)
		y += sampleLineHeight
	}

	for i, block := range []struct {
		heading string
		text    string
	}{
		{"=== FRANÇAIS ===", FrenchSample},
		{"=== ENGLISH ===", EnglishSample},
	} {
		if i > 0 {
			y += 30
		}
		drawLine(block.heading, headingColor)
		y += 10
		for _, line := range strings.Split(block.text, "\n") {
			drawLine(line, color.Black)
		}
	}

	return img, nil
}

func sampleFace() (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sample font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sampleFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sample font face: %w", err)
	}
	return face, nil
}
