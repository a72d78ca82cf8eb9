// Package preprocess prepares camera and upload images for the two OCR passes:
// the original capture and a Gaussian adaptive-threshold rendition of it.
package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// DefaultMaxDimension caps the longest side of an image before OCR.
	DefaultMaxDimension = 1600

	// DefaultBlockSize is the neighbourhood size of the adaptive threshold.
	DefaultBlockSize = 11

	// DefaultC is subtracted from the weighted neighbourhood mean.
	DefaultC = 2
)

var (
	// ErrInvalidImage is returned when the bytes cannot be decoded as an image.
	ErrInvalidImage = errors.New("invalid or unsupported image")

	// ErrInvalidBlockSize is returned for even or too small threshold windows.
	ErrInvalidBlockSize = errors.New("block size must be an odd number >= 3")
)

// Options controls how an image is prepared.
type Options struct {
	MaxDimension int
	BlockSize    int
	C            float64
}

// DefaultOptions returns the settings used by the reader and the HTTP server.
func DefaultOptions() Options {
	return Options{
		MaxDimension: DefaultMaxDimension,
		BlockSize:    DefaultBlockSize,
		C:            DefaultC,
	}
}

// Decode reads an image, applies its EXIF orientation and downscales it so
// that neither side exceeds maxDimension. A non-positive maxDimension keeps
// the original size.
func Decode(data []byte, maxDimension int) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if maxDimension > 0 && (b.Dx() > maxDimension || b.Dy() > maxDimension) {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}
	return img, nil
}

// Grayscale converts img to an 8-bit gray image anchored at the origin.
func Grayscale(img image.Image) *image.Gray {
	nrgba := imaging.Grayscale(img)
	return grayFromNRGBA(nrgba)
}

// AdaptiveThreshold binarizes img against a Gaussian-weighted local mean.
// A pixel becomes white when it is brighter than the mean minus c, black
// otherwise. The Gaussian sigma is derived from blockSize the same way
// OpenCV does for ADAPTIVE_THRESH_GAUSSIAN_C.
func AdaptiveThreshold(img image.Image, blockSize int, c float64) (*image.Gray, error) {
	if blockSize < 3 || blockSize%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBlockSize, blockSize)
	}

	gray := imaging.Grayscale(img)
	mean := imaging.Blur(gray, gaussianSigma(blockSize))

	out := image.NewGray(gray.Bounds())
	for i := range out.Pix {
		// gray and mean are NRGBA with equal channels; R carries the luma
		v := float64(gray.Pix[i*4])
		m := float64(mean.Pix[i*4])
		if v > m-c {
			out.Pix[i] = 255
		}
	}
	return out, nil
}

// gaussianSigma mirrors OpenCV's getGaussianKernel default for a given size.
func gaussianSigma(blockSize int) float64 {
	return 0.3*((float64(blockSize)-1)*0.5-1) + 0.8
}

func grayFromNRGBA(src *image.NRGBA) *image.Gray {
	out := image.NewGray(src.Bounds())
	for i := range out.Pix {
		out.Pix[i] = src.Pix[i*4]
	}
	return out
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Prepare decodes data once and returns PNG bytes for both OCR passes: the
// oriented, downscaled original and its adaptive-threshold rendition.
func Prepare(data []byte, opts Options) (original, thresholded []byte, err error) {
	img, err := Decode(data, opts.MaxDimension)
	if err != nil {
		return nil, nil, err
	}

	binary, err := AdaptiveThreshold(img, opts.BlockSize, opts.C)
	if err != nil {
		return nil, nil, err
	}

	if original, err = EncodePNG(img); err != nil {
		return nil, nil, err
	}
	if thresholded, err = EncodePNG(binary); err != nil {
		return nil, nil, err
	}
	return original, thresholded, nil
}
