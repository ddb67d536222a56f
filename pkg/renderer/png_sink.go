package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
)

// pngSink buffers rows into an 8-bit image and encodes it on Close
type pngSink struct {
	path  string
	img   *image.NRGBA
	gamma float64
	alpha bool
}

// OpenPNGSink creates a PNG row sink. Gamma defaults to 2.2 for this byte
// format.
func OpenPNGSink(path string, width, height int, params SinkParams) (RowSink, error) {
	gamma := params.Gamma
	if gamma == 0 {
		gamma = 2.2
	}
	return &pngSink{
		path:  path,
		img:   image.NewNRGBA(image.Rect(0, 0, width, height)),
		gamma: gamma,
		alpha: params.Alpha,
	}, nil
}

// WriteRow implements RowSink
func (s *pngSink) WriteRow(row Row) error {
	for i, t := range row.Pixels {
		corrected := t.Color.GammaCorrect(s.gamma)
		alpha := 1.0
		if s.alpha {
			alpha = t.Alpha
		}
		s.img.SetNRGBA(row.X0+i, row.Y, color.NRGBA{
			R: toByte(corrected.R),
			G: toByte(corrected.G),
			B: toByte(corrected.B),
			A: toByte(alpha),
		})
	}
	return nil
}

// Close implements RowSink: encodes and writes the file
func (s *pngSink) Close() error {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer file.Close()
	if err := png.Encode(file, s.img); err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	return nil
}

// jpegSink buffers rows and encodes a JPEG on Close; JPEG has no alpha
type jpegSink struct {
	path    string
	img     *image.NRGBA
	gamma   float64
	quality int
}

// OpenJPEGSink creates a JPEG row sink
func OpenJPEGSink(path string, width, height int, params SinkParams) (RowSink, error) {
	gamma := params.Gamma
	if gamma == 0 {
		gamma = 2.2
	}
	quality := params.Quality
	if quality == 0 {
		quality = 90
	}
	return &jpegSink{
		path:    path,
		img:     image.NewNRGBA(image.Rect(0, 0, width, height)),
		gamma:   gamma,
		quality: quality,
	}, nil
}

// WriteRow implements RowSink
func (s *jpegSink) WriteRow(row Row) error {
	for i, t := range row.Pixels {
		corrected := t.Color.GammaCorrect(s.gamma)
		s.img.SetNRGBA(row.X0+i, row.Y, color.NRGBA{
			R: toByte(corrected.R),
			G: toByte(corrected.G),
			B: toByte(corrected.B),
			A: 255,
		})
	}
	return nil
}

// Close implements RowSink
func (s *jpegSink) Close() error {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer file.Close()
	if err := jpeg.Encode(file, s.img, &jpeg.Options{Quality: s.quality}); err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	return nil
}

func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
