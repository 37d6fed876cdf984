package raster

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/tiff"
)

// FromImage flattens img to a single grey channel.
func FromImage(img image.Image) (Raster, error) {
	bounds := img.Bounds()
	shape := Shape{Height: bounds.Dy(), Width: bounds.Dx()}
	return Generate(shape, func(pix []uint8) error {
		if gray, ok := img.(*image.Gray); ok {
			for y := 0; y < shape.Height; y++ {
				start := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
				copy(pix[y*shape.Width:(y+1)*shape.Width], gray.Pix[start:start+shape.Width])
			}
			return nil
		}
		for y := 0; y < shape.Height; y++ {
			for x := 0; x < shape.Width; x++ {
				c := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				pix[y*shape.Width+x] = c.Y
			}
		}
		return nil
	})
}

// Image returns r as a grey image anchored at the origin.
func (r Raster) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, r.shape.Width, r.shape.Height))
	copy(img.Pix, r.pix)
	return img
}

// Decode reads any registered image format from rd and flattens it to grey.
func Decode(rd io.Reader) (Raster, error) {
	img, _, err := image.Decode(rd)
	if err != nil {
		return Raster{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img)
}

// Encode writes r to w as a PNG image.
func Encode(w io.Writer, r Raster) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := png.Encode(w, r.Image()); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// Load reads the image file at path as a grey Raster.
func Load(path string) (Raster, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Raster{}, fmt.Errorf("failed to open image '%s': %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	r, err := Decode(f)
	if err != nil {
		return Raster{}, fmt.Errorf("failed to load image '%s': %w", path, err)
	}
	return r, nil
}

// Save writes r to path as a PNG image, replacing any existing file.
func Save(r Raster, path string) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create image '%s': %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close image '%s': %w", path, cerr)
		}
	}()
	return Encode(f, r)
}
