// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes images attached in admin forms before they
// are uploaded to the backend: EXIF orientation is applied, metadata is
// dropped and oversized pictures are scaled down.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/util"
)

// Processor defaults.
const (
	DefaultMaxWidth  = 1600
	DefaultMaxHeight = 1600
	DefaultQuality   = 85
)

var (
	// ErrUnsupportedFormat is returned for anything that is not JPEG, PNG, GIF or WebP.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned when the upload exceeds the byte limit.
	ErrTooLarge = errors.New("image exceeds the upload size limit")
)

// format is an accepted upload type and the encoding it is re-sent in.
type format struct {
	out  imaging.Format
	mime string
	ext  string
}

// formats is keyed by the sniffed content type. TIFF is absent on purpose:
// its decoder in disintegration/imaging is subject to CVE-2023-36308.
var formats = map[string]format{
	"image/jpeg": {imaging.JPEG, "image/jpeg", ".jpg"},
	"image/png":  {imaging.PNG, "image/png", ".png"},
	"image/gif":  {imaging.GIF, "image/gif", ".gif"},
	// No pure Go WebP encoder exists; WebP is re-encoded as JPEG.
	"image/webp": {imaging.JPEG, "image/jpeg", ".jpg"},
}

// Result describes a normalized image.
type Result struct {
	Width    int
	Height   int
	MimeType string
	Size     int64
	Resized  bool
}

// Processor normalizes uploaded images.
type Processor struct {
	maxWidth  int
	maxHeight int
	quality   int
	maxBytes  int64
}

// NewProcessor creates a processor that keeps images within maxWidth x maxHeight
// and rejects inputs larger than maxBytes. Zero values use the defaults; a
// zero maxBytes disables the limit.
func NewProcessor(maxWidth, maxHeight, quality int, maxBytes int64) *Processor {
	p := &Processor{maxWidth: maxWidth, maxHeight: maxHeight, quality: quality, maxBytes: maxBytes}
	if p.maxWidth <= 0 {
		p.maxWidth = DefaultMaxWidth
	}
	if p.maxHeight <= 0 {
		p.maxHeight = DefaultMaxHeight
	}
	if p.quality <= 0 || p.quality > 100 {
		p.quality = DefaultQuality
	}
	return p
}

// Prepare reads an uploaded image and returns it as a multipart attachment
// for field, named after the original file.
func (p *Processor) Prepare(r io.Reader, field, filename string) (*remote.File, *Result, error) {
	data, err := p.read(r)
	if err != nil {
		return nil, nil, err
	}
	out, res, err := p.Normalize(data)
	if err != nil {
		return nil, nil, err
	}
	f := formats[res.MimeType]
	return &remote.File{
		Field:       field,
		Filename:    util.UploadName(filename, f.ext),
		ContentType: res.MimeType,
		Data:        out,
	}, res, nil
}

func (p *Processor) read(r io.Reader) ([]byte, error) {
	if p.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Normalize decodes data, applies EXIF orientation, fits the image within
// the configured bounds and re-encodes it without metadata.
func (p *Processor) Normalize(data []byte) ([]byte, *Result, error) {
	f, ok := formats[http.DetectContentType(data)]
	if !ok {
		return nil, nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("decoding image: %w", err)
	}
	img = orient(img, exifOrientation(data))

	b := img.Bounds()
	resized := b.Dx() > p.maxWidth || b.Dy() > p.maxHeight
	if resized {
		img = imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f.out, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, nil, fmt.Errorf("encoding image: %w", err)
	}

	b = img.Bounds()
	return buf.Bytes(), &Result{
		Width:    b.Dx(),
		Height:   b.Dy(),
		MimeType: f.mime,
		Size:     int64(buf.Len()),
		Resized:  resized,
	}, nil
}

// exifOrientation returns the EXIF orientation tag of data, 1 when absent.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return o
}

// orientations maps EXIF orientation values to the transform that displays
// the image upright.
var orientations = map[int]func(image.Image) *image.NRGBA{
	2: imaging.FlipH,
	3: imaging.Rotate180,
	4: imaging.FlipV,
	5: imaging.Transpose,
	6: imaging.Rotate270,
	7: imaging.Transverse,
	8: imaging.Rotate90,
}

func orient(img image.Image, orientation int) image.Image {
	if fix, ok := orientations[orientation]; ok {
		return fix(img)
	}
	return img
}
