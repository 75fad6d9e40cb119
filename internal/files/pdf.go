package files

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"  // needed to decode gif
	_ "image/jpeg" // needed to decode jpeg
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dolabella/internal/logger"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp" // needed to decode webp
)

// PDF writes the document in process with fpdf, one page per image sized to the image.
type PDF struct {
	log logger.Logger
}

func NewPDF(log logger.Logger) *PDF {
	return &PDF{log: log}
}

func (p *PDF) Assemble(ctx context.Context, inputs []string, destination string) (string, error) {
	if len(inputs) == 0 {
		return "", errors.New("no pages to assemble")
	}

	if err := prepareDestination(destination, p.log); err != nil {
		return "", err
	}

	pdf := fpdf.New(fpdf.OrientationPortrait, fpdf.UnitPoint, "", "")

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		options, r, err := imageReader(input)
		if err != nil {
			return "", errors.Wrapf(err, "could not read page %s", filepath.Base(input))
		}

		info := pdf.RegisterImageOptionsReader(input, options, r)
		if pdf.Err() {
			return "", errors.Wrapf(pdf.Error(), "could not register page %s", filepath.Base(input))
		}

		imgWidth, imgHeight := info.Extent()

		pdf.AddPageFormat(fpdf.OrientationPortrait, fpdf.SizeType{Wd: imgWidth, Ht: imgHeight})
		pdf.ImageOptions(input, 0, 0, imgWidth, imgHeight, false, options, 0, "")
	}

	if err := pdf.OutputFileAndClose(destination); err != nil {
		return "", err
	}

	return destination, nil
}

// imageReader returns the page in a format fpdf understands. jpeg, png and
// gif are passed through, anything else is decoded and re-encoded as png.
func imageReader(path string) (fpdf.ImageOptions, io.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fpdf.ImageOptions{}, nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(data), nil
	case ".png":
		return fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data), nil
	case ".gif":
		return fpdf.ImageOptions{ImageType: "GIF"}, bytes.NewReader(data), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fpdf.ImageOptions{}, nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fpdf.ImageOptions{}, nil, err
	}

	return fpdf.ImageOptions{ImageType: "PNG"}, &buf, nil
}
