package files

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"dolabella/internal/domain"
	"dolabella/internal/logger"

	"github.com/pkg/errors"
)

const (
	ConverterMagick  = "magick"
	ConverterBuiltin = "builtin"
)

// Assembler turns an ordered list of page images into one document at destination.
type Assembler interface {
	Assemble(ctx context.Context, inputs []string, destination string) (string, error)
}

func IsValidLocation(location string) error {
	if _, err := os.Stat(location); err != nil {
		return err
	}

	return nil
}

// New picks the assembler configured in cfg.
func New(cfg *domain.Config, log logger.Logger) Assembler {
	builtin := NewPDF(log)

	if cfg.Converter == ConverterBuiltin {
		return builtin
	}

	magick := NewMagick(cfg.ConverterPath, time.Duration(cfg.ConvertTimeout)*time.Minute, log)
	if cfg.ConverterFallback {
		return &Fallback{Primary: magick, Secondary: builtin, log: log}
	}

	return magick
}

// Fallback uses Secondary only when Primary cannot find its tool.
type Fallback struct {
	Primary   Assembler
	Secondary Assembler
	log       logger.Logger
}

func (f *Fallback) Assemble(ctx context.Context, inputs []string, destination string) (string, error) {
	out, err := f.Primary.Assemble(ctx, inputs, destination)
	if !errors.Is(err, domain.ErrToolNotFound) {
		return out, err
	}

	if f.log != nil {
		f.log.Warn().Err(err).Msg("falling back to builtin pdf writer")
	}

	return f.Secondary.Assemble(ctx, inputs, destination)
}

// prepareDestination creates the parent directories of destination and
// removes a previous output, last write wins.
func prepareDestination(destination string, log logger.Logger) error {
	if err := os.MkdirAll(filepath.Dir(destination), os.ModePerm); err != nil {
		return err
	}

	if _, err := os.Stat(destination); err == nil {
		log.Warn().Str("path", destination).Msg("output already existed, deleting")

		if err := os.Remove(destination); err != nil {
			return errors.Wrapf(err, "could not remove existing %s", destination)
		}
	}

	return nil
}
