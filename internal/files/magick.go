package files

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"dolabella/internal/domain"
	"dolabella/internal/logger"

	"github.com/pkg/errors"
)

// Magick assembles pages by running ImageMagick as a subprocess:
//
//	magick page1 page2 ... output.pdf
type Magick struct {
	Binary  string
	Timeout time.Duration
	log     logger.Logger
}

func NewMagick(binary string, timeout time.Duration, log logger.Logger) *Magick {
	if binary == "" {
		binary = ConverterMagick
	}

	return &Magick{
		Binary:  binary,
		Timeout: timeout,
		log:     log,
	}
}

func (m *Magick) Assemble(ctx context.Context, inputs []string, destination string) (string, error) {
	bin, err := exec.LookPath(m.Binary)
	if err != nil {
		return "", errors.Wrapf(domain.ErrToolNotFound, "%s: be sure to have ImageMagick installed", m.Binary)
	}

	if len(inputs) == 0 {
		return "", errors.New("no pages to assemble")
	}

	if err := prepareDestination(destination, m.log); err != nil {
		return "", err
	}

	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(inputs)+1)
	args = append(args, inputs...)
	args = append(args, destination)

	m.log.Debug().Str("bin", bin).Int("pages", len(inputs)).Str("output", destination).Msg("running converter")

	out, err := exec.CommandContext(ctx, bin, args...).CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &domain.ConvertError{
				Tool:     m.Binary,
				ExitCode: exitErr.ExitCode(),
				Output:   strings.TrimSpace(string(out)),
			}
		}
		return "", errors.Wrapf(err, "could not run %s", m.Binary)
	}

	if _, err := os.Stat(destination); err != nil {
		return "", errors.Wrapf(err, "%s did not produce %s", m.Binary, destination)
	}

	return destination, nil
}
