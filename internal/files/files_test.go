package files

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"dolabella/internal/domain"
	"dolabella/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool writes an executable shell script named name into a fresh
// directory and puts that directory first on PATH.
func fakeTool(t *testing.T, name, script string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script tools are not supported on windows")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// the fake converter writes its input arguments into the output file
const echoScript = `for last; do :; done
for arg; do
	[ "$arg" = "$last" ] || echo "$arg" >> "$last"
done
`

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	if strings.HasSuffix(path, ".jpg") {
		require.NoError(t, jpeg.Encode(f, img, nil))
		return
	}
	require.NoError(t, png.Encode(f, img))
}

func TestMagick_Assemble(t *testing.T) {
	fakeTool(t, "magick", echoScript)

	inputs := []string{"/tmp/a-1-x.jpg", "/tmp/a-2-y.jpg", "/tmp/a-10-z.jpg"}
	destination := filepath.Join(t.TempDir(), "Title", "1", "3.pdf")

	out, err := NewMagick("magick", 0, logger.Nop()).Assemble(context.Background(), inputs, destination)
	require.NoError(t, err)
	assert.Equal(t, destination, out)

	content, err := os.ReadFile(destination)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(inputs, "\n")+"\n", string(content))
}

func TestMagick_OverwritesExistingOutput(t *testing.T) {
	fakeTool(t, "magick", echoScript)

	destination := filepath.Join(t.TempDir(), "1.pdf")
	require.NoError(t, os.WriteFile(destination, []byte("stale\n"), 0o644))

	_, err := NewMagick("magick", 0, logger.Nop()).Assemble(context.Background(), []string{"page"}, destination)
	require.NoError(t, err)

	content, err := os.ReadFile(destination)
	require.NoError(t, err)
	assert.Equal(t, "page\n", string(content))
}

func TestMagick_ToolNotFound(t *testing.T) {
	_, err := NewMagick("dolabella-no-such-converter", 0, logger.Nop()).
		Assemble(context.Background(), []string{"page"}, filepath.Join(t.TempDir(), "out.pdf"))

	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestMagick_NonZeroExit(t *testing.T) {
	fakeTool(t, "magick", "echo 'no decode delegate' >&2\nexit 3\n")

	_, err := NewMagick("magick", 0, logger.Nop()).
		Assemble(context.Background(), []string{"page"}, filepath.Join(t.TempDir(), "out.pdf"))

	var convertErr *domain.ConvertError
	require.ErrorAs(t, err, &convertErr)
	assert.Equal(t, 3, convertErr.ExitCode)
	assert.Contains(t, convertErr.Output, "no decode delegate")
}

func TestPDF_Assemble(t *testing.T) {
	dir := t.TempDir()

	first := filepath.Join(dir, "1-1-a.png")
	second := filepath.Join(dir, "1-2-b.jpg")
	writeImage(t, first, 40, 60)
	writeImage(t, second, 80, 50)

	destination := filepath.Join(dir, "out", "chapter.pdf")

	out, err := NewPDF(logger.Nop()).Assemble(context.Background(), []string{first, second}, destination)
	require.NoError(t, err)
	assert.Equal(t, destination, out)

	content, err := os.ReadFile(destination)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "%PDF"))
}

func TestPDF_NoPages(t *testing.T) {
	_, err := NewPDF(logger.Nop()).Assemble(context.Background(), nil, filepath.Join(t.TempDir(), "x.pdf"))
	assert.Error(t, err)
}

func TestFallback_UsesBuiltinWhenToolMissing(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "1-1-a.png")
	writeImage(t, page, 10, 10)

	cfg := &domain.Config{
		Converter:         ConverterMagick,
		ConverterPath:     "dolabella-no-such-converter",
		ConverterFallback: true,
	}

	out, err := New(cfg, logger.Nop()).Assemble(context.Background(), []string{page}, filepath.Join(dir, "out.pdf"))
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &PDF{}, New(&domain.Config{Converter: ConverterBuiltin}, logger.Nop()))
	assert.IsType(t, &Magick{}, New(&domain.Config{Converter: ConverterMagick}, logger.Nop()))
	assert.IsType(t, &Fallback{}, New(&domain.Config{ConverterFallback: true}, logger.Nop()))
}

func TestIsValidLocation(t *testing.T) {
	assert.NoError(t, IsValidLocation(t.TempDir()))
	assert.Error(t, IsValidLocation(filepath.Join(t.TempDir(), "missing")))
}
