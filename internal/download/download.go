package download

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"dolabella/internal/domain"
	"dolabella/internal/files"
	"dolabella/internal/logger"
	"dolabella/internal/pagestore"
	"dolabella/internal/sanitize"
	"dolabella/internal/templater"
	"dolabella/internal/utils"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

const DefaultNamingTemplate = "{chapter}"

type Options struct {
	LibraryRoot    string
	TempRoot       string // empty uses the os temp dir
	NamingTemplate string
	PageWorkers    int
	Progress       io.Writer // nil disables progress bars
}

// Downloader drives a batch: pages of every selected chapter are fetched into
// a working directory, assembled into one document and the directory is removed.
type Downloader struct {
	catalog   domain.Catalog
	assembler files.Assembler
	opts      Options
	log       logger.Logger
}

func New(catalog domain.Catalog, assembler files.Assembler, opts Options, log logger.Logger) *Downloader {
	if opts.NamingTemplate == "" {
		opts.NamingTemplate = DefaultNamingTemplate
	}
	if opts.PageWorkers < 1 {
		opts.PageWorkers = 1
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}

	return &Downloader{
		catalog:   catalog,
		assembler: assembler,
		opts:      opts,
		log:       log,
	}
}

type ChapterResult struct {
	Volume  string
	Chapter domain.Chapter
	Path    string
	Pages   int
	Size    int64
	Skipped bool
	Err     error
}

type Report struct {
	Results []ChapterResult
}

func (r Report) Succeeded() []ChapterResult {
	var out []ChapterResult
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res)
		}
	}
	return out
}

func (r Report) Failed() []ChapterResult {
	var out []ChapterResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Err joins every chapter failure, nil when all chapters made it.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("volume %s chapter %s: %w", res.Volume, res.Chapter.Label, res.Err))
	}
	return stderrors.Join(errs...)
}

// Destination is <library>/<title>/<volume>/<templated chapter>.pdf, every
// component sanitized.
func (d *Downloader) Destination(manga domain.Manga, volume string, chapter domain.Chapter) string {
	name := templater.New(manga, volume, chapter).ExecTemplate(d.opts.NamingTemplate)

	return filepath.Join(
		d.opts.LibraryRoot,
		sanitize.Path(manga.Title),
		sanitize.Path(volume),
		sanitize.Path(name)+".pdf",
	)
}

// Run downloads every chapter of volumes, in the given volume order and
// chapter label order. A failing chapter is recorded and the batch continues.
// The returned error is only set when the batch could not start at all.
func (d *Downloader) Run(ctx context.Context, manga domain.Manga, volumes []domain.Volume) (Report, error) {
	var report Report

	workDir, err := os.MkdirTemp(d.opts.TempRoot, "dolabella-*")
	if err != nil {
		return report, errors.Wrap(err, "could not create temporary directory")
	}
	defer os.RemoveAll(workDir)

	mLog := d.log.With().Str("manga", manga.Title).Logger()

	for _, volume := range volumes {
		chapters := slices.Clone(volume.Chapters)
		slices.SortStableFunc(chapters, func(a, b domain.Chapter) int {
			return utils.CompareLabels(a.Label, b.Label)
		})

		mLog.Info().Msgf("now downloading volume %s, %d chapters will be downloaded", volume.Label, len(chapters))

		for _, chapter := range chapters {
			if err := ctx.Err(); err != nil {
				report.Results = append(report.Results, ChapterResult{
					Volume:  volume.Label,
					Chapter: chapter,
					Skipped: true,
					Err:     err,
				})
				continue
			}

			res := d.Chapter(ctx, workDir, manga, volume.Label, chapter)
			report.Results = append(report.Results, res)

			cLog := mLog.With().Str("volume", volume.Label).Str("chapter", chapter.Label).Logger()
			if res.Err != nil {
				cLog.Error().Err(res.Err).Msg("chapter failed")
				continue
			}

			cLog.Info().Msgf("done, dropped at %q, cleaned %s from temporary folder", res.Path, utils.HumanBytes(res.Size))
		}
	}

	return report, nil
}

// Chapter downloads and assembles a single chapter below workDir. The
// chapter's working directory is removed before returning, whatever happens.
func (d *Downloader) Chapter(ctx context.Context, workDir string, manga domain.Manga, volume string, chapter domain.Chapter) ChapterResult {
	res := ChapterResult{Volume: volume, Chapter: chapter}

	store, err := pagestore.New(filepath.Join(workDir, sanitize.Path(manga.ID), sanitize.Path(volume), sanitize.Path(chapter.Label)))
	if err != nil {
		res.Err = err
		return res
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			d.log.Warn().Err(err).Str("dir", store.Dir()).Msg("could not clean working directory")
		}
	}()

	pages, err := d.catalog.ListPages(ctx, chapter.ID)
	if err != nil {
		res.Err = errors.Wrap(err, "failed to get pages")
		return res
	}

	if err := d.fetchPages(ctx, store, volume, chapter, pages); err != nil {
		res.Err = err
		return res
	}

	// assembly only starts once every page is on disk
	ordered, err := store.Ordered()
	if err != nil {
		res.Err = err
		return res
	}

	if len(ordered) != len(pages.Files) {
		res.Err = fmt.Errorf("expected %d pages, found %d", len(pages.Files), len(ordered))
		return res
	}

	res.Pages = len(ordered)
	res.Size, _ = store.TotalSize()

	d.log.Info().Msgf("converting chapter %s to pdf, this might take a while", chapter.Label)

	out, err := d.assembler.Assemble(ctx, ordered, d.Destination(manga, volume, chapter))
	if err != nil {
		res.Err = errors.Wrap(err, "failed to assemble chapter")
		return res
	}

	res.Path = out
	return res
}

func (d *Downloader) fetchPages(ctx context.Context, store *pagestore.Store, volume string, chapter domain.Chapter, pages domain.PageList) error {
	bar := progressbar.NewOptions(len(pages.Files),
		progressbar.OptionSetWriter(d.opts.Progress),
		progressbar.OptionSetDescription(fmt.Sprintf("[V %s] [C %s]", volume, chapter.Label)),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	token := volumeToken(volume)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.PageWorkers)

	for i, filename := range pages.Files {
		if gctx.Err() != nil {
			break
		}

		i, filename := i, filename
		g.Go(func() error {
			data, err := d.catalog.FetchPage(gctx, pages, filename)
			if err != nil {
				return errors.Wrapf(err, "page %d", i+1)
			}

			ext := strings.TrimPrefix(path.Ext(filename), ".")
			if _, err := store.Store(i+1, token, data, ext); err != nil {
				return errors.Wrapf(err, "page %d", i+1)
			}

			_ = bar.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// stopped early without a page error
	return ctx.Err()
}

// volumeToken makes a volume label usable inside a page filename.
func volumeToken(volume string) string {
	return strings.NewReplacer("-", "_", " ", "_").Replace(sanitize.Path(volume))
}
