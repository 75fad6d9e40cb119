package cmd

import (
	"io"
	"os"
	"time"

	"dolabella/internal/buildinfo"
	"dolabella/internal/config"
	"dolabella/internal/download"
	"dolabella/internal/files"
	"dolabella/internal/logger"
	"dolabella/internal/source"

	"github.com/pkg/errors"
)

// app holds everything a command needs to search and download.
type app struct {
	cfg        *config.AppConfig
	log        logger.Logger
	catalog    *source.Mangadex
	downloader *download.Downloader
}

func newApp() (*app, error) {
	// read config
	cfg, err := config.New(configPath, buildinfo.Version)
	if err != nil {
		return nil, errors.Wrap(err, "could not load config")
	}

	if libraryRoot != "" {
		cfg.Config.LibraryRoot = libraryRoot
	}
	if naming != "" {
		cfg.Config.NamingTemplate = naming
	}

	// init new logger
	log := logger.New(cfg.Config)

	if err := cfg.UpdateConfig(); err != nil {
		log.Error().Err(err).Msgf("error updating config")
	}

	// init dynamic config
	cfg.DynamicReload(log)

	if err := os.MkdirAll(cfg.Config.LibraryRoot, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "could not create library")
	}

	if err := files.IsValidLocation(cfg.Config.LibraryRoot); err != nil {
		return nil, errors.Wrap(err, "invalid library location")
	}

	catalog := source.NewMangadex(source.Options{
		APIURL:            cfg.Config.APIURL,
		UploadsURL:        cfg.Config.UploadsURL,
		Language:          cfg.Config.Language,
		Quality:           cfg.Config.Quality,
		SearchLimit:       cfg.Config.SearchLimit,
		RequestsPerSecond: cfg.Config.RequestsPerSecond,
		RetryAttempts:     uint(cfg.Config.RetryAttempts),
	})

	var progress io.Writer = os.Stderr
	if quiet {
		progress = io.Discard
	}

	downloader := download.New(
		catalog,
		files.New(cfg.Config, log),
		download.Options{
			LibraryRoot:    cfg.Config.LibraryRoot,
			TempRoot:       cfg.Config.TempDir,
			NamingTemplate: cfg.Config.NamingTemplate,
			PageWorkers:    cfg.Config.PageWorkers,
			Progress:       progress,
		},
		log,
	)

	log.Debug().
		Str("library", cfg.Config.LibraryRoot).
		Str("converter", cfg.Config.Converter).
		Dur("convertTimeout", time.Duration(cfg.Config.ConvertTimeout)*time.Minute).
		Msg("configuration loaded")

	return &app{
		cfg:        cfg,
		log:        log,
		catalog:    catalog,
		downloader: downloader,
	}, nil
}
