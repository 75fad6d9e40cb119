package config

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"dolabella/internal/domain"
	"dolabella/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var configTemplate = `# config.yaml

# Library Root
# Directory the assembled chapters are dropped in, as <title>/<volume>/<chapter>.pdf
#
# Default: "~/Manga"
#
libraryRoot: "~/Manga"

# Temporary Directory
# Pages are downloaded below this directory and removed once a chapter is assembled
# If empty, the operating system temp directory is used
#
# Optional
#
#tempDir: ""

# Language
# Translation to download chapters in
#
# Default: "en"
#
language: "en"

# Search Limit
# Maximum amount of results a search returns
#
# Default: 10
#
searchLimit: 10

# Quality
#
# Default: "data-saver"
#
# Options: "data-saver", "data"
#
quality: "data-saver"

# Converter
# "magick" runs ImageMagick, "builtin" writes the pdf without any external tool
#
# Default: "magick"
#
# Options: "magick", "builtin"
#
converter: "magick"

# Converter Path
# Name or path of the ImageMagick binary
#
# Default: "magick"
#
#converterPath: "magick"

# Converter Fallback
# Use the builtin converter when the ImageMagick binary can't be found
#
# Default: false
#
#converterFallback: false

# Convert Timeout in minutes
#
# Default: 10
#
#convertTimeout: 10

# Naming Template
# This can be used to change how the assembled chapter will be named
# Available: {manga}, {volume}, {chapter}, {id}, padding with e.g. {chapter:3}
#
# Default: "{chapter}"
#
namingTemplate: "{chapter}"

# Page Workers
# Amount of pages of a chapter downloaded at the same time
#
# Default: 1
#
pageWorkers: 1

# Retry Attempts
# How often a failed request is tried before giving up
#
# Default: 3
#
#retryAttempts: 3

# Requests Per Second
#
# Default: 5
#
#requestsPerSecond: 5

# dolabella logs file
# If not defined, logs to stderr only
# Make sure to use forward slashes and include the filename with extension. e.g. "logs/dolabella.log"
#
# Optional
#
#logPath: ""

# Log level
#
# Default: "INFO"
#
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
#
logLevel: "INFO"

# Log Max Size
#
# Default: 50
#
# Max log size in megabytes
#
#logMaxSize: 50

# Log Max Backups
#
# Default: 3
#
# Max amount of old log files
#
#logMaxBackups: 3
`

func (c *AppConfig) writeConfig(configPath string, configFile string) error {
	cfgPath := filepath.Join(configPath, configFile)

	// check if configPath exists, if not create it
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		err := os.MkdirAll(configPath, os.ModePerm)
		if err != nil {
			log.Println(err)
			return err
		}
	}

	// check if config exists, if not create it
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {

		f, err := os.Create(cfgPath)
		if err != nil { // perm 0666
			// handle failed create
			log.Printf("error creating file: %q", err)
			return err
		}
		defer f.Close()

		if _, err = f.WriteString(configTemplate); err != nil {
			log.Printf("error writing contents to file: %v %q", configPath, err)
			return err
		}

		return f.Sync()
	}

	return nil
}

type Config interface {
	UpdateConfig() error
	DynamicReload(log logger.Logger)
}

type AppConfig struct {
	Config *domain.Config
	m      *sync.Mutex
}

func New(configPath string, version string) (*AppConfig, error) {
	c := &AppConfig{
		m: new(sync.Mutex),
	}
	c.defaults()
	c.Config = &domain.Config{
		Version:    version,
		ConfigPath: configPath,
	}

	if err := c.load(configPath); err != nil {
		return nil, err
	}
	c.loadFromEnv()

	if err := c.normalize(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *AppConfig) defaults() {
	viper.SetDefault("libraryRoot", "~/Manga")
	viper.SetDefault("tempDir", "")
	viper.SetDefault("language", "en")
	viper.SetDefault("searchLimit", 10)
	viper.SetDefault("quality", "data-saver")
	viper.SetDefault("apiURL", "https://api.mangadex.org")
	viper.SetDefault("uploadsURL", "https://uploads.mangadex.org")
	viper.SetDefault("converter", "magick")
	viper.SetDefault("converterPath", "magick")
	viper.SetDefault("converterFallback", false)
	viper.SetDefault("convertTimeout", 10)
	viper.SetDefault("namingTemplate", "{chapter}")
	viper.SetDefault("pageWorkers", 1)
	viper.SetDefault("retryAttempts", 3)
	viper.SetDefault("requestsPerSecond", 5)
	viper.SetDefault("logPath", "")
	viper.SetDefault("logLevel", "INFO")
	viper.SetDefault("logMaxSize", 50)
	viper.SetDefault("logMaxBackups", 3)
}

func (c *AppConfig) loadFromEnv() {
	prefix := "DOLABELLA__"

	envs := os.Environ()
	for _, env := range envs {
		if strings.HasPrefix(env, prefix) {
			envPair := strings.SplitN(env, "=", 2)

			if envPair[1] != "" {
				switch envPair[0] {
				case prefix + "LIBRARY_ROOT":
					c.Config.LibraryRoot = envPair[1]
				case prefix + "TEMP_DIR":
					c.Config.TempDir = envPair[1]
				case prefix + "LANGUAGE":
					c.Config.Language = envPair[1]
				case prefix + "SEARCH_LIMIT":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.SearchLimit = int(i)
					}
				case prefix + "QUALITY":
					c.Config.Quality = envPair[1]
				case prefix + "API_URL":
					c.Config.APIURL = envPair[1]
				case prefix + "UPLOADS_URL":
					c.Config.UploadsURL = envPair[1]
				case prefix + "CONVERTER":
					c.Config.Converter = envPair[1]
				case prefix + "CONVERTER_PATH":
					c.Config.ConverterPath = envPair[1]
				case prefix + "CONVERTER_FALLBACK":
					if b, err := strconv.ParseBool(envPair[1]); err == nil {
						c.Config.ConverterFallback = b
					}
				case prefix + "CONVERT_TIMEOUT":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.ConvertTimeout = int(i)
					}
				case prefix + "NAMING_TEMPLATE":
					c.Config.NamingTemplate = envPair[1]
				case prefix + "PAGE_WORKERS":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.PageWorkers = int(i)
					}
				case prefix + "RETRY_ATTEMPTS":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.RetryAttempts = int(i)
					}
				case prefix + "REQUESTS_PER_SECOND":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i >= 0 {
						c.Config.RequestsPerSecond = int(i)
					}
				case prefix + "LOG_LEVEL":
					c.Config.LogLevel = envPair[1]
				case prefix + "LOG_PATH":
					c.Config.LogPath = envPair[1]
				case prefix + "LOG_MAX_SIZE":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.LogMaxSize = int(i)
					}
				case prefix + "LOG_MAX_BACKUPS":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.LogMaxBackups = int(i)
					}
				}
			}
		}
	}
}

func (c *AppConfig) load(configPath string) error {
	viper.SetConfigType("yaml")

	if configPath != "" {
		// clean trailing slash from configPath
		configPath = path.Clean(configPath)

		// check if path and file exists
		// if not, create path and file
		if err := c.writeConfig(configPath, "config.yaml"); err != nil {
			log.Printf("write error: %q", err)
		}

		viper.SetConfigFile(path.Join(configPath, "config.yaml"))
	} else {
		viper.SetConfigName("config")

		// Search config in directories
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/dolabella")
		viper.AddConfigPath("$HOME/.dolabella")
	}

	// a missing file leaves the defaults in place
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("config read error: %q", err)
		}
	}

	if err := viper.Unmarshal(c.Config); err != nil {
		return errors.Wrapf(err, "could not unmarshal config file: %v", viper.ConfigFileUsed())
	}

	return nil
}

// normalize expands the home directory in paths and rejects values the
// downloader can't work with.
func (c *AppConfig) normalize() error {
	var err error

	if c.Config.LibraryRoot, err = expandHome(c.Config.LibraryRoot); err != nil {
		return err
	}
	if c.Config.TempDir, err = expandHome(c.Config.TempDir); err != nil {
		return err
	}

	if c.Config.LibraryRoot == "" {
		return errors.New("libraryRoot can't be empty, please provide a valid path to the directory you want your downloads to go to")
	}

	switch c.Config.Converter {
	case "magick", "builtin":
	default:
		return errors.Errorf("unknown converter %q, must be one of: magick, builtin", c.Config.Converter)
	}

	switch c.Config.Quality {
	case "data-saver", "data":
	default:
		return errors.Errorf("unknown quality %q, must be one of: data-saver, data", c.Config.Quality)
	}

	if c.Config.PageWorkers < 1 {
		c.Config.PageWorkers = 1
	}
	if c.Config.RetryAttempts < 1 {
		c.Config.RetryAttempts = 1
	}

	return nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not resolve home directory")
	}

	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

func (c *AppConfig) DynamicReload(log logger.Logger) {
	viper.WatchConfig()

	viper.OnConfigChange(func(_ fsnotify.Event) {
		c.m.Lock()
		defer c.m.Unlock()

		logLevel := viper.GetString("logLevel")
		c.Config.LogLevel = logLevel
		log.SetLogLevel(c.Config.LogLevel)

		logPath := viper.GetString("logPath")
		c.Config.LogPath = logPath

		log.Debug().Msg("config file reloaded!")
	})
}

func (c *AppConfig) UpdateConfig() error {
	if c.Config.ConfigPath == "" {
		return nil
	}

	filePath := path.Join(c.Config.ConfigPath, "config.yaml")

	f, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("could not read config filePath: %s: %w", filePath, err)
	}

	lines := strings.Split(string(f), "\n")
	lines = c.processLines(lines)

	output := strings.Join(lines, "\n")
	if err := os.WriteFile(filePath, []byte(output), 0o644); err != nil {
		return fmt.Errorf("could not write config file: %s: %w", filePath, err)
	}

	return nil
}

func (c *AppConfig) processLines(lines []string) []string {
	// keep track of not found values to append at bottom
	var (
		foundLineLogLevel = false
		foundLineLogPath  = false
	)

	for i, line := range lines {
		if !foundLineLogLevel && strings.Contains(line, "logLevel:") {
			lines[i] = fmt.Sprintf(`logLevel: "%s"`, c.Config.LogLevel)
			foundLineLogLevel = true
		}
		if !foundLineLogPath && strings.Contains(line, "logPath:") {
			if c.Config.LogPath == "" {
				lines[i] = `#logPath: ""`
			} else {
				lines[i] = fmt.Sprintf(`logPath: "%s"`, c.Config.LogPath)
			}
			foundLineLogPath = true
		}
	}

	if !foundLineLogLevel {
		lines = append(lines, "# Log level")
		lines = append(lines, "#")
		lines = append(lines, `# Default: "INFO"`)
		lines = append(lines, "#")
		lines = append(lines, `# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"`)
		lines = append(lines, "#")
		lines = append(lines, fmt.Sprintf(`logLevel: "%s"`, c.Config.LogLevel))
	}

	if !foundLineLogPath {
		lines = append(lines, "# Log Path")
		lines = append(lines, "#")
		lines = append(lines, "# Optional")
		lines = append(lines, "#")
		if c.Config.LogPath == "" {
			lines = append(lines, `#logPath: ""`)
		} else {
			lines = append(lines, fmt.Sprintf(`logPath: "%s"`, c.Config.LogPath))
		}
	}

	return lines
}
