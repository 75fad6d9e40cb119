package domain

type Config struct {
	Version           string
	ConfigPath        string
	LibraryRoot       string `yaml:"libraryRoot"`
	TempDir           string `yaml:"tempDir"`
	Language          string `yaml:"language"`
	SearchLimit       int    `yaml:"searchLimit"`
	Quality           string `yaml:"quality"`
	APIURL            string `yaml:"apiURL"`
	UploadsURL        string `yaml:"uploadsURL"`
	Converter         string `yaml:"converter"`
	ConverterPath     string `yaml:"converterPath"`
	ConverterFallback bool   `yaml:"converterFallback"`
	ConvertTimeout    int    `yaml:"convertTimeout"` // in minutes
	NamingTemplate    string `yaml:"namingTemplate"`
	PageWorkers       int    `yaml:"pageWorkers"`
	RetryAttempts     int    `yaml:"retryAttempts"`
	RequestsPerSecond int    `yaml:"requestsPerSecond"`
	LogPath           string `yaml:"logPath"`
	LogLevel          string `yaml:"logLevel"`
	LogMaxSize        int    `yaml:"logMaxSize"` // in megabytes
	LogMaxBackups     int    `yaml:"logMaxBackups"`
}
