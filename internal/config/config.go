package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/a3tai/switchgear-extractor/internal/equipment"
	"github.com/a3tai/switchgear-extractor/internal/pdf"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Log formats
	FormatJSON    = "json"
	FormatConsole = "console"

	// Default values
	DefaultPort            = 8080
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = FormatJSON
	DefaultMaxFileSize     = 100 * 1024 * 1024 // 100MB
	DefaultOutputDirectory = "outputs"
	DefaultCORSOrigin      = "*"
	DefaultRateBurst       = 5

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the extractor
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Files
	InputDirectory  string
	OutputDirectory string
	MaxFileSize     int64 // Maximum PDF file size in bytes

	// Extraction tuning
	RowThreshold float64
	WordsBefore  int
	WordsAfter   int
	TextWindow   int
	XTolerance   float64
	YTolerance   float64

	// HTTP
	CORSOrigin string
	RateLimit  float64 // uploads per second, 0 disables limiting
	RateBurst  int

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:            ModeServer,
		Host:            DefaultHost,
		Port:            DefaultPort,
		InputDirectory:  currentDir,
		OutputDirectory: DefaultOutputDirectory,
		MaxFileSize:     DefaultMaxFileSize,
		RowThreshold:    equipment.DefaultRowThreshold,
		WordsBefore:     equipment.DefaultWordsBefore,
		WordsAfter:      equipment.DefaultWordsAfter,
		TextWindow:      equipment.DefaultTextWindow,
		XTolerance:      pdf.DefaultXTolerance,
		YTolerance:      pdf.DefaultYTolerance,
		CORSOrigin:      DefaultCORSOrigin,
		RateBurst:       DefaultRateBurst,
		Version:         "1.0.0",
		ServerName:      "switchgear-extractor",
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	for _, dir := range []*string{&cfg.InputDirectory, &cfg.OutputDirectory} {
		if *dir == "" {
			continue
		}
		if abs, err := filepath.Abs(*dir); err == nil {
			*dir = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("SLD")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.InputDirectory)
	viper.SetDefault("outdir", cfg.OutputDirectory)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("rowthreshold", cfg.RowThreshold)
	viper.SetDefault("wordsbefore", cfg.WordsBefore)
	viper.SetDefault("wordsafter", cfg.WordsAfter)
	viper.SetDefault("textwindow", cfg.TextWindow)
	viper.SetDefault("xtolerance", cfg.XTolerance)
	viper.SetDefault("ytolerance", cfg.YTolerance)
	viper.SetDefault("corsorigin", cfg.CORSOrigin)
	viper.SetDefault("ratelimit", cfg.RateLimit)
	viper.SetDefault("rateburst", cfg.RateBurst)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'server' for the HTTP upload endpoint, 'stdio' for MCP standard I/O")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.InputDirectory, "Directory the MCP tools may read drawings from")
	pflag.String("outdir", cfg.OutputDirectory, "Directory generated spreadsheets are written to")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Float64("rowthreshold", cfg.RowThreshold, "Vertical distance in points that starts a new row")
	pflag.Int("wordsbefore", cfg.WordsBefore, "Words before an equipment name searched for properties")
	pflag.Int("wordsafter", cfg.WordsAfter, "Words after an equipment name searched for properties")
	pflag.Int("textwindow", cfg.TextWindow, "Characters around an equipment name used as the fallback property window")
	pflag.Float64("xtolerance", cfg.XTolerance, "Horizontal gap in points that still joins glyphs into one word")
	pflag.Float64("ytolerance", cfg.YTolerance, "Vertical offset in points that still places glyphs on one line")
	pflag.String("corsorigin", cfg.CORSOrigin, "Value of the Access-Control-Allow-Origin header")
	pflag.Float64("ratelimit", cfg.RateLimit, "Uploads per second accepted by /extract (0 disables)")
	pflag.Int("rateburst", cfg.RateBurst, "Upload burst size when rate limiting is enabled")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (json, console)")
}

var flagNames = []string{
	"mode", "host", "port", "dir", "outdir", "maxfilesize",
	"rowthreshold", "wordsbefore", "wordsafter", "textwindow", "xtolerance", "ytolerance",
	"corsorigin", "ratelimit", "rateburst", "loglevel", "logformat",
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range flagNames {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nSwitchgear Extractor - lists MVS/DSG switchgear from single-line diagram PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                      # HTTP upload endpoint on 127.0.0.1:8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --host=0.0.0.0 --outdir=/srv/outputs # serve on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/path/to/drawings # MCP tools over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  SLD_MODE          Run mode\n")
		fmt.Fprintf(os.Stderr, "  SLD_HOST          Server host\n")
		fmt.Fprintf(os.Stderr, "  SLD_PORT          Server port\n")
		fmt.Fprintf(os.Stderr, "  SLD_DIR           Input directory\n")
		fmt.Fprintf(os.Stderr, "  SLD_OUTDIR        Output directory\n")
		fmt.Fprintf(os.Stderr, "  SLD_LOGLEVEL      Log level\n")
		fmt.Fprintf(os.Stderr, "  SLD_LOGFORMAT     Log format\n")
		fmt.Fprintf(os.Stderr, "  SLD_MAXFILESIZE   Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  SLD_ROWTHRESHOLD  Row clustering threshold\n")
		fmt.Fprintf(os.Stderr, "  SLD_RATELIMIT     Upload rate limit\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.InputDirectory = viper.GetString("dir")
	cfg.OutputDirectory = viper.GetString("outdir")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.RowThreshold = viper.GetFloat64("rowthreshold")
	cfg.WordsBefore = viper.GetInt("wordsbefore")
	cfg.WordsAfter = viper.GetInt("wordsafter")
	cfg.TextWindow = viper.GetInt("textwindow")
	cfg.XTolerance = viper.GetFloat64("xtolerance")
	cfg.YTolerance = viper.GetFloat64("ytolerance")
	cfg.CORSOrigin = viper.GetString("corsorigin")
	cfg.RateLimit = viper.GetFloat64("ratelimit")
	cfg.RateBurst = viper.GetInt("rateburst")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.InputDirectory == "" {
		return errors.New("input directory cannot be empty")
	}
	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}

	// Output directory is created if it doesn't exist
	if _, err := os.Stat(c.OutputDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutputDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutputDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutputDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if err := c.Rules().Validate(); err != nil {
		return err
	}

	if c.XTolerance < 0 || c.YTolerance < 0 {
		return errors.New("word tolerances cannot be negative")
	}

	if c.RateLimit < 0 {
		return errors.New("rate limit cannot be negative")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return errors.New("rate burst must be at least 1 when rate limiting is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != FormatJSON && c.LogFormat != FormatConsole {
		return fmt.Errorf("invalid log format: %s (must be one of: json, console)", c.LogFormat)
	}

	return nil
}

// Rules returns the extraction rules described by the tuning fields
func (c *Config) Rules() equipment.Rules {
	rules := equipment.DefaultRules()
	rules.RowThreshold = c.RowThreshold
	rules.WordsBefore = c.WordsBefore
	rules.WordsAfter = c.WordsAfter
	rules.TextWindow = c.TextWindow
	return rules
}

// WordOptions returns the glyph merge tolerances
func (c *Config) WordOptions() pdf.WordOptions {
	return pdf.WordOptions{XTolerance: c.XTolerance, YTolerance: c.YTolerance}
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, InputDirectory: %s, OutputDirectory: %s, "+
		"LogLevel: %s, MaxFileSize: %d, RowThreshold: %g}",
		c.Mode, c.Host, c.Port, c.InputDirectory, c.OutputDirectory, c.LogLevel, c.MaxFileSize, c.RowThreshold)
}

// IsServerMode returns true if the extractor is running the HTTP server
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the extractor is serving MCP over stdio
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
