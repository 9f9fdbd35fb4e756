package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "a11yscan"

	// DefaultPort is the HTTP port of the API server.
	DefaultPort = 3001

	// DefaultEnvironment enables development error details.
	DefaultEnvironment = EnvDevelopment

	// DefaultLogLevel is the minimum log level.
	DefaultLogLevel = "info"

	// DefaultAllowedOrigins are the CORS origins of the bundled frontend.
	DefaultAllowedOrigins = "http://localhost:3000,http://localhost:3001"

	// DefaultCheckRateLimit is the number of checks one client may start per
	// DefaultCheckRateWindow.
	DefaultCheckRateLimit = 20

	// DefaultCheckRateWindow is the rate limit window.
	DefaultCheckRateWindow = time.Hour

	// DefaultAnalysisTimeout bounds validation, rendering and evaluation of
	// one URL.
	DefaultAnalysisTimeout = 60 * time.Second

	// DefaultRecommendationTimeout bounds recommendation generation for one
	// analysis.
	DefaultRecommendationTimeout = 45 * time.Second

	// DefaultGeneratorCallTimeout bounds a single generator call.
	DefaultGeneratorCallTimeout = 30 * time.Second

	// DefaultNavigationTimeout bounds fetching one page.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultResolveTimeout bounds the DNS step of URL validation.
	DefaultResolveTimeout = 10 * time.Second

	// DefaultBatchSize is the number of URLs checked concurrently by the CLI.
	DefaultBatchSize = 4

	// DefaultMaxRecommendations caps generated recommendations per analysis.
	DefaultMaxRecommendations = 10

	// DefaultUserAgent identifies a11yscan to the sites it checks.
	DefaultUserAgent = "Mozilla/5.0 (compatible; a11yscan/2.0; +https://github.com/nao1215/a11yscan)"

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultProvider picks a generator from the available credentials.
	DefaultProvider = "auto"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration options for a11yscan.
// It is populated from defaults, the config file, the environment and CLI
// flags, and passed down explicitly.
type Config struct {
	// Port is the HTTP port of the API server.
	Port int

	// Environment is "development" or "production". Production hides error
	// details from clients, requires authorization for cleanup and switches
	// logs to JSON.
	Environment string

	// LogLevel is debug, info, warn or error.
	LogLevel string

	// Verbose forces debug logging.
	Verbose bool

	// AllowedOrigins are the CORS origins allowed to call the API.
	AllowedOrigins []string

	// CheckRateLimit is the number of checks one client IP may start per
	// CheckRateWindow. Zero disables rate limiting.
	CheckRateLimit  int
	CheckRateWindow time.Duration

	AnalysisTimeout       time.Duration
	RecommendationTimeout time.Duration
	GeneratorCallTimeout  time.Duration
	NavigationTimeout     time.Duration
	ResolveTimeout        time.Duration

	// StrictDial re-checks every connection target against the blocked IP
	// ranges at dial time.
	StrictDial bool

	UserAgent   string
	MaxBodySize int64

	// Provider selects the recommendation generator: auto, replicate,
	// openai or none.
	Provider string

	// ReplicateToken and OpenAIKey are read from the environment only.
	ReplicateToken string
	ReplicateModel string
	OpenAIKey      string
	OpenAIBaseURL  string
	OpenAIModel    string

	// MaxRecommendations caps the failed checks sent to the generator.
	MaxRecommendations int

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/a11yscan on Linux).
	DBDir string

	// SaveToDB stores every completed result in the history database.
	SaveToDB bool

	// BatchSize is the number of URLs checked concurrently by the CLI.
	BatchSize int

	// JSONReport and MarkdownReport select the CLI report format. They are
	// mutually exclusive; neither means the human-readable format.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// Targets are the URLs to check from the CLI.
	Targets []string

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .a11yscan in the current and home directories.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Port:                  DefaultPort,
		Environment:           DefaultEnvironment,
		LogLevel:              DefaultLogLevel,
		AllowedOrigins:        SplitList(DefaultAllowedOrigins),
		CheckRateLimit:        DefaultCheckRateLimit,
		CheckRateWindow:       DefaultCheckRateWindow,
		AnalysisTimeout:       DefaultAnalysisTimeout,
		RecommendationTimeout: DefaultRecommendationTimeout,
		GeneratorCallTimeout:  DefaultGeneratorCallTimeout,
		NavigationTimeout:     DefaultNavigationTimeout,
		ResolveTimeout:        DefaultResolveTimeout,
		UserAgent:             DefaultUserAgent,
		MaxBodySize:           DefaultMaxBodySize,
		Provider:              DefaultProvider,
		MaxRecommendations:    DefaultMaxRecommendations,
		DBDir:                 XDGDataDir(),
		SaveToDB:              true,
		BatchSize:             DefaultBatchSize,
	}
}

// IsProduction reports whether the production environment is configured.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// SplitList splits a comma-separated list, trimming entries and dropping
// empty ones.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// XDGDataDir returns the XDG data directory for a11yscan.
// On Linux: ~/.local/share/a11yscan
// On macOS: ~/Library/Application Support/a11yscan
// On Windows: %LOCALAPPDATA%\a11yscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for a11yscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for a11yscan.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the settings shared by every command.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return ErrInvalidEnvironment
	}
	if c.AnalysisTimeout <= 0 || c.RecommendationTimeout <= 0 ||
		c.GeneratorCallTimeout <= 0 || c.NavigationTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CheckRateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.CheckRateLimit > 0 && c.CheckRateWindow <= 0 {
		return ErrInvalidRateLimit
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	switch c.Provider {
	case "auto", "replicate", "openai", "none":
	default:
		return ErrInvalidProvider
	}
	return nil
}

// ValidateTargets checks Validate and that at least one target is given.
func (c *Config) ValidateTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return c.Validate()
}
