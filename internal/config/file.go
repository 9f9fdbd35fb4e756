package config

import "time"

// File represents the structure of the .a11yscan configuration file.
// Secrets are never read from the file; tokens come from the environment.
type File struct {
	Server          ServerSection         `yaml:"server,omitempty"`
	Analysis        AnalysisSection       `yaml:"analysis,omitempty"`
	Recommendations RecommendationSection `yaml:"recommendations,omitempty"`
	History         HistorySection        `yaml:"history,omitempty"`
}

// ServerSection configures the HTTP API.
type ServerSection struct {
	Port           int           `yaml:"port,omitempty"`
	Environment    string        `yaml:"environment,omitempty"`
	LogLevel       string        `yaml:"logLevel,omitempty"`
	AllowedOrigins []string      `yaml:"allowedOrigins,omitempty"`
	RateLimit      *int          `yaml:"rateLimit,omitempty"`
	RateWindow     time.Duration `yaml:"rateWindow,omitempty"`
}

// AnalysisSection configures fetching and evaluation.
type AnalysisSection struct {
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	NavigationTimeout time.Duration `yaml:"navigationTimeout,omitempty"`
	ResolveTimeout    time.Duration `yaml:"resolveTimeout,omitempty"`
	StrictDial        *bool         `yaml:"strictDial,omitempty"`
	UserAgent         string        `yaml:"userAgent,omitempty"`
	MaxBodySize       int64         `yaml:"maxBodySize,omitempty"`
	BatchSize         int           `yaml:"batchSize,omitempty"`
}

// RecommendationSection configures the recommendation generator.
type RecommendationSection struct {
	Provider       string        `yaml:"provider,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
	CallTimeout    time.Duration `yaml:"callTimeout,omitempty"`
	MaxChecks      int           `yaml:"maxChecks,omitempty"`
	ReplicateModel string        `yaml:"replicateModel,omitempty"`
	OpenAIBaseURL  string        `yaml:"openaiBaseURL,omitempty"`
	OpenAIModel    string        `yaml:"openaiModel,omitempty"`
}

// HistorySection configures the result history database.
type HistorySection struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// Apply copies every value set in the file onto cfg. Zero values leave the
// existing setting untouched.
func (f *File) Apply(cfg *Config) {
	s := f.Server
	setInt(&cfg.Port, s.Port)
	setString(&cfg.Environment, s.Environment)
	setString(&cfg.LogLevel, s.LogLevel)
	if len(s.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = append([]string(nil), s.AllowedOrigins...)
	}
	if s.RateLimit != nil {
		cfg.CheckRateLimit = *s.RateLimit
	}
	setDuration(&cfg.CheckRateWindow, s.RateWindow)

	a := f.Analysis
	setDuration(&cfg.AnalysisTimeout, a.Timeout)
	setDuration(&cfg.NavigationTimeout, a.NavigationTimeout)
	setDuration(&cfg.ResolveTimeout, a.ResolveTimeout)
	if a.StrictDial != nil {
		cfg.StrictDial = *a.StrictDial
	}
	setString(&cfg.UserAgent, a.UserAgent)
	if a.MaxBodySize != 0 {
		cfg.MaxBodySize = a.MaxBodySize
	}
	setInt(&cfg.BatchSize, a.BatchSize)

	r := f.Recommendations
	setString(&cfg.Provider, r.Provider)
	setDuration(&cfg.RecommendationTimeout, r.Timeout)
	setDuration(&cfg.GeneratorCallTimeout, r.CallTimeout)
	setInt(&cfg.MaxRecommendations, r.MaxChecks)
	setString(&cfg.ReplicateModel, r.ReplicateModel)
	setString(&cfg.OpenAIBaseURL, r.OpenAIBaseURL)
	setString(&cfg.OpenAIModel, r.OpenAIModel)

	h := f.History
	if h.Enabled != nil {
		cfg.SaveToDB = *h.Enabled
	}
	setString(&cfg.DBDir, h.Dir)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
