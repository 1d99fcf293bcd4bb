package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the reasoning pipeline reads, with three-layer
// priority: struct defaults (lowest), environment variables (middle),
// functional Options passed to NewConfig (highest).
type Config struct {
	// Backend credentials, loaded from the environment. Nothing in this
	// module reads them to choose or skip a backend; cmd/reasonctl
	// registers mock vendors regardless.
	OpenAIAPIKey    string `json:"-" env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `json:"-" env:"ANTHROPIC_API_KEY"`
	GrokAPIKey      string `json:"-" env:"XAI_GROK_API_KEY"`

	// DatabaseURL is accepted and threaded through to memory/audit
	// implementations that choose to use it; this module's own reference
	// implementations ignore it and stay in-memory.
	DatabaseURL string `json:"-" env:"DATABASE_URL"`

	MaxConcurrentTasks int           `json:"max_concurrent_tasks" env:"MAX_CONCURRENT_TASKS" default:"5"`
	DefaultTaskTimeout time.Duration `json:"default_task_timeout" env:"DEFAULT_TASK_TIMEOUT" default:"30s"`
	ConfidenceThreshold float64      `json:"confidence_threshold" env:"CONFIDENCE_THRESHOLD" default:"0.7"`

	EnableContradictionDetection bool `json:"enable_contradiction_detection" env:"ENABLE_CONTRADICTION_DETECTION" default:"true"`
	EnableHallucinationDetection bool `json:"enable_hallucination_detection" env:"ENABLE_HALLUCINATION_DETECTION" default:"true"`
	EnableResponseVerification   bool `json:"enable_response_verification" env:"ENABLE_RESPONSE_VERIFICATION" default:"true"`

	LogLevel  string `json:"log_level" env:"NIMBUS_LOG_LEVEL" default:"info"`
	LogFormat string `json:"log_format" env:"NIMBUS_LOG_FORMAT" default:"text"`

	logger Logger `json:"-"`
}

// Option mutates a Config during construction, applied after defaults and
// environment variables have already been loaded.
type Option func(*Config) error

// DefaultConfig returns a Config populated with struct-tag defaults only.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrentTasks:            5,
		DefaultTaskTimeout:            30 * time.Second,
		ConfidenceThreshold:           0.7,
		EnableContradictionDetection:  true,
		EnableHallucinationDetection:  true,
		EnableResponseVerification:    true,
		LogLevel:                      "info",
		LogFormat:                     "text",
	}
}

// LoadFromEnv overlays environment variables onto the receiver, leaving
// any variable that isn't set untouched.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AnthropicAPIKey = v
	}
	if v := os.Getenv("XAI_GROK_API_KEY"); v != "" {
		c.GrokAPIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("MAX_CONCURRENT_TASKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_CONCURRENT_TASKS: %w", err)
		}
		c.MaxConcurrentTasks = n
	}
	if v := os.Getenv("DEFAULT_TASK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DEFAULT_TASK_TIMEOUT: %w", err)
		}
		c.DefaultTaskTimeout = d
	}
	if v := os.Getenv("CONFIDENCE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CONFIDENCE_THRESHOLD: %w", err)
		}
		c.ConfidenceThreshold = f
	}
	if v := os.Getenv("ENABLE_CONTRADICTION_DETECTION"); v != "" {
		c.EnableContradictionDetection = parseBool(v)
	}
	if v := os.Getenv("ENABLE_HALLUCINATION_DETECTION"); v != "" {
		c.EnableHallucinationDetection = parseBool(v)
	}
	if v := os.Getenv("ENABLE_RESPONSE_VERIFICATION"); v != "" {
		c.EnableResponseVerification = parseBool(v)
	}
	if v := os.Getenv("NIMBUS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("NIMBUS_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return b
}

// Validate rejects configurations the rest of the module can't run with.
func (c *Config) Validate() error {
	if c.MaxConcurrentTasks < 1 {
		return New("Config.Validate", KindValidation, "", fmt.Errorf("max_concurrent_tasks must be >= 1"))
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return New("Config.Validate", KindValidation, "", fmt.Errorf("confidence_threshold must be in [0,1]"))
	}
	if c.DefaultTaskTimeout <= 0 {
		return New("Config.Validate", KindValidation, "", fmt.Errorf("default_task_timeout must be positive"))
	}
	return nil
}

// NewConfig applies defaults, then environment variables, then the given
// options, in that order, and validates the result.
func NewConfig(opts ...Option) (*Config, error) {
	c := DefaultConfig()
	if err := c.LoadFromEnv(); err != nil {
		return nil, New("NewConfig", KindValidation, "", err)
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, New("NewConfig", KindValidation, "", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.logger == nil {
		c.logger = NewProductionLogger("config")
	}
	return c, nil
}

// Logger returns the configuration's logger, defaulting to a NoOpLogger.
func (c *Config) Logger() Logger {
	if c.logger == nil {
		return NoOpLogger{}
	}
	return c.logger
}

func WithMaxConcurrentTasks(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("max concurrent tasks must be >= 1, got %d", n)
		}
		c.MaxConcurrentTasks = n
		return nil
	}
}

func WithDefaultTaskTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("default task timeout must be positive")
		}
		c.DefaultTaskTimeout = d
		return nil
	}
}

func WithConfidenceThreshold(t float64) Option {
	return func(c *Config) error {
		if t < 0 || t > 1 {
			return fmt.Errorf("confidence threshold must be in [0,1], got %f", t)
		}
		c.ConfidenceThreshold = t
		return nil
	}
}

func WithContradictionDetection(enabled bool) Option {
	return func(c *Config) error {
		c.EnableContradictionDetection = enabled
		return nil
	}
}

func WithHallucinationDetection(enabled bool) Option {
	return func(c *Config) error {
		c.EnableHallucinationDetection = enabled
		return nil
	}
}

func WithResponseVerification(enabled bool) Option {
	return func(c *Config) error {
		c.EnableResponseVerification = enabled
		return nil
	}
}

func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.logger = logger
		return nil
	}
}

func WithLogFormat(format string) Option {
	return func(c *Config) error {
		c.LogFormat = format
		return nil
	}
}

// configFileOverrides mirrors Config for YAML loading. Fields are pointers
// so an absent key in the file leaves the existing value untouched.
type configFileOverrides struct {
	MaxConcurrentTasks           *int     `yaml:"max_concurrent_tasks"`
	DefaultTaskTimeout           *string  `yaml:"default_task_timeout"`
	ConfidenceThreshold          *float64 `yaml:"confidence_threshold"`
	EnableContradictionDetection *bool    `yaml:"enable_contradiction_detection"`
	EnableHallucinationDetection *bool    `yaml:"enable_hallucination_detection"`
	EnableResponseVerification   *bool    `yaml:"enable_response_verification"`
	LogLevel                     *string  `yaml:"log_level"`
	LogFormat                    *string  `yaml:"log_format"`
}

// LoadFromFile overlays a YAML deployment file onto the receiver, applied
// after defaults and environment variables but before functional options,
// so a caller can still pin a value with an Option regardless of what the
// file says.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return New("Config.LoadFromFile", KindValidation, path, err)
	}
	var o configFileOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return New("Config.LoadFromFile", KindValidation, path, err)
	}
	if o.MaxConcurrentTasks != nil {
		c.MaxConcurrentTasks = *o.MaxConcurrentTasks
	}
	if o.DefaultTaskTimeout != nil {
		d, err := time.ParseDuration(*o.DefaultTaskTimeout)
		if err != nil {
			return New("Config.LoadFromFile", KindValidation, path, err)
		}
		c.DefaultTaskTimeout = d
	}
	if o.ConfidenceThreshold != nil {
		c.ConfidenceThreshold = *o.ConfidenceThreshold
	}
	if o.EnableContradictionDetection != nil {
		c.EnableContradictionDetection = *o.EnableContradictionDetection
	}
	if o.EnableHallucinationDetection != nil {
		c.EnableHallucinationDetection = *o.EnableHallucinationDetection
	}
	if o.EnableResponseVerification != nil {
		c.EnableResponseVerification = *o.EnableResponseVerification
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	if o.LogFormat != nil {
		c.LogFormat = *o.LogFormat
	}
	return nil
}

// WithConfigFile loads path with LoadFromFile as a functional option. Since
// options apply after LoadFromEnv, a later WithXxx option in the same
// NewConfig call still wins over the file.
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		return c.LoadFromFile(path)
	}
}
