package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the a3e configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the a3e configuration directory
const ConfigDirName = ".a3e"

// Config holds all a3e configuration
type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Mapper    MapperConfig    `yaml:"mapper"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Trust     TrustConfig     `yaml:"trust"`
	Risk      RiskConfig      `yaml:"risk"`
	Crosswalk CrosswalkConfig `yaml:"crosswalk"`
	Output    OutputConfig    `yaml:"output"`
}

// CorpusConfig holds configuration for corpus loading
type CorpusConfig struct {
	Dir string `yaml:"dir"`
}

// MapperConfig holds configuration for evidence mapping
type MapperConfig struct {
	MaxExcerpts   int     `yaml:"max_excerpts"`
	WindowWords   int     `yaml:"window_words"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// EmbeddingConfig holds configuration for the optional semantic strategy
type EmbeddingConfig struct {
	// Backend selects the embedding provider: "none", "ollama", or "onnx"
	Backend string `yaml:"backend"`
	Model   string `yaml:"model"`
	// Blend is the semantic share of a hybrid confidence score
	Blend float64 `yaml:"blend"`
	// BudgetSeconds bounds one embedding call before degrading to keyword-only
	BudgetSeconds int `yaml:"budget_seconds"`
}

// TrustConfig holds the trust component weights
type TrustConfig struct {
	Quality      float64 `yaml:"quality"`
	Reliability  float64 `yaml:"reliability"`
	Confidence   float64 `yaml:"confidence"`
	Freshness    float64 `yaml:"freshness"`
	Completeness float64 `yaml:"completeness"`
}

// RiskConfig holds configuration for gap risk prediction
type RiskConfig struct {
	MappingTarget int `yaml:"mapping_target"`
}

// CrosswalkConfig holds configuration for cross-accreditor matching
type CrosswalkConfig struct {
	Threshold     float64 `yaml:"threshold"`
	TopK          int     `yaml:"top_k"`
	BudgetSeconds int     `yaml:"budget_seconds"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .a3e/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .a3e directory by walking up from startDir.
// Returns the path to the .a3e directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .a3e directory if it doesn't exist.
// Returns the path to the .a3e directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if !IsValidBackend(cfg.Embedding.Backend) {
		return fmt.Errorf("%w: embedding backend must be one of %v, got %q",
			ErrInvalidConfig, ValidBackends, cfg.Embedding.Backend)
	}

	if cfg.Embedding.Blend < 0 || cfg.Embedding.Blend > 1 {
		return fmt.Errorf("%w: embedding blend must be between 0 and 1, got %f",
			ErrInvalidConfig, cfg.Embedding.Blend)
	}

	if cfg.Mapper.MinConfidence < 0 || cfg.Mapper.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence must be between 0 and 1, got %f",
			ErrInvalidConfig, cfg.Mapper.MinConfidence)
	}

	if cfg.Mapper.MaxExcerpts <= 0 {
		return fmt.Errorf("%w: max_excerpts must be positive, got %d",
			ErrInvalidConfig, cfg.Mapper.MaxExcerpts)
	}

	if cfg.Mapper.WindowWords <= 0 {
		return fmt.Errorf("%w: window_words must be positive, got %d",
			ErrInvalidConfig, cfg.Mapper.WindowWords)
	}

	weightSum := cfg.Trust.Quality + cfg.Trust.Reliability + cfg.Trust.Confidence +
		cfg.Trust.Freshness + cfg.Trust.Completeness
	if weightSum <= 0 {
		return fmt.Errorf("%w: trust weights must sum to a positive value, got %f",
			ErrInvalidConfig, weightSum)
	}
	for name, w := range map[string]float64{
		"quality":      cfg.Trust.Quality,
		"reliability":  cfg.Trust.Reliability,
		"confidence":   cfg.Trust.Confidence,
		"freshness":    cfg.Trust.Freshness,
		"completeness": cfg.Trust.Completeness,
	} {
		if w < 0 {
			return fmt.Errorf("%w: trust weight %s must be non-negative, got %f",
				ErrInvalidConfig, name, w)
		}
	}

	if cfg.Risk.MappingTarget <= 0 {
		return fmt.Errorf("%w: mapping_target must be positive, got %d",
			ErrInvalidConfig, cfg.Risk.MappingTarget)
	}

	if cfg.Crosswalk.Threshold < 0 || cfg.Crosswalk.Threshold > 1 {
		return fmt.Errorf("%w: crosswalk threshold must be between 0 and 1, got %f",
			ErrInvalidConfig, cfg.Crosswalk.Threshold)
	}

	if cfg.Crosswalk.TopK <= 0 {
		return fmt.Errorf("%w: crosswalk top_k must be positive, got %d",
			ErrInvalidConfig, cfg.Crosswalk.TopK)
	}

	if !IsValidFormat(cfg.Output.DefaultFormat) {
		return fmt.Errorf("%w: default_format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.DefaultFormat)
	}

	return nil
}

// SaveDefault writes the default configuration to .a3e/config.yaml in workDir.
// Creates the .a3e directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# a3e configuration\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
