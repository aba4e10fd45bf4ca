package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Dir: "corpus",
		},
		Mapper: MapperConfig{
			MaxExcerpts:   3,
			WindowWords:   40,
			MinConfidence: 0.10,
		},
		Embedding: EmbeddingConfig{
			Backend:       "none",
			Model:         "all-minilm",
			Blend:         0.5,
			BudgetSeconds: 10,
		},
		Trust: TrustConfig{
			Quality:      0.2,
			Reliability:  0.2,
			Confidence:   0.2,
			Freshness:    0.2,
			Completeness: 0.2,
		},
		Risk: RiskConfig{
			MappingTarget: 3,
		},
		Crosswalk: CrosswalkConfig{
			Threshold:     0.3,
			TopK:          10,
			BudgetSeconds: 30,
		},
		Output: OutputConfig{
			DefaultFormat: "yaml",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Corpus = mergeCorpusConfig(loaded.Corpus, defaults.Corpus)
	result.Mapper = mergeMapperConfig(loaded.Mapper, defaults.Mapper)
	result.Embedding = mergeEmbeddingConfig(loaded.Embedding, defaults.Embedding)
	result.Trust = mergeTrustConfig(loaded.Trust, defaults.Trust)
	result.Risk = mergeRiskConfig(loaded.Risk, defaults.Risk)
	result.Crosswalk = mergeCrosswalkConfig(loaded.Crosswalk, defaults.Crosswalk)
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)

	return result
}

func mergeCorpusConfig(loaded, defaults CorpusConfig) CorpusConfig {
	result := CorpusConfig{}

	if loaded.Dir != "" {
		result.Dir = loaded.Dir
	} else {
		result.Dir = defaults.Dir
	}

	return result
}

func mergeMapperConfig(loaded, defaults MapperConfig) MapperConfig {
	result := MapperConfig{}

	if loaded.MaxExcerpts != 0 {
		result.MaxExcerpts = loaded.MaxExcerpts
	} else {
		result.MaxExcerpts = defaults.MaxExcerpts
	}

	if loaded.WindowWords != 0 {
		result.WindowWords = loaded.WindowWords
	} else {
		result.WindowWords = defaults.WindowWords
	}

	// MinConfidence: zero means unset; callers who want to keep every
	// mapping set a tiny epsilon instead
	if loaded.MinConfidence != 0 {
		result.MinConfidence = loaded.MinConfidence
	} else {
		result.MinConfidence = defaults.MinConfidence
	}

	return result
}

func mergeEmbeddingConfig(loaded, defaults EmbeddingConfig) EmbeddingConfig {
	result := EmbeddingConfig{}

	if loaded.Backend != "" {
		result.Backend = loaded.Backend
	} else {
		result.Backend = defaults.Backend
	}

	if loaded.Model != "" {
		result.Model = loaded.Model
	} else {
		result.Model = defaults.Model
	}

	if loaded.Blend != 0 {
		result.Blend = loaded.Blend
	} else {
		result.Blend = defaults.Blend
	}

	if loaded.BudgetSeconds != 0 {
		result.BudgetSeconds = loaded.BudgetSeconds
	} else {
		result.BudgetSeconds = defaults.BudgetSeconds
	}

	return result
}

func mergeTrustConfig(loaded, defaults TrustConfig) TrustConfig {
	// Trust weights are all-or-nothing: a partially specified weight block
	// would silently skew the overall score toward the specified components.
	if loaded == (TrustConfig{}) {
		return defaults
	}
	return loaded
}

func mergeRiskConfig(loaded, defaults RiskConfig) RiskConfig {
	result := RiskConfig{}

	if loaded.MappingTarget != 0 {
		result.MappingTarget = loaded.MappingTarget
	} else {
		result.MappingTarget = defaults.MappingTarget
	}

	return result
}

func mergeCrosswalkConfig(loaded, defaults CrosswalkConfig) CrosswalkConfig {
	result := CrosswalkConfig{}

	if loaded.Threshold != 0 {
		result.Threshold = loaded.Threshold
	} else {
		result.Threshold = defaults.Threshold
	}

	if loaded.TopK != 0 {
		result.TopK = loaded.TopK
	} else {
		result.TopK = defaults.TopK
	}

	if loaded.BudgetSeconds != 0 {
		result.BudgetSeconds = loaded.BudgetSeconds
	} else {
		result.BudgetSeconds = defaults.BudgetSeconds
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	if loaded.DefaultFormat != "" {
		result.DefaultFormat = loaded.DefaultFormat
	} else {
		result.DefaultFormat = defaults.DefaultFormat
	}

	return result
}

// ValidBackends lists the valid values for the embedding backend
var ValidBackends = []string{"none", "ollama", "onnx"}

// IsValidBackend checks if the given embedding backend is valid
func IsValidBackend(backend string) bool {
	for _, valid := range ValidBackends {
		if backend == valid {
			return true
		}
	}
	return false
}

// ValidFormats lists the valid values for output format
var ValidFormats = []string{"yaml", "json"}

// IsValidFormat checks if the given output format is valid
func IsValidFormat(format string) bool {
	for _, valid := range ValidFormats {
		if format == valid {
			return true
		}
	}
	return false
}
