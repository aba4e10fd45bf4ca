package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/config"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/engine"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/output"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
)

// loadConfig resolves the active configuration: --config path if given,
// otherwise the nearest .a3e/config.yaml walking up from the working
// directory, otherwise defaults.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load(".")
}

// openEngine builds the engine over the evidence store in the nearest .a3e
// directory. The caller owns both returned handles.
func openEngine() (*engine.Engine, *store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	a3eDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, nil, fmt.Errorf("a3e not initialized: run 'a3e init' first")
	}

	db, err := store.Open(a3eDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening evidence store: %w", err)
	}

	eng, err := engine.New(cfg, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	// Load the configured corpus so each invocation is self-contained.
	// A missing corpus surfaces later as a not-loaded error on the first
	// operation that needs it.
	if dir, derr := resolveCorpusDir(""); derr == nil {
		if _, _, lerr := eng.LoadCorpus(dir); lerr != nil && verbose {
			fmt.Fprintf(os.Stderr, "warning: loading corpus: %v\n", lerr)
		}
	}
	return eng, db, nil
}

// resolveCorpusDir turns the configured (or flag-supplied) corpus directory
// into an absolute path relative to the project root.
func resolveCorpusDir(dir string) (string, error) {
	if dir == "" {
		cfg, err := loadConfig()
		if err != nil {
			return "", err
		}
		dir = cfg.Corpus.Dir
	}
	if filepath.IsAbs(dir) {
		return dir, nil
	}

	a3eDir, err := config.FindConfigDir(".")
	if err != nil {
		// no project root; resolve against the working directory
		return filepath.Abs(dir)
	}
	return filepath.Join(filepath.Dir(a3eDir), dir), nil
}

// parseOutputFormat validates the --format flag.
func parseOutputFormat() (output.Format, error) {
	f, err := output.ParseFormat(outputFormat)
	if err != nil {
		return "", fmt.Errorf("invalid format: %w", err)
	}
	return f, nil
}
