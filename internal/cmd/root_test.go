package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCommandRegistration(t *testing.T) {
	want := []string{
		"init", "load", "map", "mappings", "trust",
		"risk", "compliance", "crosswalk", "metadata", "serve",
	}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q is not registered", name)
		}
	}
}

func TestGlobalFormatFlagDefault(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("format")
	if f == nil {
		t.Fatal("format flag not registered")
	}
	if f.DefValue != "yaml" {
		t.Errorf("format default = %q, want yaml", f.DefValue)
	}
}

func TestBuildCommandInfoIncludesFlags(t *testing.T) {
	info := buildCommandInfo(rootCmd)

	if len(info.Subcommands) == 0 {
		t.Fatal("expected subcommands in agent help")
	}

	var found bool
	for _, sub := range info.Subcommands {
		if sub.Name != "crosswalk" {
			continue
		}
		found = true
		flags := make(map[string]bool)
		for _, fl := range sub.Flags {
			flags[fl.Name] = true
		}
		if !flags["threshold"] || !flags["top-k"] {
			t.Errorf("crosswalk agent help missing flags, got %v", sub.Flags)
		}
	}
	if !found {
		t.Error("crosswalk command missing from agent help")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"0", 0, false},
		{"", 0, false},
		{"30m", 30 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseDuration(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDuration(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitThenLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	if err := runInit(initCmd, nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, ".a3e", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	corpusDir := filepath.Join(tmpDir, "corpus")
	if err := os.MkdirAll(corpusDir, 0755); err != nil {
		t.Fatal(err)
	}
	definition := `accreditor: TEST
version: "2024"
effective_date: "2024-01-01"
standard_count: 1
standards:
  - id: "1.A"
    title: Institutional Mission
    description: The institution has a clearly articulated mission.
`
	if err := os.WriteFile(filepath.Join(corpusDir, "test.yaml"), []byte(definition), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	loadCmd.SetOut(&out)
	defer loadCmd.SetOut(nil)

	if err := runLoad(loadCmd, []string{corpusDir}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("Loaded 1 standards")) {
		t.Errorf("unexpected load output: %s", out.String())
	}
}

func TestCrosswalkAcceptsLowercaseCodes(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	if err := runInit(initCmd, nil); err != nil {
		t.Fatalf("init: %v", err)
	}

	corpusDir := filepath.Join(tmpDir, "corpus")
	if err := os.MkdirAll(corpusDir, 0755); err != nil {
		t.Fatal(err)
	}
	definitions := map[string]string{
		"alpha.yaml": `accreditor: ALPHA
version: "2024"
effective_date: "2024-01-01"
standard_count: 1
standards:
  - id: "1"
    title: Faculty Qualifications
    description: Qualified faculty with verified credentials teach every program.
`,
		"beta.yaml": `accreditor: BETA
version: "2024"
effective_date: "2024-01-01"
standard_count: 1
standards:
  - id: "6.2"
    title: Faculty Credentials
    description: Faculty members hold verified credentials appropriate to their teaching.
`,
	}
	for name, body := range definitions {
		if err := os.WriteFile(filepath.Join(corpusDir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	loadCmd.SetOut(new(bytes.Buffer))
	defer loadCmd.SetOut(nil)
	if err := runLoad(loadCmd, []string{corpusDir}); err != nil {
		t.Fatalf("load: %v", err)
	}

	var out bytes.Buffer
	crosswalkCmd.SetOut(&out)
	defer crosswalkCmd.SetOut(nil)
	crosswalkCmd.SetContext(context.Background())

	// codes are stored uppercase but the command normalizes user input
	if err := runCrosswalk(crosswalkCmd, []string{"alpha", "beta"}); err != nil {
		t.Fatalf("crosswalk with lowercase codes: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("ALPHA")) {
		t.Errorf("crosswalk output missing uppercased source, got: %s", out.String())
	}
}
