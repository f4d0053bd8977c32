package main

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typerace/internal/config"
	"github.com/verte-zerg/typerace/internal/model"
	"github.com/verte-zerg/typerace/internal/passage"
	"github.com/verte-zerg/typerace/internal/race"
)

func validConfig() model.Config {
	return model.Config{
		Opponents: defaultOpponents,
		Pace:      defaultPace,
		Words:     defaultWords,
		CapsPct:   defaultCaps,
		PunctPct:  defaultPunct,
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("expected defaults to be valid: %v", err)
	}
	bad := []func(*model.Config){
		func(c *model.Config) { c.Opponents = 0 },
		func(c *model.Config) { c.Opponents = maxOpponents + 1 },
		func(c *model.Config) { c.Pace = 0 },
		func(c *model.Config) { c.Words = 0 },
		func(c *model.Config) { c.CapsPct = 1.5 },
		func(c *model.Config) { c.PunctPct = -0.1 },
	}
	for i, mutate := range bad {
		cfg := validConfig()
		mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, cfg)
		}
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	var words, opponents int
	var pace float64
	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&words, "words", defaultWords, "")
	cmd.Flags().IntVar(&opponents, "opponents", defaultOpponents, "")
	if err := cmd.Flags().Set("words", "12"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	fileWords, fileOpponents, filePace := 50, 5, 2.5
	applyConfig(cmd, "words", &words, &fileWords)
	applyConfig(cmd, "opponents", &opponents, &fileOpponents)
	applyConfig(cmd, "pace", &pace, &filePace)
	if words != 12 {
		t.Fatalf("explicit flag should win, got %d", words)
	}
	if opponents != 5 || pace != 2.5 {
		t.Fatalf("file values should fill unset flags, got %d %v", opponents, pace)
	}
	var missing *int
	applyConfig(cmd, "opponents", &opponents, missing)
	if opponents != 5 {
		t.Fatalf("absent file value must not change target")
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("uncommented template should decode: %v", err)
	}
	rc := cfg.Race
	if rc.Opponents == nil || *rc.Opponents != defaultOpponents {
		t.Fatalf("unexpected opponents: %v", rc.Opponents)
	}
	if rc.Words == nil || *rc.Words != defaultWords || rc.History == nil || !*rc.History {
		t.Fatalf("unexpected race config: %+v", rc)
	}
}

func TestStatsConfig(t *testing.T) {
	cfg, err := statsConfig("2026-03-01", 5, 3)
	if err != nil {
		t.Fatalf("statsConfig failed: %v", err)
	}
	if cfg.Since == nil || cfg.Last != 5 || cfg.CurveWindow != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := statsConfig("March", 0, 1); err == nil {
		t.Fatalf("expected date error")
	}
	if _, err := statsConfig("", 0, 0); err == nil {
		t.Fatalf("expected window error")
	}
}

func TestBuildProviderSources(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	builtin, err := buildProvider(validConfig(), rnd)
	if err != nil {
		t.Fatalf("builtin provider: %v", err)
	}
	if len(builtin.Passages()) != len(passage.Builtin) {
		t.Fatalf("expected builtin passages")
	}

	dir := t.TempDir()
	passagesPath := filepath.Join(dir, "passages.txt")
	if err := os.WriteFile(passagesPath, []byte("Only one passage in this file.\n"), 0o644); err != nil {
		t.Fatalf("write passages: %v", err)
	}
	cfg := validConfig()
	cfg.PassagesPath = passagesPath
	fromFile, err := buildProvider(cfg, rnd)
	if err != nil {
		t.Fatalf("file provider: %v", err)
	}
	if fromFile.Next() != "Only one passage in this file." {
		t.Fatalf("expected passage from file")
	}

	wordsPath := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(wordsPath, []byte("race\ntype\nfast\n"), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	cfg.WordsPath = wordsPath
	cfg.Words = 5
	generated, err := buildProvider(cfg, rnd)
	if err != nil {
		t.Fatalf("word provider: %v", err)
	}
	if generated.Passages() != nil {
		t.Fatalf("expected word list to take precedence over passages")
	}

	cfg.WordsPath = filepath.Join(dir, "missing.txt")
	if _, err := buildProvider(cfg, rnd); err == nil {
		t.Fatalf("expected missing word list error")
	}
}

func TestSimulateEndsWithOpponentWin(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	provider, err := passage.NewProvider(rnd, passage.Builtin)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	cfg := validConfig()
	res, profiles, err := simulate(provider, cfg, rnd)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if len(profiles) != cfg.Opponents || len(res.Standings) != cfg.Opponents+1 {
		t.Fatalf("unexpected field size: %d profiles, %d standings", len(profiles), len(res.Standings))
	}
	if res.Winner.IsHuman() || res.Winner.Percent != 100 {
		t.Fatalf("expected an opponent at 100 to win, got %+v", res.Winner)
	}
	if res.Place != cfg.Opponents+1 {
		t.Fatalf("idle human should be last, got %d", res.Place)
	}

	var buf bytes.Buffer
	if err := renderSim(&buf, res, profiles, 80); err != nil {
		t.Fatalf("renderSim failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"chars/s", "1st", race.HumanName, res.Winner.Name + " won in"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestListPassagesTruncates(t *testing.T) {
	provider, err := passage.NewProvider(rand.New(rand.NewSource(1)), []string{strings.Repeat("long ", 40)})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	var buf bytes.Buffer
	if err := listPassages(&buf, provider, 40); err != nil {
		t.Fatalf("listPassages failed: %v", err)
	}
	line := strings.TrimRight(buf.String(), "\n")
	if !strings.HasPrefix(line, " 1. (199) ") || !strings.HasSuffix(line, "...") || len(line) > 40 {
		t.Fatalf("unexpected listing: %q", line)
	}
}
