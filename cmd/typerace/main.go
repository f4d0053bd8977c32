// Package main provides the CLI entrypoint for typerace.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typerace/internal/config"
	"github.com/verte-zerg/typerace/internal/model"
	"github.com/verte-zerg/typerace/internal/passage"
	"github.com/verte-zerg/typerace/internal/race"
	"github.com/verte-zerg/typerace/internal/stats"
	"github.com/verte-zerg/typerace/internal/statsui"
	"github.com/verte-zerg/typerace/internal/store"
	"github.com/verte-zerg/typerace/internal/tui"
)

const (
	defaultOpponents   = 3
	maxOpponents       = 7
	defaultPace        = 1.0
	defaultWords       = 30
	defaultCaps        = 0.2
	defaultPunct       = 0.1
	defaultCurveWindow = 10
	maxSimDuration     = time.Hour
)

var (
	raceOpponents int
	racePace      float64
	racePassages  string
	raceWordsFile string
	raceWords     int
	raceCaps      float64
	racePunct     float64
	raceSeed      int64
	raceHistory   bool

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typerace",
		Short:         "Race simulated opponents by typing a passage",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runRaceCmd,
	}

	addRaceFlags(rootCmd)
	rootCmd.Flags().StringVar(&raceWordsFile, "words-file", "", "word list to generate passages from (one word per line)")
	rootCmd.Flags().IntVar(&raceWords, "words", defaultWords, "words per generated passage")
	rootCmd.Flags().Float64Var(&raceCaps, "caps", defaultCaps, "probability of capitalized words in generated passages (0-1)")
	rootCmd.Flags().Float64Var(&racePunct, "punct", defaultPunct, "punctuation probability per generated word (0-1)")
	rootCmd.Flags().BoolVar(&raceHistory, "history", true, "record races in the history database")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSimCmd())
	rootCmd.AddCommand(newPassagesCmd())

	return rootCmd
}

func addRaceFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&raceOpponents, "opponents", defaultOpponents, fmt.Sprintf("number of simulated opponents (1-%d)", maxOpponents))
	cmd.Flags().Float64Var(&racePace, "pace", defaultPace, "opponent speed multiplier (> 0)")
	cmd.Flags().StringVar(&racePassages, "passages", "", "passage file (passages separated by blank lines)")
	cmd.Flags().Int64Var(&raceSeed, "seed", 0, "random seed (0 = time based)")
}

// loadRaceConfig merges the config file under explicitly set flags.
func loadRaceConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	rc := fileCfg.Race
	applyConfig(cmd, "opponents", &raceOpponents, rc.Opponents)
	applyConfig(cmd, "pace", &racePace, rc.Pace)
	applyConfig(cmd, "passages", &racePassages, rc.Passages)
	applyConfig(cmd, "words-file", &raceWordsFile, rc.WordsFile)
	applyConfig(cmd, "words", &raceWords, rc.Words)
	applyConfig(cmd, "caps", &raceCaps, rc.CapsPct)
	applyConfig(cmd, "punct", &racePunct, rc.PunctPct)
	applyConfig(cmd, "seed", &raceSeed, rc.Seed)
	applyConfig(cmd, "history", &raceHistory, rc.History)

	cfg := model.Config{
		Opponents:    raceOpponents,
		Pace:         racePace,
		PassagesPath: racePassages,
		WordsPath:    raceWordsFile,
		Words:        raceWords,
		CapsPct:      raceCaps,
		PunctPct:     racePunct,
		Seed:         raceSeed,
		History:      raceHistory,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runRaceCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadRaceConfig(cmd)
	if err != nil {
		return err
	}
	rnd := newRand(cfg.Seed)
	provider, err := buildProvider(cfg, rnd)
	if err != nil {
		return err
	}

	var st *store.Store
	if cfg.History {
		st, err = store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	model, err := tui.NewModel(cfg, provider, rnd, st)
	if err != nil {
		return err
	}
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// buildProvider picks the passage source: a word list generates passages,
// otherwise a passage file or the built-in passages are used.
func buildProvider(cfg model.Config, rnd *rand.Rand) (*passage.Provider, error) {
	if cfg.WordsPath != "" {
		words, err := passage.LoadWords(cfg.WordsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load word list: %w", err)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("word list %s has no usable words", cfg.WordsPath)
		}
		return passage.NewProvider(rnd, nil, passage.WithWords(words, cfg.Words, cfg.CapsPct, cfg.PunctPct))
	}
	passages := passage.Builtin
	if cfg.PassagesPath != "" {
		loaded, err := passage.LoadFile(cfg.PassagesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load passages: %w", err)
		}
		passages = loaded
	}
	provider, err := passage.NewProvider(rnd, passages)
	if err != nil {
		return nil, fmt.Errorf("failed to load passages: %w", err)
	}
	return provider, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show race history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N races")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig(statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return err
		}
		return stats.RenderReport(cmd.OutOrStdout(), report, 0)
	}

	model := statsui.NewModel(st, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func statsConfig(since string, last, window int) (model.StatsConfig, error) {
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.StatsConfig{Since: sinceTime, Last: last, CurveWindow: window}, nil
}

func newSimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run an opponent-only race in virtual time and print the standings",
		Args:  cobra.NoArgs,
		RunE:  runSimCmd,
	}
	addRaceFlags(cmd)
	return cmd
}

func runSimCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadRaceConfig(cmd)
	if err != nil {
		return err
	}
	rnd := newRand(cfg.Seed)
	provider, err := buildProvider(cfg, rnd)
	if err != nil {
		return err
	}
	res, profiles, err := simulate(provider, cfg, rnd)
	if err != nil {
		return err
	}
	return renderSim(cmd.OutOrStdout(), res, profiles, stats.TerminalWidth())
}

// simulate runs a race with an idle human until an opponent finishes.
func simulate(src race.PassageSource, cfg model.Config, rnd *rand.Rand) (race.Result, []race.Profile, error) {
	sched := race.NewManualScheduler(time.Now())
	r, err := race.New(src, race.Options{
		Opponents: cfg.Opponents,
		Pace:      cfg.Pace,
		Rand:      rnd,
		Scheduler: sched,
	})
	if err != nil {
		return race.Result{}, nil, fmt.Errorf("failed to create race: %w", err)
	}
	start := sched.Now()
	if err := r.Start(start); err != nil {
		return race.Result{}, nil, err
	}
	for r.State() == race.Running {
		if sched.Now().Sub(start) >= maxSimDuration {
			if err := r.Finish(sched.Now()); err != nil {
				return race.Result{}, nil, err
			}
			break
		}
		sched.Advance(race.TickInterval)
	}
	res, _ := r.Result()
	return res, r.Profiles(), nil
}

func renderSim(w io.Writer, res race.Result, profiles []race.Profile, width int) error {
	lines := []string{
		runewidth.Truncate(res.Passage, width, "..."),
		fmt.Sprintf("%d characters", runewidth.StringWidth(res.Passage)),
		"",
	}
	for _, p := range profiles {
		lines = append(lines, fmt.Sprintf("%-10s %.2f chars/s", p.Name, p.Speed))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := stats.RenderStandings(w, res.Standings); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	elapsed := stats.FormatClock(int(res.EndedAt.Sub(res.StartedAt) / time.Second))
	if _, err := fmt.Fprintf(w, "\n%s won in %s\n", res.Winner.Name, elapsed); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newPassagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passages",
		Short: "List the passages a race would use",
		Args:  cobra.NoArgs,
		RunE:  runPassagesCmd,
	}
	cmd.Flags().StringVar(&racePassages, "passages", "", "passage file (passages separated by blank lines)")
	cmd.Flags().StringVar(&raceWordsFile, "words-file", "", "word list to generate passages from")
	cmd.Flags().IntVar(&raceWords, "words", defaultWords, "words per generated passage")
	return cmd
}

func runPassagesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, "passages", &racePassages, fileCfg.Race.Passages)
	applyConfig(cmd, "words-file", &raceWordsFile, fileCfg.Race.WordsFile)
	applyConfig(cmd, "words", &raceWords, fileCfg.Race.Words)
	cfg := model.Config{
		PassagesPath: racePassages,
		WordsPath:    raceWordsFile,
		Words:        raceWords,
	}
	provider, err := buildProvider(cfg, newRand(0))
	if err != nil {
		return err
	}
	return listPassages(cmd.OutOrStdout(), provider, stats.TerminalWidth())
}

func listPassages(w io.Writer, provider *passage.Provider, width int) error {
	passages := provider.Passages()
	if passages == nil {
		if _, err := fmt.Fprintln(w, "Passages are generated from the word list, for example:"); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		passages = []string{provider.Next(), provider.Next(), provider.Next()}
	}
	for i, text := range passages {
		prefix := fmt.Sprintf("%2d. (%d) ", i+1, len([]rune(text)))
		line := prefix + runewidth.Truncate(text, width-runewidth.StringWidth(prefix), "...")
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// applyConfig copies a config file value into target unless the flag was
// set explicitly.
func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typerace configuration
# Uncomment a value to enable it. CLI flags override config values.

[race]
# opponents = %d          # Number of simulated opponents (1-%d)
# pace = %.1f             # Opponent speed multiplier
# passages = ""           # Passage file, passages separated by blank lines
# words-file = ""         # Word list; when set, passages are generated
# words = %d             # Words per generated passage
# caps = %.2f             # Probability of capitalized words (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# seed = 0                # Random seed (0 = time based)
# history = true          # Record races in the history database
`,
		defaultOpponents,
		maxOpponents,
		defaultPace,
		defaultWords,
		defaultCaps,
		defaultPunct,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Opponents < 1 || cfg.Opponents > maxOpponents {
		return fmt.Errorf("--opponents must be between 1 and %d", maxOpponents)
	}
	if cfg.Pace <= 0 {
		return fmt.Errorf("--pace must be > 0")
	}
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
