// Package main provides the CLI entrypoint for tapcount.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tapcount/internal/config"
	"github.com/verte-zerg/tapcount/internal/engine"
	"github.com/verte-zerg/tapcount/internal/log"
	"github.com/verte-zerg/tapcount/internal/model"
	"github.com/verte-zerg/tapcount/internal/stats"
	"github.com/verte-zerg/tapcount/internal/store"
	"github.com/verte-zerg/tapcount/internal/tui"
)

const (
	debugEnv         = "TAPCOUNT_DEBUG"
	defaultStatsLast = 50
)

var (
	_ engine.Persistence = (*store.Store)(nil)
	_ tui.Store          = (*store.Store)(nil)
)

var (
	playStep      int
	playTheme     string
	playSound     bool
	playAnimate   bool
	playExportDir string

	debugLogging bool
	closeLog     func()

	exportOut string
	statsLast int
	resetYes  bool
)

func main() {
	if err := run(newRootCmd(), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree and closes the debug log even when a command fails.
func run(cmd *cobra.Command, args []string) error {
	cmd.SetArgs(args)
	defer closeLogging()
	return cmd.Execute()
}

func closeLogging() {
	if closeLog != nil {
		closeLog()
		closeLog = nil
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.DefaultSettings()
	rootCmd := &cobra.Command{
		Use:           "tapcount",
		Short:         "TUI counter game",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			closeLog, err = initLogging()
			return err
		},
		RunE: runPlayCmd,
	}

	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "write a debug log (also enabled by "+debugEnv+")")
	rootCmd.PersistentFlags().StringVar(&playExportDir, "export-dir", defaults.ExportDir, "directory for exported JSON files")
	rootCmd.Flags().IntVar(&playStep, "step", defaults.Step, "step size for increase/decrease")
	rootCmd.Flags().StringVar(&playTheme, "theme", defaults.Theme, "theme: "+strings.Join(config.Themes, ", "))
	rootCmd.Flags().BoolVar(&playSound, "sound", defaults.Sound, "ring the terminal bell on clicks and achievements")
	rootCmd.Flags().BoolVar(&playAnimate, "animate", defaults.Animate, "pulse the counter on change")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func initLogging() (func(), error) {
	if !debugLogging && strings.TrimSpace(os.Getenv(debugEnv)) == "" {
		return nil, nil
	}
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	closeFn, err := log.Init(path)
	if err != nil {
		return nil, err
	}
	log.Info(log.CatConfig, "debug logging enabled", "path", path)
	return closeFn, nil
}

// resolveSettings layers defaults, the config file and explicitly set flags.
func resolveSettings(cmd *cobra.Command, fileCfg config.FileConfig) (model.Settings, error) {
	settings := config.DefaultSettings()
	if err := fileCfg.Play.Apply(&settings); err != nil {
		return model.Settings{}, err
	}
	applyIntFlag(cmd, "step", &settings.Step, playStep)
	applyStringFlag(cmd, "theme", &settings.Theme, playTheme)
	applyBoolFlag(cmd, "sound", &settings.Sound, playSound)
	applyBoolFlag(cmd, "animate", &settings.Animate, playAnimate)
	applyStringFlag(cmd, "export-dir", &settings.ExportDir, playExportDir)
	if err := validateSettings(&settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

func validateSettings(settings *model.Settings) error {
	if settings.Step < 1 {
		return fmt.Errorf("--step must be >= 1")
	}
	theme, err := config.NormalizeTheme(settings.Theme)
	if err != nil {
		return fmt.Errorf("--%w", err)
	}
	settings.Theme = theme
	if strings.TrimSpace(settings.ExportDir) == "" {
		return fmt.Errorf("--export-dir must not be empty")
	}
	return nil
}

func loadSettings(cmd *cobra.Command) (model.Settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	return resolveSettings(cmd, fileCfg)
}

func openStore(settings model.Settings) (*store.Store, func(), error) {
	storePath := config.DefaultDBPath()
	if err := os.MkdirAll(filepath.Dir(storePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.Open(storePath, store.WithExportDir(settings.ExportDir))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(settings)
	if err != nil {
		return err
	}
	defer closeStore()

	if !cmd.Flags().Changed("theme") {
		settings.Theme = savedTheme(context.Background(), st, settings.Theme)
	}
	log.Info(log.CatConfig, "starting", "step", settings.Step, "theme", settings.Theme,
		"sound", settings.Sound, "animate", settings.Animate)

	m := tui.NewModel(settings, st)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// savedTheme returns the theme chosen in a previous session, or fallback.
func savedTheme(ctx context.Context, st *store.Store, fallback string) string {
	name, err := st.LoadTheme(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.ErrorErr(log.CatStore, "failed to load theme", err)
		}
		return fallback
	}
	theme, err := config.NormalizeTheme(name)
	if err != nil {
		log.Warn(log.CatStore, "ignoring saved theme", "theme", name)
		return fallback
	}
	return theme
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
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved data to a JSON file",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "output directory (default: --export-dir)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(settings)
	if err != nil {
		return err
	}
	defer closeStore()

	now := time.Now()
	state, found, err := st.LoadState(context.Background(), model.NewState(now))
	if err != nil {
		return fmt.Errorf("failed to load saved data: %w", err)
	}
	if !found {
		return fmt.Errorf("no saved data found")
	}
	dir := settings.ExportDir
	if strings.TrimSpace(exportOut) != "" {
		dir = exportOut
	}
	path, err := store.ExportFile(dir, state, now)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show saved stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLast, "last", defaultStatsLast, "limit the save history to the last N saves (0 = all)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(settings)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := stats.BuildReport(context.Background(), st, statsLast, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build stats: %w", err)
	}
	if err := report.Render(cmd.OutOrStdout(), 0); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete saved data and theme",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "do not ask for confirmation")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Delete saved counter data and theme? [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			logErrln("Aborted.")
			return nil
		}
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(settings)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := st.ClearAll(context.Background()); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}
	logErrln("Saved data cleared.")
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyIntFlag(cmd *cobra.Command, name string, target *int, value int) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyBoolFlag(cmd *cobra.Command, name string, target *bool, value bool) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func defaultConfigTemplate() string {
	defaults := config.DefaultSettings()
	return fmt.Sprintf(`# tapcount configuration
# Uncomment a value to enable it. CLI flags override config values.

[play]
# step = %d               # Step size for increase/decrease
# theme = %q       # One of: %s
# sound = %t            # Ring the terminal bell
# animate = %t          # Pulse the counter on change
# export-dir = %q
`,
		defaults.Step,
		defaults.Theme,
		strings.Join(config.Themes, ", "),
		defaults.Sound,
		defaults.Animate,
		defaults.ExportDir,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
