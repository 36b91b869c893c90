// Command steadhold runs the settlement management simulation: a seeded,
// deterministic day-by-day struggle to keep one settlement fed, calm and
// governed until the victory day.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/talgya/steadhold/internal/api"
	"github.com/talgya/steadhold/internal/engine"
	"github.com/talgya/steadhold/internal/persistence"
	"github.com/talgya/steadhold/internal/tui"
	"github.com/talgya/steadhold/internal/tuning"
)

var (
	flagSeed     string
	flagTuning   string
	flagDB       string
	flagLogLevel string

	flagPort     int
	flagInterval int
	flagResume   bool

	flagDays  int
	flagLimit int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "steadhold",
		Short: "Deterministic settlement management simulation",
		Long: `Steadhold simulates one settlement day by day: production, hunger,
unrest, emigration and the slow erosion of legitimacy. Same seed, same
decisions, same run.`,
	}
	rootCmd.PersistentFlags().StringVarP(&flagSeed, "seed", "s", "", "Run seed (random when empty)")
	rootCmd.PersistentFlags().StringVarP(&flagTuning, "tuning", "t", "", "Path to a YAML tuning file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "data/steadhold.db", "Run ledger path (empty disables persistence)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a settlement on the clock with the HTTP API",
		Run:   runServer,
	}
	runCmd.Flags().IntVarP(&flagPort, "port", "p", 8080, "HTTP API port")
	runCmd.Flags().IntVarP(&flagInterval, "interval", "i", 10, "Seconds per simulated day")
	runCmd.Flags().BoolVar(&flagResume, "resume", false, "Resume the most recent unfinished run with this seed")

	stepCmd := &cobra.Command{
		Use:   "step",
		Short: "Advance a run a fixed number of days and report",
		Run:   runStep,
	}
	stepCmd.Flags().IntVarP(&flagDays, "days", "n", 30, "Days to simulate")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Play interactively in the terminal",
		Run:   runPlay,
	}
	playCmd.Flags().IntVarP(&flagInterval, "interval", "i", 2, "Seconds per simulated day")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show the run ledger",
		Run:   runHistory,
	}
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Runs to show")

	rootCmd.AddCommand(runCmd, stepCmd, playCmd, historyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	switch flagLogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func loadTuning() *tuning.Tuning {
	if flagTuning == "" {
		return tuning.Default()
	}
	tn, err := tuning.Load(flagTuning)
	if err != nil {
		slog.Error("failed to load tuning", "path", flagTuning, "error", err)
		os.Exit(1)
	}
	return tn
}

func resolveSeed() string {
	if flagSeed != "" {
		return flagSeed
	}
	seed := uuid.NewString()
	slog.Info("no seed given, generated one", "seed", seed)
	return seed
}

func openLedger() *persistence.DB {
	if flagDB == "" {
		return nil
	}
	if dir := filepath.Dir(flagDB); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(flagDB)
	if err != nil {
		slog.Error("failed to open run ledger", "path", flagDB, "error", err)
		os.Exit(1)
	}
	return db
}

func runServer(cmd *cobra.Command, args []string) {
	setupLogging()
	seed := resolveSeed()
	tn := loadTuning()

	// ── Ledger ────────────────────────────────────────────────────────
	db := openLedger()
	if db != nil {
		defer db.Close()
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.New(seed, tn)
	site := eng.Site()
	slog.Info("settlement founded",
		"run_id", eng.RunID(),
		"seed", seed,
		"fertility", fmt.Sprintf("%.2f", site.Fertility),
		"quarry", fmt.Sprintf("%.2f", site.Quarry),
		"shelter", fmt.Sprintf("%.2f", site.Shelter),
	)

	if db != nil {
		if flagResume {
			resumeRun(db, eng, seed)
		}
		persistence.Attach(db, eng)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	server := &api.Server{
		Eng:      eng,
		DB:       db,
		Port:     flagPort,
		AdminKey: os.Getenv("STEADHOLD_ADMIN_KEY"),
	}
	server.Start()

	// ── Clock ─────────────────────────────────────────────────────────
	interval := time.Duration(flagInterval) * time.Second
	eng.StartClock(interval)
	slog.Info("clock running", "interval", interval)

	// ── Shutdown ──────────────────────────────────────────────────────
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	eng.StopClock()
	if db != nil {
		if err := db.SaveEvents(eng.RunID(), eng.Journal(0)); err != nil {
			slog.Error("final journal save failed", "error", err)
		}
		st := eng.ExportState()
		if err := db.SaveState(eng.RunID(), &st); err != nil {
			slog.Error("final state save failed", "error", err)
		}
	}
	slog.Info("shut down", "day", eng.Snapshot().Day)
}

// resumeRun restores the most recent unfinished run with the same seed, if
// one is stored. The restored trajectory continues under the new run ID.
func resumeRun(db *persistence.DB, eng *engine.Engine, seed string) {
	rows, err := db.History(100)
	if err != nil {
		slog.Warn("resume lookup failed", "error", err)
		return
	}
	for _, row := range rows {
		if row.Seed != seed || row.EndedAt.Valid {
			continue
		}
		st, err := db.LoadState(row.ID)
		if err != nil {
			slog.Warn("resume load failed", "run", row.ID, "error", err)
			return
		}
		eng.RestoreState(*st)
		slog.Info("resumed stored run", "from_run", row.ID, "day", st.Day)
		return
	}
	slog.Info("no unfinished run to resume", "seed", seed)
}

func runStep(cmd *cobra.Command, args []string) {
	setupLogging()
	seed := resolveSeed()
	eng := engine.New(seed, loadTuning())

	titleColor := color.New(color.FgCyan, color.Bold)
	titleColor.Printf("steadhold - seed %q, %d days\n\n", seed, flagDays)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Day", "Pop", "Food", "Material", "Tooling", "Morale", "Legit", "Hunger", "Note"}),
	)

	for i := 0; i < flagDays; i++ {
		out := eng.Step()
		snap := eng.Snapshot()

		note := ""
		switch {
		case out.Ended:
			note = out.EndReason.String()
		case out.Deaths > 0:
			note = fmt.Sprintf("%d dead", out.Deaths)
		case out.Emigrants > 0:
			note = fmt.Sprintf("%d left", out.Emigrants)
		case out.Triggered != nil:
			note = out.Triggered.String()
		case out.Deficit > 0:
			note = fmt.Sprintf("short %.1f", out.Deficit)
		}

		_ = table.Append([]string{
			strconv.Itoa(out.Day),
			strconv.Itoa(snap.Population),
			fmt.Sprintf("%.1f", snap.Food),
			fmt.Sprintf("%.1f", snap.Material),
			fmt.Sprintf("%.1f", snap.Tooling),
			fmt.Sprintf("%.1f", snap.Morale),
			fmt.Sprintf("%.1f", snap.Legitimacy),
			strconv.Itoa(snap.HungerStreak),
			note,
		})

		// An unattended run declines every pending choice.
		if snap.Event != nil {
			eng.ResolveEvent(len(snap.Event.Options) - 1)
		}
		if out.Ended {
			break
		}
	}
	_ = table.Render()

	snap := eng.Snapshot()
	fmt.Println()
	if snap.Ended {
		if snap.EndReason == engine.EndVictory.String() {
			color.New(color.FgGreen, color.Bold).Printf("the settlement endured: %s on day %d\n", snap.EndReason, snap.Day)
		} else {
			color.New(color.FgRed, color.Bold).Printf("the settlement fell: %s on day %d\n", snap.EndReason, snap.Day)
		}
	} else {
		color.New(color.FgYellow).Printf("still standing on day %d (%s)\n", snap.Day, snap.Status)
	}
}

func runPlay(cmd *cobra.Command, args []string) {
	setupLogging()
	eng := engine.New(resolveSeed(), loadTuning())

	app := &tui.App{Eng: eng, Interval: time.Duration(flagInterval) * time.Second}
	if err := app.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runHistory(cmd *cobra.Command, args []string) {
	setupLogging()
	db := openLedger()
	if db == nil {
		color.Red("no run ledger configured (--db)")
		os.Exit(1)
	}
	defer db.Close()

	rows, err := db.History(flagLimit)
	if err != nil {
		color.Red("ledger read failed: %v", err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		color.Yellow("no runs recorded yet")
		return
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Run", "Seed", "Started", "Ended", "Reason", "Final Day"}),
	)
	for _, r := range rows {
		_ = table.Append(historyRow(r))
	}
	_ = table.Render()
}

// historyRow renders one ledger entry as a plain-ASCII table row.
func historyRow(r persistence.RunRow) []string {
	ended := "-"
	if r.EndedAt.Valid {
		ended = r.EndedAt.String
	}
	return []string{
		r.ID[:8],
		r.Seed,
		r.StartedAt,
		ended,
		r.EndReason,
		strconv.Itoa(r.FinalDay),
	}
}
