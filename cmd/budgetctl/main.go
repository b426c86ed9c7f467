// Command budgetctl drives the ledger from the terminal using the same store and configuration
// as the dashboard server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"budgetboard/internal/app"
	"budgetboard/internal/cli"
	applog "budgetboard/internal/log"
	"budgetboard/internal/schedule"
)

// runContext is handed to every command.
type runContext struct {
	ctx    context.Context
	app    *app.App
	out    io.Writer
	errOut io.Writer
	styles cli.Styles
}

var cmdline struct {
	EnvFile []string `name:"env-file" help:"Dotenv files to load before reading the environment." default:".env"`
	Verbose bool     `short:"v" help:"Log at the configured LOG_LEVEL instead of warn."`

	Add     addCmd     `cmd:"" help:"Record an expense."`
	Rm      rmCmd      `cmd:"" help:"Remove an expense by id."`
	Budget  budgetCmd  `cmd:"" help:"Set the budget."`
	List    listCmd    `cmd:"" help:"List expenses, newest first."`
	Summary summaryCmd `cmd:"" help:"Show budget, total, balance and progress."`
	Theme   themeCmd   `cmd:"" help:"Show or toggle the dashboard theme."`
	Export  exportCmd  `cmd:"" help:"Export expenses to a workbook or Google Sheets."`
}

func main() {
	kctx := kong.Parse(&cmdline,
		kong.Name("budgetctl"),
		kong.Description("Personal budget ledger."),
		kong.UsageOnError())

	if err := cli.LoadEnvFile(cmdline.EnvFile...); err != nil {
		kctx.FatalIfErrorf(err)
	}
	cfg, err := cli.LoadAndValidateConfig()
	kctx.FatalIfErrorf(err)

	level := "warn"
	if cmdline.Verbose {
		level = cfg.LogLevel
	}
	logger := cli.SetupLogger(level, os.Stderr)

	ctx, stop := cli.GracefulShutdown(context.Background())
	defer stop()

	// Notices never need to expire within one invocation.
	a, err := app.New(ctx, cfg, app.Options{Logger: logger, Scheduler: schedule.NewManual()})
	if err != nil {
		logger.ErrorType(ctx, "Failed to open ledger", applog.ErrorTypeInternal, err)
		os.Exit(1)
	}

	rc := &runContext{ctx: ctx, app: a, out: os.Stdout, errOut: os.Stderr, styles: cli.DefaultStyles()}
	runErr := kctx.Run(rc)
	rc.reportStatus()
	if err := a.Close(); err != nil {
		logger.WarnContext(ctx, "Failed to close ledger", applog.FieldError, err.Error())
	}
	kctx.FatalIfErrorf(runErr)
}

// reportStatus prints a pending persistence warning to stderr.
func (rc *runContext) reportStatus() {
	if n := rc.app.Status.Current(); n.Visible {
		fmt.Fprintln(rc.errOut, "warning:", n.Text)
	}
}
