// Package app wires the store, ledger, view and controllers into one running instance.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"budgetboard/internal/amqp"
	"budgetboard/internal/backend"
	"budgetboard/internal/config"
	"budgetboard/internal/controller"
	"budgetboard/internal/export"
	"budgetboard/internal/kv"
	"budgetboard/internal/ledger"
	applog "budgetboard/internal/log"
	"budgetboard/internal/persistence"
	"budgetboard/internal/schedule"
	"budgetboard/internal/view"
)

// Export formats.
const (
	FormatXLSX   = "xlsx"
	FormatSheets = "sheets"
)

// Options overrides collaborators, mostly for tests.
type Options struct {
	Logger       *applog.Logger
	StoreFactory backend.Factory
	// Store bypasses the factory when set.
	Store     kv.Store
	Scheduler schedule.Scheduler
	Now       func() time.Time
	IDFunc    ledger.IDFunc
}

// App holds every wired component.
type App struct {
	Config *config.Config
	Logger *applog.Logger

	Store       kv.Store
	Persistence *persistence.Adapter
	Ledger      *ledger.Ledger
	View        *view.Synchronizer
	Latest      *view.Latest

	// Status shows persistence warnings.
	Status *controller.Banner
	Form   *controller.FormController
	Budget *controller.BudgetController
	Theme  *controller.ThemeController

	// Publisher is nil when AMQP is disabled or unreachable.
	Publisher *amqp.Publisher

	storeResult *backend.StoreResult
	amqpClient  *amqp.Client
}

// New loads persisted state and builds the component graph. The ledger is constructed
// first and handed to everything that needs it.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Default(applog.ComponentApp)
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = schedule.Timers{}
	}

	a := &App{Config: cfg, Logger: logger}

	if opts.Store != nil {
		a.Store = opts.Store
	} else {
		factory := opts.StoreFactory
		if factory == nil {
			factory = backend.NewFactory(logger.WithComponent(applog.ComponentStorage))
		}
		storeCfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			return nil, err
		}
		res, err := factory.CreateStore(ctx, storeCfg)
		if err != nil {
			return nil, fmt.Errorf("create store: %w", err)
		}
		a.storeResult = res
		a.Store = res.Store
	}

	formatter, err := view.NewFormatter(cfg.Locale, cfg.CurrencySymbol)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Status = controller.NewBanner(sched, cfg.NoticeDelay)
	a.Persistence = persistence.New(a.Store, a.Status, logger.WithComponent(applog.ComponentPersistence))

	records, budget := a.Persistence.Load(ctx)
	ledgerOpts := []ledger.Option{ledger.WithLogger(logger.WithComponent(applog.ComponentLedger))}
	if opts.IDFunc != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithIDFunc(opts.IDFunc))
	}
	a.Ledger = ledger.New(a.Persistence, records, budget, ledgerOpts...)

	controllerLog := logger.WithComponent(applog.ComponentController)
	a.Theme = controller.NewThemeController(a.Store,
		controller.RedrawFunc(func(ctx context.Context) { a.Ledger.Refresh(ctx) }),
		controllerLog)
	a.Theme.Load(ctx)

	a.Latest = &view.Latest{}
	a.View = view.NewSynchronizer(formatter, logger.WithComponent(applog.ComponentView), a.Latest)
	a.Ledger.Subscribe(a.View)

	a.Form = controller.NewFormController(a.Ledger, controller.NewBanner(sched, cfg.NoticeDelay), opts.Now, controllerLog)
	a.Budget = controller.NewBudgetController(a.Ledger, controller.NewBanner(sched, cfg.NoticeDelay), controllerLog)

	if cfg.AMQPEnabled() {
		a.connectPublisher(ctx)
	}

	a.Ledger.Refresh(ctx)

	snap := a.Ledger.Snapshot()
	logger.InfoContext(ctx, "Ledger loaded",
		applog.FieldCount, len(snap.Expenses),
		applog.FieldBudgetCents, snap.Budget.Cents,
		"theme", string(a.Theme.Theme()))
	return a, nil
}

func (a *App) connectPublisher(ctx context.Context) {
	amqpLog := a.Logger.WithComponent(applog.ComponentAMQP)
	client, err := amqp.NewClient(ctx, amqp.Config{
		URL:      a.Config.AMQPURL,
		Exchange: a.Config.AMQPExchange,
		Queue:    a.Config.AMQPQueue,
	}, amqpLog)
	if err != nil {
		amqpLog.WarnContext(ctx, "Failed to initialize AMQP client, continuing without event publishing",
			applog.FieldError, err.Error())
		return
	}
	a.amqpClient = client
	a.Publisher = amqp.NewPublisher(client, amqp.DefaultBuffer, amqpLog)
	a.Ledger.Subscribe(a.Publisher)
}

// Dashboard returns the current projection.
func (a *App) Dashboard() view.Dashboard {
	if d, ok := a.Latest.Load(); ok {
		return d
	}
	return view.Project(a.Ledger.Snapshot(), a.View.Formatter())
}

// RunPublisher publishes ledger events until ctx is done. It returns at once when
// publishing is disabled.
func (a *App) RunPublisher(ctx context.Context) error {
	if a.Publisher == nil {
		return nil
	}
	return a.Publisher.Run(ctx)
}

// Exporter returns the exporter for format. w receives xlsx output.
func (a *App) Exporter(ctx context.Context, format string, w io.Writer) (export.Exporter, error) {
	switch format {
	case FormatXLSX:
		if w == nil {
			return nil, errors.New("xlsx export needs an output")
		}
		return export.XLSX{W: w}, nil
	case FormatSheets:
		if !a.Config.SheetsEnabled() {
			return nil, errors.New("google sheets export is not configured (set GOOGLE_SPREADSHEET_ID)")
		}
		return export.NewSheets(ctx, export.SheetsConfig{
			SpreadsheetID:   a.Config.GoogleSpreadsheetID,
			SheetName:       a.Config.GoogleSheetName,
			CredentialsFile: a.Config.GoogleServiceAccountFile,
		}, a.Logger.WithComponent(applog.ComponentExport))
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// Ready reports whether the store can serve requests.
func (a *App) Ready(ctx context.Context) error {
	if a.storeResult == nil || a.storeResult.Ready == nil {
		return nil
	}
	return a.storeResult.Ready(ctx)
}

// Close releases the store, the broker connection and pending banner timers.
func (a *App) Close() error {
	var errs []error
	for _, b := range []*controller.Banner{a.Status, a.formBanner(), a.budgetBanner()} {
		if b != nil {
			b.Close()
		}
	}
	if a.amqpClient != nil {
		errs = append(errs, a.amqpClient.Close())
	}
	errs = append(errs, a.storeResult.Close())
	return errors.Join(errs...)
}

func (a *App) formBanner() *controller.Banner {
	if a.Form == nil {
		return nil
	}
	return a.Form.Banner()
}

func (a *App) budgetBanner() *controller.Banner {
	if a.Budget == nil {
		return nil
	}
	return a.Budget.Banner()
}
