package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "budgetboard/internal/log"
	"budgetboard/internal/view"
)

// SheetsConfig locates the target spreadsheet and its credentials.
type SheetsConfig struct {
	SpreadsheetID string
	SheetName     string
	// CredentialsFile is a service account JSON key; CredentialsJSON takes precedence.
	CredentialsFile string
	CredentialsJSON []byte
}

// Sheets appends exports to a Google Sheets range.
type Sheets struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

// NewSheets creates a Sheets exporter authenticated with a service account. Extra client
// options are appended after the credentials.
func NewSheets(ctx context.Context, cfg SheetsConfig, logger *applog.Logger, opts ...goption.ClientOption) (*Sheets, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = applog.Default(applog.ComponentExport)
	}

	if len(opts) == 0 {
		creds := cfg.CredentialsJSON
		if len(creds) == 0 {
			if cfg.CredentialsFile == "" {
				return nil, errors.New("missing service account credentials")
			}
			var err error
			creds, err = os.ReadFile(cfg.CredentialsFile)
			if err != nil {
				return nil, fmt.Errorf("read service account file: %w", err)
			}
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewSheetsWithService(svc, cfg, logger), nil
}

// NewSheetsWithService wraps an existing service.
func NewSheetsWithService(svc *gsheet.Service, cfg SheetsConfig, logger *applog.Logger) *Sheets {
	name := strings.TrimSpace(cfg.SheetName)
	if name == "" {
		name = SheetName
	}
	if logger == nil {
		logger = applog.Default(applog.ComponentExport)
	}
	return &Sheets{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetName: name, logger: logger}
}

func (s *Sheets) Export(ctx context.Context, d view.Dashboard) error {
	rng := fmt.Sprintf("%s!A:D", s.sheetName)
	vr := &gsheet.ValueRange{Values: Rows(d)}

	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", s.sheetName, err)
	}

	updated := ""
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	s.logger.InfoContext(ctx, "Exported dashboard to Google Sheets",
		applog.FieldOperation, applog.OpExport,
		applog.FieldRevision, d.Revision,
		applog.FieldCount, len(d.Table),
		"range", updated)
	return nil
}
