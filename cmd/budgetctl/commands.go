package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"budgetboard/internal/app"
	"budgetboard/internal/cli"
	"budgetboard/internal/controller"
)

type addCmd struct {
	Description string `short:"d" required:"" help:"What the money was spent on."`
	Amount      string `short:"a" required:"" help:"Amount, e.g. 4.50."`
	Category    string `short:"c" required:"" help:"food, transportation, entertainment, housing, health, education or others."`
	Date        string `help:"Date as YYYY-MM-DD. Defaults to today."`
}

func (c *addCmd) Run(rc *runContext) error {
	in := controller.FormInput{
		Description: c.Description,
		Amount:      c.Amount,
		Category:    c.Category,
		Date:        c.Date,
	}
	if in.Date == "" {
		in.Date = rc.app.Form.Blank().Date
	}

	res := rc.app.Form.Submit(rc.ctx, in)
	if !res.OK {
		var msgs []string
		for _, m := range []string{res.Errors.Description, res.Errors.Amount, res.Errors.Category, res.Errors.Date} {
			if m != "" {
				msgs = append(msgs, m)
			}
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	fmt.Fprintf(rc.out, "%s (%s)\n", controller.MsgExpenseAdded, res.Expense.ID)
	return nil
}

type rmCmd struct {
	ID string `arg:"" help:"Expense id as shown by list."`
}

func (c *rmCmd) Run(rc *runContext) error {
	before := len(rc.app.Ledger.Expenses())
	rc.app.Ledger.Remove(rc.ctx, c.ID)
	if len(rc.app.Ledger.Expenses()) == before {
		fmt.Fprintf(rc.errOut, "no expense with id %s\n", c.ID)
		return nil
	}
	fmt.Fprintf(rc.out, "Removed %s\n", c.ID)
	return nil
}

type budgetCmd struct {
	Amount string `arg:"" help:"Budget amount, e.g. 1500."`
}

func (c *budgetCmd) Run(rc *runContext) error {
	res := rc.app.Budget.Set(rc.ctx, c.Amount)
	if !res.OK {
		return errors.New(res.Message)
	}
	fmt.Fprintln(rc.out, res.Message)
	return nil
}

type listCmd struct{}

func (c *listCmd) Run(rc *runContext) error {
	fmt.Fprintln(rc.out, cli.RenderTable(rc.app.Dashboard(), rc.styles))
	return nil
}

type summaryCmd struct{}

func (c *summaryCmd) Run(rc *runContext) error {
	fmt.Fprintln(rc.out, cli.RenderSummary(rc.app.Dashboard(), rc.styles))
	return nil
}

type themeCmd struct {
	Toggle bool `help:"Switch between light and dark."`
}

func (c *themeCmd) Run(rc *runContext) error {
	theme := rc.app.Theme.Theme()
	if c.Toggle {
		theme = rc.app.Theme.Toggle(rc.ctx)
	}
	fmt.Fprintln(rc.out, theme)
	return nil
}

type exportCmd struct {
	Format string `enum:"xlsx,sheets" default:"xlsx" help:"xlsx or sheets."`
	Out    string `short:"o" default:"expenses.xlsx" help:"Workbook path for xlsx."`
}

func (c *exportCmd) Run(rc *runContext) error {
	if c.Format != app.FormatXLSX {
		exp, err := rc.app.Exporter(rc.ctx, c.Format, nil)
		if err != nil {
			return err
		}
		d := rc.app.Dashboard()
		if err := exp.Export(rc.ctx, d); err != nil {
			return fmt.Errorf("export %s: %w", c.Format, err)
		}
		fmt.Fprintf(rc.out, "Appended %d expenses to Google Sheets\n", len(d.Table))
		return nil
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.Out, err)
	}
	defer f.Close()

	exp, err := rc.app.Exporter(rc.ctx, c.Format, f)
	if err != nil {
		return err
	}
	if err := exp.Export(rc.ctx, rc.app.Dashboard()); err != nil {
		return fmt.Errorf("export %s: %w", c.Format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c.Out, err)
	}
	fmt.Fprintf(rc.out, "Wrote %s\n", c.Out)
	return nil
}
