package main

import (
	"github.com/example/expense-tracker/internal/shell"
	"github.com/example/expense-tracker/internal/storage"
	"github.com/spf13/cobra"
)

// fieldFlags are the form inputs shared by save and update
type fieldFlags struct {
	name  string
	price string
	date  string
	today bool
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "item name")
	cmd.Flags().StringVar(&f.price, "price", "", "item price")
	cmd.Flags().StringVar(&f.date, "date", "", "purchase date (free text)")
	cmd.Flags().BoolVar(&f.today, "today", false, "use the current date as the purchase date")
}

func (a *app) resolveDate(f *fieldFlags) string {
	if f.today {
		return shell.Today(a.now, a.cfg.Display.DateFormat)
	}
	return f.date
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, shell.List{})
		},
	}
}

func newSaveCmd(a *app) *cobra.Command {
	f := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a new record",
		Long: `Save a new purchase record. The record gets the next serial number.

Example:
  expense-tracker save --name Coffee --price 3.50 --date "01 January 2024"
  expense-tracker save --name Lunch --price 12 --today`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, shell.Save{
				ItemName: f.name,
				Price:    f.price,
				Date:     a.resolveDate(f),
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	f := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change the name, price or date of a record",
		Long: `Change a record selected by its serial number. Fields that are not
given keep their current value. The serial number never changes.

Example:
  expense-tracker update 3 --price 4.20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := shell.ParseID(args[0])
			if err != nil {
				return a.fail(cmd, err)
			}
			ledger, err := a.openLedger()
			if err != nil {
				return a.fail(cmd, err)
			}
			current, err := ledger.Get(id)
			if err != nil {
				return a.fail(cmd, err)
			}

			action := shell.Update{ID: id, ItemName: current.Name, Price: current.Price.String(), Date: current.Date}
			if cmd.Flags().Changed("name") {
				action.ItemName = f.name
			}
			if cmd.Flags().Changed("price") {
				action.Price = f.price
			}
			if cmd.Flags().Changed("date") || f.today {
				action.Date = a.resolveDate(f)
			}
			return a.run(cmd, action)
		},
	}
	f.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := shell.ParseID(args[0])
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.run(cmd, shell.Delete{ID: id})
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := shell.ParseID(args[0])
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.run(cmd, shell.Show{ID: id})
		},
	}
}

func newTotalSpentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "total-spent",
		Short: "Show the total of all saved records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, shell.TotalSpent{Currency: a.cfg.Display.Currency})
		},
	}
}

func newTotalBalanceCmd(a *app) *cobra.Command {
	var budget string
	cmd := &cobra.Command{
		Use:   "total-balance",
		Short: "Show the total spent and what is left of a budget",
		Long: `Show the total spent and the remaining balance of a budget.
Without --budget the configured budget is used.

Example:
  expense-tracker total-balance --budget 5000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("budget") {
				budget = a.cfg.Budget
			}
			return a.run(cmd, shell.TotalBalance{Budget: budget, Currency: a.cfg.Display.Currency})
		},
	}
	cmd.Flags().StringVar(&budget, "budget", "", "budget to compare against")
	return cmd
}

func newTodayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Print the current date in the purchase date format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := shell.CurrentDate{Now: a.now, Layout: a.cfg.Display.DateFormat}
			if err := shell.Dispatch(nil, action, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
				return reportedError{err}
			}
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all records to stdout as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := storage.CodecByName(format)
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.run(cmd, shell.Export{Codec: codec})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}
