// Package shell maps user actions to store operations and turns the results
// into views. Each action calls exactly one store operation.
package shell

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/expense-tracker/internal/storage"
	"github.com/example/expense-tracker/internal/store"
	"github.com/example/expense-tracker/pkg/transaction"
	"github.com/shopspring/decimal"
)

// Ledger is the part of the store the shell drives
type Ledger interface {
	Create(name, price, date string) (transaction.Record, error)
	Update(id int64, name, price, date string) (transaction.Record, error)
	Delete(id int64) error
	Get(id int64) (transaction.Record, error)
	List() []transaction.Record
	TotalSpent() (decimal.Decimal, error)
	TotalBalance(budget string) (spent, remaining decimal.Decimal, err error)
}

// Action is a single user action
type Action interface {
	Name() string
	Run(l Ledger) (View, error)
}

// Dispatch runs a and renders its view to out. On failure the error is
// rendered as a message to errOut and also returned.
func Dispatch(l Ledger, a Action, out, errOut io.Writer) error {
	v, err := a.Run(l)
	if err != nil {
		if rerr := ErrorView(err).Render(errOut); rerr != nil {
			return rerr
		}
		return err
	}
	return v.Render(out)
}

// ErrorView turns an operation failure into a message for the user
func ErrorView(err error) MessageView {
	var (
		verr *transaction.ValidationError
		nf   *store.NotFoundError
		rerr *storage.ReadError
		werr *storage.WriteError
	)
	title := "Error"
	switch {
	case errors.As(err, &rerr), errors.As(err, &werr):
		title = "Storage Error"
	case errors.As(err, &verr):
		title = "Input Error"
	case errors.As(err, &nf):
		title = "Not Found"
	}
	return MessageView{Title: title, Lines: []string{err.Error()}}
}

// ParseID converts a row id typed by the user
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &transaction.ValidationError{Field: transaction.FieldID, Reason: fmt.Sprintf("%q is not a record id", raw)}
	}
	return id, nil
}

// FormatMoney puts the currency prefix in front of an amount
func FormatMoney(currency string, amount decimal.Decimal) string {
	if currency == "" {
		return amount.String()
	}
	return currency + " " + amount.String()
}

// List shows every record
type List struct{}

func (List) Name() string { return "list" }

func (List) Run(l Ledger) (View, error) {
	return RowsView{Records: l.List()}, nil
}

// Save creates a record from raw form input
type Save struct {
	ItemName string
	Price    string
	Date     string
}

func (Save) Name() string { return "save" }

func (a Save) Run(l Ledger) (View, error) {
	r, err := l.Create(a.ItemName, a.Price, a.Date)
	if err != nil {
		return nil, err
	}
	return RowsView{Records: []transaction.Record{r}}, nil
}

// Update replaces the fields of the selected record
type Update struct {
	ID       int64
	ItemName string
	Price    string
	Date     string
}

func (Update) Name() string { return "update" }

func (a Update) Run(l Ledger) (View, error) {
	r, err := l.Update(a.ID, a.ItemName, a.Price, a.Date)
	if err != nil {
		return nil, err
	}
	return RowsView{Records: []transaction.Record{r}}, nil
}

// Delete removes the selected record
type Delete struct {
	ID int64
}

func (Delete) Name() string { return "delete" }

func (a Delete) Run(l Ledger) (View, error) {
	if err := l.Delete(a.ID); err != nil {
		return nil, err
	}
	return MessageView{Title: "Record Deleted", Lines: []string{fmt.Sprintf("Deleted record %d", a.ID)}}, nil
}

// Show displays a single record
type Show struct {
	ID int64
}

func (Show) Name() string { return "show" }

func (a Show) Run(l Ledger) (View, error) {
	r, err := l.Get(a.ID)
	if err != nil {
		return nil, err
	}
	return RowsView{Records: []transaction.Record{r}}, nil
}

// TotalSpent reports the stored total
type TotalSpent struct {
	Currency string
}

func (TotalSpent) Name() string { return "total-spent" }

func (a TotalSpent) Run(l Ledger) (View, error) {
	total, err := l.TotalSpent()
	if err != nil {
		return nil, err
	}
	return MessageView{
		Title: "Overall Expenses",
		Lines: []string{"Total Expense: " + FormatMoney(a.Currency, total)},
	}, nil
}

// TotalBalance reports the stored total against a budget
type TotalBalance struct {
	Budget   string
	Currency string
}

func (TotalBalance) Name() string { return "total-balance" }

func (a TotalBalance) Run(l Ledger) (View, error) {
	spent, remaining, err := l.TotalBalance(a.Budget)
	if err != nil {
		return nil, err
	}
	return MessageView{
		Title: "Current Balance",
		Lines: []string{
			"Total Expense: " + FormatMoney(a.Currency, spent),
			"Balance Remaining: " + FormatMoney(a.Currency, remaining),
		},
	}, nil
}

// CurrentDate shows today's date in the configured layout. It does not touch
// the store.
type CurrentDate struct {
	Now    func() time.Time
	Layout string
}

func (CurrentDate) Name() string { return "today" }

func (a CurrentDate) Run(Ledger) (View, error) {
	return MessageView{Title: "Current Date", Lines: []string{Today(a.Now, a.Layout)}}, nil
}

// Today formats the current date. A nil now uses time.Now.
func Today(now func() time.Time, layout string) string {
	if now == nil {
		now = time.Now
	}
	return now().Format(layout)
}

// Export writes the records in a store format
type Export struct {
	Codec storage.Codec
}

func (Export) Name() string { return "export" }

func (a Export) Run(l Ledger) (View, error) {
	data, err := a.Codec.Marshal(l.List())
	if err != nil {
		return nil, err
	}
	return RawView(data), nil
}

// RawView writes bytes unchanged
type RawView []byte

func (v RawView) Render(w io.Writer) error {
	_, err := w.Write(v)
	return err
}
