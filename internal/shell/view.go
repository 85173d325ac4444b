package shell

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/expense-tracker/pkg/transaction"
)

// View is something an action hands back for display
type View interface {
	Render(w io.Writer) error
}

// RowsView is the record table
type RowsView struct {
	Records []transaction.Record
}

// Render writes one row per record under the column headings
func (v RowsView) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Serial no\tItem Name\tItem Price\tPurchase Date")
	for _, r := range v.Records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Name, r.Price.String(), r.Date)
	}
	return tw.Flush()
}

// MessageView is a titled notice, the terminal version of a dialog box
type MessageView struct {
	Title string
	Lines []string
}

// Render writes the title followed by the indented lines
func (v MessageView) Render(w io.Writer) error {
	var b strings.Builder
	b.WriteString(v.Title)
	b.WriteString("\n")
	for _, line := range v.Lines {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Text returns the message lines joined by newlines
func (v MessageView) Text() string {
	return strings.Join(v.Lines, "\n")
}
