package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainFunction(t *testing.T) {
	// Test that rootCmd is defined and has expected properties
	assert.NotNil(t, rootCmd, "rootCmd should be defined")
	assert.Equal(t, "expense-tracker", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "Record purchases")
	assert.Contains(t, rootCmd.Long, "Expense Tracker")

	for _, name := range []string{"list", "save", "update", "delete", "show", "total-spent", "total-balance", "today", "export", "shell"} {
		sub, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	return &app{
		fs:  afero.NewMemMapFs(),
		now: func() time.Time { return time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func execute(t *testing.T, a *app, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestSaveListAndTotals(t *testing.T) {
	a := newTestApp(t)

	out, _, err := execute(t, a, "", "save", "--name", "Coffee", "--price", "3.50", "--date", "01 Jan 2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Coffee")

	_, _, err = execute(t, a, "", "save", "--name", "Lunch", "--price", "12", "--date", "01 Jan 2024")
	require.NoError(t, err)

	out, _, err = execute(t, a, "", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Purchase Date")
	assert.Contains(t, lines[2], "Lunch")

	out, _, err = execute(t, a, "", "total-spent")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall Expenses")
	assert.Contains(t, out, "Total Expense: Rs. 15.5")

	out, _, err = execute(t, a, "", "total-balance", "--budget", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "Balance Remaining: Rs. 4.5")

	data, err := afero.ReadFile(a.fs, "expenses.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"item_name": "Lunch"`)
}

func TestSaveWithToday(t *testing.T) {
	a := newTestApp(t)

	out, _, err := execute(t, a, "", "save", "--name", "Tea", "--price", "1", "--today")
	require.NoError(t, err)
	assert.Contains(t, out, "01 January 2024")
}

func TestUpdateKeepsUnchangedFields(t *testing.T) {
	a := newTestApp(t)
	_, _, err := execute(t, a, "", "save", "--name", "Tea", "--price", "1", "--date", "d1")
	require.NoError(t, err)

	out, _, err := execute(t, a, "", "update", "1", "--price", "1.75")
	require.NoError(t, err)
	assert.Contains(t, out, "Tea")
	assert.Contains(t, out, "1.75")
	assert.Contains(t, out, "d1")
}

func TestFailuresAreReported(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name  string
		args  []string
		title string
	}{
		{name: "empty name", args: []string{"save", "--name", "", "--price", "5", "--date", "2024-01-01"}, title: "Input Error"},
		{name: "bad budget", args: []string{"total-balance", "--budget", "abc"}, title: "Input Error"},
		{name: "bad id", args: []string{"delete", "two"}, title: "Input Error"},
		{name: "missing record", args: []string{"delete", "2"}, title: "Not Found"},
		{name: "update missing record", args: []string{"update", "2", "--name", "x"}, title: "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, err := execute(t, a, "", tt.args...)
			require.Error(t, err)
			var reported reportedError
			assert.True(t, errors.As(err, &reported))
			assert.Empty(t, out)
			assert.True(t, strings.HasPrefix(errOut, tt.title+"\n"), errOut)
		})
	}
}

func TestStorageReadErrorIsReported(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, afero.WriteFile(a.fs, "expenses.json", []byte("{broken"), 0o644))

	_, errOut, err := execute(t, a, "", "list")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(errOut, "Storage Error\n"))
}

func TestTotalBalanceUsesConfiguredBudget(t *testing.T) {
	a := newTestApp(t)
	t.Setenv("EXPENSE_TRACKER_BUDGET", "100")

	_, _, err := execute(t, a, "", "save", "--name", "Book", "--price", "30", "--date", "d")
	require.NoError(t, err)

	out, _, err := execute(t, a, "", "total-balance")
	require.NoError(t, err)
	assert.Contains(t, out, "Balance Remaining: Rs. 70")
}

func TestTodayCommand(t *testing.T) {
	a := newTestApp(t)

	out, _, err := execute(t, a, "", "today")
	require.NoError(t, err)
	assert.Equal(t, "Current Date\n  01 January 2024\n", out)
	assert.Nil(t, a.ledger)
}

func TestExportYAML(t *testing.T) {
	a := newTestApp(t)
	_, _, err := execute(t, a, "", "save", "--name", "Coffee", "--price", "3.50", "--date", "d")
	require.NoError(t, err)

	out, _, err := execute(t, a, "", "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "item_price: 3.5")

	_, _, err = execute(t, a, "", "export", "--format", "csv")
	assert.Error(t, err)
}

func TestShellSession(t *testing.T) {
	a := newTestApp(t)
	input := strings.Join([]string{
		`save --name "Iced coffee" --price 4 --date "02 Jan 2024"`,
		`save --name Bagel --price 2.5 --today`,
		`delete 1`,
		`save --name Juice --price 3 --date d`,
		`delete 9`,
		`bogus`,
		`list`,
		`exit`,
		`save --name never --price 1 --date d`,
	}, "\n")

	out, errOut, err := execute(t, a, input, "shell")
	require.NoError(t, err)

	assert.Contains(t, out, "Iced coffee")
	assert.Contains(t, out, "Deleted record 1")
	assert.Contains(t, errOut, "Not Found")
	assert.Contains(t, errOut, "unknown command")
	assert.NotContains(t, out, "never")

	// ids keep counting within the session, deleted ids are not reused
	ids := []int64{}
	for _, r := range a.ledger.List() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{2, 3}, ids)
}

func TestShellSessionRejectsGlobalFlags(t *testing.T) {
	a := newTestApp(t)
	input := strings.Join([]string{
		`save --name Tea --price 1 --date d`,
		`--store other.json list`,
		`list --backend=sqlite`,
		`save --name Cake --price 2 --date d --debug`,
	}, "\n")

	_, errOut, err := execute(t, a, input, "shell")
	require.NoError(t, err)

	assert.Contains(t, errOut, "--store cannot be changed inside a shell session")
	assert.Contains(t, errOut, "--backend cannot be changed inside a shell session")
	assert.Contains(t, errOut, "--debug cannot be changed inside a shell session")
	assert.Len(t, a.ledger.List(), 1)

	exists, err := afero.Exists(a.fs, "other.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDatabaseBackends(t *testing.T) {
	for _, backend := range []string{"sqlite", "bolt"} {
		t.Run(backend, func(t *testing.T) {
			a := newTestApp(t)
			path := filepath.Join(t.TempDir(), "expenses.db")

			_, _, err := execute(t, a, "", "--backend", backend, "--store", path, "save", "--name", "Coffee", "--price", "3.50", "--date", "d")
			require.NoError(t, err)
			a.close()

			b := newTestApp(t)
			out, _, err := execute(t, b, "", "--backend", backend, "--store", path, "total-spent")
			require.NoError(t, err)
			b.close()
			assert.Contains(t, out, "Total Expense: Rs. 3.5")
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
