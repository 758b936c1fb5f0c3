package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"text/tabwriter"

	"budgetbook/internal/client"
	"budgetbook/internal/client/local"
	"budgetbook/internal/client/remote"
	"budgetbook/internal/client/view"
	"budgetbook/internal/config"
	"budgetbook/internal/core"
	"budgetbook/internal/log"
)

const frontendUsage = `usage: budgetbook-cli [-source local|api] [-api URL] [-data DIR] <budgets|expenses> <list|add|update|delete> [flags]

  budgets add     -name N [-icon I] [-total 0.00] [-spent 0.00] [-items 0]
  budgets update  -id ID  (same flags as add, replaces the whole item)
  expenses add    -name N [-amount 0.00] [-date 2006-01-02] [-budget ID]
  expenses update -id ID  (same flags as add, replaces the whole item)
  <entity> delete -id ID
`

// Frontend wires both view-states to a local slot store and the API.
type Frontend struct {
	Budgets  *view.Collection[client.Budget]
	Expenses *view.Collection[client.Expense]
}

// NewFrontend builds the view-states over store and the API at apiURL.
// Seeding diagnostics go to logger.
func NewFrontend(store local.SlotStore, apiURL string, httpClient *http.Client, logger *slog.Logger) *Frontend {
	api := remote.NewClient(apiURL, httpClient)
	return &Frontend{
		Budgets: view.NewBudgets(local.NewBudgets(store), remote.NewBudgets(api),
			view.WithLogger[client.Budget](logger)),
		Expenses: view.NewExpenses(local.NewExpenses(store), remote.NewExpenses(api),
			view.WithLogger[client.Expense](logger)),
	}
}

// RunFrontend executes one command and returns the process exit code:
// 0 on success, 1 when the command fails, 2 on usage errors.
func RunFrontend(ctx context.Context, args []string, cfg *config.ClientConfig, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("budgetbook-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, frontendUsage) }
	sourceFlag := fs.String("source", cfg.Source, "data source: local or api")
	apiFlag := fs.String("api", cfg.APIURL, "API base URL")
	dataFlag := fs.String("data", cfg.DataDir, "directory holding the local slots")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	source, ok := view.ParseSource(*sourceFlag)
	if !ok {
		fmt.Fprintf(stderr, "invalid source %q\n", *sourceFlag)
		return 2
	}
	rest := fs.Args()
	if len(rest) < 2 {
		fs.Usage()
		return 2
	}

	store, err := local.NewFileStore(*dataFlag)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentClient,
		Output:    stderr,
	})
	fe := NewFrontend(store, *apiFlag, &http.Client{Timeout: cfg.Timeout}, logger.Logger)

	switch rest[0] {
	case "budgets":
		fe.Budgets.SetSource(source)
		return runCommand(ctx, fe.Budgets, rest[1], rest[2:], budgetFlags, printBudgets, stdout, stderr)
	case "expenses":
		fe.Expenses.SetSource(source)
		return runCommand(ctx, fe.Expenses, rest[1], rest[2:], expenseFlags, printExpenses, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown entity %q\n", rest[0])
		fs.Usage()
		return 2
	}
}

// itemFlags registers the item fields on fs and returns a builder that
// reads them after parsing.
type itemFlags[T any] func(fs *flag.FlagSet) func() (T, error)

func runCommand[T any](ctx context.Context, c *view.Collection[T], verb string, args []string,
	registerItem itemFlags[T], print func(io.Writer, []T), stdout, stderr io.Writer) int {

	fs := flag.NewFlagSet(verb, flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.String("id", "", "item id")
	var build func() (T, error)
	if verb == "add" || verb == "update" {
		build = registerItem(fs)
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var err error
	switch verb {
	case "list":
		c.Refresh(ctx)
	case "add", "update":
		item, berr := build()
		if berr != nil {
			fmt.Fprintf(stderr, "error: %v\n", berr)
			return 2
		}
		if verb == "add" {
			err = c.Create(ctx, item)
		} else {
			if *id == "" {
				fmt.Fprintln(stderr, "error: -id is required")
				return 2
			}
			err = c.Update(ctx, client.ID(*id), item)
		}
	case "delete":
		if *id == "" {
			fmt.Fprintln(stderr, "error: -id is required")
			return 2
		}
		err = c.Remove(ctx, client.ID(*id))
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", verb)
		fmt.Fprint(stderr, frontendUsage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", describeError(err))
		return 1
	}

	state := c.Snapshot()
	if state.Err != "" {
		fmt.Fprintf(stderr, "error: %s\n", state.Err)
		return 1
	}
	print(stdout, state.Items)
	return 0
}

// describeError adds the server's message to HTTP status errors.
func describeError(err error) string {
	var serr *remote.StatusError
	if errors.As(err, &serr) && serr.Message != "" {
		return serr.Error() + ": " + serr.Message
	}
	return err.Error()
}

func parseMoneyFlag(name, value string) (core.Money, error) {
	if strings.TrimSpace(value) == "" {
		return core.Money{}, nil
	}
	m, err := core.ParseMoney(value)
	if err != nil {
		return core.Money{}, fmt.Errorf("invalid -%s %q", name, value)
	}
	return m, nil
}

func budgetFlags(fs *flag.FlagSet) func() (client.Budget, error) {
	name := fs.String("name", "", "budget name")
	icon := fs.String("icon", "", "display icon")
	total := fs.String("total", "", "budget total")
	spent := fs.String("spent", "", "amount spent")
	items := fs.Int("items", 0, "number of items")
	return func() (client.Budget, error) {
		b := client.Budget{Name: *name, Icon: *icon, Items: *items}
		var err error
		if b.Total, err = parseMoneyFlag("total", *total); err != nil {
			return b, err
		}
		if b.Spent, err = parseMoneyFlag("spent", *spent); err != nil {
			return b, err
		}
		return b, nil
	}
}

func expenseFlags(fs *flag.FlagSet) func() (client.Expense, error) {
	name := fs.String("name", "", "expense name")
	amount := fs.String("amount", "", "amount")
	date := fs.String("date", "", "date")
	budget := fs.String("budget", "", "budget id (needed with -source api)")
	return func() (client.Expense, error) {
		e := client.Expense{Name: *name, Date: *date, BudgetID: client.ID(*budget)}
		var err error
		e.Amount, err = parseMoneyFlag("amount", *amount)
		return e, err
	}
}

func printBudgets(w io.Writer, items []client.Budget) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tICON\tTOTAL\tSPENT\tITEMS")
	for _, b := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", b.ID, b.Name, b.Icon, b.Total, b.Spent, b.Items)
	}
	tw.Flush()
}

func printExpenses(w io.Writer, items []client.Expense) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAMOUNT\tDATE\tBUDGET")
	for _, e := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Amount, e.Date, e.BudgetID)
	}
	tw.Flush()
}
