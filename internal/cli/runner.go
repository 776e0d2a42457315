package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todosync"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Options carry what subcommands need from root flags and main.
type Options struct {
	Group  bool   // list grouped by status
	Output string // table, json or yaml

	Config *config.Config
	Syncer *todosync.Syncer
	Stdin  io.Reader

	// RunTUI starts the interactive list; nil disables `tada tui`.
	RunTUI func(ctx context.Context) error
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ls", "list":
		return doList(ctx, a, opt)

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: tada add <description...>")
			return 2
		}
		return doAdd(ctx, strings.Join(a, " "), opt)

	case "show":
		if len(a) != 1 {
			ui.Fail("usage: tada show <index>")
			return 2
		}
		return doShow(ctx, a[0], opt)

	case "advance", "next":
		if len(a) != 1 {
			ui.Fail("usage: tada advance <index>")
			return 2
		}
		return doAdvance(ctx, a[0], opt)

	case "edit":
		if len(a) < 2 {
			ui.Fail("usage: tada edit <index> <description...>")
			return 2
		}
		return doEdit(ctx, a[0], strings.Join(a[1:], " "), opt)

	case "rm":
		if len(a) != 1 {
			ui.Fail("usage: tada rm <index>")
			return 2
		}
		return doRemove(ctx, a[0], opt)

	case "tui":
		if opt.RunTUI == nil {
			ui.Fail("tui: not available")
			return 1
		}
		if err := opt.RunTUI(ctx); err != nil {
			ui.Fail("tui: " + err.Error())
			return 1
		}
		return 0

	case "config":
		if opt.Config == nil {
			ui.Fail("config: not loaded")
			return 1
		}
		if err := opt.Config.WriteTOML(ui.Stdout()); err != nil {
			ui.Fail("config: " + err.Error())
			return 1
		}
		return 0

	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: tada auth <login|logout|status|whoami>")
			return 2
		}
		switch a[0] {
		case "login":
			return doAuthLogin(opt)
		case "logout":
			return doAuthLogout()
		case "status":
			return doAuthStatus()
		case "whoami":
			return doAuthWhoAmI()
		default:
			ui.Fail("usage: tada auth <login|logout|status|whoami>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Stderr())
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprintf(ui.Stdout(), `tada - a terminal client for a remote todo store

Usage:
  tada [flags] <subcommand> [args]

Subcommands:
  ls [-o table|json|yaml] [-group]   List items
  add <description...>               Add a new item
  show <index>                       Show the item at 1-based index
  advance <index>                    Move the item to its next status (alias: next)
  edit <index> <description...>      Replace the item's description
  rm <index>                         Remove the item at 1-based index
  tui                                Interactive list
  auth <login|logout|status|whoami>  Token authentication
  config                             Print the effective configuration

Flags:
  -base-url, -timeout, -theme, -output, -group, -color,
  -log-level, -log-format, -log-file, -otlp-endpoint, -config

Examples:
  tada add "Buy milk"
  tada ls
  tada advance 2
  tada edit 2 "Buy oat milk"
  tada rm 3
`)
}

// ---------------------------------------------------
// Core subcommands (remote CRUD)
// ---------------------------------------------------

func doList(ctx context.Context, args []string, opt Options) int {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(ui.Stderr())
	output := fs.String("o", opt.Output, "output: table, json, yaml")
	group := fs.Bool("group", opt.Group, "group by status")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format := strings.ToLower(*output)
	switch format {
	case "", "table", "json", "yaml":
	default:
		ui.Fail("ls: unknown output: " + *output)
		return 2
	}

	st := todosync.NewState()
	items, err := opt.Syncer.ListTodos(ctx, st)
	if err != nil {
		ui.Fail("list: " + err.Error())
		return 1
	}

	switch format {
	case "json":
		err = writeJSON(ui.Stdout(), items)
	case "yaml":
		err = writeYAML(ui.Stdout(), items)
	default:
		ui.Panel(panelLines(items, *group))
	}
	if err != nil {
		ui.Fail("ls: " + err.Error())
		return 1
	}
	return 0
}

func doAdd(ctx context.Context, description string, opt Options) int {
	if strings.TrimSpace(description) == "" {
		ui.Fail("add: empty description")
		return 2
	}
	st := todosync.NewState()
	id, err := opt.Syncer.CreateTodo(ctx, st, description)
	if err != nil {
		if errors.Is(err, todosync.ErrEmptyDescription) {
			ui.Fail("add: empty description")
			return 2
		}
		ui.Fail("add: " + err.Error())
		return 1
	}
	ui.OK(fmt.Sprintf("added #%s", id))
	return 0
}

func doShow(ctx context.Context, arg string, opt Options) int {
	it, _, code := resolve(ctx, "show", arg, opt)
	if code != 0 {
		return code
	}
	fresh, err := opt.Syncer.FetchTodo(ctx, it.ID)
	if err != nil {
		ui.Fail("show: " + err.Error())
		return 1
	}
	box, color := ui.Current().Box(fresh.Status.Stage())
	ui.Panel([]string{
		fmt.Sprintf("%s %s", ui.C(color, box), fresh.Description),
		"",
		ui.C(ui.Current().Muted, "id     ") + fresh.ID.String(),
		ui.C(ui.Current().Muted, "status ") + fresh.Status.Label(),
		ui.C(ui.Current().Muted, "next   ") + fresh.Status.Action(),
	})
	return 0
}

func doAdvance(ctx context.Context, arg string, opt Options) int {
	it, st, code := resolve(ctx, "advance", arg, opt)
	if code != 0 {
		return code
	}
	if err := opt.Syncer.AdvanceStatus(ctx, st, it.ID); err != nil {
		ui.Fail("advance: " + err.Error())
		return 1
	}
	if now, ok := st.Find(it.ID); ok {
		ui.OK(fmt.Sprintf("%s: %s -> %s", now.Description, it.Status.Label(), now.Status.Label()))
	} else {
		ui.OK("advanced")
	}
	return 0
}

func doEdit(ctx context.Context, arg, description string, opt Options) int {
	if strings.TrimSpace(description) == "" {
		ui.Fail("edit: empty description")
		return 2
	}
	it, st, code := resolve(ctx, "edit", arg, opt)
	if code != 0 {
		return code
	}
	if err := opt.Syncer.UpdateDescription(ctx, st, it.ID, description); err != nil {
		ui.Fail("edit: " + err.Error())
		return 1
	}
	ui.OK("updated")
	return 0
}

func doRemove(ctx context.Context, arg string, opt Options) int {
	it, st, code := resolve(ctx, "rm", arg, opt)
	if code != 0 {
		return code
	}
	if err := opt.Syncer.DeleteTodo(ctx, st, it.ID); err != nil {
		ui.Fail("rm: " + err.Error())
		return 1
	}
	ui.OK("removed: " + it.Description)
	return 0
}

// resolve lists the store and maps a 1-based index to its item.
func resolve(ctx context.Context, cmd, arg string, opt Options) (model.Item, *todosync.State, int) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		ui.Fail(cmd + ": not a number: " + arg)
		return model.Item{}, nil, 2
	}
	st := todosync.NewState()
	if _, err := opt.Syncer.ListTodos(ctx, st); err != nil {
		ui.Fail(cmd + ": " + err.Error())
		return model.Item{}, nil, 1
	}
	it, ok := st.At(n - 1)
	if !ok {
		ui.Fail(fmt.Sprintf("index out of range: have %d, got %d", st.Len(), n))
		ui.Hint("Hint: run `tada ls` to see valid indexes")
		return model.Item{}, nil, 2
	}
	return it, st, 0
}
