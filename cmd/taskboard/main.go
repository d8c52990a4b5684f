package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/nick-dorsch/taskboard/internal/board"
	"github.com/nick-dorsch/taskboard/internal/config"
	"github.com/nick-dorsch/taskboard/internal/ids"
	"github.com/nick-dorsch/taskboard/internal/kv"
	"github.com/nick-dorsch/taskboard/internal/logging"
	"github.com/nick-dorsch/taskboard/internal/storage"
	"github.com/nick-dorsch/taskboard/internal/ui"
)

const usageHeader = `Usage: taskboard [flags] <command> [arguments]

Running ` + "`taskboard`" + ` with no command opens the start menu.

Commands:
  init                 Create the project directory, config and storage
  board                Open the interactive board
  web                  Serve the board over HTTP
  mcp                  Serve the board as MCP tools on stdio
  list [-status s]     List tasks, newest first
  add <title>          Add a task to To do
  rm <id>              Remove a task
  move <id> <status>   Move a task to todo, doing or done
  edit <id> <title>    Rename a task
  toggle <id>          Mark a task done, or done back to todo
  clear-done           Remove every done task
  status               Show column counts
  migrate [-write]     Convert legacy to-do data

Flags:
`

// runMenu is replaced in tests.
var runMenu = ui.RunMenu

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	stdout io.Writer
}

func execute(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("taskboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageHeader)
		fs.PrintDefaults()
	}

	flags := &config.Flags{}
	flags.Register(fs)
	if err := flags.Parse(fs, args); err != nil {
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	a := &app{
		cfg:    cfg,
		logger: logging.NewWithWriter(stderr, cfg.LoggingOptions()),
		stdout: stdout,
	}

	var command string
	var rest []string

	if fs.NArg() == 0 {
		selected, err := runMenu()
		if err != nil {
			return fmt.Errorf("failed to run menu: %w", err)
		}
		if selected == "" {
			return nil
		}
		command = selected
	} else {
		command = fs.Arg(0)
		rest = fs.Args()[1:]
	}

	switch command {
	case "init":
		return a.runInit(rest)
	case "board":
		return a.runBoard(rest)
	case "web":
		return a.runWeb(rest)
	case "mcp":
		return a.runMCP(rest)
	case "list":
		return a.runList(rest)
	case "add":
		return a.runAdd(rest)
	case "rm":
		return a.runRemove(rest)
	case "move":
		return a.runMove(rest)
	case "edit":
		return a.runEdit(rest)
	case "toggle":
		return a.runToggle(rest)
	case "clear-done":
		return a.runClearDone(rest)
	case "status":
		return a.runStatus(rest)
	case "migrate":
		return a.runMigrate(rest)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// openStorage opens the configured medium and the gateway over it. The
// returned close function releases the medium.
func (a *app) openStorage(ctx context.Context) (*storage.Storage, func(), error) {
	store, err := kv.Open(ctx, a.cfg.KVOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s storage: %w", a.cfg.Storage.Backend, err)
	}
	st, err := storage.New(store,
		storage.WithKeys(a.cfg.Storage.CurrentKey, a.cfg.Storage.LegacyKey),
		storage.WithLogger(a.logger),
	)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("failed to close storage", "err", err)
		}
	}
	return st, closeFn, nil
}

// openBoard opens storage and returns a loaded controller.
func (a *app) openBoard(ctx context.Context) (*board.Controller, func(), error) {
	st, closeFn, err := a.openStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	gen, err := ids.New(a.cfg.IDs.Format)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	ctrl := board.NewController(st,
		board.WithIDGenerator(gen),
		board.WithLogger(a.logger),
	)
	ctrl.Load(ctx)
	return ctrl, closeFn, nil
}
