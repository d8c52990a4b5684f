package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nick-dorsch/taskboard/internal/board"
	"github.com/nick-dorsch/taskboard/internal/mcp"
	"github.com/nick-dorsch/taskboard/internal/server"
	"github.com/nick-dorsch/taskboard/internal/ui"
	"github.com/nick-dorsch/taskboard/pkg/models"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var (
	runBoardTUI = ui.RunBoard
	serveMCP    = mcp.Serve
)

func (a *app) runInit(args []string) error {
	if err := os.MkdirAll(a.cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", a.cfg.Dir, err)
	}
	fmt.Fprintf(a.stdout, "✓ Created %s/ directory\n", a.cfg.Dir)

	gitignorePath := filepath.Join(a.cfg.Dir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("*.db*\n*.json\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	fmt.Fprintf(a.stdout, "✓ Created %s\n", gitignorePath)

	configPath := a.cfg.ConfigPath()
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := a.cfg.Write(configPath); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "✓ Wrote %s\n", configPath)
	}

	ctrl, closeFn, err := a.openBoard(context.Background())
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Fprintf(a.stdout, "✓ Initialized %s storage (%d tasks)\n", a.cfg.Storage.Backend, len(ctrl.Tasks()))
	fmt.Fprintln(a.stdout, "✓ Taskboard initialized successfully")
	return nil
}

func (a *app) runBoard(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl, closeFn, err := a.openBoard(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	return runBoardTUI(ctx, ctrl)
}

func (a *app) runWeb(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl, closeFn, err := a.openBoard(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := server.NewServer(ctrl,
		server.WithLogger(a.logger),
		server.WithAllowedOrigins(a.cfg.HTTP.AllowedOrigins),
	)
	fmt.Fprintf(a.stdout, "Serving board at http://localhost%s\n", displayAddr(a.cfg.HTTP.Addr))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(a.cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// displayAddr turns a listen address into the host part of a URL.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return addr
	}
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ":" + addr
}

func (a *app) runMCP(args []string) error {
	ctrl, closeFn, err := a.openBoard(context.Background())
	if err != nil {
		return err
	}
	defer closeFn()

	return serveMCP(mcp.NewServer(ctrl))
}

func (a *app) runList(args []string) error {
	listFlags := flag.NewFlagSet("list", flag.ContinueOnError)
	statusFilter := listFlags.String("status", "", "Filter by status (todo, doing, done)")
	if err := listFlags.Parse(args); err != nil {
		return err
	}

	ctrl, closeFn, err := a.openBoard(context.Background())
	if err != nil {
		return err
	}
	defer closeFn()

	tasks := ctrl.Tasks()
	if *statusFilter != "" {
		status, ok := models.ParseStatus(*statusFilter)
		if !ok {
			return fmt.Errorf("%w: %q", board.ErrInvalidStatus, *statusFilter)
		}
		tasks = ctrl.View(status)
	}

	fmt.Fprintf(a.stdout, "%-36s %-8s %-8s %-10s %s\n", "ID", "STATUS", "PRIORITY", "DUE", "TITLE")
	fmt.Fprintln(a.stdout, "--------------------------------------------------------------------------------")
	for _, t := range tasks {
		due := t.DueLabel()
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(a.stdout, "%-36s %-8s %-8s %-10s %s\n", t.ID, t.Status, t.PriorityLabel(), due, t.Title)
	}
	return nil
}

func (a *app) runAdd(args []string) error {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		return errors.New("usage: taskboard add <title>")
	}

	ctx := context.Background()
	ctrl, closeFn, err := a.openBoard(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	task, _, err := ctrl.Add(ctx, title)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "✓ Added %s %q\n", task.ID, task.Title)
	return nil
}

// withTask opens the board, checks that id exists and runs fn.
func (a *app) withTask(id string, fn func(ctx context.Context, ctrl *board.Controller, task models.Task) error) error {
	ctx := context.Background()
	ctrl, closeFn, err := a.openBoard(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	task, ok := ctrl.Get(id)
	if !ok {
		return fmt.Errorf("task not found: %s", id)
	}
	return fn(ctx, ctrl, task)
}

func (a *app) runRemove(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: taskboard rm <id>")
	}
	return a.withTask(args[0], func(ctx context.Context, ctrl *board.Controller, task models.Task) error {
		if _, _, err := ctrl.Remove(ctx, task.ID); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "✓ Removed %q\n", task.Title)
		return nil
	})
}

func (a *app) runMove(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: taskboard move <id> <status>")
	}
	status, ok := models.ParseStatus(args[1])
	if !ok {
		return fmt.Errorf("%w: %q", board.ErrInvalidStatus, args[1])
	}
	return a.withTask(args[0], func(ctx context.Context, ctrl *board.Controller, task models.Task) error {
		target := board.ColumnID(status)
		if _, _, err := ctrl.Drop(ctx, task.ID, &target); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "✓ Moved %q to %s\n", task.Title, board.ColumnTitle(status))
		return nil
	})
}

func (a *app) runEdit(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: taskboard edit <id> <title>")
	}
	title := strings.TrimSpace(strings.Join(args[1:], " "))
	if title == "" {
		return errors.New("task title must not be blank")
	}
	return a.withTask(args[0], func(ctx context.Context, ctrl *board.Controller, task models.Task) error {
		if _, err := ctrl.SetTitle(ctx, task.ID, title); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "✓ Renamed %q to %q\n", task.Title, title)
		return nil
	})
}

func (a *app) runToggle(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: taskboard toggle <id>")
	}
	return a.withTask(args[0], func(ctx context.Context, ctrl *board.Controller, task models.Task) error {
		if _, err := ctrl.Toggle(ctx, task.ID); err != nil {
			return err
		}
		updated, _ := ctrl.Get(task.ID)
		fmt.Fprintf(a.stdout, "✓ %q is now %s\n", task.Title, updated.Status)
		return nil
	})
}

func (a *app) runClearDone(args []string) error {
	ctx := context.Background()
	ctrl, closeFn, err := a.openBoard(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	before := len(ctrl.Tasks())
	tasks, err := ctrl.ClearDone(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "✓ Cleared %d done tasks\n", before-len(tasks))
	return nil
}

func (a *app) runStatus(args []string) error {
	ctrl, closeFn, err := a.openBoard(context.Background())
	if err != nil {
		return err
	}
	defer closeFn()

	snap := ctrl.Snapshot()

	fmt.Fprintln(a.stdout, "Taskboard Status")
	fmt.Fprintln(a.stdout, "================")
	fmt.Fprintf(a.stdout, "Storage:     %s\n", a.cfg.Storage.Backend)
	fmt.Fprintf(a.stdout, "Total Tasks: %d\n", snap.Total)

	fmt.Fprintln(a.stdout, "\nColumns:")
	for _, col := range snap.Columns {
		fmt.Fprintf(a.stdout, "  %-12s %d\n", col.Title+":", len(col.Tasks))
	}
	return nil
}

func (a *app) runMigrate(args []string) error {
	migrateFlags := flag.NewFlagSet("migrate", flag.ContinueOnError)
	write := migrateFlags.Bool("write", false, "Overwrite the current board with the migrated tasks")
	if err := migrateFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	st, closeFn, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	tasks := st.Migrate(ctx)
	fmt.Fprintf(a.stdout, "Found %d legacy tasks under %q\n", len(tasks), st.LegacyKey())
	for _, t := range tasks {
		fmt.Fprintf(a.stdout, "  %-6s %s\n", t.Status, t.Title)
	}

	if !*write {
		if len(tasks) > 0 {
			fmt.Fprintln(a.stdout, "Run with -write to replace the current board with these tasks.")
		}
		return nil
	}
	if err := st.Save(ctx, tasks); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "✓ Wrote %d tasks to %q\n", len(tasks), st.CurrentKey())
	return nil
}
