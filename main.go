// diffreview presents git diffs with accessible change summaries, in a web
// UI or the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lundberg/diffreview/internal/cli"
	"github.com/lundberg/diffreview/internal/config"
	"github.com/lundberg/diffreview/internal/diff"
	"github.com/lundberg/diffreview/internal/git"
	"github.com/lundberg/diffreview/internal/logging"
	"github.com/lundberg/diffreview/internal/render"
	"github.com/lundberg/diffreview/internal/server"
	"github.com/lundberg/diffreview/internal/tui"
	"github.com/lundberg/diffreview/internal/watch"
	"github.com/lundberg/diffreview/web"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Graceful shutdown on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(cli.Handlers{
		Serve:  serve,
		Show:   show,
		Browse: browse,
	})
	return root.ExecuteContext(ctx)
}

// setup builds the logger and the repository handle for cfg.
func setup(cfg *config.Config) (*zap.Logger, *git.Repo, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	repo := git.NewRepo(".", logger)
	repo.ContextLines = cfg.View.ContextLines
	return logger, repo, nil
}

// resolveBase turns merge-base mode into a concrete base commit.
func resolveBase(ctx context.Context, cfg *config.Config, repo *git.Repo) error {
	if cfg.Mode != config.ModeMergeBase {
		return nil
	}
	mainBranch, err := repo.MainBranch(ctx)
	if err != nil {
		return fmt.Errorf("detecting main branch: %w", err)
	}
	base, err := repo.MergeBase(ctx, "HEAD", mainBranch)
	if err != nil {
		return fmt.Errorf("computing merge-base: %w", err)
	}
	cfg.Base = base
	return nil
}

func readStdin(r io.Reader) ([]diff.FileDiff, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	files, err := diff.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing diff from stdin: %w", err)
	}
	return files, nil
}

// loadFiles produces the change set for the configured mode.
func loadFiles(ctx context.Context, cfg *config.Config, repo *git.Repo) ([]diff.FileDiff, error) {
	var raw string
	var err error
	switch cfg.Mode {
	case config.ModeStdin:
		return readStdin(os.Stdin)
	case config.ModeWorking:
		raw, err = repo.WorktreeDiff(ctx)
	default:
		if err := resolveBase(ctx, cfg, repo); err != nil {
			return nil, err
		}
		raw, err = repo.Diff(ctx, cfg.Base, cfg.Target)
	}
	if err != nil {
		return nil, err
	}
	return diff.Parse(raw)
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, repo, err := setup(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var stdinFiles []diff.FileDiff
	if cfg.Mode == config.ModeStdin {
		if stdinFiles, err = readStdin(os.Stdin); err != nil {
			return err
		}
	} else if err := resolveBase(ctx, cfg, repo); err != nil {
		return err
	}

	// Listen on a port to get the actual address (handles port=0 auto-select)
	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	actualPort := ln.Addr().(*net.TCPAddr).Port
	cfg.Server.Port = actualPort
	url := fmt.Sprintf("http://%s", net.JoinHostPort(cfg.Server.Host, strconv.Itoa(actualPort)))

	fmt.Printf("Listening on %s\n", url)
	if !cfg.IsLocal() {
		logger.Warn("diffreview is not designed for public access; it exposes repository contents without authentication",
			zap.String("host", cfg.Server.Host))
	}
	fmt.Println("Press Ctrl+C to stop")

	if cfg.Server.OpenBrowser {
		browser.Stdout = os.Stderr
		if err := browser.OpenURL(url); err != nil {
			logger.Warn("could not open browser", zap.Error(err))
		}
	}

	srv := server.New(cfg, repo, stdinFiles, web.Assets, logger)
	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Watch.Enabled && stdinFiles == nil {
		w, err := watch.New(".", cfg.DebounceInterval(), srv.Invalidate, logger)
		if err != nil {
			logger.Warn("working tree watch disabled", zap.Error(err))
		} else {
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\nShutting down...")
		srv.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func show(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger, repo, err := setup(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	files, err := loadFiles(ctx, cfg, repo)
	if err != nil {
		return err
	}

	var expanded diff.ExpandState
	if cfg.View.ExpandAll {
		expanded = diff.AllExpanded{}
	}
	return render.New(render.DefaultStyles(), render.Layout(cfg.View.Mode)).Render(out, diff.Present(files, expanded))
}

func browse(ctx context.Context, cfg *config.Config) error {
	logger, repo, err := setup(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	files, err := loadFiles(ctx, cfg, repo)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(files, cfg.View.ExpandAll, render.Layout(cfg.View.Mode)), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
