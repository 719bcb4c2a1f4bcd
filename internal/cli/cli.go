// Package cli handles command-line parsing and configuration.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lundberg/diffreview/internal/config"
)

// Handlers run the resolved commands. They are injected so parsing can be
// tested without starting servers or terminals.
type Handlers struct {
	Serve  func(ctx context.Context, cfg *config.Config) error
	Show   func(ctx context.Context, cfg *config.Config, out io.Writer) error
	Browse func(ctx context.Context, cfg *config.Config) error
}

const argsHelp = `Arguments:
  (none)         diff working tree against merge-base with main/master
  .              show uncommitted changes in the working tree
  <commit>       diff the working tree against a single commit
  <ref1> <ref2>  diff between two refs
  -              read unified diff from stdin`

// flags holds the raw flag values shared by all commands.
type flags struct {
	configPath string
	port       int
	host       string
	noOpen     bool
	viewMode   string
	expandAll  bool
	context    int
	logLevel   string
	verbose    bool
}

// NewRootCommand builds the diffreview command tree. The root command
// serves the web UI; show and browse render in the terminal.
func NewRootCommand(h Handlers) *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:   "diffreview [ref1 [ref2]]",
		Short: "Review git diffs with accessible change summaries",
		Long: `diffreview parses git diffs into line-numbered hunks and presents them
with screen-reader friendly labels, over HTTP or in the terminal.

` + argsHelp,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}
			return h.Serve(cmd.Context(), cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", config.DefaultPath, "path to YAML config file")
	pf.IntVar(&f.port, "port", 0, "HTTP server port (0 = auto)")
	pf.StringVar(&f.host, "host", "localhost", "HTTP server host")
	pf.BoolVar(&f.noOpen, "no-open", false, "don't open browser automatically")
	pf.StringVar(&f.viewMode, "mode", "split", "view mode: split or unified")
	pf.BoolVar(&f.expandAll, "expand-all", false, "expand every file initially")
	pf.IntVar(&f.context, "context", 3, "lines of context around each change")
	pf.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "shorthand for --log-level=debug")

	root.AddCommand(&cobra.Command{
		Use:   "show [ref1 [ref2]]",
		Short: "Print the change summary and files to the terminal",
		Long:  "Print the change summary and files to the terminal.\n\n" + argsHelp,
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}
			return h.Show(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "browse [ref1 [ref2]]",
		Short: "Browse the diff interactively in the terminal",
		Long:  "Browse the diff interactively in the terminal.\n\n" + argsHelp,
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}
			return h.Browse(cmd.Context(), cfg)
		},
	})

	return root
}

// resolve loads the config file and overlays the flags the user set
// explicitly, then resolves the diff source from the positional args.
func (f *flags) resolve(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("port") {
		cfg.Server.Port = f.port
	}
	if changed("host") {
		cfg.Server.Host = f.host
	}
	if changed("no-open") {
		cfg.Server.OpenBrowser = !f.noOpen
	}
	if changed("mode") {
		cfg.View.Mode = f.viewMode
	}
	if changed("expand-all") {
		cfg.View.ExpandAll = f.expandAll
	}
	if changed("context") {
		cfg.View.ContextLines = f.context
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if f.verbose {
		cfg.Logging.Level = "debug"
	}

	if err := ResolveMode(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveMode maps positional arguments to a diff source. It does not run
// git; ModeMergeBase signals that the caller must resolve the actual
// merge-base ref.
func ResolveMode(cfg *config.Config, args []string) error {
	cfg.Base, cfg.Target = "", ""
	switch len(args) {
	case 0:
		cfg.Mode = config.ModeMergeBase
	case 1:
		switch args[0] {
		case "-":
			cfg.Mode = config.ModeStdin
		case ".":
			cfg.Mode = config.ModeWorking
		default:
			cfg.Mode = config.ModeCommit
			cfg.Base = args[0]
		}
	case 2:
		cfg.Mode = config.ModeCompare
		cfg.Base = args[0]
		cfg.Target = args[1]
	default:
		return fmt.Errorf("too many arguments: expected at most 2, got %d", len(args))
	}
	return nil
}
