// Command skyboard is a CLI over the materialization core: it assembles a
// local snapshot of a board's records, runs the Materializer, and renders
// the result as a terminal kanban board or as JSON.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/disnet/skyboard/internal/config"
	"github.com/disnet/skyboard/internal/opbuilder"
	"github.com/disnet/skyboard/internal/snapshot"
	"github.com/disnet/skyboard/internal/types"
)

// app bundles the state every subcommand needs, built once in the root
// command's PersistentPreRunE.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	loader  *snapshot.Loader
	builder *opbuilder.Builder
	boardURI types.URI
	viewer   types.Party
	jsonOut  bool
}

var (
	flagConfig   string
	flagRepos    string
	flagBoard    string
	flagViewer   string
	flagJSON     bool
	flagNoColor  bool
	currentApp   *app
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "skyboard",
		Short:         "Materialize and browse a decentralized kanban board",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			currentApp = a
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.yaml")
	root.PersistentFlags().StringVar(&flagRepos, "repos", "repos.yaml", "path to the repos.yaml party registry")
	root.PersistentFlags().StringVar(&flagBoard, "board", "", "board URI (at://owner/board/rkey)")
	root.PersistentFlags().StringVar(&flagViewer, "viewer", "", "viewer party identifier")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON instead of a rendered board")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable ANSI color in rendered output")

	root.AddCommand(
		newListCmd(),
		newMoveCmd(),
		newTrustCmd(),
		newApproveCmd(),
		newWatchCmd(),
	)
	return root
}

func buildApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("skyboard: loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))

	reposPath := snapshotRegistryPath(flagConfig, flagRepos)
	reg, err := snapshot.LoadRegistry(reposPath)
	if err != nil {
		return nil, fmt.Errorf("skyboard: loading %s: %w", reposPath, err)
	}

	boardURI := flagBoard
	if boardURI == "" {
		boardURI = cfg.Board()
	}
	if boardURI == "" {
		return nil, fmt.Errorf("skyboard: no board specified (--board, SKYBOARD_BOARD, or config.yaml)")
	}

	viewer := flagViewer
	if viewer == "" {
		viewer = cfg.Viewer()
	}
	if viewer == "" {
		return nil, fmt.Errorf("skyboard: no viewer identity specified (--viewer, SKYBOARD_VIEWER, or config.yaml)")
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		loader:   snapshot.NewLoader(reg, logger),
		builder:  opbuilder.NewBuilder(opbuilder.NewClock(), newRkeyFunc()),
		boardURI: types.URI(boardURI),
		viewer:   types.Party(viewer),
		jsonOut:  flagJSON || !isatty(),
	}, nil
}

func loadAndMaterialize(ctx context.Context, a *app) (snapshot.Snapshot, result, error) {
	snap, err := a.loader.Load(ctx, a.boardURI)
	if err != nil {
		return snapshot.Snapshot{}, result{}, err
	}
	res := materializeSnapshot(snap, a.viewer, a.logger)
	return snap, res, nil
}

// snapshotRegistryPath resolves repos.yaml relative to the config file's
// directory when a relative path was given, matching the teacher's habit
// of resolving auxiliary files relative to the primary config location.
func snapshotRegistryPath(configPath, reposPath string) string {
	if filepath.IsAbs(reposPath) || configPath == "" {
		return reposPath
	}
	return filepath.Join(filepath.Dir(configPath), reposPath)
}
