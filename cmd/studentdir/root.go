package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-directory/internal/config"
	"github.com/aanand-mishra/student-directory/internal/imageintake"
	"github.com/aanand-mishra/student-directory/internal/logger"
	"github.com/aanand-mishra/student-directory/internal/recordservice"
	"github.com/aanand-mishra/student-directory/internal/tui"
)

// app is what every subcommand runs with, set up once the flags are
// parsed.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	client  *recordservice.Client
	logFile *os.File
}

func newRootCmd() (*cobra.Command, *app) {
	var (
		configPath string
		a          = &app{}
	)

	root := &cobra.Command{
		Use:   "studentdir",
		Short: "Browse and edit the student directory",
		Long: `studentdir lists, searches, filters, sorts and pages through student
records held by a remote students API, and creates, edits and deletes them.

Run without a subcommand for the interactive directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"),
		"path to config file (env CONFIG_PATH)")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Open the interactive directory",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runTUI(cmd)
			},
		},
		newListCmd(a),
		newExportCmd(a),
		newAddCmd(a),
		newDeleteCmd(a),
	)
	return root, a
}

// run executes root and closes the log file whether or not the command
// failed; cobra skips post-run hooks after an error.
func run(ctx context.Context, root *cobra.Command, a *app) (err error) {
	defer func() { err = errors.Join(err, a.close()) }()
	return root.ExecuteContext(ctx)
}

func (a *app) setup(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, f, err := logger.NewFile(cfg.Env, cfg.Client.LogFile)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.logFile = f
	a.client = recordservice.New(cfg.Client.APIURL, recordservice.WithLogger(log))

	log.Debug("client configured", slog.String("api_url", cfg.Client.APIURL))
	return nil
}

func (a *app) close() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

func (a *app) runTUI(cmd *cobra.Command) error {
	model := tui.New(cmd.Context(), tui.Options{
		Service:   a.client,
		Processor: imageintake.New(imageintake.WithLogger(a.log)),
		PageSize:  a.cfg.Client.PageSize,
		Logger:    a.log,
	})

	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
