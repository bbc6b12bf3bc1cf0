package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dbchat/pkg/api"
	"dbchat/pkg/config"
	"dbchat/pkg/controller"
	"dbchat/pkg/history"
	"dbchat/pkg/logging"
	"dbchat/pkg/prefs"
	"dbchat/pkg/render"
	"dbchat/pkg/storage"
	"dbchat/pkg/ui"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	endpoint   string
	dataDir    string
	logLevel   string
	ephemeral  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "dbchat",
		Short:         "Chat with your database assistant from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.dbchat/config.json)")
	pf.StringVar(&flags.endpoint, "endpoint", "", "chat endpoint base URL (env "+config.EnvEndpoint+")")
	pf.StringVar(&flags.dataDir, "data-dir", "", "directory for chat history and preferences (env "+config.EnvDataDir+")")
	pf.StringVar(&flags.logLevel, "log-level", "", "trace, debug, info, warn or error (env "+config.EnvLogLevel+")")
	pf.BoolVar(&flags.ephemeral, "ephemeral", false, "keep history in memory only")

	cmd.AddCommand(newHistoryCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// loadConfig resolves file, .env, environment and flag values in that order.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (config.Config, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return config.Config{}, err
	}

	path := flags.configPath
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	cfg = cfg.ApplyEnv(os.Getenv)

	pf := cmd.Flags()
	if pf.Changed("endpoint") {
		cfg.Endpoint = flags.endpoint
	}
	if pf.Changed("data-dir") {
		cfg.DataDir = flags.dataDir
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func openStorage(cfg config.Config, ephemeral bool) (storage.Storage, error) {
	if ephemeral {
		return storage.NewMemory(), nil
	}
	return storage.OpenPebble(cfg.DataDir)
}

func runChat(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	logger, err := logging.Init(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	store, err := openStorage(cfg, flags.ephemeral)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("storage_close_failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := newController(ctx, cfg, store, logger)
	ctrl.Load()

	logger.Info("dbchat_start",
		"endpoint", cfg.Endpoint,
		"data_dir", cfg.DataDir,
		"ephemeral", flags.ephemeral,
		"messages", len(ctrl.Views()),
	)

	model := ui.NewModel(ui.Options{
		Controller: ctrl,
		Endpoint:   cfg.Endpoint,
		Logger:     logger,
	})
	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			logger.Info("dbchat_interrupted")
			return nil
		}
		return fmt.Errorf("run ui: %w", err)
	}

	logger.Info("dbchat_exit")
	return nil
}

func newController(ctx context.Context, cfg config.Config, store storage.Storage, logger *slog.Logger) *controller.Controller {
	hist := history.NewStore(store)
	hist.SetLogger(logger)
	pr := prefs.NewStore(store)
	pr.SetLogger(logger)

	renderer := render.NewRenderer(render.DefaultTemplate())
	renderer.SetLogger(logger)

	client := api.NewClient(cfg.Endpoint, cfg.RequestTimeout())
	client.SetLogger(logger)

	return controller.New(ctx, controller.Config{
		Backend:       client,
		History:       hist,
		Prefs:         pr,
		Renderer:      renderer,
		Clipboard:     render.NewOSC52Clipboard(os.Stdout),
		ResponseDelay: cfg.ResponseDelay(),
		Logger:        logger,
	})
}
