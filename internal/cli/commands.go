package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyike/ScreenerGo/internal/config"
	"github.com/dyike/ScreenerGo/internal/logger"
	"github.com/dyike/ScreenerGo/internal/server"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "screenergo",
		Short: "ScreenerGo - LLM-powered stock screening assistant",
		Long: `ScreenerGo answers natural-language questions about an equity universe.
A chat model plans the screening, a local toolset filters and ranks the
snapshot data, and the assistant explains the results.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatREPL(cmd)
		},
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().String("config", "", "Configuration file path")

	return rootCmd
}

// loadConfig resolves the effective configuration: the managed config
// file, overlaid by environment variables.
func loadConfig(cmd *cobra.Command) (*config.Manager, *config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	mgr, err := config.NewManager(config.WithConfigPath(path))
	if err != nil {
		return nil, nil, err
	}
	cfg := mgr.Get()
	return mgr, &cfg, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mgr, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			application, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}

			if err := mgr.Watch(ctx, func(next config.Config) {
				logger.Log.Infof("configuration file changed on disk; model and dataset changes apply after restart")
			}); err != nil {
				logger.Log.Warnf("config watch unavailable: %v", err)
			}

			srv := server.New(cfg, application.orchestrator, application.registry.Names())

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Log.Errorf("shutdown: %v", err)
				}
			}()

			return srv.Start()
		},
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatREPL(cmd)
		},
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools exposed to the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			registry, err := newRegistry(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			for _, info := range registry.Specs() {
				fmt.Printf("%s\n    %s\n", toolNameStyle.Render(info.Name), info.Desc)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			shown := *cfg
			shown.OpenAIAPIKey = redact(shown.OpenAIAPIKey)
			shown.DeepSeekAPIKey = redact(shown.DeepSeekAPIKey)
			shown.DocIntelAPIKey = redact(shown.DocIntelAPIKey)

			data, err := json.MarshalIndent(shown, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("config file: %s\n%s\n", mgr.Path(), data)
			return nil
		},
	})

	return configCmd
}

func redact(key string) string {
	if key == "" {
		return ""
	}
	return "****"
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ScreenerGo v1.0.0")
			fmt.Println("LLM-powered stock screening assistant")
		},
	}
}
