// Command anisense is the anime recommendation assistant.
//
// Usage:
//
//	anisense serve --config config.yaml
//	anisense serve --model gpt-4o-mini --port 8080
//	anisense chat
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/anisense/anisense"
	"github.com/anisense/anisense/pkg/config"
	"github.com/anisense/anisense/pkg/enrich"
	"github.com/anisense/anisense/pkg/server"
	"github.com/anisense/anisense/pkg/session"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Serve    ServeCmd    `cmd:"" help:"Start the recommendation HTTP server."`
	Chat     ChatCmd     `cmd:"" help:"Start an interactive recommendation chat."`
	Validate ValidateCmd `cmd:"" help:"Validate configuration file."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple or verbose)." default:"simple"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(anisense.GetVersion())
	return nil
}

// ServeCmd starts the recommendation HTTP server.
type ServeCmd struct {
	Model   string `help:"Model name."`
	APIKey  string `name:"api-key" help:"Model API key (defaults to OPENAI_API_KEY)."`
	BaseURL string `name:"base-url" help:"Custom model API base URL."`
	Tags    string `help:"Path to the tag snapshot file." type:"path"`
	Port    int    `help:"Port to listen on." default:"0"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	c.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sess, aniClient, err := buildSession(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr:     cfg.Server.Address(),
		Session:  sess,
		Enricher: enrich.New(aniClient),
	})
	if err != nil {
		return err
	}

	fmt.Printf("anisense server ready\n")
	fmt.Printf("   Recommend: POST http://%s/recommend\n", cfg.Server.Address())
	fmt.Printf("   Health:    http://%s/health\n", cfg.Server.Address())
	fmt.Printf("   Metrics:   http://%s/metrics\n", cfg.Server.Address())
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}

func (c *ServeCmd) applyOverrides(cfg *config.Config) {
	if c.Model != "" {
		cfg.Model.Name = c.Model
	}
	if c.APIKey != "" {
		cfg.Model.APIKey = c.APIKey
	}
	if c.BaseURL != "" {
		cfg.Model.BaseURL = c.BaseURL
	}
	if c.Tags != "" {
		cfg.TagsFile = c.Tags
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
}

// ValidateCmd validates a configuration file.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	if cli.Config == "" {
		return fmt.Errorf("--config is required for validate command")
	}
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	fmt.Printf("Configuration %s is valid\n", cli.Config)
	return nil
}

// loadConfig loads the config file, or zero-config defaults without one.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		slog.Info("Using zero-config mode")
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.Info("Loaded configuration", "path", path)
	return cfg, nil
}

var _ server.Recommender = (*session.Session)(nil)

func main() {
	_ = config.LoadDotEnv()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("anisense"),
		kong.Description("anisense - conversational anime recommendation assistant"),
		kong.UsageOnError(),
	)

	cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
