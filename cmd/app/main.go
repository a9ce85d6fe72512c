package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

// errProblemsFound makes strict-mode failures exit non-zero without a
// redundant error dump (the report was already logged).
var errProblemsFound = cli.Exit("content problems found", 1)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cmd.Bool("strict") {
		cfg.Site.Strict = true
	}
	return cfg, nil
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	res, err := internal.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build error: %w", err)
	}
	if cfg.Site.Strict && !res.Report.Empty() {
		return errProblemsFound
	}
	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	res, err := internal.Check(ctx, cfg)
	if err != nil {
		return fmt.Errorf("check error: %w", err)
	}
	if cfg.Site.Strict && !res.Report.Empty() {
		return errProblemsFound
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("search query is required")
	}
	results, err := internal.Search(ctx, cfg, query, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("search error: %w", err)
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\n", r.Path, r.Title)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, cfg); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	strictFlag := &cli.BoolFlag{
		Name:  "strict",
		Usage: "Exit non-zero when the build report contains problems",
	}

	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Static documentation site builder with link checking, full-text search, and live preview",
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Render the documentation tree into the output directory",
				Action: runBuild,
				Flags:  []cli.Flag{configFlag, strictFlag},
			},
			{
				Name:   "check",
				Usage:  "Validate the documentation tree without writing output",
				Action: runCheck,
				Flags:  []cli.Flag{configFlag, strictFlag},
			},
			{
				Name:   "serve",
				Usage:  "Build, serve, and live-rebuild the site with an HTTP preview server",
				Action: runServe,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:      "search",
				Usage:     "Full-text search through the documentation index",
				ArgsUsage: "<query>",
				Action:    runSearch,
				Flags: []cli.Flag{
					configFlag,
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 20,
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve documentation tools over MCP stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
