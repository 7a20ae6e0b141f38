// beacond - MCP-aware agent sidecar
// Entry point: flag parsing plus the serve and migrate subcommands.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/matiasleandrokruk/beacon/internal/domain/auth"
	"github.com/matiasleandrokruk/beacon/internal/domain/tool"
	"github.com/matiasleandrokruk/beacon/internal/infra/config"
	"github.com/matiasleandrokruk/beacon/internal/infra/llm"
	"github.com/matiasleandrokruk/beacon/internal/infra/mcpclient"
	"github.com/matiasleandrokruk/beacon/internal/infra/sqlite"
	"github.com/matiasleandrokruk/beacon/internal/server"
	"github.com/matiasleandrokruk/beacon/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("beacond", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	port := fs.Int("port", 8080, "HTTP listen port (serve)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	switch fs.Arg(0) {
	case "serve":
		return runServe(out, *port)
	case "migrate":
		return runMigrate(out)
	case "register-client":
		return runRegisterClient(out, fs.Arg(1), fs.Arg(2))
	case "":
		// Default: print version
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	default:
		fmt.Fprintf(out, "unknown command %q\n", fs.Arg(0)) //nolint:errcheck
		printHelp(out)
		return 2
	}
}

// runServe opens the database, connects configured MCP servers, and serves
// HTTP until SIGINT/SIGTERM.
func runServe(out io.Writer, port int) int {
	cfg := config.Load()

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(out, "open database: %v\n", err) //nolint:errcheck
		return 1
	}

	if err := sqlite.MigrateUp(db); err != nil {
		fmt.Fprintf(out, "migrate: %v\n", err) //nolint:errcheck
		db.Close()
		return 1
	}

	fileCfg, err := config.LoadFile(cfg.MCPConfigPath)
	if err != nil {
		fmt.Fprintf(out, "load mcp config: %v\n", err) //nolint:errcheck
		db.Close()
		return 1
	}

	registry := tool.NewRegistry()
	if err := tool.RegisterBuiltins(registry); err != nil {
		fmt.Fprintf(out, "register builtins: %v\n", err) //nolint:errcheck
		db.Close()
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := mcpclient.NewManager()
	if err := manager.ConnectAll(ctx, fileCfg.MCPServers, registry); err != nil {
		fmt.Fprintf(out, "connect mcp servers: %v\n", err) //nolint:errcheck
		db.Close()
		return 1
	}
	defer manager.Close() //nolint:errcheck

	provider := llm.NewAnthropicProvider(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.UpstreamModel, fileCfg.BetaFlags)

	srvCfg := server.DefaultConfig()
	srvCfg.Port = port
	srv := server.NewServer(db, cfg, srvCfg, registry, provider)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.IdleTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(out, "shutdown: %v\n", err) //nolint:errcheck
			return 1
		}
		return 0
	case err := <-errCh:
		fmt.Fprintf(out, "server: %v\n", err) //nolint:errcheck
		db.Close()
		return 1
	}
}

// runMigrate applies pending migrations and prints the resulting version.
func runMigrate(out io.Writer) int {
	cfg := config.Load()

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(out, "open database: %v\n", err) //nolint:errcheck
		return 1
	}
	defer db.Close() //nolint:errcheck

	if err := sqlite.MigrateUp(db); err != nil {
		fmt.Fprintf(out, "migrate: %v\n", err) //nolint:errcheck
		return 1
	}

	v, err := sqlite.MigrationVersion(db)
	if err != nil {
		fmt.Fprintf(out, "migration version: %v\n", err) //nolint:errcheck
		return 1
	}

	fmt.Fprintf(out, "database at migration version %d\n", v) //nolint:errcheck
	return 0
}

// runRegisterClient creates an API client so it can request tokens via
// POST /auth/token.
func runRegisterClient(out io.Writer, name, secret string) int {
	if name == "" || secret == "" {
		fmt.Fprintln(out, "usage: beacond register-client <name> <secret>") //nolint:errcheck
		return 2
	}

	cfg := config.Load()

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(out, "open database: %v\n", err) //nolint:errcheck
		return 1
	}
	defer db.Close() //nolint:errcheck

	if err := sqlite.MigrateUp(db); err != nil {
		fmt.Fprintf(out, "migrate: %v\n", err) //nolint:errcheck
		return 1
	}

	client, err := auth.NewService(db).CreateClient(context.Background(), name, secret)
	if err != nil {
		fmt.Fprintf(out, "register client: %v\n", err) //nolint:errcheck
		return 1
	}

	fmt.Fprintf(out, "registered client %q with id %s\n", client.Name, client.ID) //nolint:errcheck
	return 0
}

func printHelp(out io.Writer) {
	helpText := `beacond - MCP-aware agent sidecar

Usage:
  beacond [options] [command]

Options:
  --version    Show version information
  --help       Show this help message
  --port       HTTP listen port for serve (default 8080)

Commands:
  serve            Start the HTTP server
  migrate          Run database migrations
  register-client  Register an API client (name + secret)

Examples:
  beacond --version
  beacond --port 8080 serve
  beacond migrate
  beacond register-client agent-host s3cret`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
