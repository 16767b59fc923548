// Command tokens is a terminal client for the token catalog API.
//
//	tokens [--api URL] list [--search eco] [--sort price] [--order asc] [--more 1]
//	tokens detail <id>
//	tokens connect --address 0x... --signature 0x...
//	tokens buy|sell --address 0x... --signature 0x... --token <id> --amount 10
//	tokens create --address 0x... --signature 0x... --name "Eco Token" --symbol ECO --supply 1000000 --info "..."
//	tokens liquidity --address 0x... --signature 0x... --token <id> --x1 100 --amount 1000 --price-usd 0.01 --price-x1 0.1
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecochain/token-catalog/internal/client"
	"github.com/ecochain/token-catalog/internal/config"
	"github.com/ecochain/token-catalog/internal/logging"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type app struct {
	client *client.CatalogClient
	logger *zap.Logger
}

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"list":      {"list the catalog", runList},
	"detail":    {"show the detail view of a token", runDetail},
	"connect":   {"connect a wallet and print its session", runConnect},
	"buy":       {"buy a token", runTrade("buy")},
	"sell":      {"sell a token", runTrade("sell")},
	"create":    {"create a token", runCreate},
	"liquidity": {"add liquidity to a token", runLiquidity},
}

func main() {
	global := pflag.NewFlagSet("tokens", pflag.ContinueOnError)
	global.SetInterspersed(false)
	apiURL := global.String("api", envOr("ECOCHAIN_API_URL", "http://localhost:8080"), "catalog API base URL")
	timeout := global.Duration("timeout", 30*time.Second, "request timeout")
	verbose := global.BoolP("verbose", "v", false, "log requests to stdout")
	global.Usage = func() { usage(global) }

	if err := global.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if global.NArg() == 0 {
		usage(global)
		os.Exit(2)
	}

	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage(global)
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := logging.New(config.LoggingConfig{Level: "debug", Format: "console"})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger = l
		defer logger.Sync()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		client: client.NewCatalogClient(*apiURL, *timeout, logger),
		logger: logger,
	}
	if err := cmd.run(ctx, a, global.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

func usage(fs *pflag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: tokens [flags] <command> [command flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "commands:")
	for _, name := range []string{"list", "detail", "connect", "buy", "sell", "create", "liquidity"} {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "flags:")
	fmt.Fprint(os.Stderr, fs.FlagUsages())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
