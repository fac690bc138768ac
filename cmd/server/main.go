package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliamunaev/virtual-cafe/internal/app"
	"github.com/iliamunaev/virtual-cafe/internal/config"
	"github.com/iliamunaev/virtual-cafe/internal/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

// run loads the configuration, wires the cafe and serves until SIGINT or
// SIGTERM. In-flight brews are abandoned on shutdown.
func run(args []string) error {
	fs := flag.NewFlagSet("cafe-server", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file (default $CAFE_CONFIG)")
	envPath := fs.String("env", ".env", "dotenv file, ignored when missing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		return err
	}
	lg := logger.New(os.Stdout, "cafe-server", cfg.LogLevel)

	a, err := app.New(cfg, lg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lg.Info("cafe open",
		"addr", cfg.Addr,
		"admin_addr", cfg.AdminAddr,
		"tea_capacity", cfg.TeaCapacity,
		"coffee_capacity", cfg.CoffeeCapacity,
		"tea_brew", cfg.TeaBrew,
		"coffee_brew", cfg.CoffeeBrew,
	)
	return a.Run(ctx)
}
