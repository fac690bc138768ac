// Package app is the composition root: it builds every component from a
// config.Config and runs them under one errgroup.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliamunaev/virtual-cafe/internal/cafe"
	"github.com/iliamunaev/virtual-cafe/internal/config"
	"github.com/iliamunaev/virtual-cafe/internal/handler"
	"github.com/iliamunaev/virtual-cafe/internal/jobs"
	"github.com/iliamunaev/virtual-cafe/internal/middleware"
	"github.com/iliamunaev/virtual-cafe/internal/notify"
	httptransport "github.com/iliamunaev/virtual-cafe/internal/transport/http"
	tcptransport "github.com/iliamunaev/virtual-cafe/internal/transport/tcp"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Cafe     *cafe.Cafe
	Notifier *notify.Notifier
	Reports  *jobs.ReportJob // nil when no report schedule is set
	TCP      *tcptransport.Server
	Admin    *http.Server // nil when the admin surface is disabled

	cfg     config.Config
	log     *slog.Logger
	tcpLn   net.Listener
	adminLn net.Listener
}

// New wires the components. It dials the broker when cfg.AMQPURL is set.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var sink notify.Sink = notify.NewLogSink(log)
	if cfg.AMQPURL != "" {
		s, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		sink = s
		log.Info("publishing status changes", "exchange", cfg.AMQPExchange)
	}
	n := notify.New(sink, 0, log)

	c := cafe.New(cafe.Config{
		TeaCapacity:    cfg.TeaCapacity,
		CoffeeCapacity: cfg.CoffeeCapacity,
		TeaBrew:        cfg.TeaBrew,
		CoffeeBrew:     cfg.CoffeeBrew,
		Tick:           cfg.Tick,
	}, log, n.Notify)

	a := &App{
		Cafe:     c,
		Notifier: n,
		TCP:      tcptransport.New(c, handler.New(c, cfg.MaxItems, log), log),
		cfg:      cfg,
		log:      log,
	}
	if cfg.ReportSchedule != "" {
		a.Reports = jobs.NewReportJob(c, cfg.ReportSchedule, log)
	}
	if cfg.AdminAddr != "" {
		a.Admin = &http.Server{
			Handler:           middleware.Logging(log, httptransport.New(c).Routes()),
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 3 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return a, nil
}

// Listen opens the customer and admin listeners. Run calls it when it has
// not been called yet.
func (a *App) Listen() error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Addr, err)
	}
	a.tcpLn = ln

	if a.Admin != nil {
		aln, err := net.Listen("tcp", a.cfg.AdminAddr)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("listen %s: %w", a.cfg.AdminAddr, err)
		}
		a.adminLn = aln
	}
	return nil
}

// TCPAddr returns the customer listener address once Listen succeeded.
func (a *App) TCPAddr() net.Addr { return a.tcpLn.Addr() }

// AdminAddr returns the admin listener address, or nil when disabled.
func (a *App) AdminAddr() net.Addr {
	if a.adminLn == nil {
		return nil
	}
	return a.adminLn.Addr()
}

// Run serves until ctx is done or a component fails, then stops the rest.
func (a *App) Run(ctx context.Context) error {
	if a.tcpLn == nil {
		if err := a.Listen(); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Notifier.Run(ctx) })
	g.Go(func() error { return a.Cafe.Run(ctx) })
	if a.Reports != nil {
		g.Go(func() error { return a.Reports.Run(ctx) })
	}
	g.Go(func() error { return a.TCP.Serve(ctx, a.tcpLn) })

	if a.Admin != nil {
		g.Go(func() error {
			a.log.Info("admin listening", "addr", a.adminLn.Addr().String())
			if err := a.Admin.Serve(a.adminLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return a.Admin.Shutdown(sctx)
		})
	}

	err := g.Wait()
	a.log.Info("cafe closed", "dropped_status_events", a.Notifier.Dropped())
	return err
}
