// Command menuctl drives the menu platform API from the terminal: signing in, managing
// restaurants and menus, administering subscriptions and reading public menus.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-menu-client/internal/config"
	"github.com/jrsteele09/go-menu-client/internal/logging"
	"github.com/jrsteele09/go-menu-client/internal/metrics"
	"github.com/jrsteele09/go-menu-client/navigation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.New()
	logging.SetupWriter(stderr, cfg.GetLogLevel(), cfg.GetEnv())

	global := flag.NewFlagSet("menuctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	metricsAddr := global.String("metrics-addr", "", "serve prometheus metrics on this address, kept up after the command until interrupted")
	currentPath := global.String("path", navigation.RouteDashboard, "application route the command runs from")
	global.Usage = func() { usage(stderr, cfg.GetAppName()) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 || global.Arg(0) == "help" {
		usage(stderr, cfg.GetAppName())
		return nil
	}

	var recorder metrics.Recorder = metrics.Nop{}
	var metricsServer *http.Server
	serveErr := make(chan error, 1)
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		recorder = metrics.NewCollector(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		metricsServer = &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			serveErr <- listenAndServe(metricsServer)
		}()
	}

	c, err := newCLI(ctx, cfg, stdout, stderr, *currentPath, recorder)
	if err != nil {
		if metricsServer != nil {
			_ = shutdown(metricsServer)
		}
		return err
	}
	defer c.close()

	returnError = c.dispatch(ctx, global.Arg(0), global.Args()[1:])

	// The metrics stay up after the command so they can be scraped, until interrupted.
	if metricsServer != nil {
		if err := waitForStopSignal(ctx, serveErr); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
			return errors.Join(returnError, err)
		}
		if err := shutdown(metricsServer); err != nil && returnError == nil {
			returnError = err
		}
	}
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("metrics listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

// waitForStopSignal returns when ctx ends, or with the server's error if it stops first.
func waitForStopSignal(ctx context.Context, serveErr <-chan error) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-serveErr:
		if err == nil {
			return errors.New("metrics server stopped unexpectedly")
		}
		return err
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}

func usage(w io.Writer, appname string) {
	displayAppname(w, appname)
	fmt.Fprintln(w, "usage: menuctl [-metrics-addr addr] [-path route] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-18s %s\n", cmd.name, cmd.summary)
	}
}
