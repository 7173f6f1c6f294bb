// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// provexd runs the delegated-staking ledger of the proof marketplace as a
// standalone HTTP service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"github.com/provex/provex/api"
	"github.com/provex/provex/kv"
	"github.com/provex/provex/ledger"
	"github.com/provex/provex/log"
	"github.com/provex/provex/lvldb"
	"github.com/provex/provex/metrics"
)

var (
	version   = "dev"
	gitCommit = ""

	logger = log.WithContext("pkg", "provexd")
)

func fullVersion() string {
	if gitCommit == "" {
		return version
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Name:      "provexd",
		Version:   fullVersion(),
		Usage:     "delegated-staking ledger for the proof marketplace",
		Copyright: "2026 The Provex developers",
		Flags: []cli.Flag{
			dataDirFlag,
			memFlag,
			apiAddrFlag,
			apiCORSFlag,
			genesisFlag,
			verbosityFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if err := log.SetLevel(ctx.String(verbosityFlag.Name)); err != nil {
		return err
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	l := ledger.New(store)
	if path := ctx.String(genesisFlag.Name); path != "" {
		owner, alloc, err := loadGenesis(path)
		if err != nil {
			return err
		}
		if err := l.ApplyGenesis(owner, alloc); err != nil {
			return err
		}
	}

	var origins []string
	if cors := ctx.String(apiCORSFlag.Name); cors != "" {
		origins = strings.Split(cors, ",")
	}
	handler := api.New(l, origins)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		return serve(groupCtx, "api", ctx.String(apiAddrFlag.Name), handler)
	})
	if ctx.Bool(enableMetricsFlag.Name) {
		group.Go(func() error {
			return serve(groupCtx, "metrics", ctx.String(metricsAddrFlag.Name), metrics.HTTPHandler())
		})
	}
	logger.Info("provexd started", "version", fullVersion(), "api", ctx.String(apiAddrFlag.Name))

	err = group.Wait()
	logger.Info("provexd stopped")
	return err
}

func openStore(ctx *cli.Context) (kv.GetPutCloser, error) {
	if ctx.Bool(memFlag.Name) {
		return lvldb.NewMem()
	}
	dir := ctx.String(dataDirFlag.Name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return lvldb.New(filepath.Join(dir, "ledger.db"), lvldb.Options{})
}

// serve runs an HTTP server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, name, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logger.Info("server listening", "name", name, "addr", addr)

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "%s server", name)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
