/*
 * MIT License
 *
 * Copyright (c) 2026 Amine Sabouar
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command webserv is the CLI entry point described in SPEC_FULL §4.L: one
// positional argument naming the configuration file, non-zero exit on
// config-parse error or bind failure.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github/sabouaram/webserv/internal/config"
	"github/sabouaram/webserv/internal/metrics"
	"github/sabouaram/webserv/internal/reactor"
	"github/sabouaram/webserv/internal/session"
	"github/sabouaram/webserv/internal/xlog"
)

// defaultSessionKey is the cookie name carrying the session identifier.
// Not a config directive (spec §6's table has no SESSION_KEY entry); fixed
// here the way the original engine hardcodes it.
const defaultSessionKey = "session_id"

var metricsAddr string

func main() {
	root := &cobra.Command{
		Use:           "webserv <config-file>",
		Short:         "HTTP/1.1 origin server driven by an nginx-style configuration file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus /metrics on (disabled if empty)")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "webserv: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	log := xlog.Default

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	tree, err := config.Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := config.Validate(tree); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if metricsAddr != "" {
		serveMetrics(metricsAddr, reg, log)
	}

	sessions := session.New(defaultSessionKey)

	r, err := reactor.New(tree, sessions, log, m)
	if err != nil {
		return fmt.Errorf("bind listeners: %w", err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down", nil)
		cancel()
	}()

	log.Info("webserv starting", xlog.NewFields().Add("listeners", tree.Bindable()))
	return r.Run(ctx)
}

// serveMetrics starts a best-effort Prometheus exporter on a separate
// goroutine; it never blocks startup and its failures only get logged.
func serveMetrics(addr string, reg *prometheus.Registry, log *xlog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped", xlog.NewFields().Add("error", err.Error()))
		}
	}()
}
