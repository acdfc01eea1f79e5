// Copyright 2024-2025 CardinalHQ, Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command livestat reads numbers from files or stdin and prints their
// running statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cardinalhq/livestat/internal/config"
)

func main() {
	var (
		configPath string
		mode       string
		name       string
		otlpPath   string
	)
	flag.StringVar(&configPath, "config", "", "path to a YAML configuration file")
	flag.StringVar(&mode, "mode", "", "plain or delta, overrides the configuration")
	flag.StringVar(&name, "name", "", "series name, overrides the configuration")
	flag.StringVar(&otlpPath, "otlp-json", "", "also write the series as OTLP JSON metrics to this file")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	if mode != "" {
		cfg.Input.Mode = mode
	}
	if name != "" {
		cfg.Input.Name = name
	}
	if flag.NArg() > 0 {
		cfg.Input.Files = flag.Args()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := cfg.Log.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r := &runner{
		cfg:      cfg,
		logger:   logger,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		otlpPath: otlpPath,
	}
	if err := r.run(ctx); err != nil {
		logger.Error("livestat failed", zap.Error(err))
		cancel()
		os.Exit(1)
	}
}
