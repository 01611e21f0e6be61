// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for pepperbot, the PEPPER community
// assistant. It wires the safety gates, classifier, planner, generator, and
// sanitizer into the response pipeline, then serves Telegram traffic and the
// local management API until interrupted.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/pepperlabs/pepperbot/internal/api"
	"github.com/pepperlabs/pepperbot/internal/buildinfo"
	"github.com/pepperlabs/pepperbot/internal/cache"
	"github.com/pepperlabs/pepperbot/internal/channel"
	"github.com/pepperlabs/pepperbot/internal/classify"
	"github.com/pepperlabs/pepperbot/internal/config"
	"github.com/pepperlabs/pepperbot/internal/dedup"
	"github.com/pepperlabs/pepperbot/internal/generate"
	"github.com/pepperlabs/pepperbot/internal/knowledge"
	"github.com/pepperlabs/pepperbot/internal/llm"
	"github.com/pepperlabs/pepperbot/internal/logging"
	"github.com/pepperlabs/pepperbot/internal/maintenance"
	"github.com/pepperlabs/pepperbot/internal/pipeline"
	"github.com/pepperlabs/pepperbot/internal/plan"
	"github.com/pepperlabs/pepperbot/internal/ratelimit"
	"github.com/pepperlabs/pepperbot/internal/safety"
	"github.com/pepperlabs/pepperbot/internal/sanitize"
	"github.com/pepperlabs/pepperbot/internal/validate"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Optional .env for local development; secrets come from the process
	// environment in production.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if err = logging.ConfigureLogOutput(cfg.LoggingToFile, cfg.Debug, "logs"); err != nil {
		log.WithError(err).Fatal("Failed to configure logging")
	}
	log.WithFields(log.Fields{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	}).Info("pepperbot starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Knowledge, facts, and links.
	provider := knowledge.NewProvider(cfg.Knowledge.Path)
	if cfg.Knowledge.WatchForChanges {
		// Watch blocks until ctx is done; it gets its own goroutine so
		// startup proceeds to the transport and management API.
		go func() {
			if err := provider.Watch(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("Knowledge hot reload unavailable")
			}
		}()
	}

	facts := generate.NewFactStore()
	if cfg.Knowledge.FactsFile != "" {
		if err = facts.LoadFactsFile(cfg.Knowledge.FactsFile); err != nil {
			log.WithError(err).Warn("Facts file not loaded; built-in facts remain active")
		}
	}

	registry := sanitize.NewLinkRegistry()
	if cfg.Knowledge.LinksFile != "" {
		loaded, loadErr := sanitize.LoadRegistryFile(cfg.Knowledge.LinksFile)
		if loadErr != nil {
			log.WithError(loadErr).Warn("Links file not loaded; built-in registry remains active")
		} else {
			registry = loaded
		}
	}

	// Stores and gates.
	responseCache := cache.New(cfg.Cache.MaxEntries, cfg.CacheTTL())
	guard := dedup.NewGuard(cfg.DedupWindow(), cfg.Dedup.MaxEntries)
	limiter := ratelimit.NewLimiter(cfg.RateLimitWindow(), cfg.RateLimit.MaxMessages)

	// Planner override rules from config.
	ruleSpecs := make([]plan.RuleSpec, 0, len(cfg.PlannerRules))
	for _, rule := range cfg.PlannerRules {
		ruleSpecs = append(ruleSpecs, plan.RuleSpec{
			Name:          rule.Name,
			Condition:     rule.Condition,
			ForceTier:     rule.ForceTier,
			ForceGenerate: rule.ForceGenerate,
		})
	}

	client := llm.NewOpenAIClient(cfg.ModelAPIKey(), cfg.Model.BaseURL, cfg.ModelTimeout())
	generator := generate.New(
		client,
		responseCache,
		facts,
		provider,
		generate.Models{Fast: cfg.Model.FastModel, Quality: cfg.Model.QualityModel},
		cfg.CacheTTL(),
		nil,
	)

	p := pipeline.New(
		safety.NewDetector(nil),
		guard,
		limiter,
		classify.New(),
		plan.New(ruleSpecs),
		generator,
		validate.New(),
		sanitize.NewFormatter(registry),
		responseCache,
	)

	// Periodic housekeeping.
	sweeper := maintenance.NewSweeper(map[string]maintenance.Sweepable{
		"cache":      responseCache,
		"dedup":      guard,
		"rate_limit": limiter,
	})
	if err = sweeper.Start(cfg.Maintenance.SweepSchedule); err != nil {
		log.WithError(err).Fatal("Failed to start maintenance sweeps")
	}
	defer sweeper.Stop()

	// Chat transport.
	token := cfg.TelegramToken()
	if token == "" {
		log.Fatalf("Telegram token missing: set %s", cfg.Telegram.TokenEnv)
	}
	tg, err := channel.NewTelegramChannel(token, cfg.Telegram.PollTimeoutSeconds, p)
	if err != nil {
		log.WithError(err).Fatal("Failed to create telegram channel")
	}
	if err = tg.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start telegram channel")
	}
	defer tg.Stop()

	// Management API blocks until shutdown.
	server := api.NewServer(p, responseCache, guard, limiter)
	if err = server.Start(ctx, cfg.Server.Host, cfg.Server.Port); err != nil {
		log.WithError(err).Error("Management API terminated")
	}

	log.Info("pepperbot stopped")
}
