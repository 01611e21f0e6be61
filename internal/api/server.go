// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package api serves the local management endpoints: health, runtime
// statistics, and cache administration. The listener is meant for operators
// on the host, not for chat traffic; it carries no authentication and should
// stay bound to localhost in production.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/pepperlabs/pepperbot/internal/buildinfo"
	"github.com/pepperlabs/pepperbot/internal/cache"
	"github.com/pepperlabs/pepperbot/internal/dedup"
	"github.com/pepperlabs/pepperbot/internal/pipeline"
	"github.com/pepperlabs/pepperbot/internal/ratelimit"
)

// Server is the management API.
type Server struct {
	pipeline *pipeline.Pipeline
	cache    *cache.ResponseCache
	guard    *dedup.Guard
	limiter  *ratelimit.Limiter

	httpServer *http.Server
	started    time.Time
}

// NewServer wires the management API around the running components.
func NewServer(p *pipeline.Pipeline, c *cache.ResponseCache, g *dedup.Guard, l *ratelimit.Limiter) *Server {
	return &Server{
		pipeline: p,
		cache:    c,
		guard:    g,
		limiter:  l,
		started:  time.Now(),
	}
}

// Routes builds the gin engine with all management endpoints registered.
func (s *Server) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/v0/stats", s.handleStats)
	engine.POST("/v0/cache/clear", s.handleCacheClear)
	return engine
}

// Start listens on host:port until ctx is canceled, then shuts down with a
// five second grace period.
func (s *Server) Start(ctx context.Context, host string, port int) error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: s.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.httpServer.Addr).Info("Management API listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    buildinfo.Version,
		"commit":     buildinfo.Commit,
		"build_date": buildinfo.BuildDate,
		"uptime_s":   int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"pipeline":   s.pipeline.GetStats(),
		"cache":      s.cache.GetStats(),
		"dedup":      s.guard.Stats(),
		"rate_limit": s.limiter.GetStats(),
	})
}

func (s *Server) handleCacheClear(c *gin.Context) {
	before := s.cache.GetStats().Size
	s.cache.Clear()
	log.WithField("cleared", before).Info("Response cache cleared via management API")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cleared": before,
	})
}
