// Package server exposes the research pipeline over HTTP: POST /research
// runs one pipeline invocation, /healthz is the liveness probe, and /metrics
// serves the Prometheus collectors.
package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/scout/agents/researcher"
	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/app"
	"github.com/mohammad-safakhou/scout/provider"
)

type researchRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
}

type researchResponse struct {
	ResearchID string `json:"research_id"`
	Answer     string `json:"answer"`
	ElapsedMS  int64  `json:"elapsed_ms"`
}

// Run builds the pipeline from config and serves until the listener fails.
func Run(cfg *config.Config) error {
	agent, err := app.BuildAgent(cfg)
	if err != nil {
		return err
	}
	prov, err := app.BuildProvider(cfg)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	e.POST("/research", researchHandler(cfg, agent, prov))

	return e.Start(cfg.Server.Address)
}

func researchHandler(cfg *config.Config, agent *researcher.Agent, prov provider.Provider) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req researchRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if req.Query == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "query is required")
		}
		mode := req.Mode
		if mode == "" {
			mode = cfg.Research.DefaultMode
		}

		// One ID for both the response and the pipeline logs.
		researchID := uuid.NewString()
		start := time.Now()
		answer := agent.Research(c.Request().Context(), req.Query, prov, researcher.Options{
			Mode:                mode,
			ResearchID:          researchID,
			CacheTTL:            cfg.Research.CacheTTL,
			DefaultSources:      cfg.Research.DefaultSources,
			DefaultSnippetChars: cfg.Research.DefaultSnippetChars,
		})

		return c.JSON(http.StatusOK, researchResponse{
			ResearchID: researchID,
			Answer:     answer,
			ElapsedMS:  time.Since(start).Milliseconds(),
		})
	}
}
