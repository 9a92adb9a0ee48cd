package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/praveengyadahalli143-byte/TechpG/core/stats"
)

type statsApi struct {
	svc *stats.Service
}

func registerStatsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := statsApi{svc: deps.StatsSvc}

	// anonymous page-view tracking
	g.GET("/track", api.track)

	g.GET("/admin/stats", api.summary, jwt, adminMiddleware())
}

// Handlers

func (api *statsApi) track(ctx echo.Context) error {
	if err := api.svc.Track(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "tracking visitor")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *statsApi) summary(ctx echo.Context) error {
	summary, err := api.svc.Summarize(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "summarizing visitor stats")
	}
	return ctx.JSON(http.StatusOK, summary)
}
