package app

import (
	"log/slog"

	"github.com/busnet/transitcat/internal/appconf"
	"github.com/busnet/transitcat/internal/catalogue"
	"github.com/busnet/transitcat/internal/clock"
	"github.com/busnet/transitcat/internal/maprender"
	"github.com/busnet/transitcat/internal/metrics"
	"github.com/busnet/transitcat/internal/router"
)

// Application holds the dependencies shared by the load phase and the
// request handlers. Router and Renderer are nil until the request document
// supplies their settings.
type Application struct {
	Config    appconf.Config
	RunID     string
	Logger    *slog.Logger
	Catalogue *catalogue.Catalogue
	Router    *router.Router
	Renderer  *maprender.Renderer
	Clock     clock.Clock
	Metrics   *metrics.Metrics
}
