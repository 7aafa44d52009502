package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/shutterlink/pkg/api/handlers"
	"github.com/urmzd/shutterlink/pkg/transport"
)

// Router holds the Gin engine and dependencies
type Router struct {
	engine    *gin.Engine
	session   handlers.Session
	listPorts func() ([]transport.PortInfo, error)
	gatherer  prometheus.Gatherer
}

// NewRouter creates a new API router. Metrics are served from gatherer when
// it is non-nil.
func NewRouter(s handlers.Session, listPorts func() ([]transport.PortInfo, error), gatherer prometheus.Gatherer) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	if listPorts == nil {
		listPorts = transport.ListPorts
	}

	router := &Router{
		engine:    engine,
		session:   s,
		listPorts: listPorts,
		gatherer:  gatherer,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	if r.gatherer != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	healthHandler := handlers.NewHealthHandler(r.session)
	r.engine.GET("/health", healthHandler.Health)

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		// Link
		linkHandler := handlers.NewLinkHandler(r.session, r.listPorts)
		v1.GET("/link", linkHandler.GetLink)
		v1.POST("/link/connect", linkHandler.Connect)
		v1.POST("/link/disconnect", linkHandler.Disconnect)
		v1.GET("/ports", linkHandler.ListPorts)

		// Settings
		settingsHandler := handlers.NewSettingsHandler(r.session)
		v1.GET("/mode", settingsHandler.GetMode)
		v1.PUT("/mode", settingsHandler.SetMode)
		v1.GET("/settings/orientation", settingsHandler.GetOrientation)
		v1.PUT("/settings/orientation", settingsHandler.SetOrientation)

		// Measurements
		measurementsHandler := handlers.NewMeasurementsHandler(r.session)
		measurements := v1.Group("/measurements")
		{
			measurements.GET("/latest", measurementsHandler.Latest)
			measurements.POST("/reset", measurementsHandler.Reset)
		}

		// Events
		eventsHandler := handlers.NewEventsHandler(r.session)
		v1.GET("/events", eventsHandler.Events)
	}
}

// ServeHTTP lets the router be used as an http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
