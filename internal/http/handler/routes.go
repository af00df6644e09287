package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookshelf/docs"
	"bookshelf/internal/config"
	"bookshelf/internal/service"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Books      service.BookService
	Health     Pinger
	Upload     config.UploadConfig
	Gatherer   prometheus.Gatherer
	PublicHost string // advertised in the API docs when a request has no Host
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate between HTTP and BookService.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.Health))
	app.Get("/healthz", LivenessProbe())

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		host := c.Get("Host")
		if host == "" {
			host = d.PublicHost
		}
		docs.SwaggerInfo.Host = host
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	})

	api := app.Group("/api")
	api.Get("/books", ListBooks(d.Books))
	api.Post("/books", UploadBook(d.Books, d.Upload))
	api.Post("/books/:id/download", DownloadBook(d.Books))
	api.Delete("/books/:id", DeleteBook(d.Books))
	api.Get("/tags", ListTags(d.Books))
	api.Get("/signed-url", SignedURL(d.Books))
	api.Get("/session", Session(d.Books))
}
