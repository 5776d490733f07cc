package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"anvil-esign/internal/config"
	"anvil-esign/internal/delivery/http/handler"
)

// bodyLimit leaves room for multipart packets carrying several documents
const bodyLimit = 32 * 1024 * 1024

type Router struct {
	app            *fiber.App
	config         *config.Config
	etchHandler    *handler.EtchHandler
	pdfHandler     *handler.PDFHandler
	anvilHandler   *handler.AnvilHandler
	healthHandler  *handler.HealthHandler
	webhookHandler *handler.WebhookHandler
	logHandler     *handler.LogHandler
}

func NewRouter(
	cfg *config.Config,
	etchHandler *handler.EtchHandler,
	pdfHandler *handler.PDFHandler,
	anvilHandler *handler.AnvilHandler,
	healthHandler *handler.HealthHandler,
	webhookHandler *handler.WebhookHandler,
	logHandler *handler.LogHandler,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    bodyLimit,
		ErrorHandler: customErrorHandler,
	})

	return &Router{
		app:            app,
		config:         cfg,
		etchHandler:    etchHandler,
		pdfHandler:     pdfHandler,
		anvilHandler:   anvilHandler,
		healthHandler:  healthHandler,
		webhookHandler: webhookHandler,
		logHandler:     logHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	// Health check route
	r.app.Get("/health", r.healthHandler.Health)

	// Webhook routes (at root level for external callbacks)
	r.app.Post("/webhook/anvil", r.webhookHandler.AnvilCallback)

	// API v1 routes
	api := r.app.Group("/api/v1")
	{
		etch := api.Group("/etch")
		{
			etch.Post("/packets", r.etchHandler.CreatePacket)
			etch.Get("/packets/:eid", r.etchHandler.GetPacket)
			etch.Post("/signing-url", r.etchHandler.GenerateSigningURL)
		}

		pdf := api.Group("/pdf")
		{
			pdf.Post("/fill/:templateID", r.pdfHandler.FillPDF)
			pdf.Post("/generate", r.pdfHandler.GeneratePDF)
		}

		api.Post("/forge/submit", r.anvilHandler.ForgeSubmit)
		api.Get("/documents/:groupEid/download", r.anvilHandler.DownloadDocuments)
		api.Get("/casts", r.anvilHandler.GetCasts)
		api.Get("/casts/:eid", r.anvilHandler.GetCast)
		api.Get("/welds", r.anvilHandler.GetWelds)
		api.Get("/me", r.anvilHandler.Me)
		api.Post("/graphql", r.anvilHandler.GraphQL)

		// Log routes
		logs := api.Group("/logs")
		{
			logs.Get("", r.logHandler.GetLogs)
			logs.Get("/search", r.logHandler.SearchLogs)
		}
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
		"error": fiber.Map{
			"code":    code,
			"message": err.Error(),
		},
	})
}
