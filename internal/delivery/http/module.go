package http

import (
	"go.uber.org/fx"

	"anvil-esign/internal/delivery/http/handler"
	"anvil-esign/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		handler.NewEtchHandler,
		handler.NewPDFHandler,
		handler.NewAnvilHandler,
		handler.NewHealthHandler,
		handler.NewWebhookHandler,
		handler.NewLogHandler,
		router.NewRouter,
	),
)
