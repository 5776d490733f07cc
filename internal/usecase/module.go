package usecase

import "go.uber.org/fx"

var Module = fx.Module("usecase",
	fx.Provide(NewEtchUsecase),
	fx.Provide(NewPDFUsecase),
	fx.Provide(NewAnvilUsecase),
	fx.Provide(NewWebhookUsecase),
)
