package repository

import (
	"go.uber.org/fx"

	"anvil-esign/internal/domain/repository"
	"anvil-esign/internal/infrastructure/httpclient"
)

var Module = fx.Module("repository",
	fx.Provide(NewAnvilRepository),
	fx.Provide(
		fx.Annotate(
			NewAPILogRepository,
			fx.As(new(repository.APILogRepository)),
			fx.As(new(httpclient.APILogSaver)),
		),
	),
)
