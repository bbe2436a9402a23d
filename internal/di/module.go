package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/gopherpos/internal/app"
	"github.com/polkiloo/gopherpos/internal/config"
	"github.com/polkiloo/gopherpos/internal/logger"
	"github.com/polkiloo/gopherpos/internal/metrics"
	"github.com/polkiloo/gopherpos/internal/server/http/handlers"
	"github.com/polkiloo/gopherpos/internal/server/http/router"
	"github.com/polkiloo/gopherpos/internal/storage/postgres"
	"github.com/polkiloo/gopherpos/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		postgres.Module,
		usecase.Module,
		fx.Provide(
			func(m *metrics.Metrics) usecase.CheckoutRecorder { return m },
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(f *app.POSFacade) handlers.POSFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
