package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/gopherpos/internal/config"
	"github.com/polkiloo/gopherpos/internal/pkg/orderno"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewCheckoutUseCase,
	NewOrderUseCase,
	NewPointsUseCase,
	newCheckoutOptions,
	newPointsAccruer,
	newOrderNumberGenerator,
)

func newCheckoutOptions(cfg *config.Config) CheckoutOptions {
	return CheckoutOptions{
		MaxAttempts:    cfg.CheckoutMaxAttempts,
		PointsEnabled:  cfg.PointsEnabled,
		PriceTolerance: cfg.PriceTolerance,
	}
}

func newPointsAccruer(cfg *config.Config) PointsAccruer {
	return NewLedgerAccruer(cfg.PointsRate)
}

func newOrderNumberGenerator() OrderNumberGenerator {
	return orderno.Default()
}
