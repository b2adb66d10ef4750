package usecase

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"steamvault/internal/market/entity"
	"steamvault/internal/pkg/instrument"
	"steamvault/internal/pkg/validator"
)

type priceFetcher interface {
	FetchPrice(ctx context.Context, appID, currency int, marketHashName string) (*entity.Price, error)
}

type priceCache interface {
	Get(ctx context.Context, appID, currency int, marketHashName string) (*entity.Price, error)
	Set(ctx context.Context, price entity.Price) error
}

type Usecase struct {
	fetcher   priceFetcher
	cache     priceCache
	validator validator.Validator
	ins       instrument.Instrumentation
}

type Dependency struct {
	Fetcher    priceFetcher
	Cache      priceCache
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		fetcher:   dep.Fetcher,
		cache:     dep.Cache,
		validator: dep.Validator,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("market.usecase").Start(ctx, name)
}
