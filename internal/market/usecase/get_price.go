package usecase

import (
	"context"
	"errors"
	"log/slog"

	"steamvault/internal/market/entity"
	"steamvault/internal/pkg/goerror"
)

type GetPriceInput struct {
	AppID          int    `validate:"required,gt=0"`
	Currency       int    `validate:"required,gt=0"`
	MarketHashName string `validate:"required"`
}

type GetPriceOutput struct {
	Price  entity.Price
	Cached bool
}

// GetPrice returns the price overview for one item, served from cache when
// possible. Provider misses are cached like hits so a hot unknown item does
// not turn into repeated upstream calls.
func (s *Usecase) GetPrice(ctx context.Context, in GetPriceInput) (*GetPriceOutput, error) {
	ctx, span := s.startSpan(ctx, "GetPrice")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cached, err := s.cache.Get(ctx, in.AppID, in.Currency, in.MarketHashName)
	if err == nil {
		return &GetPriceOutput{Price: *cached, Cached: true}, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "price cache read failed", "market_hash_name", in.MarketHashName, "error", err)
	}

	price, err := s.fetcher.FetchPrice(ctx, in.AppID, in.Currency, in.MarketHashName)
	if err != nil {
		slog.WarnContext(ctx, "price fetch failed", "market_hash_name", in.MarketHashName, "error", err)
		return nil, err
	}

	if err := s.cache.Set(ctx, *price); err != nil {
		slog.WarnContext(ctx, "price cache write failed", "market_hash_name", in.MarketHashName, "error", err)
	}

	return &GetPriceOutput{Price: *price}, nil
}
