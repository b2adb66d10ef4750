package inbound

import (
	"context"

	"steamvault/internal/market/usecase"
	"steamvault/internal/pkg/router"
)

type uc interface {
	GetPrice(ctx context.Context, in usecase.GetPriceInput) (*usecase.GetPriceOutput, error)
	GetPrices(ctx context.Context, in usecase.GetPricesInput) (*usecase.GetPricesOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/market/price", end.GetPrice)
	r.GET("/api/v1/market/prices", end.GetPrices)
}
