package inbound

import (
	"steamvault/internal/market/entity"
	"steamvault/internal/market/usecase"
	"steamvault/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for market price lookups.
type HTTPEndpoint struct {
	uc uc
}

// GetPrice returns the price overview for a single item.
func (h *HTTPEndpoint) GetPrice(r *router.Request) (any, error) {
	appID, err := r.GetQueryInt64("appid")
	if err != nil {
		return nil, err
	}
	currency, err := r.GetQueryInt64("currency")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.GetPrice(r.Context(), usecase.GetPriceInput{
		AppID:          int(appID),
		Currency:       int(currency),
		MarketHashName: r.GetQuery("market_hash_name"),
	})
	if err != nil {
		return nil, err
	}

	return priceResponse(resp.Price, resp.Cached), nil
}

// GetPrices returns price overviews for several items in one call.
func (h *HTTPEndpoint) GetPrices(r *router.Request) (any, error) {
	appID, err := r.GetQueryInt64("appid")
	if err != nil {
		return nil, err
	}
	currency, err := r.GetQueryInt64("currency")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.GetPrices(r.Context(), usecase.GetPricesInput{
		AppID:    int(appID),
		Currency: int(currency),
		Items:    r.GetQueries("market_hash_name"),
	})
	if err != nil {
		return nil, err
	}

	items := make([]PriceBatchItemResponse, 0, len(resp.Results))
	for _, result := range resp.Results {
		item := PriceBatchItemResponse{MarketHashName: result.MarketHashName}
		if result.Err != nil {
			item.Error = result.Err.Error()
		} else if result.Price != nil {
			price := priceResponse(*result.Price, false)
			item.Price = &price
		}
		items = append(items, item)
	}

	return items, nil
}

func priceResponse(price entity.Price, cached bool) PriceResponse {
	return PriceResponse{
		AppID:          price.AppID,
		MarketHashName: price.MarketHashName,
		Currency:       price.Currency,
		Found:          price.Found,
		LowestPrice:    price.LowestPrice,
		MedianPrice:    price.MedianPrice,
		Volume:         price.Volume,
		Cached:         cached,
	}
}
