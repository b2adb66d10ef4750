package usecase

import (
	"context"
	"sync"

	"steamvault/internal/market/entity"
	"steamvault/internal/pkg/goerror"
	"steamvault/internal/pkg/goroutine"
)

type GetPricesInput struct {
	AppID    int      `validate:"required,gt=0"`
	Currency int      `validate:"required,gt=0"`
	Items    []string `validate:"required,min=1,max=20,dive,required"`
}

type PriceResult struct {
	MarketHashName string
	Price          *entity.Price
	Err            error
}

type GetPricesOutput struct {
	Results []PriceResult
}

// GetPrices looks up several items concurrently. Per-item failures land in
// that item's result slot; one bad item does not sink the batch.
func (s *Usecase) GetPrices(ctx context.Context, in GetPricesInput) (*GetPricesOutput, error) {
	ctx, span := s.startSpan(ctx, "GetPrices")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	results := make([]PriceResult, len(in.Items))
	var mu sync.Mutex

	manager := goroutine.NewManager()
	for i, item := range in.Items {
		i, item := i, item
		manager.Run(ctx, func(ctx context.Context) {
			out, err := s.GetPrice(ctx, GetPriceInput{
				AppID:          in.AppID,
				Currency:       in.Currency,
				MarketHashName: item,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[i] = PriceResult{MarketHashName: item, Err: err}
				return
			}
			results[i] = PriceResult{MarketHashName: item, Price: &out.Price}
		})
	}
	manager.Wait()

	return &GetPricesOutput{Results: results}, nil
}
