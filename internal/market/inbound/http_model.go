package inbound

type PriceResponse struct {
	AppID          int    `json:"app_id"`
	MarketHashName string `json:"market_hash_name"`
	Currency       int    `json:"currency"`
	Found          bool   `json:"found"`
	LowestPrice    string `json:"lowest_price,omitempty"`
	MedianPrice    string `json:"median_price,omitempty"`
	Volume         string `json:"volume,omitempty"`
	Cached         bool   `json:"cached"`
}

type PriceBatchItemResponse struct {
	MarketHashName string         `json:"market_hash_name"`
	Price          *PriceResponse `json:"price,omitempty"`
	Error          string         `json:"error,omitempty"`
}
