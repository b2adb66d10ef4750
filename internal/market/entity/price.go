package entity

import "time"

// Price is the market price overview for one item.
type Price struct {
	AppID          int
	MarketHashName string
	Currency       int
	Found          bool
	LowestPrice    string
	MedianPrice    string
	Volume         string
	FetchedAt      time.Time
}
