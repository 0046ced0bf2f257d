package catalog

import "context"

// Item is one entry of the item mapping published by the prices API.
type Item struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Examine  string `json:"examine"`
	Members  bool   `json:"members"`
	Limit    int    `json:"limit"`
	Value    int64  `json:"value"`
	LowAlch  int64  `json:"lowalch"`
	HighAlch int64  `json:"highalch"`
	Icon     string `json:"icon"`
}

// Source yields the full item mapping.
type Source interface {
	FetchMapping(ctx context.Context) ([]Item, error)
}
