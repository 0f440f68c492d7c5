package fxModel

// RawRates mirrors the latest-rates response of the FX feed.
type RawRates struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}
