package model

import "strings"

// RouteKey builds the categorical route identifier from two station codes.
// Codes are trimmed and upper-cased so "pt " and "PT" name the same station.
func RouteKey(origin, destination string) string {
	return NormalizeCode(origin) + "_" + NormalizeCode(destination)
}

// NormalizeCode canonicalizes a station code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Route returns the route key of a departure.
func (d Departure) Route() string {
	return RouteKey(d.Origin, d.Destination)
}
