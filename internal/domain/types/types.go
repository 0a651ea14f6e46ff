// Package types contains common types used across the application
package types

// Standing is one row of the championship probability table.
type Standing struct {
	Rank   int     `json:"rank"`
	Name   string  `json:"name"`
	Chance float64 `json:"chance"` // percent, 0..100
	Titles int     `json:"titles"` // trials won, ties included
}
