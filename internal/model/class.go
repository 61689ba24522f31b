package model

// Class is a competition category with its own PAX index.
type Class struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	PaxIndex float64 `json:"pax_index"`
	IsActive bool    `json:"is_active"`
}

// ClassGroup is a named collection of classes, e.g. "Street" or "Prepared".
type ClassGroup struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Classes     []Class `json:"classes"`
}
