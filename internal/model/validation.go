package model

// ValidationResult reports every problem found in a PaxIndex. Errors make the
// index unusable; warnings flag suspicious but acceptable data.
type ValidationResult struct {
	IsValid    bool     `json:"is_valid"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
	ClassCount int      `json:"class_count"`
	GroupCount int      `json:"group_count"`
}
