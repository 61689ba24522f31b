package pax

import (
	"fmt"
	"math"

	"github.com/stemsi/paxcalc-backend/internal/model"
)

const (
	MinYear = 2000
	MaxYear = 2100

	// Expected PAX range. Values outside it are suspicious, not invalid.
	MinExpectedPax = 0.7
	MaxExpectedPax = 1.0
)

// Validate checks idx and reports every problem it finds rather than
// stopping at the first one.
func Validate(idx *model.PaxIndex) model.ValidationResult {
	result := model.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}
	if idx == nil {
		result.Errors = append(result.Errors, "index is missing")
		return result
	}

	if idx.Year < MinYear || idx.Year > MaxYear {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid year: %d", idx.Year))
	}
	if !idx.IndexType.Valid() {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid index type: %q", idx.IndexType))
	}
	if len(idx.ClassGroups) == 0 {
		result.Errors = append(result.Errors, "no class groups found")
	}

	classCount := 0
	seen := make(map[string]struct{})
	for i, g := range idx.ClassGroups {
		if g.ID == "" || g.Name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("class group %d is missing id or name", i))
			continue
		}

		for _, c := range g.Classes {
			classCount++

			if _, dup := seen[c.Code]; dup {
				result.Errors = append(result.Errors, fmt.Sprintf("duplicate class code: %s", c.Code))
			}
			seen[c.Code] = struct{}{}

			if c.Code == "" || c.Name == "" {
				result.Errors = append(result.Errors, fmt.Sprintf("class in group %s is missing code or name", g.ID))
			}

			// A negative index trips both this warning and the error below.
			if !(c.PaxIndex >= MinExpectedPax && c.PaxIndex <= MaxExpectedPax) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("pax index for %s outside expected range [%.1f, %.1f]: %g", c.Code, MinExpectedPax, MaxExpectedPax, c.PaxIndex))
			}
			if !(c.PaxIndex > 0) || math.IsInf(c.PaxIndex, 0) {
				result.Errors = append(result.Errors, fmt.Sprintf("invalid pax index for %s: %g", c.Code, c.PaxIndex))
			}
		}
	}

	if len(idx.ClassesByCode) != classCount {
		result.Errors = append(result.Errors,
			fmt.Sprintf("class count mismatch: index has %d entries, groups contain %d classes", len(idx.ClassesByCode), classCount))
	}

	result.ClassCount = classCount
	result.GroupCount = len(idx.ClassGroups)
	result.IsValid = len(result.Errors) == 0
	return result
}
