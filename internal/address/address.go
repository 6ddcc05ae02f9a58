// Package address provides pure parsing heuristics over Places address
// components: postcode reassembly, street-level address cleaning, and
// confidence scoring of a matched place.
//
// The cleaning logic assumes UK addressing conventions: named properties
// (no digits) are kept as a distinct comma-separated component from the
// street, while numeric house numbers join the street with a space.
package address

import (
	"strings"
	"unicode"

	"github.com/fairwaylabs/golfdata/internal/places"
)

// Confidence classifies how trustworthy a matched place is for the intended
// activity.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Component tags with special meaning during normalization.
const (
	tagStreetNumber     = "street_number"
	tagRoute            = "route"
	tagPostalCode       = "postal_code"
	tagPostalCodeSuffix = "postal_code_suffix"
	tagCountry          = "country"
)

// ExtractPostalCode finds the main postcode and any suffix among the
// components and joins them with a single space (UK format: "TN16 1QN").
// Returns whichever part exists when only one is present, or "" when neither
// is.
func ExtractPostalCode(components []places.AddressComponent) string {
	var main, suffix string
	for _, c := range components {
		if hasType(c, tagPostalCode) {
			main = c.LongName
		} else if hasType(c, tagPostalCodeSuffix) {
			suffix = c.LongName
		}
	}
	if main != "" && suffix != "" {
		return main + " " + suffix
	}
	if main != "" {
		return main
	}
	return suffix
}

// BuildCleanAddress constructs a comma-separated street and locality address
// from the components, excluding geographic metadata (postcode, postcode
// suffix, country).
//
// The street number and route are joined into one block: with a space when
// the street number contains a digit ("10 Downing St"), with a comma when it
// is a named property ("Valence Park, Brasted Rd"). All other surviving
// components follow in their original order. Returns "" when nothing
// survives the exclusions.
func BuildCleanAddress(components []places.AddressComponent) string {
	var streetNumber, route string
	var otherParts []string

	for _, c := range components {
		if hasType(c, tagPostalCode) || hasType(c, tagPostalCodeSuffix) || hasType(c, tagCountry) {
			continue
		}
		switch {
		case hasType(c, tagStreetNumber):
			if streetNumber == "" {
				streetNumber = c.LongName
			}
		case hasType(c, tagRoute):
			if route == "" {
				route = c.LongName
			}
		default:
			otherParts = append(otherParts, c.LongName)
		}
	}

	var streetBlock string
	switch {
	case streetNumber != "" && route != "":
		if containsDigit(streetNumber) {
			streetBlock = streetNumber + " " + route
		} else {
			streetBlock = streetNumber + ", " + route
		}
	case streetNumber != "":
		streetBlock = streetNumber
	default:
		streetBlock = route
	}

	parts := make([]string, 0, len(otherParts)+1)
	if streetBlock != "" {
		parts = append(parts, streetBlock)
	}
	for _, p := range otherParts {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// CalculateConfidence evaluates the reliability of a place result against
// activity criteria.
//
// High: the result's types intersect targetTypes, or the keyword appears in
// the result name or the original search query — and the result is not a
// partial match. Medium: the result is a generic establishment or point of
// interest but the High condition failed. Low: everything else. High is
// checked before Medium.
func CalculateConfidence(result *places.PlaceDetails, searchQuery string, targetTypes []string, keyword string) Confidence {
	if result == nil {
		return ConfidenceLow
	}

	foundName := strings.ToLower(result.Name)
	searchQuery = strings.ToLower(searchQuery)
	keyword = strings.ToLower(keyword)

	typeMatch := false
	for _, t := range targetTypes {
		if containsString(result.Types, t) {
			typeMatch = true
			break
		}
	}

	keywordMatch := keyword != "" &&
		(strings.Contains(foundName, keyword) || strings.Contains(searchQuery, keyword))

	if (typeMatch || keywordMatch) && !result.PartialMatch {
		return ConfidenceHigh
	}

	if containsString(result.Types, "establishment") || containsString(result.Types, "point_of_interest") {
		return ConfidenceMedium
	}

	return ConfidenceLow
}

func hasType(c places.AddressComponent, tag string) bool {
	return containsString(c.Types, tag)
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
