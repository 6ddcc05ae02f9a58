// Package model defines the golf course record schema and its validation
// rules. Parsing a raw row collects every field error in one pass rather
// than failing on the first, so the validator can report complete
// diagnostics per row.
package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fairwaylabs/golfdata/internal/dataset"
)

// Canonical column names for the course dataset. Input files use these
// case-sensitive headers; the enrichment and validation stages read and
// write them.
const (
	ColCourseName  = "Course Name"
	ColCountry     = "Country"
	ColCountryCode = "Country Code"
	ColCourseType  = "Course Type"
	ColAddress     = "Address"
	ColPostCode    = "Post Code"
	ColLatitude    = "Latitude"
	ColLongitude   = "Longitude"
	ColPar         = "Par"
	ColCourseIndex = "Course Index"
	ColSlopeRating = "Slope Rating"

	// ColConfidence is written by the enrichment stage, not part of the
	// validated schema.
	ColConfidence = "Confidence"
)

// Columns is the schema column order of the validated output.
var Columns = []string{
	ColCourseName, ColCountry, ColCountryCode, ColCourseType,
	ColAddress, ColPostCode, ColLatitude, ColLongitude,
	ColPar, ColCourseIndex, ColSlopeRating,
}

// CourseType enumerates the supported course categories. The values are the
// display strings used in the tabular data.
type CourseType string

const (
	NineHolePar3 CourseType = "9 hole - par 3 course"
	NineHole     CourseType = "9 hole"
	EighteenHole CourseType = "18 hole"
)

// ParseCourseType validates enum membership.
func ParseCourseType(s string) (CourseType, error) {
	switch CourseType(s) {
	case NineHolePar3, NineHole, EighteenHole:
		return CourseType(s), nil
	default:
		return "", fmt.Errorf("%q is not a valid course type", s)
	}
}

// Postcode formats by country. UK postcodes allow an optional space between
// the outward and inward codes; French postcodes are exactly five digits.
var (
	ukPostcodeRe = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}$`)
	frPostcodeRe = regexp.MustCompile(`^\d{5}$`)

	countryCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)
)

const (
	addressMinLen = 5
	addressMaxLen = 150
)

// Course is the validated schema representation of one golf course.
type Course struct {
	Name        string
	Country     string
	CountryCode string
	Type        CourseType
	Address     string
	PostCode    string
	Latitude    float64
	Longitude   float64
	Par         int
	CourseIndex float64
	SlopeRating int
}

// FieldError is a single field-level validation failure. Value is the
// offending input as it appeared in the row.
type FieldError struct {
	Value   string
	Message string
}

// ParseCourse constructs a Course from a raw row, enforcing field types,
// ranges, enum membership, and the two cross-field rules
// (postcode-by-country, par-by-type). It returns every field error found;
// the Course is non-nil only when the error list is empty.
func ParseCourse(row dataset.Row) (*Course, []FieldError) {
	var errs []FieldError
	fail := func(value, format string, args ...interface{}) {
		errs = append(errs, FieldError{Value: value, Message: fmt.Sprintf(format, args...)})
	}

	c := &Course{
		Name:     strings.TrimSpace(row[ColCourseName]),
		Country:  strings.TrimSpace(row[ColCountry]),
		Address:  row[ColAddress],
		PostCode: strings.TrimSpace(row[ColPostCode]),
	}

	if c.Name == "" {
		fail(row[ColCourseName], "course name is required")
	}
	if c.Country == "" {
		fail(row[ColCountry], "country is required")
	}

	c.CountryCode = strings.TrimSpace(row[ColCountryCode])
	codeValid := countryCodeRe.MatchString(c.CountryCode)
	if !codeValid {
		fail(row[ColCountryCode], "country code must be a 3-letter alpha-3 code")
	}

	courseType, typeErr := ParseCourseType(strings.TrimSpace(row[ColCourseType]))
	if typeErr != nil {
		fail(row[ColCourseType], "%v", typeErr)
	} else {
		c.Type = courseType
	}

	if n := len(c.Address); n < addressMinLen || n > addressMaxLen {
		fail(row[ColAddress], "address must be between %d and %d characters", addressMinLen, addressMaxLen)
	}
	if c.PostCode == "" {
		fail(row[ColPostCode], "post code is required")
	}

	lat, latErr := parseFloat(row[ColLatitude])
	switch {
	case latErr != nil:
		fail(row[ColLatitude], "latitude must be a valid number")
	case lat < -90 || lat > 90:
		fail(row[ColLatitude], "latitude must be between -90 and 90")
	default:
		c.Latitude = lat
	}

	lon, lonErr := parseFloat(row[ColLongitude])
	switch {
	case lonErr != nil:
		fail(row[ColLongitude], "longitude must be a valid number")
	case lon < -180 || lon > 180:
		fail(row[ColLongitude], "longitude must be between -180 and 180")
	default:
		c.Longitude = lon
	}

	par, parErr := parseInt(row[ColPar])
	if parErr != nil {
		fail(row[ColPar], "par must be a valid integer")
	} else {
		c.Par = par
	}

	idx, idxErr := parseFloat(row[ColCourseIndex])
	if idxErr != nil {
		fail(row[ColCourseIndex], "course index must be a valid number")
	} else {
		c.CourseIndex = idx
	}

	slope, slopeErr := parseInt(row[ColSlopeRating])
	if slopeErr != nil {
		fail(row[ColSlopeRating], "slope rating must be a valid integer")
	} else {
		c.SlopeRating = slope
	}

	// Cross-field rules run only over fields that parsed on their own.
	if codeValid && c.PostCode != "" {
		if msg := checkPostcodeByCountry(c.CountryCode, c.PostCode); msg != "" {
			fail(c.PostCode, "%s", msg)
		}
	}
	if typeErr == nil && parErr == nil {
		if msg := checkParByType(c.Type, c.Par); msg != "" {
			fail(row[ColPar], "%s", msg)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return c, nil
}

// checkPostcodeByCountry validates the postcode format against the country
// standard. Only GBR and FRA conventions are modeled; other codes pass.
func checkPostcodeByCountry(code, postCode string) string {
	switch code {
	case "GBR":
		if !ukPostcodeRe.MatchString(postCode) {
			return fmt.Sprintf("invalid UK postcode format: %s", postCode)
		}
	case "FRA":
		if !frPostcodeRe.MatchString(postCode) {
			return fmt.Sprintf("France postcodes must be exactly 5 digits: %s", postCode)
		}
	}
	return ""
}

// checkParByType validates that the par is consistent with the course type.
func checkParByType(t CourseType, par int) string {
	switch t {
	case NineHolePar3:
		if par != 27 {
			return fmt.Sprintf("for a 9 hole par 3 course, par must be 27, received: %d", par)
		}
	case NineHole:
		if par < 28 || par > 45 {
			return fmt.Sprintf("for a 9 hole course, par must be between 28 and 45, received: %d", par)
		}
	case EighteenHole:
		if par < 68 || par > 74 {
			return fmt.Sprintf("for an 18 hole course, par must be between 68 and 74, received: %d", par)
		}
	}
	return ""
}

// Row renders the course as a schema-normalized dataset row, enum values as
// their display strings.
func (c *Course) Row() dataset.Row {
	return dataset.Row{
		ColCourseName:  c.Name,
		ColCountry:     c.Country,
		ColCountryCode: c.CountryCode,
		ColCourseType:  string(c.Type),
		ColAddress:     c.Address,
		ColPostCode:    c.PostCode,
		ColLatitude:    strconv.FormatFloat(c.Latitude, 'f', -1, 64),
		ColLongitude:   strconv.FormatFloat(c.Longitude, 'f', -1, 64),
		ColPar:         strconv.Itoa(c.Par),
		ColCourseIndex: strconv.FormatFloat(c.CourseIndex, 'f', -1, 64),
		ColSlopeRating: strconv.Itoa(c.SlopeRating),
	}
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
