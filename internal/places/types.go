// Package places provides the HTTP client for the Google Places API.
//
// Places uses key-based auth (query parameter) and a two-step lookup flow:
// find-place-from-text discovers a place ID plus basic geometry, and place
// details fetches the granular address components behind that ID. Rate
// limiting is handled via a token bucket limiter.
package places

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry carries a result's location and its precision tag (location_type,
// e.g. ROOFTOP or GEOMETRIC_CENTER). The precision tag is only populated
// reliably by the find-place call.
type Geometry struct {
	Location     LatLng `json:"location"`
	LocationType string `json:"location_type,omitempty"`
}

// Candidate is one find-place result before detail enrichment.
type Candidate struct {
	PlaceID          string    `json:"place_id"`
	FormattedAddress string    `json:"formatted_address"`
	Geometry         *Geometry `json:"geometry"`
	Types            []string  `json:"types"`
}

// AddressComponent is a single tagged text fragment of a place's address.
// Types holds the categorical tags ("street_number", "route", "postal_code",
// "postal_code_suffix", "country", ...).
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// PlaceDetails is the full result of a place details call.
type PlaceDetails struct {
	Name              string             `json:"name"`
	AddressComponents []AddressComponent `json:"address_components"`
	Geometry          *Geometry          `json:"geometry"`
	Types             []string           `json:"types"`
	PartialMatch      bool               `json:"partial_match,omitempty"`
}

// FindPlaceResponse is the wire shape of a find-place-from-text call.
type FindPlaceResponse struct {
	Status       string      `json:"status"`
	Candidates   []Candidate `json:"candidates"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// OK reports whether the call succeeded with at least one candidate.
func (r *FindPlaceResponse) OK() bool {
	return r.Status == StatusOK && len(r.Candidates) > 0
}

// DetailsResponse is the wire shape of a place details call.
type DetailsResponse struct {
	Status       string        `json:"status"`
	Result       *PlaceDetails `json:"result"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// OK reports whether the call succeeded with a result payload.
func (r *DetailsResponse) OK() bool {
	return r.Status == StatusOK && r.Result != nil
}
