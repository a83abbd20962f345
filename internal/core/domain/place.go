package domain

// PlacePrediction is one autocomplete suggestion for the address form.
type PlacePrediction struct {
	Description   string `json:"description"`
	PlaceID       string `json:"placeId"`
	MainText      string `json:"mainText"`
	SecondaryText string `json:"secondaryText"`
}

// PlaceDetails is the subset of a place lookup the address form needs.
type PlaceDetails struct {
	City     string      `json:"city,omitempty"`
	State    string      `json:"state,omitempty"`
	Location *PlacePoint `json:"location,omitempty"`
}

// PlacePoint mirrors the provider's geometry.location object.
type PlacePoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
