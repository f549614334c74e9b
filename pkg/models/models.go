package models

// Destination is one catalogue entry of the content store
type Destination struct {
	ID       string   `json:"id"`
	City     string   `json:"city"`
	Country  string   `json:"country"`
	Clues    []string `json:"clues"`
	FunFacts []string `json:"funFacts"`
	Trivia   []string `json:"trivia"`
	ImageURL string   `json:"cdnImageUrl,omitempty"`
}

// ClueView is the only part of a destination sent while a round is open.
// It never carries the city or the country.
type ClueView struct {
	ID    string   `json:"id"`
	Clues []string `json:"clues"`
}

// Option is one multiple-choice answer
type Option struct {
	ID      string `json:"id"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// ClueView reduces the destination to its question form
func (d Destination) ClueView() ClueView {
	return ClueView{ID: d.ID, Clues: append([]string(nil), d.Clues...)}
}

// Option reduces the destination to its answer form
func (d Destination) Option() Option {
	return Option{ID: d.ID, City: d.City, Country: d.Country}
}

// Facts returns fun facts followed by trivia
func (d Destination) Facts() []string {
	facts := make([]string, 0, len(d.FunFacts)+len(d.Trivia))
	facts = append(facts, d.FunFacts...)
	return append(facts, d.Trivia...)
}

// DestinationsData is the layout of the seed file
type DestinationsData struct {
	Destinations []Destination `json:"destinations"`
	Metadata     struct {
		Total       int    `json:"totalDestinations"`
		Version     string `json:"version"`
		LastUpdated string `json:"lastUpdated"`
		Description string `json:"description"`
	} `json:"metadata"`
}

// APIResponse is the envelope of every HTTP API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse is returned by GET /api/health
type HealthResponse struct {
	Status       string `json:"status"`
	Backend      string `json:"backend"`
	Destinations int    `json:"destinations"`
	Rooms        int    `json:"rooms"`
}

// RoomsResponse is returned by GET /api/rooms
type RoomsResponse struct {
	Rooms []Room `json:"rooms"`
	Count int    `json:"count"`
}
