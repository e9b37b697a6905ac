package catalog

import "strings"

// Provider is a streaming service as listed by /watch/providers/movie.
type Provider struct {
	ID              int64  `json:"provider_id"`
	Name            string `json:"provider_name"`
	LogoPath        string `json:"logo_path,omitempty"`
	DisplayPriority int    `json:"display_priority,omitempty"`
}

// Genre is a movie genre as listed by /genre/movie/list.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Language is a language as listed by /configuration/languages.
type Language struct {
	Code        string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// DiscoverParams are the filters sent to /discover/movie.
type DiscoverParams struct {
	ProviderID int64
	GenreID    int64
	Language   string
	MinRuntime int
	MaxRuntime int
	Page       int
}

// DiscoverResult is a single page entry from /discover/movie.
type DiscoverResult struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	PosterPath       string  `json:"poster_path"`
	OriginalLanguage string  `json:"original_language"`
	GenreIDs         []int64 `json:"genre_ids"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
}

// DiscoverResponse models the paginated /discover/movie payload.
type DiscoverResponse struct {
	Page         int              `json:"page"`
	Results      []DiscoverResult `json:"results"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
}

// IDs returns the movie IDs of the page in response order.
func (r DiscoverResponse) IDs() []int64 {
	ids := make([]int64, 0, len(r.Results))
	for _, result := range r.Results {
		ids = append(ids, result.ID)
	}
	return ids
}

// MovieDetails is the subset of /movie/{id} the discovery flow consumes.
type MovieDetails struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Overview         string  `json:"overview"`
	Runtime          int     `json:"runtime"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	OriginalLanguage string  `json:"original_language"`
	Genres           []Genre `json:"genres"`
	VoteAverage      float64 `json:"vote_average"`
	IMDbID           string  `json:"imdb_id,omitempty"`
}

// IsZero reports whether the details carry no data, which callers treat as
// "not fetched".
func (d MovieDetails) IsZero() bool {
	return d.ID == 0 && d.Title == "" && d.Runtime == 0
}

// Year returns the release year or an empty string.
func (d MovieDetails) Year() string {
	if len(d.ReleaseDate) >= 4 {
		return d.ReleaseDate[:4]
	}
	return ""
}

// GenreNames returns the genre names joined with ", ".
func (d MovieDetails) GenreNames() string {
	names := make([]string, 0, len(d.Genres))
	for _, genre := range d.Genres {
		if genre.Name != "" {
			names = append(names, genre.Name)
		}
	}
	return strings.Join(names, ", ")
}

// CrewMember is a crew entry from /movie/{id}/credits.
type CrewMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// CastMember is a cast entry from /movie/{id}/credits.
type CastMember struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// Credits models /movie/{id}/credits.
type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Directors returns the names of crew members whose job is exactly
// "Director", in credit order.
func (c Credits) Directors() []string {
	var names []string
	for _, member := range c.Crew {
		if member.Job == "Director" {
			names = append(names, member.Name)
		}
	}
	return names
}
