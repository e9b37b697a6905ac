package discovery

import (
	"fmt"
	"strings"

	"streamfinder/internal/availability"
	"streamfinder/internal/services"
)

// Band is a runtime range offered to users.
type Band struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Min   int    `json:"min_runtime"`
	Max   int    `json:"max_runtime"`
}

// Contains reports whether runtime lies in [Min, Max].
func (b Band) Contains(runtime int) bool {
	return b.Min <= runtime && runtime <= b.Max
}

func (b Band) String() string {
	return b.Label
}

var (
	BandShort  = Band{Name: "short", Label: "Short (< 89 min)", Min: 0, Max: 89}
	BandMedium = Band{Name: "medium", Label: "Medium (90–120 min)", Min: 90, Max: 120}
	BandLong   = Band{Name: "long", Label: "Long (> 120 min)", Min: 121, Max: 10000}
)

// Bands returns the runtime bands in display order.
func Bands() []Band {
	return []Band{BandShort, BandMedium, BandLong}
}

// ParseBand accepts a band label exactly as displayed, or a band name in any
// case ("short", "Medium").
func ParseBand(value string) (Band, error) {
	trimmed := strings.TrimSpace(value)
	for _, band := range Bands() {
		if trimmed == band.Label || strings.EqualFold(trimmed, band.Name) {
			return band, nil
		}
	}
	return Band{}, services.Wrap(services.ErrValidation, "discovery", "parse_duration",
		fmt.Sprintf("unknown duration %q (choose short, medium, or long)", value), nil)
}

var genreChoices = []string{
	"Adventure", "Fantasy", "Animation", "Drama", "Horror", "Action",
	"Comedy", "History", "Western", "Thriller", "Crime", "Documentary",
	"Science Fiction", "Mystery", "Music", "Romance", "Family", "War",
}

var languageChoices = []string{
	"English", "French", "German", "Spanish", "Hindi", "Mandarin", "Japanese", "Korean",
}

// Choices lists the values each shell offers for selection.
type Choices struct {
	Services  []string `json:"services"`
	Genres    []string `json:"genres"`
	Languages []string `json:"languages"`
	Durations []Band   `json:"durations"`
}

// DefaultChoices returns the selectable services, genres, languages, and
// runtime bands in display order.
func DefaultChoices() Choices {
	return Choices{
		Services:  availability.ServiceNames(),
		Genres:    append([]string(nil), genreChoices...),
		Languages: append([]string(nil), languageChoices...),
		Durations: Bands(),
	}
}
