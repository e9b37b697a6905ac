package lookup

import (
	"fmt"
	"strings"

	"streamfinder/internal/services"
)

// Kind names the list a translation ran against.
type Kind string

const (
	KindService  Kind = "service"
	KindGenre    Kind = "genre"
	KindLanguage Kind = "language"
)

// NotFoundError reports a name that matched no catalog entry.
type NotFoundError struct {
	Kind        Kind
	Value       string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %q not found", e.Kind, e.Value)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", quoteJoin(e.Suggestions))
	}
	return msg
}

// Is lets errors.Is(err, services.ErrNotFound) classify translation misses.
func (e *NotFoundError) Is(target error) bool {
	return target == services.ErrNotFound
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
