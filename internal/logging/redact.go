package logging

import (
	"fmt"
	"log/slog"
	"regexp"
)

// TMDB accepts its v3 key as a query parameter, so transport errors
// (*url.Error) carry it in the request URL.
var secretParamPattern = regexp.MustCompile(`(?i)\b(api_key|access_token)=[^&\s"']+`)

const redacted = "REDACTED"

func redactSecrets(s string) string {
	return secretParamPattern.ReplaceAllString(s, "${1}="+redacted)
}

// redactValue scrubs credentials from string and error values and resolves
// everything else unchanged.
func redactValue(v slog.Value) slog.Value {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.StringValue(redactSecrets(v.String()))
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return slog.StringValue(redactSecrets(x.Error()))
		case fmt.Stringer:
			return slog.StringValue(redactSecrets(x.String()))
		}
	}
	return v
}
