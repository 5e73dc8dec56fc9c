package headers

import (
	"strconv"
	"strings"
)

// maxLocales caps how many locales contribute to an Accept-Language value.
const maxLocales = 10

// defaultAcceptLanguage is emitted when the caller requests no locales.
const defaultAcceptLanguage = "en-US,en;q=0.9"

// AcceptLanguage renders an ordered locale list as an Accept-Language value:
// the first locale verbatim, then quality-weighted entries stepping down from
// q=0.9 by 0.1 and clamped at 0.1, always with one fractional digit and a
// dot separator.
func AcceptLanguage(locales []string) string {
	if len(locales) == 0 {
		return defaultAcceptLanguage
	}
	if len(locales) > maxLocales {
		locales = locales[:maxLocales]
	}

	var sb strings.Builder
	for i, locale := range locales {
		if i == 0 {
			sb.WriteString(locale)
			continue
		}
		q := 1.0 - float64(i)*0.1
		if q < 0.1 {
			q = 0.1
		}
		sb.WriteString(",")
		sb.WriteString(locale)
		sb.WriteString(";q=")
		sb.WriteString(strconv.FormatFloat(q, 'f', 1, 64))
	}
	return sb.String()
}
