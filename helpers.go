package lexicon

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// maxAcceptLanguageLength caps header parsing. RFC 7231 sets no limit, but
// 4KB is generous for legitimate headers.
const maxAcceptLanguageLength = 4096

type acceptTag struct {
	tag     string
	quality float64
}

// ParseAcceptLanguage parses an Accept-Language header and returns the best
// matching locale from available. Quality values are honored, a partial
// match ("en" against "en-US") counts with lower priority than an exact
// one, and the first available locale is returned when nothing matches.
//
// Example header: "en-US,en;q=0.9,pl;q=0.8"
// Available: ["pl", "en", "de"]
// Returns: "en"
func ParseAcceptLanguage(header string, available []string) string {
	if len(available) == 0 {
		return ""
	}
	if header == "" {
		return available[0]
	}

	tags := parseAcceptTags(header)

	var best string
	bestQuality := -1.0
	bestExact := false
	for _, avail := range available {
		norm := normalizeTag(avail)
		for _, t := range tags {
			if t.tag == norm {
				if t.quality > bestQuality || (t.quality == bestQuality && !bestExact) {
					best = avail
					bestQuality = t.quality
					bestExact = true
				}
				break
			}
			if baseOf(t.tag) == baseOf(norm) {
				if best == "" || t.quality > bestQuality {
					best = avail
					bestQuality = t.quality
					bestExact = false
				}
				break
			}
		}
	}
	if best != "" {
		return best
	}
	return available[0]
}

func parseAcceptTags(header string) []acceptTag {
	if len(header) > maxAcceptLanguageLength {
		header = header[:maxAcceptLanguageLength]
	}

	var tags []acceptTag
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		quality := 1.0
		lang := part
		if idx := strings.Index(part, ";"); idx != -1 {
			lang = strings.TrimSpace(part[:idx])
			if q, found := strings.CutPrefix(strings.TrimSpace(part[idx+1:]), "q="); found {
				if parsed, err := strconv.ParseFloat(q, 64); err == nil && parsed >= 0 && parsed <= 1 {
					quality = parsed
				}
			}
		}

		if lang != "" && lang != "*" {
			tags = append(tags, acceptTag{tag: normalizeTag(lang), quality: quality})
		}
	}

	slices.SortFunc(tags, func(a, b acceptTag) int {
		return cmp.Compare(b.quality, a.quality)
	})

	return tags
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func baseOf(tag string) string {
	base, _, _ := strings.Cut(tag, "-")
	return base
}

// MatchLocale matches a requested BCP 47 locale against the accepted list
// and returns the accepted locale it maps to, so "en-GB" maps to an
// accepted "en" and regional variants resolve to their closest listed
// relative. Locales that do not parse as BCP 47 tags are skipped.
func MatchLocale(requested string, accepted []string) (string, bool) {
	want, err := language.Parse(requested)
	if err != nil {
		return "", false
	}

	tags := make([]language.Tag, 0, len(accepted))
	candidates := make([]string, 0, len(accepted))
	for _, a := range accepted {
		t, err := language.Parse(a)
		if err != nil {
			continue
		}
		tags = append(tags, t)
		candidates = append(candidates, a)
	}
	if len(tags) == 0 {
		return "", false
	}

	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return "", false
	}
	return candidates[idx], true
}
