package voice

import (
	"strings"

	"golang.org/x/text/language"
)

// normalizeTag lowercases a tag and treats '_' and '-' as the same separator.
func normalizeTag(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}

// primarySubtag returns the base language of a normalized tag.
func primarySubtag(tag string) string {
	if tag == "" {
		return ""
	}
	if parsed, err := language.Parse(tag); err == nil {
		if base, conf := parsed.Base(); conf == language.Exact {
			return base.String()
		}
	}
	primary, _, _ := strings.Cut(tag, "-")
	return primary
}

// matchLanguage reports whether candidate serves the requested language and
// whether it is an exact tag match.
func matchLanguage(requested, candidate string) (exact, ok bool) {
	req := normalizeTag(requested)
	cand := normalizeTag(candidate)
	if req == "" || cand == "" {
		return false, false
	}
	if req == cand {
		return true, true
	}
	return false, primarySubtag(req) == primarySubtag(cand)
}

// displayTag renders a tag with '-' separators, keeping the caller's casing.
func displayTag(tag string) string {
	return strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
}
