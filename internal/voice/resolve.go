package voice

import (
	"cmp"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"
)

var (
	neutralProsody = Prosody{Pitch: 1.0, Rate: 1.0}

	defaultGenderProsody = map[Gender]Prosody{
		GenderMale:   {Pitch: 0.85, Rate: 1.0},
		GenderFemale: {Pitch: 1.15, Rate: 1.0},
	}

	defaultSpeakerProsody = map[string]Prosody{
		"민호":  {Pitch: 0.9, Rate: 0.95},
		"유키":  {Pitch: 1.2, Rate: 1.05},
		"가이드": {Pitch: 1.05, Rate: 0.9},
	}

	defaultResolver = NewResolver(nil)
)

// Resolver picks voices and prosody. It is immutable after construction and
// safe for concurrent use.
type Resolver struct {
	speakers map[string]Prosody
	genders  map[Gender]Prosody
}

// NewResolver returns a resolver using the built-in prosody table with the
// given per-speaker overrides applied on top.
func NewResolver(speakers map[string]Prosody) *Resolver {
	r := &Resolver{
		speakers: make(map[string]Prosody, len(defaultSpeakerProsody)+len(speakers)),
		genders:  make(map[Gender]Prosody, len(defaultGenderProsody)),
	}
	for k, v := range defaultSpeakerProsody {
		r.speakers[speakerKey(k)] = v
	}
	for k, v := range speakers {
		key := speakerKey(k)
		if key == "" {
			continue
		}
		r.speakers[key] = v
	}
	for k, v := range defaultGenderProsody {
		r.genders[k] = v
	}
	return r
}

// Resolve uses the built-in prosody table.
func Resolve(req Request, available []Voice) Profile {
	return defaultResolver.Resolve(req, available)
}

// Resolve picks a voice from available and the prosody for req. It never
// fails; with no language match the profile carries a nil Voice.
func (r *Resolver) Resolve(req Request, available []Voice) Profile {
	lang := displayTag(req.Lang)
	if lang == "" {
		lang = DefaultLanguage
	}

	prosody := r.Prosody(req)
	profile := Profile{Lang: lang, Pitch: prosody.Pitch, Rate: prosody.Rate}

	candidates := filterLanguage(lang, available)
	if len(candidates) == 0 {
		return profile
	}

	var subset []candidate
	if req.Gender != GenderUnknown {
		for _, c := range candidates {
			if c.gender == req.Gender {
				subset = append(subset, c)
			}
		}
	}

	var chosen Voice
	switch {
	case len(subset) == 0:
		chosen = candidates[0].voice
	case len(subset) == 1 || speakerKey(req.SpeakerID) == "":
		chosen = subset[0].voice
	default:
		idx := xxhash.Sum64String(speakerKey(req.SpeakerID)) % uint64(len(subset))
		chosen = subset[idx].voice
	}
	profile.Voice = &chosen
	return profile
}

// Prosody looks up pitch and rate: speaker table, then gender table, then
// neutral.
func (r *Resolver) Prosody(req Request) Prosody {
	if key := speakerKey(req.SpeakerID); key != "" {
		if p, ok := r.speakers[key]; ok {
			return p
		}
	}
	if p, ok := r.genders[req.Gender]; ok {
		return p
	}
	return neutralProsody
}

type candidate struct {
	voice     Voice
	exact     bool
	preferred bool
	gender    Gender
}

// filterLanguage keeps voices serving lang, sorted so that the input order
// does not influence the result.
func filterLanguage(lang string, available []Voice) []candidate {
	var out []candidate
	for _, v := range available {
		exact, ok := matchLanguage(lang, v.Lang)
		if !ok {
			continue
		}
		out = append(out, candidate{
			voice:     v,
			exact:     exact,
			preferred: preferred(v.Name),
			gender:    classify(v.Name),
		})
	}
	slices.SortFunc(out, compareCandidates)
	return out
}

func compareCandidates(a, b candidate) int {
	if a.exact != b.exact {
		if a.exact {
			return -1
		}
		return 1
	}
	if a.preferred != b.preferred {
		if a.preferred {
			return -1
		}
		return 1
	}
	return cmp.Or(
		strings.Compare(a.voice.Name, b.voice.Name),
		strings.Compare(normalizeTag(a.voice.Lang), normalizeTag(b.voice.Lang)),
		strings.Compare(a.voice.Lang, b.voice.Lang),
		strings.Compare(a.voice.URI, b.voice.URI),
		compareBool(a.voice.LocalService, b.voice.LocalService),
		compareBool(a.voice.Default, b.voice.Default),
	)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

func speakerKey(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}
