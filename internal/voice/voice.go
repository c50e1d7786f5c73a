// Package voice resolves which synthesis voice and prosody to use for a line
// of narration.
//
// Resolution is a pure function of the request and the voice list snapshot
// passed in. Platform voice lists arrive asynchronously and in no particular
// order, so callers pass the list they currently have on every call and
// nothing here is cached. Playing audio, and keeping in-flight utterances
// alive until they finish, belongs to the platform binding.
package voice

import (
	"strings"
)

// DefaultLanguage is used when a request does not name a language.
const DefaultLanguage = "ja-JP"

// Gender is the gender hint of a request or the gender a voice name signals.
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// ParseGender maps "male"/"female" (any case) to a Gender.
func ParseGender(value string) Gender {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// Voice is a platform voice descriptor.
type Voice struct {
	Name         string `yaml:"name"`
	Lang         string `yaml:"lang"`
	URI          string `yaml:"uri,omitempty"`
	LocalService bool   `yaml:"local_service,omitempty"`
	Default      bool   `yaml:"default,omitempty"`
}

// Request describes who is speaking.
type Request struct {
	Lang      string
	Gender    Gender
	SpeakerID string
}

// Prosody holds pitch and rate multipliers.
type Prosody struct {
	Pitch float64
	Rate  float64
}

// Profile is the resolved synthesis setup. A nil Voice means the platform
// default voice for Lang.
type Profile struct {
	Lang  string
	Pitch float64
	Rate  float64
	Voice *Voice
}

// VoiceName returns the selected voice name, or "(default)".
func (p Profile) VoiceName() string {
	if p.Voice == nil {
		return "(default)"
	}
	return p.Voice.Name
}
