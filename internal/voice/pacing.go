package voice

import (
	"time"
	"unicode"
)

// Pacing tunes narration duration estimates.
type Pacing struct {
	CharsPerSecond float64
	MinPause       time.Duration
}

// DefaultPacing suits Japanese read at a learner-friendly speed.
var DefaultPacing = Pacing{CharsPerSecond: 7, MinPause: 400 * time.Millisecond}

// EstimateDuration approximates how long text takes to speak at rate, plus
// the trailing pause. Whitespace does not count. The result is an estimate
// for scheduling only; real synthesis timing varies by engine.
func EstimateDuration(text string, rate float64, pacing Pacing) time.Duration {
	cps := pacing.CharsPerSecond
	if cps <= 0 {
		cps = DefaultPacing.CharsPerSecond
	}
	if rate <= 0 {
		rate = 1
	}
	chars := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			chars++
		}
	}
	speech := time.Duration(float64(chars) / (cps * rate) * float64(time.Second))
	return speech + pacing.MinPause
}

// Utterance is one narrated line.
type Utterance struct {
	Speaker string
	Gender  Gender
	Text    string
}

// Cue is a resolved utterance placed on the narration timeline.
type Cue struct {
	Utterance
	Profile  Profile
	Offset   time.Duration
	Duration time.Duration
}

// Plan resolves each utterance against the same voice snapshot and lays
// them out back to back.
func (r *Resolver) Plan(lang string, lines []Utterance, available []Voice, pacing Pacing) []Cue {
	cues := make([]Cue, 0, len(lines))
	var offset time.Duration
	for _, line := range lines {
		profile := r.Resolve(Request{Lang: lang, Gender: line.Gender, SpeakerID: line.Speaker}, available)
		d := EstimateDuration(line.Text, profile.Rate, pacing)
		cues = append(cues, Cue{Utterance: line, Profile: profile, Offset: offset, Duration: d})
		offset += d
	}
	return cues
}
