// Package content holds the course material the quiz and narration features
// read: chapters, their multiple-choice exercises and conversation lines, and
// the registry of recurring speakers.
//
// A Course is treated as read-only once loaded.
package content

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultLanguage is the language tag used for narration when a course does
// not declare one.
const DefaultLanguage = "ja-JP"

// Exercise is one multiple-choice question from a chapter.
type Exercise struct {
	Question    string   `yaml:"question"`
	Options     []string `yaml:"options"`
	Answer      int      `yaml:"answer"`
	Explanation string   `yaml:"explanation,omitempty"`
}

// Line is a single utterance of a chapter conversation.
type Line struct {
	Speaker  string `yaml:"speaker"`
	Japanese string `yaml:"japanese"`
	Korean   string `yaml:"korean,omitempty"`
}

// Pattern is a sentence pattern taught in a chapter. Examples leave Speaker
// empty.
type Pattern struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Examples    []Line `yaml:"examples,omitempty"`
}

// Chapter groups the exercises, conversation and sentence patterns of one
// stop on the trip.
type Chapter struct {
	ID            int        `yaml:"id"`
	Title         string     `yaml:"title"`
	JapaneseTitle string     `yaml:"japanese_title,omitempty"`
	Description   string     `yaml:"description,omitempty"`
	Exercises     []Exercise `yaml:"exercises"`
	Conversation  []Line     `yaml:"conversation,omitempty"`
	Patterns      []Pattern  `yaml:"patterns,omitempty"`
}

// Course is the ordered collection of chapters plus the speaker registry.
// Speakers maps a speaker name to "male" or "female"; Validate rejects any
// other value and narration converts it with voice.ParseGender.
type Course struct {
	Title    string            `yaml:"title"`
	Language string            `yaml:"language,omitempty"`
	Speakers map[string]string `yaml:"speakers,omitempty"`
	Chapters []Chapter         `yaml:"chapters"`
}

// Chapter returns the chapter with the given id.
func (c *Course) Chapter(id int) (*Chapter, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Chapters {
		if c.Chapters[i].ID == id {
			return &c.Chapters[i], true
		}
	}
	return nil, false
}

// ExerciseCount returns the number of exercises across every chapter.
func (c *Course) ExerciseCount() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, ch := range c.Chapters {
		total += len(ch.Exercises)
	}
	return total
}

// Lang returns the course narration language, falling back to DefaultLanguage.
func (c *Course) Lang() string {
	if c == nil || strings.TrimSpace(c.Language) == "" {
		return DefaultLanguage
	}
	return strings.TrimSpace(c.Language)
}

// SpeakerGender returns the registered gender for a speaker, or "" when the
// speaker is unknown.
func (c *Course) SpeakerGender(speaker string) string {
	if c == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(c.Speakers[speaker]))
}

// Validate checks structural invariants of the course.
func (c *Course) Validate() error {
	if c == nil {
		return errors.New("course is nil")
	}
	if len(c.Chapters) == 0 {
		return errors.New("course has no chapters")
	}
	seen := make(map[int]struct{}, len(c.Chapters))
	for _, ch := range c.Chapters {
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("chapter %d: duplicate id", ch.ID)
		}
		seen[ch.ID] = struct{}{}
		if strings.TrimSpace(ch.Title) == "" {
			return fmt.Errorf("chapter %d: title is required", ch.ID)
		}
		for i, ex := range ch.Exercises {
			if err := ex.Validate(); err != nil {
				return fmt.Errorf("chapter %d exercise %d: %w", ch.ID, i+1, err)
			}
		}
		for i, p := range ch.Patterns {
			if strings.TrimSpace(p.Title) == "" && len(p.Examples) == 0 {
				return fmt.Errorf("chapter %d pattern %d: needs a title or an example", ch.ID, i+1)
			}
		}
	}
	for name, gender := range c.Speakers {
		switch strings.ToLower(strings.TrimSpace(gender)) {
		case "male", "female":
		default:
			return fmt.Errorf("speaker %q: gender must be male or female, got %q", name, gender)
		}
	}
	return nil
}

// Validate checks that the exercise has a question, at least two options and
// an answer index inside the option range.
func (e Exercise) Validate() error {
	if strings.TrimSpace(e.Question) == "" {
		return errors.New("question cannot be empty")
	}
	if len(e.Options) < 2 {
		return fmt.Errorf("need at least 2 options, got %d", len(e.Options))
	}
	if e.Answer < 0 || e.Answer >= len(e.Options) {
		return fmt.Errorf("answer index %d out of range [0,%d)", e.Answer, len(e.Options))
	}
	return nil
}
