package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_course.yaml
var defaultCourseYAML []byte

// Load reads a course from disk. The format is chosen by extension: .yaml and
// .yml are decoded as YAML, .txt uses ParseText.
func Load(path string) (*Course, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open course: %w", err)
	}
	defer file.Close()

	var course *Course
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		course, err = DecodeYAML(file)
	case ".txt":
		course, err = ParseText(file)
	default:
		return nil, fmt.Errorf("unsupported course format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := course.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return course, nil
}

// DecodeYAML decodes a course document. Unknown fields are rejected.
func DecodeYAML(r io.Reader) (*Course, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var course Course
	if err := dec.Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// LoadOrDefault loads the course at path and falls back to the built-in course
// when path is empty or cannot be loaded.
func LoadOrDefault(path string, logger *slog.Logger) *Course {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	course, err := Load(path)
	if err != nil {
		logger.Warn("failed to load course, using built-in content", "path", path, "error", err)
		return Default()
	}
	logger.Info("course loaded", "path", path, "chapters", len(course.Chapters), "exercises", course.ExerciseCount())
	return course
}

// Default returns a fresh copy of the built-in course.
func Default() *Course {
	course, err := DecodeYAML(bytes.NewReader(defaultCourseYAML))
	if err != nil {
		panic(fmt.Sprintf("content: built-in course is invalid: %v", err))
	}
	if err := course.Validate(); err != nil {
		panic(fmt.Sprintf("content: built-in course is invalid: %v", err))
	}
	return course
}
