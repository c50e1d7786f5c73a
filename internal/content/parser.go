package content

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseText reads the line-oriented course format:
//
//	# <chapter id> | <chapter title>
//	"<question>" | <option> | <option> | ... | <answer index> [| ? <explanation>]
//
// Blank lines and lines starting with "//" are skipped. Answer indexes are
// zero-based. An explanation is only recognized behind the "?" marker, so the
// last unmarked field is always the answer index, even when it and the field
// before it are both numbers.
func ParseText(r io.Reader) (*Course, error) {
	course := &Course{}
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "#") {
			ch, err := parseChapterLine(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			course.Chapters = append(course.Chapters, ch)
			continue
		}

		if len(course.Chapters) == 0 {
			return nil, fmt.Errorf("line %d: exercise before any chapter header", lineNo)
		}
		ex, err := parseExerciseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		last := &course.Chapters[len(course.Chapters)-1]
		last.Exercises = append(last.Exercises, ex)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read course: %w", err)
	}
	if len(course.Chapters) == 0 {
		return nil, fmt.Errorf("no chapters found")
	}
	return course, nil
}

func parseChapterLine(line string) (Chapter, error) {
	body := strings.TrimSpace(strings.TrimLeft(line, "#"))
	idPart, title, found := strings.Cut(body, "|")
	if !found {
		return Chapter{}, fmt.Errorf("chapter header needs \"<id> | <title>\"")
	}
	id, err := strconv.Atoi(strings.TrimSpace(idPart))
	if err != nil {
		return Chapter{}, fmt.Errorf("invalid chapter id: %v", err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Chapter{}, fmt.Errorf("chapter %d: title cannot be empty", id)
	}
	return Chapter{ID: id, Title: title}, nil
}

func parseExerciseLine(line string) (Exercise, error) {
	if !strings.HasPrefix(line, `"`) {
		return Exercise{}, fmt.Errorf("invalid format: question must be quoted")
	}
	quoteEnd := strings.Index(line[1:], `"`) + 1
	if quoteEnd <= 0 {
		return Exercise{}, fmt.Errorf("invalid format: no closing quote")
	}
	question := strings.TrimSpace(line[1:quoteEnd])

	remaining := strings.TrimSpace(line[quoteEnd+1:])
	if !strings.HasPrefix(remaining, "|") {
		return Exercise{}, fmt.Errorf("invalid format: expected '|' after question")
	}
	parts := strings.Split(remaining[1:], "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 {
		return Exercise{}, fmt.Errorf("need at least 2 options and an answer index")
	}

	var explanation string
	if text, ok := strings.CutPrefix(parts[len(parts)-1], "?"); ok {
		explanation = strings.TrimSpace(text)
		parts = parts[:len(parts)-1]
		if len(parts) < 3 {
			return Exercise{}, fmt.Errorf("need at least 2 options and an answer index")
		}
	}
	answerField := parts[len(parts)-1]
	answer, err := strconv.Atoi(answerField)
	if err != nil {
		return Exercise{}, fmt.Errorf("invalid answer index %q (mark explanations with \"| ? <text>\")", answerField)
	}
	options := parts[:len(parts)-1]

	ex := Exercise{
		Question:    question,
		Options:     append([]string(nil), options...),
		Answer:      answer,
		Explanation: explanation,
	}
	if err := ex.Validate(); err != nil {
		return Exercise{}, err
	}
	return ex, nil
}
