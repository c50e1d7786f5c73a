package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCourseIsValid(t *testing.T) {
	course := Default()
	require.NoError(t, course.Validate())
	assert.Equal(t, "ja-JP", course.Lang())
	assert.GreaterOrEqual(t, course.ExerciseCount(), 10)
	assert.Equal(t, "male", course.SpeakerGender("민호"))
	assert.Equal(t, "female", course.SpeakerGender("유키"))

	ch, ok := course.Chapter(5)
	require.True(t, ok)
	assert.Empty(t, ch.Exercises)
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()
	a.Chapters[0].Exercises[0].Options[0] = "changed"
	assert.NotEqual(t, "changed", b.Chapters[0].Exercises[0].Options[0])
}

func TestParseText(t *testing.T) {
	src := `
// sample course
# 1 | Tokyo
"A?" | x | y | z | w | 2
"B?" | p | q | 0 | ? because p

# 2 | Kyoto
"C?" | 1 | 2 | 3 | 1
`
	course, err := ParseText(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, course.Chapters, 2)

	tokyo := course.Chapters[0]
	assert.Equal(t, 1, tokyo.ID)
	assert.Equal(t, "Tokyo", tokyo.Title)
	require.Len(t, tokyo.Exercises, 2)
	assert.Equal(t, Exercise{Question: "A?", Options: []string{"x", "y", "z", "w"}, Answer: 2}, tokyo.Exercises[0])
	assert.Equal(t, Exercise{Question: "B?", Options: []string{"p", "q"}, Answer: 0, Explanation: "because p"}, tokyo.Exercises[1])

	kyoto := course.Chapters[1]
	require.Len(t, kyoto.Exercises, 1)
	assert.Equal(t, []string{"1", "2", "3"}, kyoto.Exercises[0].Options)
	assert.Equal(t, 1, kyoto.Exercises[0].Answer)
}

func TestParseTextErrors(t *testing.T) {
	cases := map[string]string{
		"exercise before chapter": `"A?" | x | y | 0`,
		"missing closing quote":   "# 1 | T\n\"A? | x | y | 0",
		"answer out of range":     "# 1 | T\n\"A?\" | x | y | 5",
		"too few options":         "# 1 | T\n\"A?\" | x | 0",
		"bad chapter id":          "# one | T",
		"unmarked explanation":    "# 1 | T\n\"A?\" | x | y | 0 | because x",
		"explanation only":        "# 1 | T\n\"A?\" | x | 0 | ? why",
		"empty":                   "\n\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseText(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestParseTextNumericTrailingFields(t *testing.T) {
	src := `
# 1 | History
"Which era?" | Edo | Meiji | Showa | 0 | ? 1
"Pick a year" | 1868 | 1912 | 1926 | 1
`
	course, err := ParseText(strings.NewReader(src))
	require.NoError(t, err)
	exercises := course.Chapters[0].Exercises
	require.Len(t, exercises, 2)

	assert.Equal(t, []string{"Edo", "Meiji", "Showa"}, exercises[0].Options)
	assert.Equal(t, 0, exercises[0].Answer)
	assert.Equal(t, "1", exercises[0].Explanation)

	assert.Equal(t, []string{"1868", "1912", "1926"}, exercises[1].Options)
	assert.Equal(t, 1, exercises[1].Answer)
	assert.Empty(t, exercises[1].Explanation)
}

func TestLoadYAMLAndText(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "course.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
title: t
chapters:
  - id: 7
    title: Nara
    exercises:
      - question: Q?
        options: [a, b, c, d]
        answer: 3
`), 0o644))
	course, err := Load(yamlPath)
	require.NoError(t, err)
	ch, ok := course.Chapter(7)
	require.True(t, ok)
	assert.Equal(t, 3, ch.Exercises[0].Answer)

	txtPath := filepath.Join(dir, "course.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("# 1 | T\n\"Q?\" | a | b | 1\n"), 0o644))
	course, err = Load(txtPath)
	require.NoError(t, err)
	assert.Equal(t, 1, course.ExerciseCount())

	_, err = Load(filepath.Join(dir, "course.json"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidCourse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chapters:
  - id: 1
    title: A
    exercises: []
  - id: 1
    title: B
    exercises: []
`), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	course := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NotNil(t, course)
	assert.Equal(t, Default().ExerciseCount(), course.ExerciseCount())
}

func wordbookCourse() *Course {
	return &Course{
		Title: "wordbook",
		Chapters: []Chapter{
			{ID: 1, Title: "Tokyo", JapaneseTitle: "東京", Patterns: []Pattern{
				{Title: "～ば (~면)", Description: "Conditional FORM", Examples: []Line{
					{Japanese: "行けば、あります。", Korean: "가면 있습니다."},
				}},
				{Title: "～てみます", Examples: []Line{{Japanese: "行ってみます。", Korean: "가 보겠습니다."}}},
			}},
			{ID: 2, Title: "Kamakura"},
			{ID: 3, Title: "Kyoto", Patterns: []Pattern{
				{Title: "～ながら (~하면서)", Description: "동시 동작"},
			}},
		},
	}
}

func TestPatternsFlattenInChapterOrder(t *testing.T) {
	entries := wordbookCourse().Patterns()
	require.Len(t, entries, 3)

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key()
	}
	assert.Equal(t, []string{"1-0", "1-1", "3-0"}, keys)
	assert.Equal(t, "Tokyo", entries[0].ChapterTitle)
	assert.Equal(t, "東京", entries[0].JapaneseTitle)
	assert.Equal(t, 3, entries[2].ChapterID)
}

func TestSearchPatterns(t *testing.T) {
	course := wordbookCourse()

	cases := map[string][]string{
		"":            {"1-0", "1-1", "3-0"},
		"   ":         {"1-0", "1-1", "3-0"},
		"conditional": {"1-0"},
		"FORM":        {"1-0"},
		"ながら":         {"3-0"},
		"동시":          {"3-0"},
		"行って":         {"1-1"},
		"가":           {"1-0", "1-1"},
		"osaka":       nil,
	}
	for term, want := range cases {
		t.Run(term, func(t *testing.T) {
			var got []string
			for _, e := range course.SearchPatterns(term) {
				got = append(got, e.Key())
			}
			assert.Equal(t, want, got)
		})
	}

	var nilCourse *Course
	assert.Empty(t, nilCourse.SearchPatterns("x"))
}

func TestPatternHeadword(t *testing.T) {
	assert.Equal(t, "～ば", Pattern{Title: "～ば (~면)"}.Headword())
	assert.Equal(t, "～てみます", Pattern{Title: "～てみます"}.Headword())
	assert.Empty(t, Pattern{}.Headword())
}

func TestDefaultCourseHasPatterns(t *testing.T) {
	course := Default()
	entries := course.Patterns()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.NotEmpty(t, e.Title, e.Key())
		assert.NotEmpty(t, e.Examples, e.Key())
	}
	assert.NotEmpty(t, course.SearchPatterns("ながら"))
}

func TestValidateRejectsEmptyPatternAndUnknownGender(t *testing.T) {
	course := wordbookCourse()
	course.Chapters[1].Patterns = []Pattern{{Description: "nothing to show"}}
	err := course.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chapter 2 pattern 1")

	course = wordbookCourse()
	course.Speakers = map[string]string{"민호": "Male", "유키": "robot"}
	err = course.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "유키")
}
