package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/PoluyanbIch/tabibot/internal/quiz"
)

var (
	colorTitle   = lipgloss.Color("33")
	colorMuted   = lipgloss.Color("242")
	colorCorrect = lipgloss.Color("42")
	colorWrong   = lipgloss.Color("196")
	colorWarn    = lipgloss.Color("214")
)

// View renders the current question, the feedback for it, or the result.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.session == nil {
		return m.renderResult()
	}
	return m.renderQuestion()
}

func (m Model) renderQuestion() string {
	s := m.session
	q, _ := s.Current()

	header := fmt.Sprintf("문제 %d/%d", s.CurrentIndex()+1, s.Len())
	if q.ChapterTitle != "" {
		header += " · " + q.ChapterTitle
	}
	header += fmt.Sprintf("   점수 %d", s.Score())

	lines := []string{
		m.stylize(header, colorTitle, true),
		"",
		q.Question,
		"",
	}
	for i, option := range q.Options {
		line := fmt.Sprintf("  %d) %s", i+1, option)
		if s.Answered() {
			switch {
			case i == q.Answer:
				line = m.stylize(line+"  ✓", colorCorrect, false)
			case i == s.Selected():
				line = m.stylize(line+"  ✗", colorWrong, false)
			default:
				line = m.stylize(line, colorMuted, false)
			}
		}
		lines = append(lines, line)
	}
	lines = append(lines, "")

	if s.Answered() {
		lines = append(lines, m.renderFeedback(q, s.Selected()))
		if q.Explanation != "" {
			lines = append(lines, m.stylize("💡 "+q.Explanation, colorMuted, false))
		}
		next := "enter: 다음 문제"
		if s.CurrentIndex() == s.Len()-1 {
			next = "enter: 결과 보기"
		}
		lines = append(lines, "", m.stylize(next+" · q: 종료", colorMuted, false))
	} else {
		if s.TimeAttack() {
			lines = append(lines, m.renderCountdown(s.Remaining(), s.CountdownDuration()))
		}
		lines = append(lines, m.stylize(fmt.Sprintf("1-%d: 답 선택 · q: 종료", len(q.Options)), colorMuted, false))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m Model) renderFeedback(q quiz.Question, selected int) string {
	switch {
	case selected == quiz.Timeout:
		return m.stylize("⏰ 시간 초과! 정답: "+q.CorrectText(), colorWarn, true)
	case q.IsCorrect(selected):
		return m.stylize("✅ 정답!", colorCorrect, true)
	default:
		return m.stylize("❌ 오답! 정답: "+q.CorrectText(), colorWrong, true)
	}
}

func (m Model) renderCountdown(remaining, total time.Duration) string {
	ratio := 0.0
	if total > 0 {
		ratio = float64(remaining) / float64(total)
	}
	secs := int((remaining + time.Second - 1) / time.Second)
	if m.noColor {
		width := m.bar.Width
		filled := int(ratio * float64(width))
		return fmt.Sprintf("[%s%s] %d초", strings.Repeat("#", filled), strings.Repeat(".", width-filled), secs)
	}
	return fmt.Sprintf("%s %d초", m.bar.ViewAs(ratio), secs)
}

func (m Model) renderResult() string {
	if m.result == nil {
		return ""
	}
	r := m.result
	pct := 0
	if r.Total > 0 {
		pct = r.Score * 100 / r.Total
	}
	lines := []string{
		m.stylize("🏁 퀴즈 완료!", colorTitle, true),
		"",
		fmt.Sprintf("결과: %d/%d (%d%%)", r.Score, r.Total, pct),
	}
	if len(r.Wrong) > 0 {
		lines = append(lines, "", "틀린 문제:")
		for _, q := range r.Wrong {
			lines = append(lines, fmt.Sprintf("  • %s → %s", q.Question, q.CorrectText()))
		}
	}
	if m.notice != "" {
		lines = append(lines, "", m.stylize(m.notice, colorWarn, false))
	}
	hint := "q: 종료"
	if len(r.Wrong) > 0 {
		hint = "r: 틀린 문제 다시 풀기 · " + hint
	}
	lines = append(lines, "", m.stylize(hint, colorMuted, false))
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m Model) stylize(text string, color lipgloss.Color, bold bool) string {
	if m.noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Bold(bold).Render(text)
}
