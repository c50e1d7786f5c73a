package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/PoluyanbIch/tabibot/internal/content"
	"github.com/PoluyanbIch/tabibot/internal/leaderboard"
	"github.com/PoluyanbIch/tabibot/internal/quiz"
)

const (
	textUnknownCommand         = "알 수 없는 명령이에요. /start 로 메뉴를 열어 보세요."
	textEmptyQuestionSet       = "📭 이 선택에는 아직 문제가 없어요. 다른 챕터를 골라 보세요."
	textNothingToRetry         = "다시 풀 틀린 문제가 없어요. 🎉"
	textExited                 = "🚪 퀴즈를 중단했어요.\n결과는 저장되지 않아요."
	textLeaderboardUnavailable = "🏆 리더보드를 불러오지 못했어요. 잠시 후 다시 시도해 주세요."
	repoURL                    = "https://github.com/PoluyanbIch/tabibot"
)

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

func htmlMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 메뉴", "menu"),
		),
	)
}

func menuMessage(chatID int64, timeAttack bool) tgbotapi.MessageConfig {
	toggle := "⏱ 타임어택: 꺼짐"
	if timeAttack {
		toggle = "⏱ 타임어택: 켜짐"
	}
	msg := htmlMessage(chatID, "🗾 <b>문학 기행 일본어 퀴즈</b>\n\n모드를 골라 주세요.")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎲 랜덤 퀴즈", "mode:random"),
			tgbotapi.NewInlineKeyboardButtonData("📚 전체 퀴즈", "mode:full"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗺 챕터 선택", "chapters"),
			tgbotapi.NewInlineKeyboardButtonData(toggle, "ta"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 단어장", "wordbook"),
			tgbotapi.NewInlineKeyboardButtonData("🏆 리더보드", "leaderboard"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ 정보", "info"),
		),
	)
	return msg
}

func chaptersMessage(chatID int64, course *content.Course) tgbotapi.MessageConfig {
	msg := htmlMessage(chatID, "🗺 <b>챕터를 골라 주세요</b>")
	var rows [][]tgbotapi.InlineKeyboardButton
	if course != nil {
		for _, ch := range course.Chapters {
			label := fmt.Sprintf("%d. %s (%d)", ch.ID, ch.Title, len(ch.Exercises))
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("chapter:%d", ch.ID)),
			))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 메뉴", "menu"),
	))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return msg
}

func questionMessage(chatID int64, session *quiz.Session) tgbotapi.MessageConfig {
	q, _ := session.Current()
	index := session.CurrentIndex()

	var text strings.Builder
	fmt.Fprintf(&text, "❓ <b>문제 %d/%d</b>", index+1, session.Len())
	if q.ChapterTitle != "" {
		fmt.Fprintf(&text, " · %s", esc(q.ChapterTitle))
	}
	fmt.Fprintf(&text, "\n\n%s", esc(q.Question))
	if session.TimeAttack() {
		fmt.Fprintf(&text, "\n\n⏱ %d초 안에 답해 주세요!", int(session.CountdownDuration().Seconds()))
	}

	msg := htmlMessage(chatID, text.String())
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, option := range q.Options {
		data := fmt.Sprintf("ans:%s:%d:%d", session.ShortID(), index, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(option, data)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🚪 퀴즈 중단", "exit"),
	))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return msg
}

func feedbackMessage(chatID int64, session *quiz.Session) tgbotapi.MessageConfig {
	q, _ := session.Current()
	selected := session.Selected()

	var text strings.Builder
	switch {
	case selected == quiz.Timeout:
		fmt.Fprintf(&text, "⏰ <b>시간 초과!</b>\n정답: %s", esc(q.CorrectText()))
	case q.IsCorrect(selected):
		text.WriteString("✅ <b>정답!</b> 🎉")
	default:
		fmt.Fprintf(&text, "❌ <b>오답!</b>\n정답: %s", esc(q.CorrectText()))
	}
	if q.Explanation != "" {
		fmt.Fprintf(&text, "\n\n💡 %s", esc(q.Explanation))
	}

	label := "다음 ▶"
	if session.CurrentIndex() == session.Len()-1 {
		label = "🏁 결과 보기"
	}
	msg := htmlMessage(chatID, text.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "next:"+session.ShortID()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚪 퀴즈 중단", "exit"),
		),
	)
	return msg
}

func resultMessage(chatID int64, result quiz.Result, position int) tgbotapi.MessageConfig {
	pct := 0
	if result.Total > 0 {
		pct = result.Score * 100 / result.Total
	}

	var text strings.Builder
	text.WriteString("🏁 <b>퀴즈 완료!</b>\n\n")
	fmt.Fprintf(&text, "📊 결과: %d/%d\n📈 정답률: %d%%\n", result.Score, result.Total, pct)
	switch {
	case result.Mode == quiz.ModeRetry:
		text.WriteString("\n🔁 복습 결과는 리더보드에 기록되지 않아요.\n")
	case position > 0:
		fmt.Fprintf(&text, "\n🎉 <b>새 기록!</b> 리더보드 %d위예요!\n", position)
	}
	if n := len(result.Wrong); n > 0 {
		fmt.Fprintf(&text, "\n틀린 문제 %d개를 다시 풀어 볼까요?", n)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if len(result.Wrong) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 틀린 문제 다시 풀기", "retry"),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏆 리더보드", "leaderboard"),
		tgbotapi.NewInlineKeyboardButtonData("📋 메뉴", "menu"),
	))

	msg := htmlMessage(chatID, text.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return msg
}

func leaderboardMessage(chatID int64, top []leaderboard.Entry) tgbotapi.MessageConfig {
	var text strings.Builder
	if len(top) == 0 {
		text.WriteString("🏆 <b>리더보드</b>\n\n아직 기록이 없어요. 첫 번째 주인공이 되어 보세요! 🎯")
	} else {
		fmt.Fprintf(&text, "🏆 <b>상위 %d명</b>\n\n", len(top))
		for i, e := range top {
			medal := "🔸"
			switch i {
			case 0:
				medal = "🥇"
			case 1:
				medal = "🥈"
			case 2:
				medal = "🥉"
			}
			fmt.Fprintf(&text, "%s %d. %s - %d%% (%d/%d)\n   📅 %s\n\n",
				medal, i+1, esc(e.DisplayName()), e.Percentage, e.Score, e.Total,
				e.RecordedAt.Format("2006.01.02 15:04"))
		}
	}
	msg := htmlMessage(chatID, text.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎲 퀴즈 시작", "mode:random"),
			tgbotapi.NewInlineKeyboardButtonData("📋 메뉴", "menu"),
		),
	)
	return msg
}

// wordbookLimit keeps the message well under Telegram's 4096 character cap.
const wordbookLimit = 8

func wordbookMessage(chatID int64, term string, entries []content.PatternEntry) tgbotapi.MessageConfig {
	var text strings.Builder
	text.WriteString("📖 <b>단어장</b>")
	if term != "" {
		fmt.Fprintf(&text, " · 🔎 %s", esc(term))
	}
	text.WriteString("\n\n")

	if len(entries) == 0 {
		text.WriteString("검색 결과가 없습니다.")
	} else {
		fmt.Fprintf(&text, "총 <b>%d</b>개의 문형이 있습니다.\n", len(entries))
		for _, e := range entries[:min(len(entries), wordbookLimit)] {
			fmt.Fprintf(&text, "\n<b>%s</b> <i>%s</i>\n", esc(e.Title), esc(e.ChapterTitle))
			if e.Description != "" {
				fmt.Fprintf(&text, "%s\n", esc(e.Description))
			}
			for _, ex := range e.Examples {
				fmt.Fprintf(&text, "  • %s\n    %s\n", esc(ex.Japanese), esc(ex.Korean))
			}
		}
		if rest := len(entries) - wordbookLimit; rest > 0 {
			fmt.Fprintf(&text, "\n…외 %d개. /wordbook &lt;검색어&gt; 로 좁혀 보세요.", rest)
		}
	}

	msg := htmlMessage(chatID, text.String())
	msg.ReplyMarkup = backKeyboard()
	return msg
}

func infoMessage(chatID int64) tgbotapi.MessageConfig {
	msg := htmlMessage(chatID,
		"📖 일본 문학 속 장소를 여행하며 일본어를 배우는 퀴즈 봇이에요.\n\n"+
			"• 랜덤 퀴즈: 전체 문제 중 10문제\n"+
			"• 전체 퀴즈: 모든 챕터를 순서대로\n"+
			"• 챕터 선택: 한 장소의 문제만\n"+
			"• 타임어택: 문제마다 제한 시간\n"+
			"• 단어장: /wordbook 검색어 로 문형 찾기")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📂 소스 코드", repoURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 메뉴", "menu"),
		),
	)
	return msg
}
