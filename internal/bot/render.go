package bot

import (
	"fmt"
	"strconv"
	"strings"

	"teamgame_bot/internal/domain"
	"teamgame_bot/internal/game"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackJoin       = "join"
	callbackVotePrefix = "vote_"
)

const scoreUsage = "Please use: /score TeamA TeamB\nExample: /score 3 2"

// список игроков с кнопкой входа
func rosterText(players []domain.Player) string {
	var b strings.Builder
	b.WriteString("🎮 New game! Press Join or send /join to play.\n\n")
	fmt.Fprintf(&b, "Players (%d):\n", len(players))
	if len(players) == 0 {
		b.WriteString("— nobody yet\n")
	}
	for i, p := range players {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.DisplayName())
	}
	b.WriteString("\nUse /startgame when everyone is in.")
	return b.String()
}

var joinKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✋ Join", callbackJoin),
	),
)

func startedText(players []domain.Player) string {
	var b strings.Builder
	b.WriteString("⚽ Game started! Roster is locked:\n")
	for i, p := range players {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.DisplayName())
	}
	b.WriteString("\nUse /endgame when the match is over.")
	return b.String()
}

func scoreText(score domain.TeamScore) string {
	return fmt.Sprintf("Final Score:\n%s: %d\n%s: %d\n", domain.TeamA, score.TeamA, domain.TeamB, score.TeamB)
}

// клавиатура голосования: по кнопке на игрока, callback vote_<id>
func voteKeyboard(players []domain.Player) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(players))
	for _, p := range players {
		button := tgbotapi.NewInlineKeyboardButtonData(p.DisplayName(), callbackVotePrefix+strconv.FormatInt(p.ID, 10))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func parseVoteCallback(data string) (int64, bool) {
	if !strings.HasPrefix(data, callbackVotePrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(data, callbackVotePrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func pluralVotes(n int) string {
	if n == 1 {
		return "1 vote"
	}
	return fmt.Sprintf("%d votes", n)
}

// итоги голосования; ничья выводится списком лидеров
func tallyText(title string, snap game.Snapshot, res game.TallyResult) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")

	if res.Total == 0 {
		b.WriteString("No votes were cast.")
		return b.String()
	}

	for _, p := range snap.Players {
		if n := res.Counts[p.ID]; n > 0 {
			fmt.Fprintf(&b, "%s — %s\n", p.DisplayName(), pluralVotes(n))
		}
	}

	names := make([]string, 0, len(res.Leaders))
	for _, id := range res.Leaders {
		names = append(names, playerName(snap.Players, id))
	}
	if res.Tied() {
		fmt.Fprintf(&b, "\n🤝 Tie between: %s", strings.Join(names, ", "))
	} else {
		fmt.Fprintf(&b, "\n🏆 MVP: %s", names[0])
	}
	return b.String()
}

func playerName(players []domain.Player, id int64) string {
	for _, p := range players {
		if p.ID == id {
			return p.DisplayName()
		}
	}
	return strconv.FormatInt(id, 10)
}

func helpText() string {
	return "Team game bot commands:\n\n" +
		"/newgame - start collecting players\n" +
		"/join - join the current game\n" +
		"/players - show who has joined\n" +
		"/startgame - lock the roster and start\n" +
		"/endgame - finish the match\n" +
		"/score A B - submit the final score\n" +
		"/vote - MVP ballot and current standings\n" +
		"/results - close MVP voting and show the winner\n" +
		"/closegame - discard the game in this chat\n" +
		"/help - show this message"
}
