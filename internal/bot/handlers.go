package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"teamgame_bot/internal/domain"
	"teamgame_bot/internal/logger"
	"teamgame_bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageSender определяет интерфейс для отправки сообщений.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

const (
	msgNoGame        = "No active game! Use /newgame to start one."
	msgGameStarted   = "Game already started!"
	msgInternalError = "Something went wrong, please try again 😅"
)

// Handler переводит команды чата в вызовы игрового сервиса и рисует ответы
type Handler struct {
	Bot     MessageSender
	Service service.GameServiceInterface
	log     *slog.Logger
}

func NewHandler(bot MessageSender, svc service.GameServiceInterface) *Handler {
	return &Handler{
		Bot:     bot,
		Service: svc,
		log:     logger.With("component", "bot_handler"),
	}
}

// HandleCommand - маршрутизация команд
func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start", "help":
		h.send(tgbotapi.NewMessage(chatID, helpText()))
	case "newgame":
		h.HandleNewGame(ctx, chatID)
	case "join":
		if msg.From != nil {
			h.HandleJoin(ctx, chatID, msg.From)
		}
	case "players":
		h.HandleListPlayers(ctx, chatID)
	case "startgame":
		h.HandleStartGame(ctx, chatID)
	case "endgame":
		h.HandleEndGame(ctx, chatID)
	case "score":
		h.HandleScore(ctx, chatID, msg.CommandArguments())
	case "vote":
		h.HandleVoteStatus(ctx, chatID)
	case "results":
		h.HandleResults(ctx, chatID)
	case "closegame":
		h.HandleCloseGame(ctx, chatID)
	}
}

// HandleCallback - нажатия inline кнопок: join и vote_<id>
func (h *Handler) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil || cb.From == nil {
		h.answer(cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID

	if cb.Data == callbackJoin {
		h.answer(cb.ID, h.joinFromButton(ctx, chatID, cb.From))
		return
	}
	if candidateID, ok := parseVoteCallback(cb.Data); ok {
		h.answer(cb.ID, h.vote(ctx, chatID, cb.From.ID, candidateID))
		return
	}
	h.answer(cb.ID, "Unknown action")
}

// HandleNewGame - /newgame
func (h *Handler) HandleNewGame(ctx context.Context, chatID int64) {
	snap, err := h.Service.CreateSession(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			h.send(tgbotapi.NewMessage(chatID, "A game is already running in this chat! Use /closegame to discard it."))
			return
		}
		h.fail(chatID, "newgame", err)
		return
	}
	h.sendRoster(chatID, snap.Players)
}

// HandleJoin - /join
func (h *Handler) HandleJoin(ctx context.Context, chatID int64, user *tgbotapi.User) {
	joined, snap, err := h.Service.Join(ctx, chatID, playerFromUser(user))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.send(tgbotapi.NewMessage(chatID, msgNoGame))
	case errors.Is(err, domain.ErrInvalidState):
		h.send(tgbotapi.NewMessage(chatID, msgGameStarted))
	case err != nil:
		h.fail(chatID, "join", err)
	case !joined:
		h.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("%s is already in the game.", playerFromUser(user).DisplayName())))
	default:
		h.sendRoster(chatID, snap.Players)
	}
}

// нажатие кнопки Join; текст уходит в ответ на callback
func (h *Handler) joinFromButton(ctx context.Context, chatID int64, user *tgbotapi.User) string {
	joined, snap, err := h.Service.Join(ctx, chatID, playerFromUser(user))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "No active game!"
	case errors.Is(err, domain.ErrInvalidState):
		return msgGameStarted
	case err != nil:
		h.log.Error("join failed", "chat_id", chatID, "user_id", user.ID, "error", err)
		return msgInternalError
	case !joined:
		return "You are already in the game"
	}
	h.sendRoster(chatID, snap.Players)
	return "You joined the game!"
}

// HandleListPlayers - /players, работает только пока идет набор
func (h *Handler) HandleListPlayers(ctx context.Context, chatID int64) {
	players, err := h.Service.ListPlayers(ctx, chatID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.send(tgbotapi.NewMessage(chatID, msgNoGame))
	case errors.Is(err, domain.ErrInvalidState):
		h.send(tgbotapi.NewMessage(chatID, msgGameStarted))
	case err != nil:
		h.fail(chatID, "players", err)
	default:
		h.sendRoster(chatID, players)
	}
}

// HandleStartGame - /startgame
func (h *Handler) HandleStartGame(ctx context.Context, chatID int64) {
	snap, err := h.Service.StartGame(ctx, chatID)
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.send(tgbotapi.NewMessage(chatID, msgNoGame))
	case errors.Is(err, domain.ErrInvalidState):
		h.send(tgbotapi.NewMessage(chatID, msgGameStarted))
	case errors.As(err, &verr):
		h.send(tgbotapi.NewMessage(chatID, "Not enough players: "+verr.Reason))
	case err != nil:
		h.fail(chatID, "startgame", err)
	default:
		h.send(tgbotapi.NewMessage(chatID, startedText(snap.Players)))
	}
}

// HandleEndGame - /endgame
func (h *Handler) HandleEndGame(ctx context.Context, chatID int64) {
	_, err := h.Service.EndGame(ctx, chatID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.send(tgbotapi.NewMessage(chatID, msgNoGame))
	case errors.Is(err, domain.ErrInvalidState):
		h.send(tgbotapi.NewMessage(chatID, "No active game to end!"))
	case err != nil:
		h.fail(chatID, "endgame", err)
	default:
		h.send(tgbotapi.NewMessage(chatID, "Please enter the final score using the format: /score TeamA TeamB\nExample: /score 3 2"))
	}
}

// HandleScore - /score A B. Состояние проверяется до разбора аргументов.
func (h *Handler) HandleScore(ctx context.Context, chatID int64, args string) {
	snap, err := h.Service.GetSession(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.send(tgbotapi.NewMessage(chatID, msgNoGame))
			return
		}
		h.fail(chatID, "score", err)
		return
	}
	if snap.State != domain.StateScoring {
		h.send(tgbotapi.NewMessage(chatID, "No game waiting for score!"))
		return
	}

	teamA, teamB, err := ParseScore(args)
	if err != nil {
		h.send(tgbotapi.NewMessage(chatID, "Invalid score format.\n"+scoreUsage))
		return
	}

	snap, err = h.Service.SubmitScore(ctx, chatID, teamA, teamB)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.send(tgbotapi.NewMessage(chatID, msgNoGame))
		return
	case errors.Is(err, domain.ErrInvalidState):
		h.send(tgbotapi.NewMessage(chatID, "No game waiting for score!"))
		return
	case errors.Is(err, domain.ErrValidation):
		h.send(tgbotapi.NewMessage(chatID, "Invalid score format.\n"+scoreUsage))
		return
	case err != nil:
		h.fail(chatID, "score", err)
		return
	}

	h.send(tgbotapi.NewMessage(chatID, scoreText(*snap.Score)))
	h.sendBallot(chatID, snap.Players)
}

// HandleVoteStatus - /vote: бюллетень и текущие результаты
func (h *Handler) HandleVoteStatus(ctx context.Context, chatID int64) {
	res, err := h.Service.Tally(ctx, chatID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.send(tgbotapi.NewMessage(chatID, msgNoGame))
		return
	case errors.Is(err, domain.ErrInvalidState):
		h.send(tgbotapi.NewMessage(chatID, "Voting has not started yet."))
		return
	case err != nil:
		h.fail(chatID, "vote", err)
		return
	}

	snap, err := h.Service.GetSession(ctx, chatID)
	if err != nil {
		h.fail(chatID, "vote", err)
		return
	}
	h.send(tgbotapi.NewMessage(chatID, tallyText("📊 Current MVP standings", snap, res)))
	if snap.State == domain.StateVoting {
		h.sendBallot(chatID, snap.Players)
	}
}

// голос из кнопки бюллетеня; текст уходит в ответ на callback
func (h *Handler) vote(ctx context.Context, chatID, voterID, candidateID int64) string {
	_, err := h.Service.CastVote(ctx, chatID, voterID, candidateID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "No active game!"
	case errors.Is(err, domain.ErrInvalidState):
		return "Voting is closed"
	case errors.Is(err, domain.ErrUnknownCandidate):
		return "That player is not in this game"
	case errors.Is(err, domain.ErrValidation):
		return "Only players of this game can vote"
	case err != nil:
		h.log.Error("vote failed", "chat_id", chatID, "voter_id", voterID, "error", err)
		return msgInternalError
	}

	name := fmt.Sprintf("player %d", candidateID)
	if snap, err := h.Service.GetSession(ctx, chatID); err == nil {
		name = playerName(snap.Players, candidateID)
	}
	return "You voted for " + name
}

// HandleResults - /results: закрывает голосование и объявляет MVP
func (h *Handler) HandleResults(ctx context.Context, chatID int64) {
	res, snap, err := h.Service.FinishVoting(ctx, chatID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.send(tgbotapi.NewMessage(chatID, msgNoGame))
	case errors.Is(err, domain.ErrInvalidState):
		h.send(tgbotapi.NewMessage(chatID, "No voting in progress!"))
	case err != nil:
		h.fail(chatID, "results", err)
	default:
		h.send(tgbotapi.NewMessage(chatID, tallyText("🏆 MVP voting results", snap, res)+"\n\nUse /newgame to play again."))
	}
}

// HandleCloseGame - /closegame, сессию можно выбросить в любом состоянии
func (h *Handler) HandleCloseGame(ctx context.Context, chatID int64) {
	if err := h.Service.CloseSession(ctx, chatID); err != nil {
		h.fail(chatID, "closegame", err)
		return
	}
	h.send(tgbotapi.NewMessage(chatID, "Game closed. Use /newgame to start a new one."))
}

func (h *Handler) sendRoster(chatID int64, players []domain.Player) {
	msg := tgbotapi.NewMessage(chatID, rosterText(players))
	msg.ReplyMarkup = joinKeyboard
	h.send(msg)
}

func (h *Handler) sendBallot(chatID int64, players []domain.Player) {
	if len(players) == 0 {
		h.send(tgbotapi.NewMessage(chatID, "No players to vote for. Use /results to finish the game."))
		return
	}
	msg := tgbotapi.NewMessage(chatID, "🏆 Vote for MVP! 🏆\nChoose the most valuable player:")
	msg.ReplyMarkup = voteKeyboard(players)
	h.send(msg)
}

func (h *Handler) fail(chatID int64, op string, err error) {
	h.log.Error("command failed", "op", op, "chat_id", chatID, "error", err)
	h.send(tgbotapi.NewMessage(chatID, msgInternalError))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.Bot.Send(c); err != nil {
		h.log.Error("failed to send message", "error", err)
	}
}

func (h *Handler) answer(callbackID, text string) {
	if _, err := h.Bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		h.log.Warn("failed to answer callback", "error", err)
	}
}

func playerFromUser(u *tgbotapi.User) domain.Player {
	return domain.Player{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
	}
}
