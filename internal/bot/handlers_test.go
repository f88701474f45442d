package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"teamgame_bot/internal/domain"
	"teamgame_bot/internal/game"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockGameService является моком для service.GameServiceInterface
type MockGameService struct {
	mock.Mock
}

func (m *MockGameService) CreateSession(ctx context.Context, chatID int64) (game.Snapshot, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(game.Snapshot), args.Error(1)
}

func (m *MockGameService) GetSession(ctx context.Context, chatID int64) (game.Snapshot, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(game.Snapshot), args.Error(1)
}

func (m *MockGameService) ListPlayers(ctx context.Context, chatID int64) ([]domain.Player, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Player), args.Error(1)
}

func (m *MockGameService) Join(ctx context.Context, chatID int64, player domain.Player) (bool, game.Snapshot, error) {
	args := m.Called(ctx, chatID, player)
	return args.Bool(0), args.Get(1).(game.Snapshot), args.Error(2)
}

func (m *MockGameService) StartGame(ctx context.Context, chatID int64) (game.Snapshot, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(game.Snapshot), args.Error(1)
}

func (m *MockGameService) EndGame(ctx context.Context, chatID int64) (game.Snapshot, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(game.Snapshot), args.Error(1)
}

func (m *MockGameService) SubmitScore(ctx context.Context, chatID int64, teamA, teamB int) (game.Snapshot, error) {
	args := m.Called(ctx, chatID, teamA, teamB)
	return args.Get(0).(game.Snapshot), args.Error(1)
}

func (m *MockGameService) CastVote(ctx context.Context, chatID, voterID, candidateID int64) (game.TallyResult, error) {
	args := m.Called(ctx, chatID, voterID, candidateID)
	return args.Get(0).(game.TallyResult), args.Error(1)
}

func (m *MockGameService) Tally(ctx context.Context, chatID int64) (game.TallyResult, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(game.TallyResult), args.Error(1)
}

func (m *MockGameService) FinishVoting(ctx context.Context, chatID int64) (game.TallyResult, game.Snapshot, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(game.TallyResult), args.Get(1).(game.Snapshot), args.Error(2)
}

func (m *MockGameService) CloseSession(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

// MockMessageSender является моком для интерфейса MessageSender
type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	if msg, ok := args.Get(0).(tgbotapi.Message); ok {
		return msg, args.Error(1)
	}
	return tgbotapi.Message{}, args.Error(1)
}

func (m *MockMessageSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	args := m.Called(c)
	return nil, args.Error(1)
}

const chatID = int64(-1001)

var (
	alice = domain.Player{ID: 1, FirstName: "Alice", LastName: "Smith"}
	bob   = domain.Player{ID: 2, FirstName: "Bob"}
)

func newTestHandler() (*Handler, *MockGameService, *MockMessageSender) {
	svc := new(MockGameService)
	sender := new(MockMessageSender)
	return NewHandler(sender, svc), svc, sender
}

func text(chatID int64, s string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, s)
}

func TestHandleNewGame(t *testing.T) {
	ctx := context.Background()

	t.Run("новая игра", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("CreateSession", ctx, chatID).Return(game.Snapshot{ChatID: chatID, State: domain.StateWaiting}, nil).Once()
		expected := text(chatID, rosterText(nil))
		expected.ReplyMarkup = joinKeyboard
		sender.On("Send", expected).Return(tgbotapi.Message{}, nil).Once()

		h.HandleNewGame(ctx, chatID)

		svc.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("игра уже идет", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("CreateSession", ctx, chatID).
			Return(game.Snapshot{}, &domain.AlreadyExistsError{ChatID: chatID, State: domain.StateInGame}).Once()
		sender.On("Send", text(chatID, "A game is already running in this chat! Use /closegame to discard it.")).
			Return(tgbotapi.Message{}, nil).Once()

		h.HandleNewGame(ctx, chatID)

		sender.AssertExpectations(t)
	})
}

func TestHandleJoin(t *testing.T) {
	ctx := context.Background()
	user := &tgbotapi.User{ID: 1, FirstName: "Alice", LastName: "Smith"}

	t.Run("успешный вход", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("Join", ctx, chatID, alice).Return(true, game.Snapshot{Players: []domain.Player{alice}}, nil).Once()
		expected := text(chatID, rosterText([]domain.Player{alice}))
		expected.ReplyMarkup = joinKeyboard
		sender.On("Send", expected).Return(tgbotapi.Message{}, nil).Once()

		h.HandleJoin(ctx, chatID, user)

		svc.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("повторный вход", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("Join", ctx, chatID, alice).Return(false, game.Snapshot{Players: []domain.Player{alice}}, nil).Once()
		sender.On("Send", text(chatID, "Alice Smith is already in the game.")).Return(tgbotapi.Message{}, nil).Once()

		h.HandleJoin(ctx, chatID, user)

		sender.AssertExpectations(t)
	})

	t.Run("игра уже началась", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("Join", ctx, chatID, alice).
			Return(false, game.Snapshot{}, &domain.InvalidStateError{Op: game.OpJoin, State: domain.StateInGame}).Once()
		sender.On("Send", text(chatID, msgGameStarted)).Return(tgbotapi.Message{}, nil).Once()

		h.HandleJoin(ctx, chatID, user)

		sender.AssertExpectations(t)
	})

	t.Run("нет игры", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("Join", ctx, chatID, alice).Return(false, game.Snapshot{}, &domain.NotFoundError{ChatID: chatID}).Once()
		sender.On("Send", text(chatID, msgNoGame)).Return(tgbotapi.Message{}, nil).Once()

		h.HandleJoin(ctx, chatID, user)

		sender.AssertExpectations(t)
	})
}

func TestHandleListPlayers_AfterStart(t *testing.T) {
	ctx := context.Background()
	h, svc, sender := newTestHandler()
	svc.On("ListPlayers", ctx, chatID).
		Return(nil, &domain.InvalidStateError{Op: game.OpListPlayers, State: domain.StateVoting}).Once()
	sender.On("Send", text(chatID, msgGameStarted)).Return(tgbotapi.Message{}, nil).Once()

	h.HandleListPlayers(ctx, chatID)

	sender.AssertExpectations(t)
}

func TestHandleStartGame_NotEnoughPlayers(t *testing.T) {
	ctx := context.Background()
	h, svc, sender := newTestHandler()
	svc.On("StartGame", ctx, chatID).
		Return(game.Snapshot{}, &domain.ValidationError{Field: "players", Reason: "need at least 2 players, have 1"}).Once()
	sender.On("Send", text(chatID, "Not enough players: need at least 2 players, have 1")).Return(tgbotapi.Message{}, nil).Once()

	h.HandleStartGame(ctx, chatID)

	sender.AssertExpectations(t)
}

func TestHandleEndGame(t *testing.T) {
	ctx := context.Background()

	t.Run("ожидание счета", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("EndGame", ctx, chatID).Return(game.Snapshot{State: domain.StateScoring}, nil).Once()
		sender.On("Send", text(chatID, "Please enter the final score using the format: /score TeamA TeamB\nExample: /score 3 2")).
			Return(tgbotapi.Message{}, nil).Once()

		h.HandleEndGame(ctx, chatID)

		sender.AssertExpectations(t)
	})

	t.Run("игра не идет", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("EndGame", ctx, chatID).
			Return(game.Snapshot{}, &domain.InvalidStateError{Op: game.OpEndGame, State: domain.StateWaiting}).Once()
		sender.On("Send", text(chatID, "No active game to end!")).Return(tgbotapi.Message{}, nil).Once()

		h.HandleEndGame(ctx, chatID)

		sender.AssertExpectations(t)
	})
}

func TestHandleScore(t *testing.T) {
	ctx := context.Background()
	players := []domain.Player{alice, bob}

	t.Run("счет не ожидается", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("GetSession", ctx, chatID).Return(game.Snapshot{State: domain.StateInGame}, nil).Once()
		sender.On("Send", text(chatID, "No game waiting for score!")).Return(tgbotapi.Message{}, nil).Once()

		h.HandleScore(ctx, chatID, "3 2")

		svc.AssertExpectations(t)
		svc.AssertNotCalled(t, "SubmitScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		sender.AssertExpectations(t)
	})

	t.Run("неверный формат", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("GetSession", ctx, chatID).Return(game.Snapshot{State: domain.StateScoring}, nil).Once()
		sender.On("Send", text(chatID, "Invalid score format.\n"+scoreUsage)).Return(tgbotapi.Message{}, nil).Once()

		h.HandleScore(ctx, chatID, "three 2")

		svc.AssertNotCalled(t, "SubmitScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		sender.AssertExpectations(t)
	})

	t.Run("счет принят", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("GetSession", ctx, chatID).Return(game.Snapshot{State: domain.StateScoring, Players: players}, nil).Once()
		svc.On("SubmitScore", ctx, chatID, 3, 2).Return(game.Snapshot{
			State:   domain.StateVoting,
			Players: players,
			Score:   &domain.TeamScore{TeamA: 3, TeamB: 2},
		}, nil).Once()

		ballot := text(chatID, "🏆 Vote for MVP! 🏆\nChoose the most valuable player:")
		ballot.ReplyMarkup = voteKeyboard(players)
		sender.On("Send", text(chatID, "Final Score:\nTeam A: 3\nTeam B: 2\n")).Return(tgbotapi.Message{}, nil).Once()
		sender.On("Send", ballot).Return(tgbotapi.Message{}, nil).Once()

		h.HandleScore(ctx, chatID, "3 2")

		svc.AssertExpectations(t)
		sender.AssertExpectations(t)
	})
}

func TestHandleCallback_Vote(t *testing.T) {
	ctx := context.Background()
	cb := &tgbotapi.CallbackQuery{
		ID:      "cb_id",
		From:    &tgbotapi.User{ID: bob.ID, FirstName: "Bob"},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    "vote_1",
	}

	t.Run("голос принят", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("CastVote", ctx, chatID, bob.ID, alice.ID).
			Return(game.TallyResult{Counts: map[int64]int{alice.ID: 1}, Leaders: []int64{alice.ID}, Total: 1}, nil).Once()
		svc.On("GetSession", ctx, chatID).Return(game.Snapshot{Players: []domain.Player{alice, bob}}, nil).Once()
		sender.On("Request", tgbotapi.NewCallback("cb_id", "You voted for Alice Smith")).Return(nil, nil).Once()

		h.HandleCallback(ctx, cb)

		svc.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("голосование закрыто", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("CastVote", ctx, chatID, bob.ID, alice.ID).
			Return(game.TallyResult{}, &domain.InvalidStateError{Op: game.OpCastVote, State: domain.StateClosed}).Once()
		sender.On("Request", tgbotapi.NewCallback("cb_id", "Voting is closed")).Return(nil, nil).Once()

		h.HandleCallback(ctx, cb)

		sender.AssertExpectations(t)
	})

	t.Run("неизвестный кандидат", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("CastVote", ctx, chatID, bob.ID, alice.ID).
			Return(game.TallyResult{}, &domain.UnknownCandidateError{CandidateID: alice.ID}).Once()
		sender.On("Request", tgbotapi.NewCallback("cb_id", "That player is not in this game")).Return(nil, nil).Once()

		h.HandleCallback(ctx, cb)

		sender.AssertExpectations(t)
	})
}

func TestHandleCallback_Join(t *testing.T) {
	ctx := context.Background()
	h, svc, sender := newTestHandler()
	cb := &tgbotapi.CallbackQuery{
		ID:      "cb_join",
		From:    &tgbotapi.User{ID: bob.ID, FirstName: "Bob"},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    callbackJoin,
	}

	svc.On("Join", ctx, chatID, bob).Return(true, game.Snapshot{Players: []domain.Player{alice, bob}}, nil).Once()
	sender.On("Send", mock.AnythingOfType("tgbotapi.MessageConfig")).Return(tgbotapi.Message{}, nil).Once()
	sender.On("Request", tgbotapi.NewCallback("cb_join", "You joined the game!")).Return(nil, nil).Once()

	h.HandleCallback(ctx, cb)

	svc.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestHandleResults(t *testing.T) {
	ctx := context.Background()
	snap := game.Snapshot{State: domain.StateClosed, Players: []domain.Player{alice, bob}}

	t.Run("ничья", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		res := game.TallyResult{Counts: map[int64]int{alice.ID: 1, bob.ID: 1}, Leaders: []int64{alice.ID, bob.ID}, Total: 2}
		svc.On("FinishVoting", ctx, chatID).Return(res, snap, nil).Once()
		sender.On("Send", mock.MatchedBy(func(c tgbotapi.MessageConfig) bool {
			return c.ChatID == chatID &&
				strings.Contains(c.Text, "Tie between: Alice Smith, Bob") &&
				strings.Contains(c.Text, "Alice Smith — 1 vote")
		})).Return(tgbotapi.Message{}, nil).Once()

		h.HandleResults(ctx, chatID)

		sender.AssertExpectations(t)
	})

	t.Run("голосование не идет", func(t *testing.T) {
		h, svc, sender := newTestHandler()
		svc.On("FinishVoting", ctx, chatID).
			Return(game.TallyResult{}, game.Snapshot{}, &domain.InvalidStateError{Op: game.OpFinishVoting, State: domain.StateInGame}).Once()
		sender.On("Send", text(chatID, "No voting in progress!")).Return(tgbotapi.Message{}, nil).Once()

		h.HandleResults(ctx, chatID)

		sender.AssertExpectations(t)
	})
}

func TestHandleCloseGame(t *testing.T) {
	ctx := context.Background()
	h, svc, sender := newTestHandler()
	svc.On("CloseSession", ctx, chatID).Return(nil).Once()
	sender.On("Send", text(chatID, "Game closed. Use /newgame to start a new one.")).Return(tgbotapi.Message{}, nil).Once()

	h.HandleCloseGame(ctx, chatID)

	svc.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestHandler_SendErrorIsLogged(t *testing.T) {
	ctx := context.Background()
	h, svc, sender := newTestHandler()
	svc.On("CloseSession", ctx, chatID).Return(nil).Once()
	sender.On("Send", mock.Anything).Return(tgbotapi.Message{}, errors.New("telegram down")).Once()

	assert.NotPanics(t, func() { h.HandleCloseGame(ctx, chatID) })
	sender.AssertExpectations(t)
}
