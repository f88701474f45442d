package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"teamgame_bot/internal/logger"
	"teamgame_bot/internal/metrics"
	"teamgame_bot/internal/ratelimit"
	"teamgame_bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API - часть tgbotapi.BotAPI, нужная боту
type API interface {
	MessageSender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot принимает апдейты Telegram и раздает их обработчику
type Bot struct {
	api     API
	handler *Handler
	limiter ratelimit.Limiter
	metrics *metrics.Metrics
	queue   *chatQueue
	stopCh  chan struct{}
	wg      sync.WaitGroup
	log     *slog.Logger
}

// NewBotAPI авторизует бота по токену
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Info("bot authorized", "username", api.Self.UserName)
	return api, nil
}

// NewBot создаёт бота; limiter может быть nil
func NewBot(api API, svc service.GameServiceInterface, limiter ratelimit.Limiter, m *metrics.Metrics) *Bot {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	b := &Bot{
		api:     api,
		handler: NewHandler(api, svc),
		limiter: limiter,
		metrics: m,
		stopCh:  make(chan struct{}),
		log:     logger.With("component", "bot"),
	}
	b.queue = newChatQueue(b.process, b.stopCh, &b.wg, b.log)
	return b
}

// Start запускает прослушивание апдейтов до Stop или отмены ctx
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case <-ctx.Done():
			b.log.Info("context cancelled, stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

// Stop плавно останавливает бота
func (b *Bot) Stop() {
	b.log.Info("stopping bot...")
	b.queue.Close()
	close(b.stopCh)
	b.api.StopReceivingUpdates()

	// Ожидание завершения обработчиков с таймаутом
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	chatID, ok := updateChatID(update)
	if !ok {
		return
	}
	b.queue.Push(ctx, chatID, update)
}

// process обрабатывает один апдейт, вызывается из очереди чата.
// Автор апдейта попадает в ctx и дальше в журнал действий.
func (b *Bot) process(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if !b.allow(ctx, cb.From) {
			b.handler.answer(cb.ID, "Too many requests, slow down")
			return
		}
		b.handler.HandleCallback(withActor(ctx, cb.From), cb)

	case update.Message != nil && update.Message.IsCommand():
		if !b.allow(ctx, update.Message.From) {
			return
		}
		b.handler.HandleCommand(withActor(ctx, update.Message.From), update.Message)
	}
}

func withActor(ctx context.Context, user *tgbotapi.User) context.Context {
	if user == nil {
		return ctx
	}
	return service.WithActor(ctx, user.ID)
}

// лимит действий на пользователя; при сбое хранилища лимитов пропускаем
func (b *Bot) allow(ctx context.Context, user *tgbotapi.User) bool {
	if user == nil {
		return true
	}
	ok, err := b.limiter.Allow(ctx, fmt.Sprintf("user:%d", user.ID))
	if err != nil {
		b.log.Warn("rate limiter unavailable", "user_id", user.ID, "error", err)
		return true
	}
	if !ok {
		if b.metrics != nil {
			b.metrics.RateLimited.Inc()
		}
		b.log.Debug("rate limited", "user_id", user.ID)
	}
	return ok
}

func updateChatID(u tgbotapi.Update) (int64, bool) {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		return u.Message.Chat.ID, true
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		return u.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}
