package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	chatQueueSize = 64
	chatIdleAfter = 30 * time.Second
)

// chatQueue - по одному обработчику на чат: апдейты одного чата идут строго
// по очереди, разные чаты обрабатываются параллельно
type chatQueue struct {
	mu     sync.Mutex
	queues map[int64]chan tgbotapi.Update
	closed bool
	handle func(context.Context, tgbotapi.Update)
	stopCh <-chan struct{}
	wg     *sync.WaitGroup
	log    *slog.Logger
}

func newChatQueue(handle func(context.Context, tgbotapi.Update), stopCh <-chan struct{}, wg *sync.WaitGroup, log *slog.Logger) *chatQueue {
	return &chatQueue{
		queues: make(map[int64]chan tgbotapi.Update),
		handle: handle,
		stopCh: stopCh,
		wg:     wg,
		log:    log,
	}
}

// Push ставит апдейт в очередь чата; при переполнении или после Close
// апдейт отбрасывается. ctx достается обработчику, созданному этим вызовом.
func (q *chatQueue) Push(ctx context.Context, chatID int64, u tgbotapi.Update) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.log.Debug("chat queue closed, update dropped", "chat_id", chatID, "update_id", u.UpdateID)
		return false
	}

	ch, ok := q.queues[chatID]
	if !ok {
		ch = make(chan tgbotapi.Update, chatQueueSize)
		q.queues[chatID] = ch
		q.wg.Add(1)
		go q.worker(ctx, chatID, ch)
	}

	select {
	case ch <- u:
		return true
	default:
		q.log.Warn("chat queue is full, update dropped", "chat_id", chatID, "update_id", u.UpdateID)
		return false
	}
}

// Close запрещает новые апдейты. После Close wg больше не растет,
// и его можно ждать.
func (q *chatQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// число чатов с живым обработчиком
func (q *chatQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues)
}

func (q *chatQueue) worker(ctx context.Context, chatID int64, ch chan tgbotapi.Update) {
	defer q.wg.Done()

	for {
		select {
		case u := <-ch:
			q.handle(ctx, u)
		case <-q.stopCh:
			if q.release(chatID, ch) {
				return
			}
		case <-time.After(chatIdleAfter):
			if q.release(chatID, ch) {
				return
			}
		}
	}
}

// удаляет пустую очередь; Push кладет в канал под той же блокировкой
func (q *chatQueue) release(chatID int64, ch chan tgbotapi.Update) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(ch) > 0 {
		return false
	}
	delete(q.queues, chatID)
	return true
}
