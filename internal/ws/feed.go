package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"teamgame_bot/internal/game"
	"teamgame_bot/internal/logger"
)

// типы сообщений ленты
const (
	TypeSnapshot = "snapshot"
	TypeClosed   = "closed"
)

type Message struct {
	Type    string         `json:"type"`
	ChatID  int64          `json:"chat_id"`
	Session *game.Snapshot `json:"session,omitempty"`
}

// Feed рассылает изменения сессий подписчикам чата.
// Медленный клиент, не успевающий читать, отключается.
type Feed struct {
	mu   sync.RWMutex
	subs map[int64]map[*Client]struct{}
	log  *slog.Logger
}

func NewFeed() *Feed {
	return &Feed{
		subs: make(map[int64]map[*Client]struct{}),
		log:  logger.With("component", "ws_feed"),
	}
}

func (f *Feed) Subscribe(c *Client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.subs[c.ChatID]
	if !ok {
		set = make(map[*Client]struct{})
		f.subs[c.ChatID] = set
	}
	set[c] = struct{}{}
}

// Unsubscribe закрывает Send клиента; повторный вызов безопасен
func (f *Feed) Unsubscribe(c *Client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribeLocked(c)
}

func (f *Feed) unsubscribeLocked(c *Client) {
	set, ok := f.subs[c.ChatID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Send)
	if len(set) == 0 {
		delete(f.subs, c.ChatID)
	}
}

func (f *Feed) Subscribers(chatID int64) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[chatID])
}

// SessionChanged рассылает новый снимок сессии
func (f *Feed) SessionChanged(snap game.Snapshot) {
	f.publish(snap.ChatID, Message{Type: TypeSnapshot, ChatID: snap.ChatID, Session: &snap})
}

// SessionRemoved сообщает, что сессии чата больше нет
func (f *Feed) SessionRemoved(chatID int64) {
	f.publish(chatID, Message{Type: TypeClosed, ChatID: chatID})
}

func (f *Feed) publish(chatID int64, msg Message) {
	f.mu.RLock()
	if len(f.subs[chatID]) == 0 {
		f.mu.RUnlock()
		return
	}
	f.mu.RUnlock()

	data, err := Encode(msg)
	if err != nil {
		f.log.Error("failed to encode feed message", "chat_id", chatID, "error", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.subs[chatID] {
		select {
		case c.Send <- data:
		default:
			f.log.Warn("ws client too slow, dropping", "chat_id", chatID)
			f.unsubscribeLocked(c)
		}
	}
}

func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
