package ws

import (
	"log/slog"
	"time"

	"teamgame_bot/internal/game"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 32
)

// Client - подписчик ленты одной сессии
type Client struct {
	ChatID int64
	Conn   *websocket.Conn
	Send   chan []byte

	feed *Feed
	log  *slog.Logger
}

func NewClient(chatID int64, conn *websocket.Conn, feed *Feed) *Client {
	return &Client{
		ChatID: chatID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		feed:   feed,
		log:    feed.log.With("chat_id", chatID),
	}
}

// Start ставит снимок первым сообщением и подписывает клиента на ленту.
// Вызывать под блокировкой сессии, иначе изменение может прийти раньше снимка.
func (c *Client) Start(snap game.Snapshot) error {
	data, err := Encode(Message{Type: TypeSnapshot, ChatID: c.ChatID, Session: &snap})
	if err != nil {
		return err
	}
	c.Send <- data
	c.feed.Subscribe(c)
	return nil
}

// Run блокируется до разрыва соединения
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// read: входящие сообщения не нужны, читаем только ради pong и закрытия
func (c *Client) readPump() {
	defer func() {
		c.feed.Unsubscribe(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("ws read error", "error", err)
			}
			return
		}
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("ws write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
