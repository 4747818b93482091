package network

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lootkeep/stacksort/internal/domain/itemtree"
	"github.com/lootkeep/stacksort/internal/engine"
	"github.com/lootkeep/stacksort/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer. Sort requests carry whole
	// inventories, so this is roomier than a chat protocol would need.
	maxMessageSize = 16384
)

// Query is an incoming request from a client.
type Query struct {
	Action   string         `json:"action"` // "SORT", "ORDER", "DEPTH", "VALIDATE", "RESOLVE"
	ClientID string         `json:"client_id"`
	Keyword  string         `json:"keyword,omitempty"`
	TypeID   int            `json:"type_id,omitempty"`
	Variant  int            `json:"variant,omitempty"`
	Stacks   []engine.Stack `json:"stacks,omitempty"`
}

// ItemView is the wire shape of a resolved tree item.
type ItemView struct {
	Name    string `json:"name"`
	TypeID  int    `json:"type_id"`
	Variant int    `json:"variant"`
	Order   int    `json:"order"`
}

// Response answers a Query.
type Response struct {
	Action  string         `json:"action"`
	Keyword string         `json:"keyword,omitempty"`
	Order   int            `json:"order,omitempty"`
	Depth   int            `json:"depth,omitempty"`
	Valid   bool           `json:"valid,omitempty"`
	Stacks  []engine.Stack `json:"stacks,omitempty"`
	Items   []ItemView     `json:"items,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Client represents an active WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a new WebSocket client with the given send buffer.
func NewClient(hub *Hub, conn *websocket.Conn, sendBuffer int) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps queries from the websocket connection into the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Errorf("websocket read error: %v", err)
			}
			break
		}
		metrics.Get().RecordWSMessageIn()

		var query Query
		if err := json.Unmarshal(message, &query); err != nil {
			c.hub.logger.Error("Failed to parse query from WebSocket. err: " + err.Error())
			c.reply(Response{Error: "malformed query"})
			continue
		}

		c.handleQuery(query)
	}
}

func (c *Client) handleQuery(query Query) {
	eng := c.hub.engine
	source := query.ClientID
	if source == "" {
		source = "ANONYMOUS"
	}

	switch query.Action {
	case "SORT":
		start := time.Now()
		sorted := eng.Sort(source, query.Stacks)
		metrics.Get().RecordSort(time.Since(start))
		c.reply(Response{Action: query.Action, Stacks: sorted})

	case "ORDER":
		metrics.Get().RecordKeywordQuery()
		c.reply(Response{Action: query.Action, Keyword: query.Keyword, Order: eng.KeywordOrder(query.Keyword)})

	case "DEPTH":
		metrics.Get().RecordKeywordQuery()
		c.reply(Response{Action: query.Action, Keyword: query.Keyword, Depth: eng.KeywordDepth(query.Keyword)})

	case "VALIDATE":
		metrics.Get().RecordKeywordQuery()
		c.reply(Response{Action: query.Action, Keyword: query.Keyword, Valid: eng.IsKeywordValid(query.Keyword)})

	case "RESOLVE":
		items := eng.Resolve(query.TypeID, query.Variant)
		c.reply(Response{Action: query.Action, Items: itemViews(items)})

	default:
		c.hub.logger.Warn("Unknown query action from client: " + query.Action)
		c.reply(Response{Action: query.Action, Error: fmt.Sprintf("unknown action %q", query.Action)})
	}
}

func itemViews(items []*itemtree.Item) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, ItemView{
			Name:    it.Name(),
			TypeID:  it.TypeID(),
			Variant: it.Variant(),
			Order:   it.Order(),
		})
	}
	return views
}

func (c *Client) reply(resp Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		c.hub.logger.Errorf("Failed to serialize response: %v", err)
		return
	}
	select {
	case c.send <- payload:
		metrics.Get().RecordWSMessageOut()
	default:
		c.hub.logger.Warn("Dropping response for slow client")
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
