package logicdb

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	clog "github.com/vilterp/logicdb/pkg/log"
	"go.uber.org/zap"
)

var ErrConnectionClosed = errors.New("connection to server closed")

// RemoteError is a failure reported by the server for one question.
type RemoteError struct {
	Kind    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Kind)
}

// Client asks questions of a Server over a websocket. It is safe for
// concurrent use.
type Client struct {
	WebSocketConn *websocket.Conn
	URL           string
	// ServerClosed is closed once the connection is gone, whether the
	// server or the client closed it.
	ServerClosed chan struct{}

	mu      sync.Mutex
	writeMu sync.Mutex
	nextID  int
	pending map[int]chan *AskResponse
	closed  bool
}

func NewClient(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}
	client := &Client{
		WebSocketConn: conn,
		URL:           url,
		ServerClosed:  make(chan struct{}),
		pending:       map[int]chan *AskResponse{},
	}
	go client.handleIncoming()
	return client, nil
}

func (c *Client) Close() error {
	return c.WebSocketConn.Close()
}

func (c *Client) handleIncoming() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()
		close(c.ServerClosed)
	}()
	for {
		resp := &AskResponse{}
		if err := c.WebSocketConn.ReadJSON(resp); err != nil {
			clog.L().Debug("client connection ended", zap.String("url", c.URL), zap.Error(err))
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if !ok {
			clog.L().Warn("response for unknown request", zap.Int("id", resp.ID))
			continue
		}
		ch <- resp
	}
}

// Send sends question and waits for the server's response.
func (c *Client) Send(question string) (*AskResponse, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnectionClosed
	}
	id := c.nextID
	c.nextID++
	ch := make(chan *AskResponse, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.WebSocketConn.WriteJSON(&AskRequest{ID: id, Question: question})
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, errors.Wrap(err, "sending question")
	}

	resp, ok := <-ch
	if !ok {
		return nil, ErrConnectionClosed
	}
	return resp, nil
}

// Ask returns the answer to question as formatted predicates.
func (c *Client) Ask(question string) ([]string, error) {
	resp, err := c.Send(question)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &RemoteError{Kind: resp.ErrorKind, Message: resp.Error}
	}
	return resp.Answer, nil
}
