package logicdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vilterp/logicdb/pkg/lang"
	clog "github.com/vilterp/logicdb/pkg/log"
)

type connectionID int

type connection struct {
	clientConn *websocket.Conn
	id         connectionID
	server     *Server
	responses  chan *AskResponse
	context    context.Context
	done       chan struct{}
}

func newConnection(wsConn *websocket.Conn, server *Server, ID int) *connection {
	ctx := context.WithValue(context.Background(), clog.ConnIDKey, ID)
	conn := &connection{
		clientConn: wsConn,
		id:         connectionID(ID),
		server:     server,
		responses:  make(chan *AskResponse),
		context:    ctx,
		done:       make(chan struct{}),
	}
	go conn.writeResponsesToSocket()
	return conn
}

func (conn *connection) Ctx() context.Context {
	return conn.context
}

func (conn *connection) writeResponsesToSocket() {
	defer close(conn.done)
	for resp := range conn.responses {
		if err := conn.clientConn.WriteJSON(resp); err != nil {
			clog.Println(conn, "error writing to socket:", err)
			break
		}
	}
	// Drain so handleRequests never blocks on a dead socket.
	for range conn.responses {
	}
}

func (conn *connection) handleRequests() {
	clog.Println(conn, "initiated from", conn.clientConn.RemoteAddr())
	defer func() {
		close(conn.responses)
		<-conn.done
		conn.clientConn.Close()
		conn.server.removeConn(conn)
	}()
	for {
		_, message, readErr := conn.clientConn.ReadMessage()
		if readErr != nil {
			clog.Println(conn, "terminated:", readErr)
			return
		}
		request := &AskRequest{}
		if err := json.Unmarshal(message, request); err != nil {
			// Bare text is taken as the question itself.
			request = &AskRequest{Question: string(message)}
		}
		conn.responses <- conn.answer(request)
	}
}

func (conn *connection) answer(request *AskRequest) *AskResponse {
	conn.server.solver.metrics.wsRequests.Inc()
	queryID := uuid.New().String()
	ctx := context.WithValue(conn.context, clog.RequestIDKey, request.ID)
	ctx = context.WithValue(ctx, clog.QueryIDKey, queryID)

	startTime := time.Now()
	answer, err := conn.server.solver.AskString(ctx, request.Question)
	resp := &AskResponse{
		ID:      request.ID,
		QueryID: queryID,
	}
	if err != nil {
		resp.Error = err.Error()
		resp.ErrorKind = ErrorKind(err)
		clog.Printf(clog.Tagged{Context: ctx}, "question %q failed: %v", request.Question, err)
		return resp
	}
	resp.Answer = lang.Strings(answer)
	clog.Printf(
		clog.Tagged{Context: ctx}, "answered %s with %d predicates in %s",
		request.Question, len(answer), time.Since(startTime),
	)
	return resp
}
