package logicdb

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vilterp/logicdb/pkg/parse"
	"github.com/vilterp/logicdb/pkg/util"
)

// TestServer is a Server on a local port with a connected Client.
type TestServer struct {
	Server     *Server
	Client     *Client
	HTTPServer *httptest.Server
}

// NewTestServer serves the knowledge base given as text on a local port and
// connects a client to it.
func NewTestServer(kbText string, opts Options) (*TestServer, error) {
	kb, err := parse.ParseKnowledgeBase(strings.NewReader(kbText))
	if err != nil {
		return nil, err
	}
	server := NewServer(NewSolver(kb, opts), "")
	httpServer := httptest.NewServer(server.Handler())

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	client, err := NewClient(url)
	if err != nil {
		httpServer.Close()
		return nil, err
	}
	return &TestServer{
		Server:     server,
		Client:     client,
		HTTPServer: httpServer,
	}, nil
}

func (ts *TestServer) Close() {
	ts.Client.Close()
	<-ts.Client.ServerClosed
	ts.Server.Close()
	ts.HTTPServer.Close()
}

type simpleTestQuestion struct {
	question string
	answer   []string
	error    string
}

// runSimpleTestScript asks each question of a test server over the
// kbText knowledge base and checks the answers in order.
func runSimpleTestScript(t *testing.T, kbText string, cases []simpleTestQuestion) *TestServer {
	ts, err := NewTestServer(kbText, Options{})
	if err != nil {
		t.Fatal(err)
	}

	for idx, testCase := range cases {
		answer, err := ts.Client.Ask(testCase.question)
		if util.AssertError(t, idx, testCase.error, err) {
			continue
		}
		if strings.Join(answer, " ") != strings.Join(testCase.answer, " ") {
			t.Fatalf("case %d: expected %v; got %v", idx, testCase.answer, answer)
		}
	}
	return ts
}
