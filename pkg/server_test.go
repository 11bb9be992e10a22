package logicdb

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const familyKB = `PAR(ann,bob)
PAR(bob,cat)
PAR(bob,dan)
GP(x,z) <- PAR(x,y); PAR(y,z)
A(x) <- B(x)
B(x) <- A(x)
`

func TestServerAnswers(t *testing.T) {
	ts := runSimpleTestScript(t, familyKB, []simpleTestQuestion{
		{
			question: "GP(?,?)",
			answer:   []string{"GP(ann,cat)", "GP(ann,dan)"},
		},
		{
			question: "PAR(bob,?)",
			answer:   []string{"PAR(bob,cat)", "PAR(bob,dan)"},
		},
		{
			question: "GP(bob,?)",
			answer:   []string{},
		},
		{
			question: "A(?)",
			error:    "cyclic rule dependency: A -> B -> A (cycle)",
		},
		{
			question: "GP(?)",
			error:    "predicate GP has arity 2, but question GP(?) uses it with 1 terms (arity)",
		},
	})
	defer ts.Close()

	_, err := ts.Client.Ask("GP(")
	require.Error(t, err)
	remote, ok := err.(*RemoteError)
	require.True(t, ok)
	require.Equal(t, KindMalformedQuestion, remote.Kind)
}

func TestServerConcurrentClients(t *testing.T) {
	ts, err := NewTestServer(familyKB, Options{Parallel: true})
	require.NoError(t, err)
	defer ts.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < cap(errs); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			answer, err := ts.Client.Ask("GP(ann,?)")
			if err == nil && strings.Join(answer, " ") != "GP(ann,cat) GP(ann,dan)" {
				err = &RemoteError{Kind: "test", Message: strings.Join(answer, " ")}
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestServerBareTextQuestion(t *testing.T) {
	ts, err := NewTestServer(familyKB, Options{})
	require.NoError(t, err)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.HTTPServer.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("PAR(ann,?)")))
	resp := &AskResponse{}
	require.NoError(t, conn.ReadJSON(resp))
	require.Equal(t, []string{"PAR(ann,bob)"}, resp.Answer)
	require.NotEmpty(t, resp.QueryID)
}

func TestServerMetricsEndpoint(t *testing.T) {
	ts, err := NewTestServer(familyKB, Options{})
	require.NoError(t, err)
	defer ts.Close()

	_, err = ts.Client.Ask("GP(?,?)")
	require.NoError(t, err)

	resp, err := http.Get(ts.HTTPServer.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Contains(t, string(body), "\nasks_total 1\n")
	require.Contains(t, string(body), "\nws_requests_total 1\n")
	require.Contains(t, string(body), "\nknowledge_base_facts 3\n")
}
