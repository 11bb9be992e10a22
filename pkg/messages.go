package logicdb

// AskRequest is sent by clients as a websocket text message.
type AskRequest struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
}

// AskResponse answers the AskRequest with the same ID. Exactly one of
// Answer and Error is meaningful; an empty Answer with no Error means
// nothing matched.
type AskResponse struct {
	ID        int      `json:"id"`
	QueryID   string   `json:"query_id"`
	Answer    []string `json:"answer"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
}
