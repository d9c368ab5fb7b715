// Package wire implements the stream JSON protocol: requests are
// concatenated JSON objects over TCP or a unix socket, responses are
// newline-terminated JSON.
package wire

import (
	"encoding/json"

	"github.com/attunepartners/prefix-match/internal/services/match/domain"
)

// Request is a client query: either a single "query" or a "queries"
// batch. A one-element batch is answered in the single-query shape.
type Request struct {
	ID      string   `json:"id"`
	Query   string   `json:"query"`
	Queries []string `json:"queries"`
}

// normalized returns the effective query list and whether the request
// should be answered in batch shape.
func (r *Request) normalized() ([]string, bool) {
	if len(r.Queries) > 0 {
		return r.Queries, len(r.Queries) > 1
	}
	if r.Query != "" {
		return []string{r.Query}, false
	}
	return nil, false
}

// Response is the server reply. Results holds either []domain.MatchOutput
// (single) or []domain.QueryResult (batch).
type Response struct {
	ID      string `json:"id"`
	Status  int    `json:"status"`
	Results any    `json:"results,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusOK and friends are the in-body statuses of the protocol; they
// mirror HTTP codes but travel inside a successful stream write.
const (
	StatusOK       = 200
	StatusBadQuery = 400
	StatusNoMatch  = 404
)

func ErrorResponse(id, msg string) Response {
	if id == "" {
		id = "unknown"
	}
	return Response{ID: id, Status: StatusBadQuery, Error: msg}
}

func SingleResponse(id string, matches []domain.MatchOutput) Response {
	status := StatusOK
	if len(matches) == 0 {
		status = StatusNoMatch
		matches = []domain.MatchOutput{}
	}
	return Response{ID: id, Status: status, Results: matches}
}

func BatchResponse(id string, results []domain.QueryResult) Response {
	status := StatusNoMatch
	for _, r := range results {
		if len(r.Matches) > 0 {
			status = StatusOK
			break
		}
	}
	return Response{ID: id, Status: status, Results: results}
}

// encode marshals r for the stream; used by tests as well as the server.
func encode(r Response) ([]byte, error) { return json.Marshal(r) }
