// Package http mounts the match service's HTTP endpoints. The match
// endpoint speaks the same JSON contract as the stream protocol so
// clients can move between transports without changes.
package http

import (
	stdhttp "net/http"

	"github.com/attunepartners/prefix-match/internal/core/version"
	phttp "github.com/attunepartners/prefix-match/internal/platform/net/http"
	"github.com/attunepartners/prefix-match/internal/platform/net/http/bind"
	"github.com/attunepartners/prefix-match/internal/services/match/domain"
	"github.com/attunepartners/prefix-match/internal/wire"
)

// MatchRequest is the HTTP request body; one of query or queries.
type MatchRequest struct {
	ID      string   `json:"id"`
	Query   string   `json:"query"`
	Queries []string `json:"queries" validate:"omitempty,max=1024,dive,max=65536"`
}

// Mount attaches routes under r.
func Mount(r phttp.Router, svc domain.MatcherPort) {
	h := &handlers{svc: svc}
	r.Post("/v1/match", h.match)
	r.Get("/v1/patterns/stats", h.stats)
	r.Get("/healthz", h.healthz)
}

type handlers struct {
	svc domain.MatcherPort
}

// match answers a single or batch query with the wire response shape;
// the HTTP status mirrors the in-body status.
func (h *handlers) match(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	req, err := bind.ParseJSON[MatchRequest](r)
	if err != nil {
		phttp.JSON(w, stdhttp.StatusBadRequest, wire.ErrorResponse("unknown", err.Error()))
		return
	}

	var queries []string
	switch {
	case len(req.Queries) > 0:
		queries = req.Queries
	case req.Query != "":
		queries = []string{req.Query}
	default:
		phttp.JSON(w, stdhttp.StatusBadRequest, wire.ErrorResponse(req.ID, "No queries provided"))
		return
	}

	var resp wire.Response
	if len(queries) > 1 {
		resp = wire.BatchResponse(req.ID, h.svc.MatchBatch(r.Context(), queries))
	} else {
		resp = wire.SingleResponse(req.ID, h.svc.Match(r.Context(), queries[0]))
	}
	phttp.JSON(w, resp.Status, resp)
}

func (h *handlers) stats(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	phttp.RespondOK(w, r, h.svc.Stats())
}

func (h *handlers) healthz(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
	phttp.JSON(w, stdhttp.StatusOK, map[string]any{
		"status": "ok",
		"build":  version.Info(),
	})
}
