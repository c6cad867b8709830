package http

import (
	"fmt"
	"net/http"

	"github.com/Spok95/clinic-stock/internal/domain/requests"
)

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	out, err := s.d.Requests.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []requests.Item `json:"items"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	req, err := s.d.Requests.Create(r.Context(), currentUser(r.Context()).ID, body.Items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.audit(r, "create_request", fmt.Sprintf("request #%d, %d items", req.ID, len(req.Items)))
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) approveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	req, err := s.d.Requests.Approve(r.Context(), currentUser(r.Context()).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.d.Log.Info("request approved", "request_id", id, "items", len(req.Items))
	s.audit(r, "approve_request", fmt.Sprintf("request #%d", id))
	writeJSON(w, http.StatusOK, req)
}
