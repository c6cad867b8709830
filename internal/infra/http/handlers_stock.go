package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Spok95/clinic-stock/internal/domain/inventory"
	"github.com/Spok95/clinic-stock/internal/domain/materials"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

func (s *Server) listMaterials(w http.ResponseWriter, r *http.Request) {
	out, err := s.d.Materials.List(r.Context(), materials.ListParams{
		Query: r.URL.Query().Get("q"),
		Skip:  queryInt(r, "skip", 0),
		Limit: queryInt(r, "limit", 100),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	m, err := s.d.Materials.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) createMaterial(w http.ResponseWriter, r *http.Request) {
	var in materials.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	m, err := s.d.Materials.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.audit(r, "create_material", fmt.Sprintf("%s (id %d)", m.Name, m.ID))
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) updateMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	var in materials.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	m, err := s.d.Materials.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.audit(r, "update_material", fmt.Sprintf("%s (id %d)", m.Name, m.ID))
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.d.Materials.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.audit(r, "delete_material", fmt.Sprintf("id %d", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) materialBatches(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	out, err := s.d.Materials.Batches(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var in inventory.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	u := currentUser(r.Context())
	// приход вне заявки разрешён только тем, кто редактирует каталог
	if in.Delta > 0 && !u.Role.Can(vocab.ActionEditMaterials) {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return
	}

	t, err := s.d.Inventory.Apply(r.Context(), u.ID, in)
	if err != nil {
		s.d.Metrics.Rejected(rejectionReason(err))
		s.d.Log.Info("transaction rejected",
			"user_id", u.ID, "batch_id", in.BatchID, "delta", in.Delta, "err", err)
		s.writeError(w, r, err)
		return
	}
	s.d.Metrics.Transaction(t.Delta, in.NarcoticLog != nil)
	s.d.Log.Info("transaction applied",
		"transaction_id", t.ID, "user_id", u.ID, "batch_id", t.BatchID, "delta", t.Delta)
	s.audit(r, "transaction", fmt.Sprintf("batch %d delta %g", t.BatchID, t.Delta))
	writeJSON(w, http.StatusOK, t)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, inventory.ErrInsufficientQuantity):
		return "insufficient_quantity"
	case errors.Is(err, inventory.ErrComplianceRequired):
		return "compliance_required"
	case errors.Is(err, inventory.ErrLogOnPlain):
		return "log_on_plain"
	case errors.Is(err, inventory.ErrBatchMismatch):
		return "batch_mismatch"
	case errors.Is(err, inventory.ErrBatchNotFound):
		return "batch_not_found"
	case errors.Is(err, inventory.ErrZeroDelta):
		return "zero_delta"
	case errors.Is(err, inventory.ErrInvalidQuantity):
		return "invalid_quantity"
	}
	return "other"
}

func (s *Server) narcoticLogs(w http.ResponseWriter, r *http.Request) {
	out, err := s.d.Inventory.NarcoticLogs(r.Context(), queryInt(r, "skip", 0), queryInt(r, "limit", 100))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.d.Dashboard.Stats(r.Context(), s.d.Now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
