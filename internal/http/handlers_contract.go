package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	contract, err := req.toContract()
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := s.contracts.CreateContract(r.Context(), contract)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toContractResponse(created, s.now()))
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid contract id")
		return
	}

	contract, err := s.contracts.GetContract(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(contract, s.now()))
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := s.contracts.ListContracts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	today := s.now()
	resp := make([]contractResponse, 0, len(contracts))
	for _, c := range contracts {
		resp = append(resp, toContractResponse(c, today))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid contract id")
		return
	}

	var req contractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	contract, err := req.toContract()
	if err != nil {
		writeError(w, err)
		return
	}
	contract.ID = id

	updated, err := s.contracts.UpdateContract(r.Context(), contract)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(updated, s.now()))
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid contract id")
		return
	}

	if err := s.contracts.DeleteContract(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	count, err := s.contracts.RecalculateAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	reconciliationsRun.Inc()
	writeJSON(w, http.StatusOK, map[string]int{"recalculated": count})
}
