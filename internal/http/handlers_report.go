package http

import (
	"fmt"
	"net/http"

	"parkrent/internal/report"
)

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	stats, err := s.buildStats(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	stats, err := s.buildStats(r)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=bao_cao_tai_chinh_%s.csv", stats.GeneratedAt.Format("02-01-2006")))
	if err := report.WriteCSV(w, stats); err != nil {
		writeError(w, err)
	}
}

func (s *Server) handleContractsCSV(w http.ResponseWriter, r *http.Request) {
	contracts, err := s.contracts.ListContracts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=hop_dong.csv")
	if err := report.WriteContractsCSV(w, contracts); err != nil {
		writeError(w, err)
	}
}

const reportCacheKey = "financial-report"

func (s *Server) buildStats(r *http.Request) (report.Stats, error) {
	if stats, ok := s.reportCache.Get(reportCacheKey); ok {
		return stats, nil
	}

	ctx := r.Context()
	contracts, err := s.contracts.ListContracts(ctx)
	if err != nil {
		return report.Stats{}, err
	}
	histories, err := s.payments.AllPayments(ctx)
	if err != nil {
		return report.Stats{}, err
	}

	stats := report.Build(contracts, histories, s.now())
	s.reportCache.Set(reportCacheKey, stats)
	return stats, nil
}
