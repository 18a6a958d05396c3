package http

import (
	"net/http"

	applog "chitieu/internal/log"
	"chitieu/internal/report"
)

type reportResponse struct {
	Report  report.Report `json:"report"`
	Summary string        `json:"summary"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())
	now := s.now()

	year, month, err := parseYearMonth(r, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := s.reports.Build(r.Context(), s.userID, year, month, now)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to build report",
			applog.FieldOperation, applog.OpReport,
			applog.FieldYear, year,
			applog.FieldMonth, month,
			applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, reportResponse{Report: rep, Summary: report.FormatSummary(rep)})
}
