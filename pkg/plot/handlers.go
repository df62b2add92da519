package plot

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/raykavin/vitaltrend/pkg/chart"
)

// handleHealth reports the uptime and the number of charts available
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
		"charts": len(s.provider.ChartIDs()),
	})
}

// handleChartIDs lists the chart ids
func (s *Server) handleChartIDs(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.provider.ChartIDs())
}

// handleChart returns one chart with its datasets and legend
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.chart(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, c)
}

// handleChartCSV handles CSV export of a chart
func (s *Server) handleChartCSV(w http.ResponseWriter, r *http.Request) {
	c, ok := s.chart(w, r)
	if !ok {
		return
	}

	// Create CSV in memory
	buffer := bytes.NewBuffer(nil)
	csvWriter := csv.NewWriter(buffer)

	if err := csvWriter.Write(c.Header()); err != nil {
		s.log.Error("Failed writing CSV header: ", err)
		http.Error(w, "Failed to generate CSV", http.StatusInternalServerError)
		return
	}

	if err := csvWriter.WriteAll(c.Rows()); err != nil {
		s.log.Error("Failed writing CSV data: ", err)
		http.Error(w, "Failed to generate CSV", http.StatusInternalServerError)
		return
	}

	// Set headers for CSV download
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment;filename="+c.ID+".csv")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buffer.Bytes()); err != nil {
		s.log.Error("Failed writing CSV response: ", err)
	}
}

// handleSegments returns the dose segments of the weight chart
func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := s.provider.Segments(r.Context())
	if err != nil {
		s.log.Error("Failed to compute segments: ", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, segments)
}

// handleMedicationLevels returns the estimated medication levels
func (s *Server) handleMedicationLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.provider.MedicationLevels(r.Context())
	if err != nil {
		s.log.Error("Failed to compute medication levels: ", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, levels)
}

// chart loads the chart named by the route, writing the error response when
// it cannot
func (s *Server) chart(w http.ResponseWriter, r *http.Request) (chart.Chart, bool) {
	id := mux.Vars(r)["id"]

	c, err := s.provider.Chart(r.Context(), id)
	if errors.Is(err, ErrChartNotFound) {
		http.Error(w, "chart not found", http.StatusNotFound)
		return chart.Chart{}, false
	}
	if err != nil {
		s.log.WithField("chart", id).Error("Failed to build chart: ", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return chart.Chart{}, false
	}

	return c, true
}

func (s *Server) writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.log.Error("JSON encoding failed: ", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
