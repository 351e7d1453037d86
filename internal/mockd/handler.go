// Package mockd implements a mock analysis backend exposing the same
// wire contract as the real service, with representative canned
// results. It exists for local development of the dashboard CLI and for
// integration tests; it computes nothing.
package mockd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fairsight-ai/fairsight/internal/domain"
)

const maxUploadBytes = 32 << 20

// Handler serves the six backend endpoints.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Routes mounts the endpoints under /api/v1.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dashboard/summary", h.GetSummary)
		r.Get("/dashboard/model_risk", h.GetModelRisk)
		r.Get("/dashboard/compliance_trend", h.GetComplianceTrend)
		r.Post("/bias/detect", h.DetectBias)
		r.Post("/explain", h.Explain)
		r.Post("/compliance/generate", h.GenerateReport)
	})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.DashboardSummary{
		TotalModelsAudited:   12,
		CompliantModels:      9,
		NonCompliantModels:   3,
		AverageFairnessScore: 0.82,
		ReportsGenerated:     27,
		LastAuditAt:          "2026-08-28T14:05:00Z",
	})
}

func (h *Handler) GetModelRisk(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []domain.ModelRiskEntry{
		{ModelName: "credit-scoring", ModelVersion: "2.1", RiskLevel: "HIGH", FairnessScore: 0.61, AuditStatus: domain.AuditStatusNonCompliant},
		{ModelName: "hiring-screen", ModelVersion: "1.4", RiskLevel: "MEDIUM", FairnessScore: 0.78, AuditStatus: domain.AuditStatusCompliant},
		{ModelName: "churn-predictor", ModelVersion: "3.0", RiskLevel: "LOW", FairnessScore: 0.93, AuditStatus: domain.AuditStatusCompliant},
	})
}

func (h *Handler) GetComplianceTrend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []domain.ComplianceTrendPoint{
		{Period: "2026-05", ComplianceRate: 0.70, AuditCount: 10},
		{Period: "2026-06", ComplianceRate: 0.74, AuditCount: 15},
		{Period: "2026-07", ComplianceRate: 0.79, AuditCount: 14},
		{Period: "2026-08", ComplianceRate: 0.75, AuditCount: 12},
	})
}

func (h *Handler) DetectBias(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseUpload(w, r,
		"model_name", "model_version", "target_variable",
		"sensitive_attribute", "privileged_group", "unprivileged_group")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, domain.BiasDetectionResult{
		ModelName:          form["model_name"],
		ModelVersion:       form["model_version"],
		TargetVariable:     form["target_variable"],
		SensitiveAttribute: form["sensitive_attribute"],
		AuditStatus:        domain.AuditStatusNonCompliant,
		Metrics: domain.BiasMetrics{
			StatisticalParityDifference: -0.18,
			DisparateImpactRatio:        0.72,
			EqualOpportunityDifference:  -0.11,
		},
		RowsAnalyzed: 4820,
		Summary: fmt.Sprintf("Disparate impact detected for %s between %s and %s",
			form["sensitive_attribute"], form["privileged_group"], form["unprivileged_group"]),
	})
}

func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseUpload(w, r,
		"model_name", "model_version", "target_variable",
		"sensitive_attribute", "instance_index", "role")
	if !ok {
		return
	}

	index, err := strconv.Atoi(form["instance_index"])
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "instance_index must be an integer")
		return
	}

	writeJSON(w, http.StatusOK, domain.ExplainabilityResult{
		ModelName:     form["model_name"],
		ModelVersion:  form["model_version"],
		InstanceIndex: index,
		BaseValue:     0.31,
		Prediction:    0.67,
		Contributions: []domain.FeatureContribution{
			{Feature: form["sensitive_attribute"], Value: "Female", Contribution: -0.12},
			{Feature: "years_experience", Value: "7", Contribution: 0.28},
			{Feature: "education_level", Value: "Masters", Contribution: 0.20},
		},
		Narrative: fmt.Sprintf("Prediction for row %d driven primarily by years_experience", index),
	})
}

func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseUpload(w, r,
		"model_name", "model_version", "target_variable",
		"sensitive_attribute", "privileged_group", "unprivileged_group", "role")
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", form["model_name"]+"-compliance-report.pdf"))
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%%PDF-1.4\n%% fairsight mock compliance report: %s %s (%s audience)\n%%%%EOF\n",
		form["model_name"], form["model_version"], form["role"])
}

// parseUpload validates a multipart submission: the file part plus
// every listed scalar field must be present and non-empty. On
// violation it writes a 422 with a JSON message and returns ok=false.
func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request, fields ...string) (map[string]string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid multipart form")
		return nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "missing required field: file")
		return nil, false
	}
	defer file.Close()

	h.logger.Info("dataset received",
		slog.String("path", r.URL.Path),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
	)

	form := make(map[string]string, len(fields))
	for _, name := range fields {
		value := r.FormValue(name)
		if value == "" {
			writeError(w, http.StatusUnprocessableEntity, "missing required field: "+name)
			return nil, false
		}
		form[name] = value
	}
	return form, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
