package api

import (
	"context"
	"strconv"

	"github.com/fairsight-ai/fairsight/internal/domain"
)

const apiPrefix = "/api/v1"

// defaultReportRole is used when a report request leaves Role empty.
const defaultReportRole = "executive"

// GetSummary fetches the dashboard summary.
func (c *Client) GetSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	var out domain.DashboardSummary
	if err := c.getJSON(ctx, apiPrefix+"/dashboard/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetModelRisk fetches the per-model risk breakdown.
func (c *Client) GetModelRisk(ctx context.Context) ([]domain.ModelRiskEntry, error) {
	var out []domain.ModelRiskEntry
	if err := c.getJSON(ctx, apiPrefix+"/dashboard/model_risk", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetComplianceTrend fetches the compliance-over-time series.
func (c *Client) GetComplianceTrend(ctx context.Context) ([]domain.ComplianceTrendPoint, error) {
	var out []domain.ComplianceTrendPoint
	if err := c.getJSON(ctx, apiPrefix+"/dashboard/compliance_trend", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BiasDetectionRequest carries the dataset and model metadata for a
// bias-detection submission.
type BiasDetectionRequest struct {
	File               Upload
	ModelName          string
	ModelVersion       string
	TargetVariable     string
	SensitiveAttribute string
	PrivilegedGroup    string
	UnprivilegedGroup  string
}

func (r *BiasDetectionRequest) fields() []formField {
	return []formField{
		{"model_name", r.ModelName},
		{"model_version", r.ModelVersion},
		{"target_variable", r.TargetVariable},
		{"sensitive_attribute", r.SensitiveAttribute},
		{"privileged_group", r.PrivilegedGroup},
		{"unprivileged_group", r.UnprivilegedGroup},
	}
}

// DetectBias submits a dataset for bias detection.
func (c *Client) DetectBias(ctx context.Context, req *BiasDetectionRequest) (*domain.BiasDetectionResult, error) {
	var out domain.BiasDetectionResult
	if err := c.postMultipartJSON(ctx, apiPrefix+"/bias/detect", req.File, req.fields(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExplainRequest carries the dataset and the instance to explain.
type ExplainRequest struct {
	File               Upload
	ModelName          string
	ModelVersion       string
	TargetVariable     string
	SensitiveAttribute string
	InstanceIndex      int
	Role               string
}

func (r *ExplainRequest) fields() []formField {
	return []formField{
		{"model_name", r.ModelName},
		{"model_version", r.ModelVersion},
		{"target_variable", r.TargetVariable},
		{"sensitive_attribute", r.SensitiveAttribute},
		{"instance_index", strconv.Itoa(r.InstanceIndex)},
		{"role", r.Role},
	}
}

// Explain requests a per-instance explanation for the given row of the
// uploaded dataset.
func (c *Client) Explain(ctx context.Context, req *ExplainRequest) (*domain.ExplainabilityResult, error) {
	var out domain.ExplainabilityResult
	if err := c.postMultipartJSON(ctx, apiPrefix+"/explain", req.File, req.fields(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ComplianceReportRequest carries the dataset and metadata for report
// generation.
type ComplianceReportRequest struct {
	File               Upload
	ModelName          string
	ModelVersion       string
	TargetVariable     string
	SensitiveAttribute string
	PrivilegedGroup    string
	UnprivilegedGroup  string
	Role               string
}

func (r *ComplianceReportRequest) fields() []formField {
	role := r.Role
	if role == "" {
		role = defaultReportRole
	}
	return []formField{
		{"model_name", r.ModelName},
		{"model_version", r.ModelVersion},
		{"target_variable", r.TargetVariable},
		{"sensitive_attribute", r.SensitiveAttribute},
		{"privileged_group", r.PrivilegedGroup},
		{"unprivileged_group", r.UnprivilegedGroup},
		{"role", role},
	}
}

// GenerateComplianceReport submits a dataset and returns the generated
// report document as raw bytes. The success payload is opaque binary;
// the error path is classified exactly like the other multipart calls,
// which matches the backend's JSON error encoding.
func (c *Client) GenerateComplianceReport(ctx context.Context, req *ComplianceReportRequest) ([]byte, error) {
	return c.postMultipart(ctx, apiPrefix+"/compliance/generate", req.File, req.fields())
}
