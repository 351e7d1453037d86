package domain

// AuditStatus is the compliance verdict attached to an audited model.
type AuditStatus string

const (
	AuditStatusCompliant    AuditStatus = "COMPLIANT"
	AuditStatusNonCompliant AuditStatus = "NON-COMPLIANT"
)

// DashboardSummary is the aggregate view returned by the dashboard
// summary endpoint.
type DashboardSummary struct {
	TotalModelsAudited   int     `json:"total_models_audited"`
	CompliantModels      int     `json:"compliant_models"`
	NonCompliantModels   int     `json:"non_compliant_models"`
	AverageFairnessScore float64 `json:"average_fairness_score"`
	ReportsGenerated     int     `json:"reports_generated"`
	LastAuditAt          string  `json:"last_audit_at,omitempty"`
}

// ModelRiskEntry is one row of the per-model risk breakdown.
type ModelRiskEntry struct {
	ModelName     string      `json:"model_name"`
	ModelVersion  string      `json:"model_version"`
	RiskLevel     string      `json:"risk_level"`
	FairnessScore float64     `json:"fairness_score"`
	AuditStatus   AuditStatus `json:"audit_status"`
}

// ComplianceTrendPoint is one point of the compliance-over-time series.
type ComplianceTrendPoint struct {
	Period         string  `json:"period"`
	ComplianceRate float64 `json:"compliance_rate"`
	AuditCount     int     `json:"audit_count"`
}

// BiasMetrics holds the fairness metrics computed by the backend for a
// single sensitive attribute. The values are consumed as-is; nothing in
// this codebase computes them.
type BiasMetrics struct {
	StatisticalParityDifference float64 `json:"statistical_parity_difference"`
	DisparateImpactRatio        float64 `json:"disparate_impact_ratio"`
	EqualOpportunityDifference  float64 `json:"equal_opportunity_difference"`
}

// BiasDetectionResult is the backend's response to a bias-detection
// submission.
type BiasDetectionResult struct {
	ModelName          string      `json:"model_name"`
	ModelVersion       string      `json:"model_version"`
	TargetVariable     string      `json:"target_variable"`
	SensitiveAttribute string      `json:"sensitive_attribute"`
	AuditStatus        AuditStatus `json:"audit_status"`
	Metrics            BiasMetrics `json:"metrics"`
	RowsAnalyzed       int         `json:"rows_analyzed"`
	Summary            string      `json:"summary,omitempty"`
}

// FeatureContribution is one feature's contribution to a single
// prediction.
type FeatureContribution struct {
	Feature      string  `json:"feature"`
	Value        string  `json:"value"`
	Contribution float64 `json:"contribution"`
}

// ExplainabilityResult is the backend's per-instance explanation.
type ExplainabilityResult struct {
	ModelName     string                `json:"model_name"`
	ModelVersion  string                `json:"model_version"`
	InstanceIndex int                   `json:"instance_index"`
	BaseValue     float64               `json:"base_value"`
	Prediction    float64               `json:"prediction"`
	Contributions []FeatureContribution `json:"contributions"`
	Narrative     string                `json:"narrative,omitempty"`
}
