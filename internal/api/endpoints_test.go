package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fairsight-ai/fairsight/internal/domain"
)

// recordedForm captures the multipart parts of one request in wire
// order.
type recordedForm struct {
	order  []string
	values map[string]string
	file   string // filename of the file part
}

func recordMultipart(t *testing.T, r *http.Request) *recordedForm {
	t.Helper()
	reader, err := r.MultipartReader()
	if err != nil {
		t.Fatalf("MultipartReader() error = %v", err)
	}
	form := &recordedForm{values: make(map[string]string)}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart() error = %v", err)
		}
		form.order = append(form.order, part.FormName())
		value, _ := io.ReadAll(part)
		if part.FileName() != "" {
			form.file = part.FileName()
		} else {
			form.values[part.FormName()] = string(value)
		}
	}
	return form
}

func biasRequest() *BiasDetectionRequest {
	return &BiasDetectionRequest{
		File:               Upload{Filename: "hiring.csv", Reader: strings.NewReader("hired,gender\n1,Male\n")},
		ModelName:          "m1",
		ModelVersion:       "1.0",
		TargetVariable:     "hired",
		SensitiveAttribute: "gender",
		PrivilegedGroup:    "Male",
		UnprivilegedGroup:  "Female",
	}
}

func TestDetectBias_FieldOrder(t *testing.T) {
	var form *recordedForm
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/bias/detect" {
			t.Errorf("path = %s", r.URL.Path)
		}
		form = recordMultipart(t, r)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model_name":"m1","audit_status":"NON-COMPLIANT","metrics":{"disparate_impact_ratio":0.72}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.DetectBias(context.Background(), biasRequest())
	if err != nil {
		t.Fatalf("DetectBias() error = %v", err)
	}

	want := []string{"file", "model_name", "model_version", "target_variable",
		"sensitive_attribute", "privileged_group", "unprivileged_group"}
	if len(form.order) != len(want) {
		t.Fatalf("form has %d parts (%v), want %d", len(form.order), form.order, len(want))
	}
	for i, name := range want {
		if form.order[i] != name {
			t.Errorf("part[%d] = %q, want %q", i, form.order[i], name)
		}
	}
	if form.file != "hiring.csv" {
		t.Errorf("file part filename = %q", form.file)
	}
	if form.values["privileged_group"] != "Male" || form.values["unprivileged_group"] != "Female" {
		t.Errorf("group fields = %v", form.values)
	}

	if result.AuditStatus != domain.AuditStatusNonCompliant {
		t.Errorf("AuditStatus = %s", result.AuditStatus)
	}
	if result.Metrics.DisparateImpactRatio != 0.72 {
		t.Errorf("DisparateImpactRatio = %v", result.Metrics.DisparateImpactRatio)
	}
}

func TestDetectBias_ServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"missing column"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.DetectBias(context.Background(), biasRequest())

	apiErr := asAPIError(t, err)
	if apiErr.Status != 422 {
		t.Errorf("Status = %d, want 422", apiErr.Status)
	}
	if apiErr.Message != "missing column" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "missing column")
	}
}

func TestExplain_StringifiedIndex(t *testing.T) {
	var form *recordedForm
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/explain" {
			t.Errorf("path = %s", r.URL.Path)
		}
		form = recordMultipart(t, r)
		w.Write([]byte(`{"model_name":"m1","instance_index":3,"prediction":0.67}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.Explain(context.Background(), &ExplainRequest{
		File:               Upload{Filename: "hiring.csv", Reader: strings.NewReader("hired\n1\n")},
		ModelName:          "m1",
		ModelVersion:       "1.0",
		TargetVariable:     "hired",
		SensitiveAttribute: "gender",
		InstanceIndex:      3,
		Role:               "analyst",
	})
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}

	if form.values["instance_index"] != "3" {
		t.Errorf("instance_index = %q, want the stringified integer \"3\"", form.values["instance_index"])
	}
	wantOrder := []string{"file", "model_name", "model_version", "target_variable",
		"sensitive_attribute", "instance_index", "role"}
	for i, name := range wantOrder {
		if form.order[i] != name {
			t.Errorf("part[%d] = %q, want %q", i, form.order[i], name)
		}
	}
	if result.Prediction != 0.67 {
		t.Errorf("Prediction = %v", result.Prediction)
	}
}

func TestGenerateComplianceReport_Binary(t *testing.T) {
	document := []byte("%PDF-1.4\nreport body\n%%EOF\n")
	var form *recordedForm
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		form = recordMultipart(t, r)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(document)
	}))
	defer srv.Close()

	c := New(srv.URL)
	got, err := c.GenerateComplianceReport(context.Background(), &ComplianceReportRequest{
		File:               Upload{Filename: "hiring.csv", Reader: strings.NewReader("hired\n1\n")},
		ModelName:          "m1",
		ModelVersion:       "1.0",
		TargetVariable:     "hired",
		SensitiveAttribute: "gender",
		PrivilegedGroup:    "Male",
		UnprivilegedGroup:  "Female",
		// Role left empty on purpose
	})
	if err != nil {
		t.Fatalf("GenerateComplianceReport() error = %v", err)
	}

	if !bytes.Equal(got, document) {
		t.Errorf("document = %q, want the raw body unparsed", got)
	}
	if form.values["role"] != "executive" {
		t.Errorf("role = %q, want the default \"executive\"", form.values["role"])
	}
	if form.order[len(form.order)-1] != "role" {
		t.Errorf("role must be the last field, got order %v", form.order)
	}
}

func TestGenerateComplianceReport_ErrorIsJSON(t *testing.T) {
	// The error path is decoded as JSON even though the success path is
	// binary; this matches the backend's actual error encoding.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"dataset too small"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GenerateComplianceReport(context.Background(), &ComplianceReportRequest{
		File: Upload{Filename: "hiring.csv", Reader: strings.NewReader("hired\n")},
	})

	apiErr := asAPIError(t, err)
	if apiErr.Status != 400 || apiErr.Message != "dataset too small" {
		t.Errorf("got %+v", apiErr)
	}
}

func TestMultipartContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType := r.Header.Get("Content-Type")
		if !strings.HasPrefix(mediaType, "multipart/form-data; boundary=") {
			t.Errorf("Content-Type = %q", mediaType)
		}
		// Stdlib-side parse must agree with our hand-ordered writer.
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
		}
		if got := r.FormValue("model_name"); got != "m1" {
			t.Errorf("model_name = %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.DetectBias(context.Background(), biasRequest()); err != nil {
		t.Fatalf("DetectBias() error = %v", err)
	}
}
