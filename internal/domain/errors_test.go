package domain

import (
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "transport-level",
			err:  ErrTimeout(),
			want: "timeout: Request timeout - server may be unavailable",
		},
		{
			name: "server-reported",
			err:  ErrServer(422, "missing column", nil),
			want: "server (HTTP 422): missing column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrServer_FallbackMessage(t *testing.T) {
	err := ErrServer(503, "", nil)

	if err.Message != "HTTP 503: Service Unavailable" {
		t.Errorf("Message = %q, want status-line fallback", err.Message)
	}
	if err.RawBody == nil {
		t.Error("RawBody should never be nil")
	}
}

func TestTransportErrors_ZeroStatus(t *testing.T) {
	for _, err := range []*APIError{ErrTimeout(), ErrConnect(), ErrNetwork(), ErrMalformed()} {
		if err.Status != 0 {
			t.Errorf("%s: Status = %d, want 0", err.Kind, err.Status)
		}
	}
}

func TestConstructors_Deterministic(t *testing.T) {
	// Classifying the same failure twice must produce equal
	// {status, message} pairs.
	a, b := ErrConnect(), ErrConnect()
	if a.Status != b.Status || a.Message != b.Message {
		t.Errorf("ErrConnect() not deterministic: %+v vs %+v", a, b)
	}
}
