package infrastructure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"apimatic-validator-mcp/internal/archive"
	"apimatic-validator-mcp/internal/domain"
)

// uploadCapture records what the mock server received.
type uploadCapture struct {
	method       string
	path         string
	auth         string
	userAgent    string
	fileName     string
	fileType     string
	exportFormat string
	entries      []archive.Entry
}

// mockAPIMaticServer creates a mock APIMatic server that decodes the upload
// and replies with the given status and body.
func mockAPIMaticServer(t *testing.T, status int, body string, capture *uploadCapture) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capture.method = r.Method
		capture.path = r.URL.Path
		capture.auth = r.Header.Get("Authorization")
		capture.userAgent = r.Header.Get("User-Agent")

		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		capture.exportFormat = r.FormValue("exportFormat")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		capture.fileName = header.Filename
		capture.fileType = header.Header.Get("Content-Type")

		data, _ := io.ReadAll(file)
		capture.entries, err = archive.Read(data)
		if err != nil {
			t.Errorf("uploaded file is not a zip: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

// newTestClient builds a client authenticated the same way the server does.
func newTestClient(t *testing.T, baseURL string) *APIMaticClient {
	t.Helper()
	am := domain.NewAuthenticationManager(&domain.Credentials{
		APIKey:    "test-key",
		UserAgent: domain.DefaultUserAgent,
	})
	httpClient, err := am.GetAuthenticatedClient(0)
	if err != nil {
		t.Fatalf("failed to create http client: %v", err)
	}
	return NewAPIMaticClient(baseURL, "", httpClient)
}

func TestNewAPIMaticClient(t *testing.T) {
	client := NewAPIMaticClient("https://api.apimatic.io/", "", http.DefaultClient)

	if client.BaseURL() != "https://api.apimatic.io" {
		t.Errorf("expected trailing slash trimmed, got %s", client.BaseURL())
	}
	if client.exportFormat != "APIMATIC" {
		t.Errorf("expected default export format APIMATIC, got %s", client.exportFormat)
	}
}

func TestAPIMaticClient_Validate(t *testing.T) {
	capture := &uploadCapture{}
	server := mockAPIMaticServer(t, http.StatusOK,
		`{"id":"t-1","importSummary":{"valid": true}}`, capture)
	defer server.Close()

	spec := "openapi: 3.0.0\ninfo:\n  title: X\n  version: '1'\npaths: {}"
	payload, err := archive.Build(spec, true)
	if err != nil {
		t.Fatalf("archive.Build() error = %v", err)
	}

	summary, err := newTestClient(t, server.URL).Validate(context.Background(), payload)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if string(summary) != `{"valid": true}` {
		t.Errorf("expected summary {\"valid\": true}, got %s", string(summary))
	}

	if capture.method != http.MethodPost {
		t.Errorf("expected POST, got %s", capture.method)
	}
	if capture.path != "/transformations/transform-via-file" {
		t.Errorf("expected transform-via-file path, got %s", capture.path)
	}
	if capture.auth != "X-Auth-Key test-key" {
		t.Errorf("expected X-Auth-Key authorization, got %s", capture.auth)
	}
	if capture.userAgent != "apimatic-validator-mcp/1.0" {
		t.Errorf("expected user agent apimatic-validator-mcp/1.0, got %s", capture.userAgent)
	}
	if capture.fileName != "api-spec.zip" {
		t.Errorf("expected filename api-spec.zip, got %s", capture.fileName)
	}
	if capture.fileType != "application/zip" {
		t.Errorf("expected content type application/zip, got %s", capture.fileType)
	}
	if capture.exportFormat != "APIMATIC" {
		t.Errorf("expected exportFormat APIMATIC, got %s", capture.exportFormat)
	}
	if len(capture.entries) != 2 || capture.entries[0].Name != "openapi.yaml" || string(capture.entries[0].Content) != spec {
		t.Errorf("unexpected uploaded archive: %+v", capture.entries)
	}
}

func TestAPIMaticClient_Validate_MissingSummary(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "field absent", body: `{"id":"t-1"}`},
		{name: "field null", body: `{"id":"t-1","importSummary":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mockAPIMaticServer(t, http.StatusOK, tt.body, &uploadCapture{})
			defer server.Close()

			payload, _ := archive.Build("{}", false)
			summary, err := newTestClient(t, server.URL).Validate(context.Background(), payload)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !summary.IsAbsent() {
				t.Errorf("expected absent summary, got %s", string(summary))
			}
		})
	}
}

func TestAPIMaticClient_Validate_APIError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantResult string
	}{
		{
			name:       "invalid specification",
			status:     http.StatusBadRequest,
			body:       `{"message":"The provided file is not a valid OpenAPI document"}`,
			wantResult: `{"message":"The provided file is not a valid OpenAPI document"}`,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"message":"Invalid API key"}`,
			wantResult: `{"message":"Invalid API key"}`,
		},
		{
			name:   "non-json error",
			status: http.StatusInternalServerError,
			body:   "internal failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mockAPIMaticServer(t, tt.status, tt.body, &uploadCapture{})
			defer server.Close()

			payload, _ := archive.Build("{}", false)
			_, err := newTestClient(t, server.URL).Validate(context.Background(), payload)

			var apiErr *domain.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *domain.APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if string(apiErr.Result) != tt.wantResult {
				t.Errorf("expected result %q, got %q", tt.wantResult, string(apiErr.Result))
			}
		})
	}
}

func TestAPIMaticClient_Validate_UndecodableSuccess(t *testing.T) {
	server := mockAPIMaticServer(t, http.StatusOK, "<html>ok</html>", &uploadCapture{})
	defer server.Close()

	payload, _ := archive.Build("{}", false)
	_, err := newTestClient(t, server.URL).Validate(context.Background(), payload)
	if err == nil {
		t.Fatal("expected decode error")
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		t.Error("expected an ordinary error, not *domain.APIError")
	}
}

func TestAPIMaticClient_Validate_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	payload, _ := archive.Build("{}", false)
	_, err := newTestClient(t, baseURL).Validate(context.Background(), payload)
	if err == nil {
		t.Fatal("expected connection error")
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		t.Error("expected transport failure, not *domain.APIError")
	}
}

func TestAPIMaticClient_Validate_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	payload, _ := archive.Build("{}", false)
	_, err := newTestClient(t, server.URL).Validate(ctx, payload)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestAPIMaticClient_Validate_CustomExportFormat(t *testing.T) {
	capture := &uploadCapture{}
	server := mockAPIMaticServer(t, http.StatusOK, `{"importSummary":{}}`, capture)
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.exportFormat = "OpenApi3Json"

	payload, _ := archive.Build("{}", false)
	if _, err := client.Validate(context.Background(), payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if capture.exportFormat != "OpenApi3Json" {
		t.Errorf("expected exportFormat OpenApi3Json, got %s", capture.exportFormat)
	}
}
