package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"apimatic-validator-mcp/internal/domain"
)

const (
	// TransformViaFilePath is the APIMatic transformation endpoint.
	TransformViaFilePath = "/transformations/transform-via-file"

	// UploadFieldName is the multipart field carrying the archive.
	UploadFieldName = "file"
	// UploadFileName is the file name announced for the archive.
	UploadFileName = "api-spec.zip"
	// UploadContentType is the media type of the archive part.
	UploadContentType = "application/zip"
	// ExportFormatFieldName selects the transformation target.
	ExportFormatFieldName = "exportFormat"
)

// APIMaticClient handles APIMatic transformation API interactions.
// It implements the domain.ValidationClient interface.
type APIMaticClient struct {
	baseURL      string
	exportFormat string
	httpClient   *http.Client
}

// NewAPIMaticClient creates a new APIMatic API client.
// The baseURL should be the root URL of the API (e.g., "https://api.apimatic.io").
// The httpClient should be an authenticated client from the AuthenticationManager.
func NewAPIMaticClient(baseURL, exportFormat string, httpClient *http.Client) *APIMaticClient {
	if exportFormat == "" {
		exportFormat = domain.DefaultExportFormat
	}
	return &APIMaticClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		exportFormat: exportFormat,
		httpClient:   httpClient,
	}
}

// BaseURL returns the configured base URL for the APIMatic API.
func (c *APIMaticClient) BaseURL() string {
	return c.baseURL
}

// TransformationResult is the part of the transformation response this client reads.
type TransformationResult struct {
	ID            string                   `json:"id,omitempty"`
	ImportSummary domain.ValidationSummary `json:"importSummary"`
}

// Validate uploads the archive to the transform-via-file endpoint and
// returns the import summary of the transformation.
// A non-2xx response is returned as *domain.APIError. A successful response
// without an importSummary yields a nil summary and no error.
func (c *APIMaticClient) Validate(ctx context.Context, archive []byte) (domain.ValidationSummary, error) {
	body, contentType, err := c.encodeUpload(archive)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + TransformViaFilePath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	// Execute the request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error status codes
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewAPIError(resp.StatusCode, respBody)
	}

	var result TransformationResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.ImportSummary, nil
}

// encodeUpload builds the multipart body: the archive as a file part and the
// export format as a plain field.
func (c *APIMaticClient) encodeUpload(archive []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, UploadFieldName, UploadFileName))
	header.Set("Content-Type", UploadContentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(archive); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}

	if err := mw.WriteField(ExportFormatFieldName, c.exportFormat); err != nil {
		return nil, "", fmt.Errorf("failed to write export format: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return body, mw.FormDataContentType(), nil
}
