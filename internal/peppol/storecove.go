package peppol

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fakturlu/faktur-accounting/internal/model"
)

const (
	DefaultStorecoveURL = "https://api.storecove.com/api/v2"
	DefaultTimeout      = 30 * time.Second
)

// StorecoveClient submits documents through the Storecove REST API
type StorecoveClient struct {
	http          *resty.Client
	apiKey        string
	legalEntityID int64
}

// StorecoveOption configures the client
type StorecoveOption func(*storecoveConfig)

type storecoveConfig struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// WithBaseURL sets a custom API URL
func WithBaseURL(url string) StorecoveOption {
	return func(cfg *storecoveConfig) {
		if url != "" {
			cfg.baseURL = url
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) StorecoveOption {
	return func(cfg *storecoveConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) StorecoveOption {
	return func(cfg *storecoveConfig) {
		cfg.httpClient = c
	}
}

// NewStorecoveClient creates a client for one legal entity
func NewStorecoveClient(apiKey string, legalEntityID int64, opts ...StorecoveOption) *StorecoveClient {
	cfg := &storecoveConfig{
		baseURL: DefaultStorecoveURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var rc *resty.Client
	if cfg.httpClient != nil {
		rc = resty.NewWithClient(cfg.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(cfg.baseURL, "/")).
		SetTimeout(cfg.timeout).
		SetAuthToken(apiKey).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &StorecoveClient{
		http:          rc,
		apiKey:        apiKey,
		legalEntityID: legalEntityID,
	}
}

// ProviderName implements AccessPoint
func (c *StorecoveClient) ProviderName() string { return ProviderStorecove }

// IsConfigured reports whether credentials are present
func (c *StorecoveClient) IsConfigured() bool {
	return c.apiKey != "" && c.legalEntityID > 0
}

type submissionRequest struct {
	LegalEntityID int64             `json:"legalEntityId"`
	Routing       submissionRouting `json:"routing"`
	Document      submissionDoc     `json:"document"`
}

type submissionRouting struct {
	EIdentifiers []eIdentifier `json:"eIdentifiers"`
	Emails       []string      `json:"emails"`
}

type eIdentifier struct {
	Scheme string `json:"scheme"`
	ID     string `json:"id"`
}

type submissionDoc struct {
	DocumentType    string          `json:"documentType"`
	RawDocumentData rawDocumentData `json:"rawDocumentData"`
}

type rawDocumentData struct {
	Document      string `json:"document"`
	Parse         bool   `json:"parse"`
	ParseStrategy string `json:"parseStrategy"`
}

type submissionResponse struct {
	GUID string `json:"guid"`
}

type submissionStatus struct {
	GUID   string `json:"guid"`
	Status string `json:"status"`
}

type apiErrors struct {
	Errors []struct {
		Source  string `json:"source"`
		Details string `json:"details"`
	} `json:"errors"`
}

func (e apiErrors) message() string {
	parts := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		if item.Source != "" {
			parts = append(parts, item.Source+": "+item.Details)
		} else {
			parts = append(parts, item.Details)
		}
	}
	return strings.Join(parts, "; ")
}

// SendInvoice implements AccessPoint
func (c *StorecoveClient) SendInvoice(ctx context.Context, inv *model.InvoiceSnapshot, xml []byte) (*SendResult, error) {
	if !c.IsConfigured() {
		return nil, model.ErrProviderNotConfigured
	}
	receiver, err := ParseParticipantID(inv.Client.PeppolID)
	if err != nil {
		return &SendResult{ErrorMessage: "invalid document: " + err.Error()}, nil
	}

	body := submissionRequest{
		LegalEntityID: c.legalEntityID,
		Routing: submissionRouting{
			EIdentifiers: []eIdentifier{{Scheme: receiver.Scheme, ID: receiver.Value}},
			Emails:       []string{},
		},
		Document: submissionDoc{
			DocumentType: "invoice",
			RawDocumentData: rawDocumentData{
				Document:      base64.StdEncoding.EncodeToString(xml),
				Parse:         true,
				ParseStrategy: "ubl",
			},
		},
	}

	var (
		ok     submissionResponse
		failed apiErrors
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&ok).
		SetError(&failed).
		Post("/document_submissions")
	if err != nil {
		return nil, fmt.Errorf("storecove: submit %s: %w", inv.Number, err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 500 || status == http.StatusTooManyRequests:
		return nil, fmt.Errorf("storecove: submit %s: HTTP %d", inv.Number, status)
	case resp.IsError():
		msg := failed.message()
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return &SendResult{
			ErrorMessage: fmt.Sprintf("HTTP %d: %s", status, msg),
			ResponseData: map[string]any{"status": status},
		}, nil
	}

	return &SendResult{
		Success:      true,
		DocumentID:   ok.GUID,
		ResponseData: map[string]any{"status": status, "guid": ok.GUID},
	}, nil
}

// GetTransmissionStatus implements AccessPoint
func (c *StorecoveClient) GetTransmissionStatus(ctx context.Context, documentID string) (string, error) {
	if !c.IsConfigured() {
		return "", model.ErrProviderNotConfigured
	}
	var out submissionStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("guid", documentID).
		SetResult(&out).
		Get("/document_submissions/{guid}")
	if err != nil {
		return "", fmt.Errorf("storecove: status %s: %w", documentID, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("storecove: status %s: HTTP %d", documentID, resp.StatusCode())
	}
	if out.Status == "" {
		return StatusUnknown, nil
	}
	return out.Status, nil
}
