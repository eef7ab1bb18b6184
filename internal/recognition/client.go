package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/histofy/histofy/internal/errors"
)

// Client is an HTTP implementation of Service. It posts the image to the
// recognition endpoint and maps transport-level outcomes onto the error
// taxonomy the core understands.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the recognition service at baseURL.
// timeout bounds the full request/response exchange.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type identifyRequest struct {
	ImageRef    string `json:"image_ref"`
	ImageBase64 string `json:"image_base64"`
}

type identifyResponse struct {
	Site  *SiteRecord `json:"site"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Identify implements Service. Failures surface as SERVICE_UNAVAILABLE,
// NO_MATCH_FOUND, or TIMEOUT; the caller decides whether to retry.
func (c *Client) Identify(ctx context.Context, imageRef string, image []byte) (*SiteRecord, error) {
	reqBody := identifyRequest{
		ImageRef:    imageRef,
		ImageBase64: base64.StdEncoding.EncodeToString(image),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/identify", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, errors.NewTimeout()
		}
		return nil, errors.NewServiceUnavailable(fmt.Sprintf("recognition service unreachable: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewServiceUnavailable("failed to read recognition response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NewNoMatchFound()
	case resp.StatusCode == http.StatusGatewayTimeout:
		return nil, errors.NewTimeout()
	default:
		return nil, errors.NewServiceUnavailable(fmt.Sprintf("recognition service returned status %d", resp.StatusCode))
	}

	var out identifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.NewServiceUnavailable("malformed recognition response")
	}
	if out.Error != nil {
		return nil, errors.NewServiceUnavailable(out.Error.Message)
	}
	if out.Site == nil || out.Site.Name == "" {
		return nil, errors.NewNoMatchFound()
	}

	return out.Site, nil
}

// isTimeout checks for net-level timeout errors that are not wrapped
// context deadline errors.
func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	var te timeout
	return stderrors.As(err, &te) && te.Timeout()
}
