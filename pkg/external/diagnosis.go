package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/symptom-insight-server/internal/domain"
)

// DefaultDiagnosisEndpoint is the RapidAPI symptom checker.
const DefaultDiagnosisEndpoint = "https://diagnosis.p.rapidapi.com/diagnosis"

// ServiceDiagnosis names the diagnosis service in logs, metrics and breakers.
const ServiceDiagnosis = "diagnosis"

// DiagnosisClient queries the remote diagnosis service.
type DiagnosisClient struct {
	*serviceClient
	host string
}

// NewDiagnosisClient creates a diagnosis client. The request timeout
// defaults to 15 seconds.
func NewDiagnosisClient(config domain.ServiceConfig, logger *logrus.Logger) *DiagnosisClient {
	base := newServiceClient(ServiceDiagnosis, config, domain.ServiceConfig{
		Endpoint: DefaultDiagnosisEndpoint,
		Timeout:  15 * time.Second,
	}, logger)

	host := ""
	if u, err := url.Parse(base.endpoint); err == nil {
		host = u.Host
	}

	return &DiagnosisClient{serviceClient: base, host: host}
}

// Diagnose sends the comma-joined symptoms and returns the raw JSON body of a
// successful response.
func (c *DiagnosisClient) Diagnose(ctx context.Context, symptoms []string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("symptoms", strings.Join(symptoms, ","))

	body, err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", c.host)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, domain.NewParseError(c.name, fmt.Errorf("response is not JSON"))
	}
	return body, nil
}
