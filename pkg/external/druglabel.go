package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/symptom-insight-server/internal/domain"
)

// DefaultDrugLabelEndpoint is the OpenFDA drug label search.
const DefaultDrugLabelEndpoint = "https://api.fda.gov/drug/label.json"

// ServiceDrugLabel names the drug label service in logs, metrics and breakers.
const ServiceDrugLabel = "drug_label"

// DrugLabelResponse represents the JSON response structure from OpenFDA
type DrugLabelResponse struct {
	Results []DrugLabel `json:"results"`
}

// DrugLabel is one label document. Every field is optional upstream.
type DrugLabel struct {
	OpenFDA struct {
		BrandName        []string `json:"brand_name"`
		GenericName      []string `json:"generic_name"`
		ManufacturerName []string `json:"manufacturer_name"`
	} `json:"openfda"`
	IndicationsAndUsage []string `json:"indications_and_usage"`
	Warnings            []string `json:"warnings"`
	AdverseReactions    []string `json:"adverse_reactions"`
}

// DrugLabelClient searches drug labels by indication.
type DrugLabelClient struct {
	*serviceClient
}

// NewDrugLabelClient creates a drug label client. The request timeout
// defaults to 10 seconds.
func NewDrugLabelClient(config domain.ServiceConfig, logger *logrus.Logger) *DrugLabelClient {
	return &DrugLabelClient{
		serviceClient: newServiceClient(ServiceDrugLabel, config, domain.ServiceConfig{
			Endpoint: DefaultDrugLabelEndpoint,
			Timeout:  10 * time.Second,
		}, logger),
	}
}

// SearchQuery is the full-text search expression for condition.
func SearchQuery(condition string) string {
	return "indications_and_usage:" + condition
}

// SearchByIndication returns up to limit labels whose indications mention condition.
func (c *DrugLabelClient) SearchByIndication(ctx context.Context, condition string, limit int) (*DrugLabelResponse, error) {
	params := url.Values{}
	params.Set("search", SearchQuery(condition))
	params.Set("limit", strconv.Itoa(limit))
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	body, err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var response DrugLabelResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, domain.NewParseError(c.name, err)
	}
	return &response, nil
}
