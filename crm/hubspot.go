package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ronaldwopara/AI-Post-Sales-Copilot/config"
)

// HubSpotClient pulls company records from the HubSpot CRM v3 API.
type HubSpotClient struct {
	config     *config.HubSpotConfig
	httpClient *http.Client
}

func NewHubSpotClient(cfg *config.HubSpotConfig) *HubSpotClient {
	return &HubSpotClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type hubspotCompany struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

// FetchCompanies lists companies with the properties the unifier cares
// about. Each company comes back as its raw properties map, with the
// vendor object id preserved under "hs_object_id" when absent.
func (c *HubSpotClient) FetchCompanies(ctx context.Context) ([]map[string]any, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("hubspot api key not configured")
	}

	endpoint := c.config.BaseURL + "/crm/v3/objects/companies?limit=100&properties=name,industry,annualrevenue,numberofemployees,notes_last_updated"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hubspot request failed: %s", string(body))
	}

	var result struct {
		Results []hubspotCompany `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	companies := make([]map[string]any, 0, len(result.Results))
	for _, company := range result.Results {
		props := company.Properties
		if props == nil {
			props = map[string]any{}
		}
		if _, ok := props["hs_object_id"]; !ok {
			props["hs_object_id"] = company.ID
		}
		companies = append(companies, props)
	}
	return companies, nil
}

// AdaptHubSpotCompany maps HubSpot company property keys onto the
// canonical field names consumed by Unify.
func AdaptHubSpotCompany(raw map[string]any) Record {
	return Record{
		FieldName:           raw["name"],
		FieldIndustry:       raw["industry"],
		FieldAnnualRevenue:  raw["annualrevenue"],
		FieldEmployeeCount:  raw["numberofemployees"],
		FieldPrimaryContact: raw["primary_contact"],
		FieldEmail:          raw["email"],
		FieldLastActivity:   raw["notes_last_updated"],
	}
}
