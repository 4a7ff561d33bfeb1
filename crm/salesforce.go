package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ronaldwopara/AI-Post-Sales-Copilot/config"
)

const salesforceAccountQuery = "SELECT Id, Name, Industry, AnnualRevenue, NumberOfEmployees, LastActivityDate FROM Account LIMIT 100"

// SalesforceClient pulls account records from the Salesforce REST API.
// It is a collaborator of the core: it returns raw vendor records and
// leaves all merging to Unify.
type SalesforceClient struct {
	config     *config.SalesforceConfig
	httpClient *http.Client

	accessToken string
	instanceURL string
}

func NewSalesforceClient(cfg *config.SalesforceConfig) *SalesforceClient {
	return &SalesforceClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type salesforceAuthResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
}

// Authenticate performs the OAuth password grant and caches the access
// token and instance URL on the client.
func (c *SalesforceClient) Authenticate(ctx context.Context) error {
	if c.config.ClientID == "" || c.config.ClientSecret == "" || c.config.Username == "" || c.config.Password == "" {
		return fmt.Errorf("salesforce credentials not configured")
	}

	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"username":      {c.config.Username},
		"password":      {c.config.Password + c.config.SecurityToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.LoginURL+"/services/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send auth request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("salesforce authentication failed: %s", string(body))
	}

	var auth salesforceAuthResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return fmt.Errorf("failed to parse auth response: %w", err)
	}

	c.accessToken = auth.AccessToken
	c.instanceURL = auth.InstanceURL
	return nil
}

// FetchAccounts queries accounts and returns them as raw vendor maps.
func (c *SalesforceClient) FetchAccounts(ctx context.Context) ([]map[string]any, error) {
	if c.accessToken == "" {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	endpoint := fmt.Sprintf("%s/services/data/v59.0/query?q=%s", c.instanceURL, url.QueryEscape(salesforceAccountQuery))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create query request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send query request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read query response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("salesforce query failed: %s", string(body))
	}

	var result struct {
		Records []map[string]any `json:"records"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}
	return result.Records, nil
}

// AdaptSalesforceAccount maps Salesforce account keys onto the
// canonical field names consumed by Unify.
func AdaptSalesforceAccount(raw map[string]any) Record {
	return Record{
		FieldName:           raw["Name"],
		FieldIndustry:       raw["Industry"],
		FieldAnnualRevenue:  raw["AnnualRevenue"],
		FieldEmployeeCount:  raw["NumberOfEmployees"],
		FieldPrimaryContact: raw["PrimaryContact"],
		FieldEmail:          raw["Email"],
		FieldLastActivity:   raw["LastActivityDate"],
	}
}
