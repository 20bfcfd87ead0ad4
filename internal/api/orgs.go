package api

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// OrgType classifies a connected organization
type OrgType string

// Organization types reported by the backend
const (
	OrgTypeProduction OrgType = "PRODUCTION"
	OrgTypeSandbox    OrgType = "SANDBOX"
	OrgTypeDeveloper  OrgType = "DEVELOPER"
	OrgTypeScratch    OrgType = "SCRATCH"
)

// Organization represents one connected tenant. OrgID is the external
// platform identifier used to scope every feature call; ID is the
// backend's own row id, used for connection management.
type Organization struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"orgId"`
	OrgName     string    `json:"orgName"`
	OrgType     OrgType   `json:"orgType"`
	InstanceURL string    `json:"instanceUrl,omitempty"`
	APIVersion  string    `json:"apiVersion,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// ConnectURLResponse carries the OAuth handoff URL for connecting a new org
type ConnectURLResponse struct {
	URL string `json:"url"`
}

// OrgStatus reports connection health for a single org
type OrgStatus struct {
	Connected bool   `json:"connected"`
	OrgName   string `json:"orgName"`
	OrgType   string `json:"orgType"`
}

// ListOrgs fetches the organizations connected by the current user.
// Order is server-determined and preserved.
func (c *Client) ListOrgs(ctx context.Context) ([]Organization, error) {
	var orgs []Organization
	if err := c.get(ctx, "/orgs", &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// GetConnectURL returns the OAuth URL to connect a new organization
func (c *Client) GetConnectURL(ctx context.Context, sandbox bool) (string, error) {
	path := "/orgs/connect"
	if sandbox {
		path += "?sandbox=true"
	}

	var resp ConnectURLResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// GetOrg fetches a single organization by its backend id
func (c *Client) GetOrg(ctx context.Context, id string) (*Organization, error) {
	var org Organization
	if err := c.get(ctx, fmt.Sprintf("/orgs/%s", url.PathEscape(id)), &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// GetOrgStatus checks connection health for an organization
func (c *Client) GetOrgStatus(ctx context.Context, id string) (*OrgStatus, error) {
	var status OrgStatus
	if err := c.get(ctx, fmt.Sprintf("/orgs/%s/status", url.PathEscape(id)), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// DisconnectOrg removes an organization connection. Callers re-fetch
// the org list afterwards instead of splicing locally.
func (c *Client) DisconnectOrg(ctx context.Context, id string) error {
	return c.delete(ctx, fmt.Sprintf("/orgs/%s", url.PathEscape(id)))
}
