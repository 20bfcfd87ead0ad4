package api

import (
	"context"
	"fmt"
	"net/url"
)

// HealthScore is the org health breakdown computed by the backend
type HealthScore struct {
	ID              int64   `json:"id"`
	OrgID           string  `json:"orgId"`
	OverallScore    float64 `json:"overallScore"`
	ApexScore       float64 `json:"apexScore"`
	FlowScore       float64 `json:"flowScore"`
	PermissionScore float64 `json:"permissionScore"`
	DataScore       float64 `json:"dataScore"`
	MetadataCount   int     `json:"metadataCount"`
	ScoredAt        string  `json:"scoredAt"`
}

// DeadCodeItem is an unused metadata component flagged by the backend
type DeadCodeItem struct {
	ID            int64  `json:"id"`
	ComponentName string `json:"componentName"`
	ComponentType string `json:"componentType"`
	Reason        string `json:"reason,omitempty"`
	LastUsedAt    string `json:"lastUsedAt,omitempty"`
	Reviewed      bool   `json:"reviewed"`
	ReviewedBy    string `json:"reviewedBy,omitempty"`
}

// OrgDependency is one edge of the metadata dependency graph
type OrgDependency struct {
	FromComponent string `json:"fromComponent"`
	FromType      string `json:"fromType"`
	ToComponent   string `json:"toComponent"`
	ToType        string `json:"toType"`
}

// GetOrgHealth fetches the latest health score
func (c *Client) GetOrgHealth(ctx context.Context, orgID string) (*HealthScore, error) {
	var score HealthScore
	if err := c.get(ctx, "/org-lens/health?orgId="+url.QueryEscape(orgID), &score); err != nil {
		return nil, err
	}
	return &score, nil
}

// GetHealthHistory fetches past health scores, oldest first
func (c *Client) GetHealthHistory(ctx context.Context, orgID string) ([]HealthScore, error) {
	var scores []HealthScore
	err := c.get(ctx, "/org-lens/health/history?orgId="+url.QueryEscape(orgID), &scores)
	return scores, err
}

// GetDeadCode lists flagged unused components
func (c *Client) GetDeadCode(ctx context.Context, orgID string) ([]DeadCodeItem, error) {
	var items []DeadCodeItem
	err := c.get(ctx, "/org-lens/dead-code?orgId="+url.QueryEscape(orgID), &items)
	return items, err
}

// MarkDeadCodeReviewed records that a human looked at a flagged item
func (c *Client) MarkDeadCodeReviewed(ctx context.Context, orgID string, id int64, reviewedBy string) (*DeadCodeItem, error) {
	var item DeadCodeItem
	path := fmt.Sprintf("/org-lens/dead-code/%d/review?orgId=%s", id, url.QueryEscape(orgID))
	if err := c.post(ctx, path, map[string]string{"reviewedBy": reviewedBy}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetDependencies fetches the metadata dependency graph
func (c *Client) GetDependencies(ctx context.Context, orgID string) ([]OrgDependency, error) {
	var deps []OrgDependency
	err := c.get(ctx, "/org-lens/dependencies?orgId="+url.QueryEscape(orgID), &deps)
	return deps, err
}
