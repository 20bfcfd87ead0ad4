package api

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Deployment is one metadata deployment tracked for the org
type Deployment struct {
	ID             int64      `json:"id"`
	OrgID          string     `json:"orgId"`
	SfDeploymentID string     `json:"sfDeploymentId,omitempty"`
	Label          string     `json:"label"`
	ComponentCount int        `json:"componentCount"`
	Status         string     `json:"status"`
	DeployType     string     `json:"deployType,omitempty"`
	ValidationOnly bool       `json:"validationOnly"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
	DeployedBy     string     `json:"deployedBy,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// DeployComponent is one component within a deployment
type DeployComponent struct {
	ID            int64  `json:"id"`
	ComponentName string `json:"componentName"`
	ComponentType string `json:"componentType"`
	Status        string `json:"status"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

// DeploymentPage is a paginated slice of deployments
type DeploymentPage struct {
	Content       []Deployment `json:"content"`
	TotalElements int64        `json:"totalElements"`
	TotalPages    int          `json:"totalPages"`
	Number        int          `json:"number"`
}

// ImpactAnalysis reports what a planned deployment would touch
type ImpactAnalysis struct {
	AffectedComponents []string `json:"affectedComponents"`
	RiskLevel          string   `json:"riskLevel"`
	Warnings           []string `json:"warnings,omitempty"`
}

// GetDeployments lists deployments, newest first
func (c *Client) GetDeployments(ctx context.Context, orgID string, page int) (*DeploymentPage, error) {
	var p DeploymentPage
	path := fmt.Sprintf("/deploy-pilot?orgId=%s&page=%d", url.QueryEscape(orgID), page)
	if err := c.get(ctx, path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetDeployment fetches one deployment with component detail
func (c *Client) GetDeployment(ctx context.Context, orgID string, id int64) (*Deployment, error) {
	var d Deployment
	path := fmt.Sprintf("/deploy-pilot/%d?orgId=%s", id, url.QueryEscape(orgID))
	if err := c.get(ctx, path, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SyncDeployments asks the backend to refresh deployment records from the platform
func (c *Client) SyncDeployments(ctx context.Context, orgID string) error {
	return c.post(ctx, "/deploy-pilot/sync?orgId="+url.QueryEscape(orgID), nil, nil)
}

// AnalyzeImpact previews the blast radius of deploying the given components
func (c *Client) AnalyzeImpact(ctx context.Context, orgID string, components []string) (*ImpactAnalysis, error) {
	var analysis ImpactAnalysis
	body := map[string][]string{"components": components}
	if err := c.post(ctx, "/deploy-pilot/analyze-impact?orgId="+url.QueryEscape(orgID), body, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// StartDeployment begins a deployment (or validation-only dry run)
func (c *Client) StartDeployment(ctx context.Context, orgID, label string, validationOnly bool, deployedBy string) (*Deployment, error) {
	var d Deployment
	body := map[string]interface{}{
		"label":          label,
		"validationOnly": validationOnly,
		"deployedBy":     deployedBy,
	}
	if err := c.post(ctx, "/deploy-pilot?orgId="+url.QueryEscape(orgID), body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// RollbackDeployment reverts a completed deployment
func (c *Client) RollbackDeployment(ctx context.Context, orgID string, id int64, reason, rolledBackBy string) (*Deployment, error) {
	var d Deployment
	body := map[string]string{"reason": reason, "rolledBackBy": rolledBackBy}
	path := fmt.Sprintf("/deploy-pilot/%d/rollback?orgId=%s", id, url.QueryEscape(orgID))
	if err := c.post(ctx, path, body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
