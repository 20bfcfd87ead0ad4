package api

import (
	"context"
	"fmt"
	"net/url"
)

// PermissionProfile is a profile or permission set in the org
type PermissionProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	UserCnt int    `json:"userCount,omitempty"`
}

// PermissionSnapshot is a point-in-time capture of a profile's permissions
type PermissionSnapshot struct {
	ID          int64  `json:"id"`
	ProfileID   string `json:"profileId"`
	ProfileName string `json:"profileName"`
	CapturedAt  string `json:"capturedAt"`
}

// PermissionComparison is a stored diff of two profiles
type PermissionComparison struct {
	ID         int64    `json:"id"`
	ProfileA   string   `json:"profileA"`
	ProfileB   string   `json:"profileB"`
	ComparedBy string   `json:"comparedBy,omitempty"`
	ComparedAt string   `json:"comparedAt,omitempty"`
	Diffs      []string `json:"diffs,omitempty"`
}

// PermissionViolation is a risky grant flagged by the backend
type PermissionViolation struct {
	ID             int64  `json:"id"`
	SfUserID       string `json:"sfUserId,omitempty"`
	Username       string `json:"username"`
	PermissionType string `json:"permissionType"`
	PermissionName string `json:"permissionName"`
	RiskLevel      string `json:"riskLevel"`
	Notes          string `json:"notes,omitempty"`
	Acknowledged   bool   `json:"isAcknowledged"`
	DetectedAt     string `json:"detectedAt"`
}

// GetPermissionProfiles lists profiles available for auditing
func (c *Client) GetPermissionProfiles(ctx context.Context, orgID string) ([]PermissionProfile, error) {
	var profiles []PermissionProfile
	err := c.get(ctx, "/permission-pilot/profiles?orgId="+url.QueryEscape(orgID), &profiles)
	return profiles, err
}

// SnapshotProfile captures a profile's current permissions
func (c *Client) SnapshotProfile(ctx context.Context, orgID, profileID, profileName string) (*PermissionSnapshot, error) {
	var snap PermissionSnapshot
	path := fmt.Sprintf("/permission-pilot/snapshot?orgId=%s&profileId=%s&profileName=%s",
		url.QueryEscape(orgID), url.QueryEscape(profileID), url.QueryEscape(profileName))
	if err := c.post(ctx, path, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetComparisons lists stored profile comparisons
func (c *Client) GetComparisons(ctx context.Context, orgID string) ([]PermissionComparison, error) {
	var comparisons []PermissionComparison
	err := c.get(ctx, "/permission-pilot/comparisons?orgId="+url.QueryEscape(orgID), &comparisons)
	return comparisons, err
}

// CompareProfiles diffs two profiles and stores the result
func (c *Client) CompareProfiles(ctx context.Context, orgID, profileA, profileB, comparedBy string) (*PermissionComparison, error) {
	var comparison PermissionComparison
	path := fmt.Sprintf("/permission-pilot/compare?orgId=%s&profileA=%s&profileB=%s&comparedBy=%s",
		url.QueryEscape(orgID), url.QueryEscape(profileA), url.QueryEscape(profileB), url.QueryEscape(comparedBy))
	if err := c.post(ctx, path, nil, &comparison); err != nil {
		return nil, err
	}
	return &comparison, nil
}

// GetViolations lists flagged risky grants
func (c *Client) GetViolations(ctx context.Context, orgID string) ([]PermissionViolation, error) {
	var violations []PermissionViolation
	err := c.get(ctx, "/permission-pilot/violations?orgId="+url.QueryEscape(orgID), &violations)
	return violations, err
}

// DetectViolations triggers a fresh violation scan
func (c *Client) DetectViolations(ctx context.Context, orgID string) ([]PermissionViolation, error) {
	var violations []PermissionViolation
	err := c.post(ctx, "/permission-pilot/detect-violations?orgId="+url.QueryEscape(orgID), nil, &violations)
	return violations, err
}

// AcknowledgeViolation marks a violation as reviewed
func (c *Client) AcknowledgeViolation(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/permission-pilot/violations/%d/acknowledge", id), nil, nil)
}
