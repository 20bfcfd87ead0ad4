package api

import (
	"context"
	"fmt"
	"net/url"
)

// Limit is one governor limit with current usage
type Limit struct {
	LimitName              string  `json:"limitName"`
	LimitType              string  `json:"limitType"`
	Used                   int64   `json:"used"`
	Total                  int64   `json:"total"`
	Percentage             float64 `json:"percentage"`
	Status                 string  `json:"status"` // HEALTHY | WARNING | CRITICAL
	ForecastedExhaustionAt string  `json:"forecastedExhaustionAt,omitempty"`
}

// LimitSnapshot is one historical usage sample for a limit
type LimitSnapshot struct {
	LimitName  string  `json:"limitName"`
	Used       int64   `json:"used"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
	CapturedAt string  `json:"capturedAt"`
}

// LimitAlert is a user-configured usage threshold
type LimitAlert struct {
	ID               int64   `json:"id,omitempty"`
	LimitName        string  `json:"limitName"`
	ThresholdPercent float64 `json:"thresholdPercent"`
	NotifyEmail      string  `json:"notifyEmail,omitempty"`
	Enabled          bool    `json:"enabled"`
}

// GetLimits fetches current governor limit usage for the org
func (c *Client) GetLimits(ctx context.Context, orgID string) ([]Limit, error) {
	var limits []Limit
	err := c.get(ctx, "/limit-guard?orgId="+url.QueryEscape(orgID), &limits)
	return limits, err
}

// GetLimitHistory fetches usage samples for one limit
func (c *Client) GetLimitHistory(ctx context.Context, orgID, limitName string, days int) ([]LimitSnapshot, error) {
	var snaps []LimitSnapshot
	path := fmt.Sprintf("/limit-guard/history?orgId=%s&limitName=%s&days=%d",
		url.QueryEscape(orgID), url.QueryEscape(limitName), days)
	err := c.get(ctx, path, &snaps)
	return snaps, err
}

// GetLimitAlerts lists configured alerts
func (c *Client) GetLimitAlerts(ctx context.Context, orgID string) ([]LimitAlert, error) {
	var alerts []LimitAlert
	err := c.get(ctx, "/limit-guard/alerts?orgId="+url.QueryEscape(orgID), &alerts)
	return alerts, err
}

// SaveLimitAlert creates or updates an alert
func (c *Client) SaveLimitAlert(ctx context.Context, orgID string, alert LimitAlert) (*LimitAlert, error) {
	var saved LimitAlert
	if err := c.post(ctx, "/limit-guard/alerts?orgId="+url.QueryEscape(orgID), alert, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
