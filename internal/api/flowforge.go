package api

import (
	"context"
	"fmt"
	"net/url"
)

// FlowStats is the flow-forge dashboard summary
type FlowStats struct {
	TotalRuns    int64   `json:"totalRuns"`
	ErrorRate    float64 `json:"errorRate"`
	AvgDuration  float64 `json:"avgDurationMs"`
	ActiveFlows  int     `json:"activeFlows"`
	OverlapCount int     `json:"overlapCount"`
}

// FlowRun is one recorded execution of a flow
type FlowRun struct {
	ID           int64  `json:"id"`
	OrgID        string `json:"orgId"`
	FlowName     string `json:"flowName"`
	FlowType     string `json:"flowType,omitempty"`
	FlowID       string `json:"flowId,omitempty"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	StartedAt    string `json:"startedAt,omitempty"`
	DurationMs   int64  `json:"durationMs,omitempty"`
	RecordID     string `json:"recordId,omitempty"`
	TriggeredBy  string `json:"triggeredBy,omitempty"`
}

// FlowRunPage is a paginated slice of flow runs
type FlowRunPage struct {
	Content       []FlowRun `json:"content"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Number        int       `json:"number"`
}

// FlowOverlap flags multiple automations firing on the same object
type FlowOverlap struct {
	ID         int64    `json:"id"`
	ObjectName string   `json:"objectName"`
	TriggerOn  string   `json:"triggerOn,omitempty"`
	FlowNames  []string `json:"flowNames"`
	Severity   string   `json:"severity,omitempty"`
}

// Flow is an invocable flow definition
type Flow struct {
	APIName string `json:"apiName"`
	Label   string `json:"label"`
	Type    string `json:"type,omitempty"`
	Active  bool   `json:"active"`
}

// FlowInput describes one input variable of an invocable flow
type FlowInput struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
	Required bool   `json:"required"`
}

// LookupRecord is a record reference returned by the lookup helper
type LookupRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetFlowStats fetches the dashboard summary
func (c *Client) GetFlowStats(ctx context.Context, orgID string) (*FlowStats, error) {
	var stats FlowStats
	if err := c.get(ctx, "/flow-forge?orgId="+url.QueryEscape(orgID), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetFlowRuns lists recorded flow runs, optionally filtered by status
func (c *Client) GetFlowRuns(ctx context.Context, orgID, status string, page int) (*FlowRunPage, error) {
	params := url.Values{}
	params.Set("orgId", orgID)
	params.Set("page", fmt.Sprint(page))
	if status != "" && status != "All" {
		params.Set("status", status)
	}

	var p FlowRunPage
	if err := c.get(ctx, "/flow-forge/runs?"+params.Encode(), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetFlowRunDetail fetches a run with its errors
func (c *Client) GetFlowRunDetail(ctx context.Context, id int64) (*FlowRun, error) {
	var run FlowRun
	if err := c.get(ctx, fmt.Sprintf("/flow-forge/runs/%d", id), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// DetectOverlaps triggers overlap analysis and returns the findings
func (c *Client) DetectOverlaps(ctx context.Context, orgID string) ([]FlowOverlap, error) {
	var overlaps []FlowOverlap
	err := c.post(ctx, "/flow-forge/detect-overlaps?orgId="+url.QueryEscape(orgID), nil, &overlaps)
	return overlaps, err
}

// GetOverlaps lists previously detected overlaps
func (c *Client) GetOverlaps(ctx context.Context, orgID string) ([]FlowOverlap, error) {
	var overlaps []FlowOverlap
	err := c.get(ctx, "/flow-forge/overlaps?orgId="+url.QueryEscape(orgID), &overlaps)
	return overlaps, err
}

// GetFlowAnalytics fetches daily run/error trends
func (c *Client) GetFlowAnalytics(ctx context.Context, orgID string, days int) ([]TrendPoint, error) {
	var points []TrendPoint
	path := fmt.Sprintf("/flow-forge/analytics?orgId=%s&days=%d", url.QueryEscape(orgID), days)
	err := c.get(ctx, path, &points)
	return points, err
}

// GetFlows lists invocable flows
func (c *Client) GetFlows(ctx context.Context, orgID string) ([]Flow, error) {
	var flows []Flow
	err := c.get(ctx, "/flow-forge/flows?orgId="+url.QueryEscape(orgID), &flows)
	return flows, err
}

// GetFlowInputs describes the input variables of a flow
func (c *Client) GetFlowInputs(ctx context.Context, orgID, apiName string) ([]FlowInput, error) {
	var inputs []FlowInput
	path := fmt.Sprintf("/flow-forge/flows/inputs?orgId=%s&apiName=%s",
		url.QueryEscape(orgID), url.QueryEscape(apiName))
	err := c.get(ctx, path, &inputs)
	return inputs, err
}

// InvokeFlow runs an invocable flow with the given inputs
func (c *Client) InvokeFlow(ctx context.Context, orgID, apiName, label string, inputs map[string]interface{}) (*FlowRun, error) {
	var run FlowRun
	body := map[string]interface{}{"apiName": apiName, "label": label, "inputs": inputs}
	if err := c.post(ctx, "/flow-forge/flows/invoke?orgId="+url.QueryEscape(orgID), body, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// LookupRecords searches records of a type for flow input selection
func (c *Client) LookupRecords(ctx context.Context, orgID, sobjectType, query string) ([]LookupRecord, error) {
	var records []LookupRecord
	path := fmt.Sprintf("/flow-forge/flows/lookup?orgId=%s&sobjectType=%s&q=%s",
		url.QueryEscape(orgID), url.QueryEscape(sobjectType), url.QueryEscape(query))
	err := c.get(ctx, path, &records)
	return records, err
}
