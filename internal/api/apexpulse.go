package api

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// TopicTestProgress is the streaming topic carrying live test-run progress
const TopicTestProgress = "/topic/test-progress"

// TestClass is a runnable test class in the active org
type TestClass struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TestRun summarizes one execution of a set of test classes
type TestRun struct {
	ID             int64      `json:"id"`
	AsyncApexJobID string     `json:"asyncApexJobId"`
	OrgID          string     `json:"orgId"`
	Status         string     `json:"status"`
	TotalTests     int        `json:"totalTests"`
	PassCount      int        `json:"passCount"`
	FailCount      int        `json:"failCount"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Results        []TestResult
}

// TestResult is the outcome of a single test method
type TestResult struct {
	ID         int64  `json:"id"`
	ClassName  string `json:"className"`
	MethodName string `json:"methodName"`
	Outcome    string `json:"outcome"`
	Message    string `json:"message,omitempty"`
	StackTrace string `json:"stackTrace,omitempty"`
	RunTimeMs  int64  `json:"runTimeMs"`
}

// TestProgress is the payload streamed on TopicTestProgress
type TestProgress struct {
	TestRunID       string  `json:"testRunId"`
	DBRunID         int64   `json:"dbRunId"`
	Status          string  `json:"status"`
	TotalTests      int     `json:"totalTests"`
	CompletedTests  int     `json:"completedTests"`
	PassCount       int     `json:"passCount"`
	FailCount       int     `json:"failCount"`
	PercentComplete float64 `json:"percentComplete"`
}

// TestRunPage is a paginated slice of runs
type TestRunPage struct {
	Content       []TestRun `json:"content"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Number        int       `json:"number"`
}

// OrgTestStats aggregates test health for the active org
type OrgTestStats struct {
	TotalRuns       int64   `json:"totalRuns"`
	PassRate        float64 `json:"passRate"`
	AvgCoverage     float64 `json:"avgCoverage"`
	LastRunAt       string  `json:"lastRunAt,omitempty"`
	TotalTestsKnown int     `json:"totalTestsKnown"`
}

// TrendPoint is one day of a pass-rate or coverage trend
type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// GetTestClasses lists runnable test classes
func (c *Client) GetTestClasses(ctx context.Context, orgID string) ([]TestClass, error) {
	var classes []TestClass
	err := c.get(ctx, "/apex-pulse/classes?orgId="+url.QueryEscape(orgID), &classes)
	return classes, err
}

// RunTests queues a test run for the given class ids and returns the run
func (c *Client) RunTests(ctx context.Context, orgID string, classIDs []string) (*TestRun, error) {
	var run TestRun
	body := map[string][]string{"classIds": classIDs}
	if err := c.post(ctx, "/apex-pulse/run?orgId="+url.QueryEscape(orgID), body, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetTestRuns lists historical runs, newest first
func (c *Client) GetTestRuns(ctx context.Context, orgID string, page, size int) (*TestRunPage, error) {
	var p TestRunPage
	path := fmt.Sprintf("/apex-pulse/history/runs?orgId=%s&page=%d&size=%d", url.QueryEscape(orgID), page, size)
	if err := c.get(ctx, path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetTestRunDetail fetches a single run with its per-method results
func (c *Client) GetTestRunDetail(ctx context.Context, orgID string, runID int64) (*TestRun, error) {
	var run TestRun
	path := fmt.Sprintf("/apex-pulse/history/runs/%d?orgId=%s", runID, url.QueryEscape(orgID))
	if err := c.get(ctx, path, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetOrgTestStats fetches aggregate test health
func (c *Client) GetOrgTestStats(ctx context.Context, orgID string) (*OrgTestStats, error) {
	var stats OrgTestStats
	if err := c.get(ctx, "/apex-pulse/org-stats?orgId="+url.QueryEscape(orgID), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetPassRateTrend fetches the daily pass-rate trend
func (c *Client) GetPassRateTrend(ctx context.Context, orgID string, days int) ([]TrendPoint, error) {
	var points []TrendPoint
	path := fmt.Sprintf("/apex-pulse/history/trends/pass-rate?orgId=%s&days=%d", url.QueryEscape(orgID), days)
	err := c.get(ctx, path, &points)
	return points, err
}

// GetCoverageTrend fetches the daily coverage trend
func (c *Client) GetCoverageTrend(ctx context.Context, orgID string, days int) ([]TrendPoint, error) {
	var points []TrendPoint
	path := fmt.Sprintf("/apex-pulse/history/trends/coverage?orgId=%s&days=%d", url.QueryEscape(orgID), days)
	err := c.get(ctx, path, &points)
	return points, err
}
