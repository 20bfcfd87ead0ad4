package api

import (
	"context"
	"fmt"
	"net/url"
)

// ObjectField describes one field of a target object for import mapping
type ObjectField struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Required   bool   `json:"required"`
	ExternalID bool   `json:"externalId"`
}

// ImportJob tracks one bulk data import
type ImportJob struct {
	ID               int64  `json:"id"`
	OrgID            string `json:"orgId"`
	ObjectName       string `json:"objectName"`
	Status           string `json:"status"`
	TotalRecords     int    `json:"totalRecords"`
	ProcessedRecords int    `json:"processedRecords"`
	SuccessCount     int    `json:"successCount"`
	ErrorCount       int    `json:"errorCount"`
	FileName         string `json:"fileName"`
	Operation        string `json:"operation"`
	ExternalIDField  string `json:"externalIdField,omitempty"`
	CreatedBy        string `json:"createdBy,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty"`
	CompletedAt      string `json:"completedAt,omitempty"`
	Errors           []ImportRowError
}

// ImportRowError is one failed row of an import job
type ImportRowError struct {
	RowNumber int    `json:"rowNumber"`
	Message   string `json:"message"`
}

// ImportJobPage is a paginated slice of import jobs
type ImportJobPage struct {
	Content       []ImportJob `json:"content"`
	TotalElements int64       `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
	Number        int         `json:"number"`
}

// CreateImportJobRequest creates and starts an import
type CreateImportJobRequest struct {
	OrgID      string              `json:"orgId"`
	ObjectName string              `json:"objectName"`
	Operation  string              `json:"operation"`
	FileName   string              `json:"fileName"`
	Checksum   string              `json:"checksum,omitempty"`
	ExternalID string              `json:"externalIdField,omitempty"`
	Records    []map[string]string `json:"records"`
	CreatedBy  string              `json:"createdBy,omitempty"`
}

// FieldMapping is a saved CSV-column-to-field mapping
type FieldMapping struct {
	ID          int64  `json:"id,omitempty"`
	OrgID       string `json:"orgId"`
	ObjectName  string `json:"objectName"`
	MappingName string `json:"mappingName"`
	MappingJSON string `json:"mappingJson"`
	CreatedBy   string `json:"createdBy,omitempty"`
}

// GetObjectFields describes the fields of a target object
func (c *Client) GetObjectFields(ctx context.Context, orgID, objectName string) ([]ObjectField, error) {
	var fields []ObjectField
	path := fmt.Sprintf("/data-forge/objects/%s/fields?orgId=%s",
		url.PathEscape(objectName), url.QueryEscape(orgID))
	err := c.get(ctx, path, &fields)
	return fields, err
}

// GetImportJobs lists import jobs, newest first
func (c *Client) GetImportJobs(ctx context.Context, orgID string, page int) (*ImportJobPage, error) {
	var p ImportJobPage
	path := fmt.Sprintf("/data-forge/jobs?orgId=%s&page=%d", url.QueryEscape(orgID), page)
	if err := c.get(ctx, path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetImportJob fetches one job with its row errors
func (c *Client) GetImportJob(ctx context.Context, id int64) (*ImportJob, error) {
	var job ImportJob
	if err := c.get(ctx, fmt.Sprintf("/data-forge/jobs/%d", id), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateImportJob uploads parsed records and starts the import
func (c *Client) CreateImportJob(ctx context.Context, req CreateImportJobRequest) (*ImportJob, error) {
	var job ImportJob
	if err := c.post(ctx, "/data-forge/jobs", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetFieldMappings lists saved mappings for an org + object
func (c *Client) GetFieldMappings(ctx context.Context, orgID, objectName string) ([]FieldMapping, error) {
	var mappings []FieldMapping
	path := fmt.Sprintf("/data-forge/mappings?orgId=%s&objectName=%s",
		url.QueryEscape(orgID), url.QueryEscape(objectName))
	err := c.get(ctx, path, &mappings)
	return mappings, err
}

// SaveFieldMapping creates or updates a mapping
func (c *Client) SaveFieldMapping(ctx context.Context, mapping FieldMapping) (*FieldMapping, error) {
	var saved FieldMapping
	if err := c.post(ctx, "/data-forge/mappings", mapping, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
