package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/api"
)

func TestDefaultExternalID(t *testing.T) {
	fields := []api.ObjectField{
		{Name: "Name"},
		{Name: "External_Key__c", ExternalID: true},
		{Name: "Email"},
	}

	if got := defaultExternalID(fields); got != "External_Key__c" {
		t.Errorf("defaultExternalID() = %s, want External_Key__c", got)
	}

	if got := defaultExternalID([]api.ObjectField{{Name: "Name"}}); got != "" {
		t.Errorf("defaultExternalID() = %s, want empty", got)
	}
}

func TestLoadSavedMapping(t *testing.T) {
	mappings := []api.FieldMapping{
		{
			OrgID:       "org-1",
			ObjectName:  "Contact",
			MappingName: "marketing",
			MappingJSON: `{"Full Name":"Name","E-Mail":"Email"}`,
		},
		{
			OrgID:       "org-1",
			ObjectName:  "Contact",
			MappingName: "broken",
			MappingJSON: `{not json`,
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/data-forge/mappings" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(mappings)
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, nil)
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	mapping, err := loadSavedMapping(cmd, client, "org-1", "Contact", "marketing")
	if err != nil {
		t.Fatalf("loadSavedMapping() error = %v", err)
	}
	if mapping["Full Name"] != "Name" || mapping["E-Mail"] != "Email" {
		t.Errorf("loadSavedMapping() = %v", mapping)
	}

	if _, err := loadSavedMapping(cmd, client, "org-1", "Contact", "missing"); err == nil {
		t.Error("loadSavedMapping() should fail for an unknown name")
	}

	if _, err := loadSavedMapping(cmd, client, "org-1", "Contact", "broken"); err == nil {
		t.Error("loadSavedMapping() should fail for corrupt json")
	}
}

func TestImportRunRejectsBadOperation(t *testing.T) {
	cmd := importRunCmd
	if err := cmd.Flags().Set("operation", "merge"); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cmd.Flags().Set("operation", "insert") }()

	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, []string{"Contact", "contacts.csv"})
	if err == nil {
		t.Fatal("expected an error for an unknown operation")
	}
}
