package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/api"
	"github.com/orgforge/orgforge/internal/importer"
	"github.com/orgforge/orgforge/internal/ux"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk data imports for the active org",
}

// importRunCmd parses a CSV, maps its columns, and starts an import job
var importRunCmd = &cobra.Command{
	Use:   "run <objectName> <file.csv>",
	Short: "Import a CSV file into an object",
	Long: `Parse a CSV file, map its columns onto the target object's fields,
and start an import job.

Columns are matched against field names and labels automatically; use
--no-input to accept the proposed mapping without review, or --mapping
to reuse a saved one.

Examples:
  orgforge import run Contact contacts.csv
  orgforge import run Account accounts.csv --operation upsert --external-id External_Key__c
  orgforge import run Lead leads.csv --mapping marketing-leads --no-input`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		operation, _ := cmd.Flags().GetString("operation")
		externalID, _ := cmd.Flags().GetString("external-id")
		mappingName, _ := cmd.Flags().GetString("mapping")
		saveMapping, _ := cmd.Flags().GetString("save-mapping")
		noInput, _ := cmd.Flags().GetBool("no-input")

		operation = strings.ToUpper(operation)
		switch operation {
		case importer.OperationInsert, importer.OperationUpdate, importer.OperationUpsert:
		default:
			return fmt.Errorf("invalid --operation %q, expected insert, update, or upsert", operation)
		}

		objectName, fileName := args[0], args[1]

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		f, err := os.Open(fileName)
		if err != nil {
			return ux.FormatError(err, "opening csv file")
		}
		defer f.Close()

		file, err := importer.Parse(f)
		if err != nil {
			return ux.FormatError(err, "parsing csv file")
		}

		fields, err := a.Client.GetObjectFields(cmd.Context(), orgID, objectName)
		if err != nil {
			return ux.FormatError(err, "describing object")
		}

		var mapping map[string]string
		if mappingName != "" {
			mapping, err = loadSavedMapping(cmd, a.Client, orgID, objectName, mappingName)
			if err != nil {
				return err
			}
		} else {
			mapping = importer.AutoMap(file.Headers, fields)
		}

		if !noInput {
			mapping, err = reviewMapping(file.Headers, fields, mapping)
			if err != nil {
				return err
			}
		}

		if operation == importer.OperationUpsert && externalID == "" {
			externalID = defaultExternalID(fields)
		}
		if err := importer.ValidateMapping(mapping, fields, operation, externalID); err != nil {
			return err
		}

		if saveMapping != "" {
			raw, err := json.Marshal(mapping)
			if err != nil {
				return err
			}
			createdBy := ""
			if user := a.Auth.User(); user != nil {
				createdBy = user.Email
			}
			if _, err := a.Client.SaveFieldMapping(cmd.Context(), api.FieldMapping{
				OrgID:       orgID,
				ObjectName:  objectName,
				MappingName: saveMapping,
				MappingJSON: string(raw),
				CreatedBy:   createdBy,
			}); err != nil {
				return ux.FormatError(err, "saving mapping")
			}
		}

		records := importer.ApplyMapping(file, mapping)
		if len(records) == 0 {
			return fmt.Errorf("no data rows in %s", fileName)
		}

		if !noInput {
			prompt := fmt.Sprintf("Import %d records into %s (%s)?", len(records), objectName, strings.ToLower(operation))
			if !ux.Confirm(prompt, true) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		createdBy := ""
		if user := a.Auth.User(); user != nil {
			createdBy = user.Email
		}
		job, err := a.Client.CreateImportJob(cmd.Context(), api.CreateImportJobRequest{
			OrgID:      orgID,
			ObjectName: objectName,
			Operation:  operation,
			FileName:   filepath.Base(fileName),
			Checksum:   file.Checksum,
			ExternalID: externalID,
			Records:    records,
			CreatedBy:  createdBy,
		})
		if err != nil {
			return ux.FormatError(err, "creating import job")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Import job #%d started: %d records (%s)\n", job.ID, job.TotalRecords, job.Status)
		return nil
	},
}

// importJobsCmd lists import jobs
var importJobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List import jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		jobs, err := a.Client.GetImportJobs(cmd.Context(), orgID, page)
		if err != nil {
			return ux.FormatError(err, "listing import jobs")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(jobs)
		}

		table := ux.NewTable("ID", "OBJECT", "OPERATION", "STATUS", "RECORDS", "ERRORS")
		for _, job := range jobs.Content {
			table.AddRow(
				strconv.FormatInt(job.ID, 10),
				job.ObjectName,
				job.Operation,
				job.Status,
				fmt.Sprintf("%d/%d", job.ProcessedRecords, job.TotalRecords),
				strconv.Itoa(job.ErrorCount),
			)
		}
		return f.Format(table)
	},
}

// importShowCmd shows one job with its row errors
var importShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an import job and its row errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}

		a, _, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		job, err := a.Client.GetImportJob(cmd.Context(), id)
		if err != nil {
			return ux.FormatError(err, "fetching import job")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(job)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Job #%d  %s into %s\n", job.ID, job.Operation, job.ObjectName)
		fmt.Fprintf(out, "Status:    %s\n", job.Status)
		fmt.Fprintf(out, "Processed: %d/%d (%d ok, %d failed)\n",
			job.ProcessedRecords, job.TotalRecords, job.SuccessCount, job.ErrorCount)
		if job.FileName != "" {
			fmt.Fprintf(out, "File:      %s\n", job.FileName)
		}
		for _, rowErr := range job.Errors {
			fmt.Fprintf(out, "  row %d: %s\n", rowErr.RowNumber, rowErr.Message)
		}
		return nil
	},
}

// importMappingsCmd lists saved column mappings for an object
var importMappingsCmd = &cobra.Command{
	Use:   "mappings <objectName>",
	Short: "List saved column mappings for an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		mappings, err := a.Client.GetFieldMappings(cmd.Context(), orgID, args[0])
		if err != nil {
			return ux.FormatError(err, "listing mappings")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(mappings)
		}

		table := ux.NewTable("NAME", "OBJECT", "COLUMNS", "CREATED BY")
		for _, m := range mappings {
			columns := map[string]string{}
			_ = json.Unmarshal([]byte(m.MappingJSON), &columns)
			table.AddRow(m.MappingName, m.ObjectName, strconv.Itoa(len(columns)), m.CreatedBy)
		}
		return f.Format(table)
	},
}

func loadSavedMapping(cmd *cobra.Command, client *api.Client, orgID, objectName, name string) (map[string]string, error) {
	mappings, err := client.GetFieldMappings(cmd.Context(), orgID, objectName)
	if err != nil {
		return nil, ux.FormatError(err, "loading saved mappings")
	}
	for _, m := range mappings {
		if m.MappingName != name {
			continue
		}
		mapping := map[string]string{}
		if err := json.Unmarshal([]byte(m.MappingJSON), &mapping); err != nil {
			return nil, fmt.Errorf("saved mapping %q is corrupt: %w", name, err)
		}
		return mapping, nil
	}
	return nil, fmt.Errorf("no saved mapping %q for %s", name, objectName)
}

// reviewMapping runs one select per CSV column so the proposed mapping
// can be adjusted before upload. Picking the blank option skips the
// column.
func reviewMapping(headers []string, fields []api.ObjectField, proposed map[string]string) (map[string]string, error) {
	const skip = "(skip column)"

	options := make([]huh.Option[string], 0, len(fields)+1)
	options = append(options, huh.NewOption(skip, skip))
	for _, f := range fields {
		label := f.Name
		if f.Label != "" && f.Label != f.Name {
			label = fmt.Sprintf("%s (%s)", f.Name, f.Label)
		}
		options = append(options, huh.NewOption(label, f.Name))
	}

	selections := make([]string, len(headers))
	groupFields := make([]huh.Field, 0, len(headers))
	for i, header := range headers {
		selections[i] = skip
		if field, ok := proposed[header]; ok {
			selections[i] = field
		}
		groupFields = append(groupFields, huh.NewSelect[string]().
			Title(fmt.Sprintf("Column %q", header)).
			Options(options...).
			Value(&selections[i]))
	}

	form := huh.NewForm(huh.NewGroup(groupFields...).Title("Column mapping"))
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("mapping review failed: %w", err)
	}

	mapping := map[string]string{}
	for i, header := range headers {
		if selections[i] != skip {
			mapping[header] = selections[i]
		}
	}
	return mapping, nil
}

func defaultExternalID(fields []api.ObjectField) string {
	for _, f := range fields {
		if f.ExternalID {
			return f.Name
		}
	}
	return ""
}

func init() {
	importRunCmd.Flags().String("operation", "insert", "insert, update, or upsert")
	importRunCmd.Flags().String("external-id", "", "external id field for upserts")
	importRunCmd.Flags().String("mapping", "", "name of a saved column mapping to reuse")
	importRunCmd.Flags().String("save-mapping", "", "save the final mapping under this name")
	importRunCmd.Flags().Bool("no-input", false, "accept the proposed mapping without review")
	importJobsCmd.Flags().Int("page", 0, "result page")

	importCmd.AddCommand(importRunCmd, importJobsCmd, importShowCmd, importMappingsCmd)
	rootCmd.AddCommand(importCmd)
}
