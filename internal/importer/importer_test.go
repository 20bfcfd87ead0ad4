package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgforge/orgforge/internal/api"
)

const sampleCSV = `Name,Email,Account Id
Ada Lovelace,ada@example.com,001A
Grace Hopper,grace@example.com,001B
`

func accountFields() []api.ObjectField {
	return []api.ObjectField{
		{Name: "Name", Label: "Full Name", Required: true},
		{Name: "Email", Label: "Email"},
		{Name: "AccountId", Label: "Account Id", ExternalID: true},
	}
}

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Email", "Account Id"}, f.Headers)
	assert.Equal(t, 2, f.RowCount())
	assert.Len(t, f.Checksum, 64, "blake3 hex digest")
}

func TestParse_ChecksumIsContentDerived(t *testing.T) {
	a, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	b, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	c, err := Parse(strings.NewReader(sampleCSV + "Extra,x@y.z,001C\n"))
	require.NoError(t, err)

	assert.Equal(t, a.Checksum, b.Checksum)
	assert.NotEqual(t, a.Checksum, c.Checksum)
}

func TestParse_Failures(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err, "empty file")

	_, err = Parse(strings.NewReader("a,b\n1,2,3\n"))
	assert.Error(t, err, "ragged row")

	_, err = Parse(strings.NewReader("a,,c\n1,2,3\n"))
	assert.Error(t, err, "blank header")
}

func TestAutoMap(t *testing.T) {
	mapping := AutoMap([]string{"name", "EMAIL", "Account Id", "Unrelated"}, accountFields())

	assert.Equal(t, map[string]string{
		"name":       "Name",
		"EMAIL":      "Email",
		"Account Id": "AccountId",
	}, mapping)
}

func TestApplyMapping(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	records := ApplyMapping(f, map[string]string{
		"Name":       "Name",
		"Account Id": "AccountId",
	})

	require.Len(t, records, 2)
	assert.Equal(t, map[string]string{"Name": "Ada Lovelace", "AccountId": "001A"}, records[0])
	assert.NotContains(t, records[0], "Email", "unmapped column dropped")
}

func TestApplyMapping_OmitsEmptyCells(t *testing.T) {
	f, err := Parse(strings.NewReader("Name,Email\nAda,\n"))
	require.NoError(t, err)

	records := ApplyMapping(f, map[string]string{"Name": "Name", "Email": "Email"})

	require.Len(t, records, 1)
	assert.Equal(t, map[string]string{"Name": "Ada"}, records[0])
}

func TestValidateMapping(t *testing.T) {
	fields := accountFields()

	err := ValidateMapping(map[string]string{"Name": "Name"}, fields, OperationInsert, "")
	assert.NoError(t, err)

	err = ValidateMapping(map[string]string{"Name": "Nope"}, fields, OperationInsert, "")
	assert.Error(t, err, "unknown target field")

	err = ValidateMapping(map[string]string{"Name": "Name"}, fields, OperationUpsert, "")
	assert.Error(t, err, "upsert without external id")

	err = ValidateMapping(map[string]string{"Name": "Name"}, fields, OperationUpsert, "AccountId")
	assert.Error(t, err, "external id not mapped")

	err = ValidateMapping(map[string]string{"Account Id": "AccountId"}, fields, OperationUpsert, "AccountId")
	assert.NoError(t, err)
}
