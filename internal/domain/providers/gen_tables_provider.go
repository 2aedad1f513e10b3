package providers

import (
	"context"
	"errors"
	"fmt"
)

// TableKind selects the gen_tables family a table belongs to
type TableKind string

const (
	TableKindAction TableKind = "action"
	TableKindChat   TableKind = "chat"
)

// GeneratedRow is a row returned by an add-rows call, reduced to the text the
// model generated for each output column.
type GeneratedRow struct {
	RowID   string
	Columns map[string]string
}

// Text returns the generated content of column, or "" when the column produced none
func (r *GeneratedRow) Text(column string) string {
	if r == nil || r.Columns == nil {
		return ""
	}
	return r.Columns[column]
}

// GenTablesProvider defines the hosted generative-tables operations the service uses
type GenTablesProvider interface {
	// AddRow appends one row to a table and returns the generated output columns
	AddRow(ctx context.Context, kind TableKind, tableID string, data map[string]interface{}) (*GeneratedRow, error)

	// ListRows returns the raw rows of a table as decoded JSON objects
	ListRows(ctx context.Context, kind TableKind, tableID string) ([]map[string]interface{}, error)

	// UpdateRow writes the given cells of one row and returns the upstream response body
	UpdateRow(ctx context.Context, kind TableKind, tableID, rowID string, data map[string]interface{}) (interface{}, error)

	// ListTables returns the table listing of a family, including row counts
	ListTables(ctx context.Context, kind TableKind) (interface{}, error)
}

// UpstreamError is returned when the tables API answers with a non-2xx status
type UpstreamError struct {
	StatusCode int
	Message    string
	Body       interface{}
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gen_tables request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gen_tables request failed with status %d", e.StatusCode)
}

// FailureDetails describes an outbound failure for error responses without echoing
// the upstream body
func FailureDetails(err error) string {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return fmt.Sprintf("API request failed: %d", upstream.StatusCode)
	}
	return err.Error()
}
