package jamai

import (
	"encoding/json"
	"fmt"

	"github.com/zatekoja/clinicassistant/internal/domain/providers"
)

type addRowsRequest struct {
	TableID string                   `json:"table_id"`
	Data    []map[string]interface{} `json:"data"`
	Stream  bool                     `json:"stream"`
}

type updateRowRequest struct {
	TableID   string                 `json:"table_id"`
	RowID     string                 `json:"row_id"`
	ProjectID string                 `json:"project_id,omitempty"`
	Data      map[string]interface{} `json:"data"`
}

type addRowsResponse struct {
	Rows []generatedRow `json:"rows"`
}

type generatedRow struct {
	RowID   string                     `json:"row_id"`
	Columns map[string]json.RawMessage `json:"columns"`
}

// completionCell is the shape of a generated output column
type completionCell struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// firstRow reduces the first returned row to column -> generated text. Columns
// that are not completions, or whose content is empty, are left out.
func (r *addRowsResponse) firstRow() *providers.GeneratedRow {
	out := &providers.GeneratedRow{Columns: map[string]string{}}
	if len(r.Rows) == 0 {
		return out
	}

	row := r.Rows[0]
	out.RowID = row.RowID
	for name, raw := range row.Columns {
		var cell completionCell
		if err := json.Unmarshal(raw, &cell); err != nil {
			continue
		}
		if len(cell.Choices) == 0 || cell.Choices[0].Message.Content == "" {
			continue
		}
		out.Columns[name] = cell.Choices[0].Message.Content
	}
	return out
}

// extractRows accepts the list payload as {"rows": [...]}, {"items": [...]} or a
// bare array. Entries that are not objects become empty rows.
func extractRows(body interface{}) ([]map[string]interface{}, error) {
	var list []interface{}

	switch v := body.(type) {
	case []interface{}:
		list = v
	case map[string]interface{}:
		if rows, ok := v["rows"].([]interface{}); ok {
			list = rows
		} else if items, ok := v["items"].([]interface{}); ok {
			list = items
		} else {
			return nil, fmt.Errorf("unexpected list rows payload: no rows or items array")
		}
	case nil:
		return []map[string]interface{}{}, nil
	default:
		return nil, fmt.Errorf("unexpected list rows payload of type %T", body)
	}

	rows := make([]map[string]interface{}, 0, len(list))
	for _, entry := range list {
		row, ok := entry.(map[string]interface{})
		if !ok {
			row = map[string]interface{}{}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
