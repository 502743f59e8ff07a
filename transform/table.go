package transform

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/grafink/grafink/grafana"
)

// normalizeTable passes the table through, coercing each cell by its
// column's declared type.
func normalizeTable(res *grafana.Result, p Params) (*Data, error) {
	if len(res.Series) > 0 {
		return nil, errors.Annotatef(ErrShapeMismatch, "expected a table, got %d series", len(res.Series))
	}

	td := &TableData{Columns: []string{}, Rows: [][]string{}}
	if res.Table == nil {
		return &Data{Table: td}, nil
	}

	for _, c := range res.Table.Columns {
		td.Columns = append(td.Columns, c.Name)
	}

	for _, row := range res.Table.Rows {
		out := make([]string, len(row))
		for i, cell := range row {
			typ := ""
			if i < len(res.Table.Columns) {
				typ = res.Table.Columns[i].Type
			}
			out[i] = formatCell(cell, typ, p)
		}
		td.Rows = append(td.Rows, out)
	}
	td.RowCount = len(td.Rows)

	return &Data{Table: td}, nil
}

func formatCell(v interface{}, typ string, p Params) string {
	if v == nil {
		return ""
	}

	switch typ {
	case "number":
		if f, ok := toFloat(v); ok {
			return FormatValue(&f, "", p.Decimals)
		}
	case "boolean", "bool":
		if b, ok := v.(bool); ok {
			return yesNo(b)
		}
	case "time":
		if ts, ok := toTime(v); ok {
			return ts.Time().In(p.location()).Format("2006-01-02 15:04")
		}
	}

	// Untyped or mistyped columns fall back on the value itself.
	switch c := v.(type) {
	case string:
		return c
	case bool:
		return yesNo(c)
	case float64:
		return FormatValue(&c, "", p.Decimals)
	default:
		return fmt.Sprintf("%v", c)
	}
}
