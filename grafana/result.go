package grafana

import "sort"

// Point is one raw sample. Both members stay untyped until the transformers
// coerce them, so a single bad sample can be skipped instead of failing the
// whole series.
type Point struct {
	Time  interface{}
	Value interface{}
}

// Series is one value field of a time-shaped frame.
type Series struct {
	Name   string
	Labels map[string]string
	Points []Point
}

type Column struct {
	Name string
	Type string
}

// Table is a row-major view of a table-shaped frame.
type Table struct {
	Columns []Column
	Rows    [][]interface{}
}

// Result is one query response in normal form. At most one of Series and
// Table is populated; both empty means the upstream returned no data.
type Result struct {
	Series []Series
	Table  *Table
}

func (r *Result) Empty() bool {
	return len(r.Series) == 0 && r.Table == nil
}

type fieldJSON struct {
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Labels map[string]string `json:"labels"`
}

type frameSchema struct {
	Name   string      `json:"name"`
	RefID  string      `json:"refId"`
	Fields []fieldJSON `json:"fields"`
}

type frameData struct {
	Values [][]interface{} `json:"values"`
}

// frameJSON accepts both response generations: current frames nest fields
// under schema and columns under data, older ones keep both at the root.
type frameJSON struct {
	Schema *frameSchema `json:"schema"`
	Data   *frameData   `json:"data"`

	Name   string          `json:"name"`
	RefID  string          `json:"refId"`
	Fields []fieldJSON     `json:"fields"`
	Values [][]interface{} `json:"values"`
}

type refResult struct {
	Error  string      `json:"error"`
	Frames []frameJSON `json:"frames"`
}

type queryResponse struct {
	Results map[string]refResult `json:"results"`
}

func (f *frameJSON) normalize() (name string, fields []fieldJSON, values [][]interface{}) {
	name, fields, values = f.Name, f.Fields, f.Values
	if f.Schema != nil {
		if f.Schema.Name != "" {
			name = f.Schema.Name
		}
		fields = f.Schema.Fields
		if name == "" {
			name = f.Schema.RefID
		}
	}
	if f.Data != nil {
		values = f.Data.Values
	}
	if name == "" {
		name = f.RefID
	}
	return name, fields, values
}

// parseFrames folds every frame of every ref into one Result. Frames with a
// time-typed field become series, anything else becomes the table; when both
// shapes appear the series win. The second return is the first upstream
// error message, for callers to surface when nothing parsed at all.
func parseFrames(qr *queryResponse) (*Result, string) {
	res := &Result{}
	var upstreamErr string

	refs := make([]string, 0, len(qr.Results))
	for ref := range qr.Results {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	for _, ref := range refs {
		rr := qr.Results[ref]
		if rr.Error != "" && upstreamErr == "" {
			upstreamErr = rr.Error
		}
		for i := range rr.Frames {
			frameInto(res, &rr.Frames[i], ref)
		}
	}

	if len(res.Series) > 0 {
		res.Table = nil
	}
	return res, upstreamErr
}

func frameInto(res *Result, f *frameJSON, ref string) {
	name, fields, values := f.normalize()
	if len(fields) == 0 || len(values) == 0 {
		return
	}

	timeIdx := -1
	for i, fld := range fields {
		if fld.Type == "time" {
			timeIdx = i
			break
		}
	}

	if timeIdx < 0 || len(fields) < 2 {
		if res.Table == nil {
			res.Table = tableFrom(fields, values)
		}
		return
	}

	times := values[timeIdx]
	valueFields := len(fields) - 1
	for i, fld := range fields {
		if i == timeIdx || i >= len(values) {
			continue
		}
		pts := make([]Point, 0, len(values[i]))
		for j, v := range values[i] {
			if j >= len(times) {
				break
			}
			pts = append(pts, Point{Time: times[j], Value: v})
		}
		res.Series = append(res.Series, Series{
			Name:   seriesName(fld, name, ref, valueFields),
			Labels: fld.Labels,
			Points: pts,
		})
	}
}

// seriesName picks the raw identifier: the field name when the frame holds
// several value fields, otherwise the frame name, falling back to the refId.
func seriesName(fld fieldJSON, frameName, ref string, valueFields int) string {
	if valueFields > 1 && fld.Name != "" {
		return fld.Name
	}
	if frameName != "" {
		return frameName
	}
	if fld.Name != "" {
		return fld.Name
	}
	return ref
}

func tableFrom(fields []fieldJSON, values [][]interface{}) *Table {
	t := &Table{Columns: make([]Column, len(fields))}
	rows := 0
	for i, fld := range fields {
		t.Columns[i] = Column{Name: fld.Name, Type: fld.Type}
		if i < len(values) && len(values[i]) > rows {
			rows = len(values[i])
		}
	}
	t.Rows = make([][]interface{}, rows)
	for r := 0; r < rows; r++ {
		row := make([]interface{}, len(fields))
		for c := range fields {
			if c < len(values) && r < len(values[c]) {
				row[c] = values[c][r]
			}
		}
		t.Rows[r] = row
	}
	return t
}
