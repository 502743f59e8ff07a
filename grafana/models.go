package grafana

import (
	"encoding/json"

	"github.com/juju/errors"
	"github.com/thedevsaddam/gojsonq"
)

// Dashboard is the slice of a Grafana dashboard grafink cares about: enough
// to find a panel and re-run its queries.
type Dashboard struct {
	UID    string
	Title  string
	Panels []*Panel
}

// Panel keeps the original panel JSON alongside the parsed essentials so
// display options can be dug out lazily.
type Panel struct {
	ID          int
	Type        string
	Title       string
	Description string

	// Datasource is forwarded verbatim into targets that lack their own;
	// depending on dashboard schema it is a name string or a {type,uid}
	// object.
	Datasource interface{}
	Targets    []map[string]interface{}

	raw json.RawMessage
}

// ThresholdStep is one ascending threshold bound. A nil Value is the base
// step and matches everything.
type ThresholdStep struct {
	Value *float64
	Color string
}

// Panel returns the panel with the given id, or nil.
func (d *Dashboard) Panel(id int) *Panel {
	for _, p := range d.Panels {
		if p.ID == id {
			return p
		}
	}
	return nil
}

type dashboardJSON struct {
	UID    string            `json:"uid"`
	Title  string            `json:"title"`
	Panels []json.RawMessage `json:"panels"`
}

type panelJSON struct {
	ID          int                      `json:"id"`
	Type        string                   `json:"type"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Datasource  interface{}              `json:"datasource"`
	Targets     []map[string]interface{} `json:"targets"`

	// Row panels nest their children here.
	Panels []json.RawMessage `json:"panels"`
}

func parseDashboard(body []byte) (*Dashboard, error) {
	var env struct {
		Dashboard json.RawMessage `json:"dashboard"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Annotate(err, "decoding dashboard envelope")
	}
	if len(env.Dashboard) == 0 {
		return nil, errors.New("response carries no dashboard object")
	}

	var dj dashboardJSON
	if err := json.Unmarshal(env.Dashboard, &dj); err != nil {
		return nil, errors.Annotate(err, "decoding dashboard")
	}

	panels, err := parsePanels(dj.Panels)
	if err != nil {
		return nil, err
	}
	return &Dashboard{UID: dj.UID, Title: dj.Title, Panels: panels}, nil
}

// parsePanels flattens row containers so collapsed rows do not hide panels.
func parsePanels(raw []json.RawMessage) ([]*Panel, error) {
	panels := make([]*Panel, 0, len(raw))
	for _, rp := range raw {
		var pj panelJSON
		if err := json.Unmarshal(rp, &pj); err != nil {
			return nil, errors.Annotate(err, "decoding panel")
		}
		if pj.Type == "row" {
			nested, err := parsePanels(pj.Panels)
			if err != nil {
				return nil, err
			}
			panels = append(panels, nested...)
			continue
		}
		panels = append(panels, &Panel{
			ID:          pj.ID,
			Type:        pj.Type,
			Title:       pj.Title,
			Description: pj.Description,
			Datasource:  pj.Datasource,
			Targets:     pj.Targets,
			raw:         rp,
		})
	}
	return panels, nil
}

func (p *Panel) find(path string) interface{} {
	if len(p.raw) == 0 {
		return nil
	}
	return gojsonq.New().FromString(string(p.raw)).Find(path)
}

// Unit is the panel's display unit, empty when unset.
func (p *Panel) Unit() string {
	if s, ok := p.find("fieldConfig.defaults.unit").(string); ok {
		return s
	}
	return ""
}

func (p *Panel) Decimals() *int {
	if f, ok := p.find("fieldConfig.defaults.decimals").(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

func (p *Panel) FieldMin() *float64 {
	return asFloat(p.find("fieldConfig.defaults.min"))
}

func (p *Panel) FieldMax() *float64 {
	return asFloat(p.find("fieldConfig.defaults.max"))
}

// Thresholds returns the panel's threshold steps in dashboard order, which
// Grafana keeps ascending.
func (p *Panel) Thresholds() []ThresholdStep {
	steps, ok := p.find("fieldConfig.defaults.thresholds.steps").([]interface{})
	if !ok {
		return nil
	}
	out := make([]ThresholdStep, 0, len(steps))
	for _, s := range steps {
		m, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		st := ThresholdStep{Value: asFloat(m["value"])}
		if c, ok := m["color"].(string); ok {
			st.Color = c
		}
		out = append(out, st)
	}
	return out
}

func asFloat(v interface{}) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}
