package httpd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/julienschmidt/httprouter"
	uuid "github.com/satori/go.uuid"

	"github.com/grafink/grafink/pipeline"
	"github.com/grafink/grafink/ratelimit"
	"github.com/grafink/grafink/sample"
	"github.com/grafink/grafink/transform"
)

// dataRequest is the optional POST body of the data endpoints. Every field
// overlays the server configuration; absent fields keep the configured
// value. panel_id and variables tolerate the loose typing dashboards and
// plugin UIs produce, a number or a numeric string, an object or an object
// encoded as a string.
type dataRequest struct {
	GrafanaURL   string          `json:"grafana_url"`
	APIKey       string          `json:"api_key"`
	DashboardUID string          `json:"dashboard_uid"`
	PanelID      interface{}     `json:"panel_id"`
	PanelType    string          `json:"panel_type"`
	TimeFrom     string          `json:"time_from"`
	TimeTo       string          `json:"time_to"`
	Label        string          `json:"label"`
	Timezone     string          `json:"timezone"`
	MaxPoints    int             `json:"max_points"`
	Variables    json.RawMessage `json:"variables"`
}

func (s *Service) handlerData(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rid := uuid.NewV4().String()
	w.Header().Set("X-Request-Id", rid)

	q, err := s.requestQuery(r)
	if err != nil {
		s.log.Warnf("[%s] bad request: %v", rid, err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.log.Infof("[%s] dashboard=%s panel=%d window=%s..%s",
		rid, q.DashboardUID, q.PanelID, q.TimeFrom, q.TimeTo)

	d, err := s.pipe.Transform(q)
	if err != nil {
		s.failData(w, rid, err)
		return
	}

	writeJSON(w, http.StatusOK, d.MergeVariables())
}

// requestQuery builds the query from the server configuration, overlaid
// with the POST body when one is present.
func (s *Service) requestQuery(r *http.Request) (pipeline.Query, error) {
	q := pipeline.QueryFromConfig(s.conf)
	if r.Method != http.MethodPost {
		return q, nil
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return q, errors.Annotate(err, "reading request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return q, nil
	}

	var req dataRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return q, errors.NewNotValid(err, "invalid request body")
	}
	return req.overlay(q)
}

func (req dataRequest) overlay(q pipeline.Query) (pipeline.Query, error) {
	if req.GrafanaURL != "" {
		q.SourceURL = strings.TrimRight(req.GrafanaURL, "/")
	}
	if req.APIKey != "" {
		q.APIKey = req.APIKey
	}
	if req.DashboardUID != "" {
		q.DashboardUID = req.DashboardUID
	}
	if req.PanelType != "" {
		q.PanelType = req.PanelType
	}
	if req.TimeFrom != "" {
		q.TimeFrom = req.TimeFrom
	}
	if req.TimeTo != "" {
		q.TimeTo = req.TimeTo
	}
	if req.Label != "" {
		q.Label = req.Label
	}
	if req.MaxPoints > 0 {
		q.MaxPoints = req.MaxPoints
	}

	if req.PanelID != nil {
		id, err := panelID(req.PanelID)
		if err != nil {
			return q, err
		}
		q.PanelID = id
	}

	if req.Timezone != "" {
		loc, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return q, errors.NewNotValid(err, fmt.Sprintf("unknown timezone %q", req.Timezone))
		}
		q.TZ = loc
	}

	vars, err := requestVariables(req.Variables)
	if err != nil {
		return q, err
	}
	if len(vars) > 0 {
		merged := make(map[string]string, len(q.Variables)+len(vars))
		for k, v := range q.Variables {
			merged[k] = v
		}
		for k, v := range vars {
			merged[k] = v
		}
		q.Variables = merged
	}

	return q, nil
}

func panelID(v interface{}) (int, error) {
	switch id := v.(type) {
	case float64:
		return int(id), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			return 0, errors.NewNotValid(nil, fmt.Sprintf("panel_id %q is not an integer", id))
		}
		return n, nil
	default:
		return 0, errors.NewNotValid(nil, "panel_id must be an integer")
	}
}

func requestVariables(raw json.RawMessage) (map[string]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var asAny map[string]interface{}
	if err := json.Unmarshal(raw, &asAny); err == nil {
		return stringValues(asAny), nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if strings.TrimSpace(asString) == "" {
			return nil, nil
		}
		if err := json.Unmarshal([]byte(asString), &asAny); err != nil {
			return nil, errors.NewNotValid(err, "variables must be a JSON object")
		}
		return stringValues(asAny), nil
	}

	return nil, errors.NewNotValid(nil, "variables must be a JSON object")
}

func stringValues(m map[string]interface{}) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch s := v.(type) {
		case string:
			out[k] = s
		default:
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}

// failData maps a pipeline failure to its HTTP status and an error card
// the device can render.
func (s *Service) failData(w http.ResponseWriter, rid string, err error) {
	if le, ok := ratelimit.IsLimit(err); ok {
		s.log.Warnf("[%s] %v", rid, le)
		w.Header().Set("Retry-After", strconv.Itoa(le.RetryAfter))
		card := errCard(le.Error())
		card.RetryIn = le.RetryAfter
		writeJSON(w, http.StatusTooManyRequests, card)
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Errorf("[%s] transform failed: %v", rid, err)
	} else {
		s.log.Warnf("[%s] transform rejected: %v", rid, err)
	}
	writeJSON(w, status, errCard(err.Error()))
}

func statusFor(err error) int {
	switch {
	case errors.IsNotValid(err), errors.IsNotSupported(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsUnauthorized(err):
		return http.StatusBadGateway
	case errors.IsTimeout(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) handlerHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlerTest serves the canned payloads so device templates can be
// developed without a Grafana instance. Canonical kinds return their own
// payload; dashboard aliases map to whatever kind they render as, the same
// way a real panel would.
func (s *Service) handlerTest(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	name := ps.ByName("type")

	d, ok := sample.Data(transform.Kind(strings.ToLower(strings.TrimSpace(name))))
	if !ok {
		if kind, err := transform.ResolveKind(name); err == nil {
			d, ok = sample.Data(kind)
		}
	}
	if ok {
		writeJSON(w, http.StatusOK, d.MergeVariables())
		return
	}

	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":           fmt.Sprintf("unknown panel type: %s", name),
		"available_types": sample.Kinds(),
	})
}
