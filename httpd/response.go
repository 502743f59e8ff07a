package httpd

import (
	"encoding/json"
	"net/http"
)

// errorCard is the failure payload. It reuses the panel_type key so a
// device template can render the failure in place of the panel.
type errorCard struct {
	PanelType string `json:"panel_type"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"error_message"`
	RetryIn   int    `json:"retry_after,omitempty"`
}

func errCard(msg string) errorCard {
	return errorCard{PanelType: "error", Message: msg}
}

// writeJSON marshals v and writes it with the given status. A marshal
// failure turns into a plain 500.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encoding response failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError reports a request rejected before it reached the pipeline.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
