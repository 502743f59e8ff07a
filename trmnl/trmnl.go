// Package trmnl delivers rendered panel data to a TRMNL device webhook.
package trmnl

import (
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/grafink/grafink/config"
	l "github.com/grafink/grafink/logger"
	"github.com/grafink/grafink/metrics"
	"github.com/grafink/grafink/transform"
)

// Client posts merge variable payloads to a TRMNL custom plugin webhook.
type Client struct {
	url  string
	rest *resty.Client
	log  *zap.SugaredLogger
}

type payload struct {
	MergeVariables map[string]interface{} `json:"merge_variables"`
}

func New(c *config.C, webhookURL string) (cl *Client, err error) {
	cl = &Client{url: webhookURL}

	cl.log, err = l.NewLogConfig(c, "trmnl")
	if err != nil {
		return cl, errors.Annotate(err, "creating trmnl logger")
	}

	cl.rest = resty.New()
	cl.rest.SetTimeout(c.QueryTimeoutDuration())
	cl.rest.SetHeader("Content-Type", "application/json")

	return cl, err
}

// Send flattens d into merge variables and posts them to the webhook.
func (cl *Client) Send(d *transform.Data) error {
	return cl.post(payload{MergeVariables: d.MergeVariables()})
}

// SendError pushes an error card so the device shows the failure instead
// of a stale panel.
func (cl *Client) SendError(title, message string) error {
	return cl.post(payload{MergeVariables: map[string]interface{}{
		"panel_type": "error",
		"title":      title,
		"error":      message,
		"timestamp":  time.Now().UTC().Format("2006-01-02 15:04 MST"),
	}})
}

func (cl *Client) post(p payload) error {
	resp, err := cl.rest.R().SetBody(p).Post(cl.url)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return errors.NewTimeout(err, fmt.Sprintf("webhook %s", cl.url))
		}
		return errors.Annotatef(err, "posting to webhook %s", cl.url)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		return errors.Errorf("webhook %s returned status %d: %s",
			cl.url, resp.StatusCode(), snippet(resp.Body()))
	}

	metrics.WebhookDeliveries.WithLabelValues("ok").Inc()
	cl.log.Debugf("webhook accepted payload, status %d", resp.StatusCode())
	return nil
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
