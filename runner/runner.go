// Package runner drives the push strategy: render the configured panel on
// a fixed interval and deliver it to the device webhook.
package runner

import (
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/grafink/grafink/config"
	l "github.com/grafink/grafink/logger"
	"github.com/grafink/grafink/pipeline"
	"github.com/grafink/grafink/trmnl"
)

type R struct {
	conf *config.C
	pipe *pipeline.P
	hook *trmnl.Client

	log *zap.SugaredLogger

	stop chan bool
	wait chan error
}

func New(conf *config.C) (r *R, err error) {
	r = &R{conf: conf}
	r.stop = make(chan bool)
	r.wait = make(chan error)

	if r.log, err = l.NewLogConfig(conf, "pusher"); err != nil {
		return r, err
	}

	if err = conf.ValidatePusher(); err != nil {
		return r, err
	}

	if r.pipe, err = pipeline.New(conf); err != nil {
		return r, err
	}

	if r.hook, err = trmnl.New(conf, conf.WebhookURL); err != nil {
		return r, err
	}

	return r, err
}

func (r *R) Stop() {
	r.stop <- true
}

func (r *R) Wait() chan error {
	return r.wait
}

// StartPusher runs the push loop until Stop is called.
func (r *R) StartPusher() error {
	go r.Run()
	err := <-r.Wait()
	return err
}

// Run pushes once immediately, then on every interval tick. A failed push
// is reported to the device as an error card and the loop keeps going;
// only Stop ends it.
func (r *R) Run() {
	aTimer := time.NewTicker(r.conf.IntervalDuration())
	r.log.Infof("pusher is running, interval %s", r.conf.IntervalDuration())

	r.push()

	for {
		select {
		case <-aTimer.C:
			r.push()

		case <-r.stop:
			aTimer.Stop()
			close(r.wait)
			close(r.stop)
			return
		}
	}
}

// RunOnce performs a single push cycle.
func (r *R) RunOnce() error {
	return r.push()
}

func (r *R) push() error {
	d, err := r.pipe.Transform(pipeline.QueryFromConfig(r.conf))
	if err != nil {
		r.log.Errorf("transform failed: %v", err)
		if her := r.hook.SendError(errorTitle(err), err.Error()); her != nil {
			r.log.Errorf("reporting failure to webhook: %v", her)
		}
		return err
	}

	if err := r.hook.Send(d); err != nil {
		r.log.Errorf("webhook delivery failed: %v", err)
		return err
	}

	r.log.Infof("pushed %s panel %q", d.Kind, d.Title)
	return nil
}

func errorTitle(err error) string {
	switch {
	case errors.IsNotValid(err), errors.IsNotSupported(err), errors.IsNotFound(err):
		return "Configuration Error"
	case errors.IsUnauthorized(err), errors.IsTimeout(err):
		return "Grafana Error"
	default:
		return "Error"
	}
}
