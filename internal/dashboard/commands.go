package dashboard

import "github.com/mwiater/edudash/internal/results"

// Command is one user or network event applied to a Controller.
type Command interface {
	apply(c *Controller) error
}

// ActivateTab is a tab click.
type ActivateTab struct{ TabID string }

// IngestResult delivers a payload that arrived without an upload form.
type IngestResult struct{ Result *results.AggregateResult }

// ChangeFilter is a dropdown change.
type ChangeFilter struct{ Value string }

// CompleteUpload delivers the outcome of the outstanding upload.
type CompleteUpload struct {
	Result *results.AggregateResult
	Err    error
}

func (cmd ActivateTab) apply(c *Controller) error { return c.Activate(cmd.TabID) }

func (cmd IngestResult) apply(c *Controller) error {
	c.Ingest(cmd.Result)
	return nil
}

func (cmd ChangeFilter) apply(c *Controller) error {
	c.FilterChanged(cmd.Value)
	return nil
}

func (cmd CompleteUpload) apply(c *Controller) error {
	c.FinishUpload(cmd.Result, cmd.Err)
	return nil
}

// Dispatch applies cmd. Every state change goes through one of these
// commands so that ordering lives in a single place.
func (c *Controller) Dispatch(cmd Command) error {
	return cmd.apply(c)
}
