package transform

import (
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/stylesync/internal/engine/buffer"
	"github.com/dshills/stylesync/internal/style"
)

// Entry is one edit of a batch together with the transformation that
// produced it.
type Entry struct {
	Source string
	Edit   buffer.Edit
}

// StepResult is the result of one pipeline step.
type StepResult struct {
	Name   string
	Result Result
}

// Batch is the combined output of one pipeline run.
type Batch struct {
	// ID identifies the batch in logs and errors.
	ID string

	// Entries are the edits to apply, in transformation order.
	Entries []Entry

	// Subsumed are edits dropped because a later deletion removes their
	// whole range anyway.
	Subsumed []Entry

	// Steps holds every transformation's result, in order.
	Steps []StepResult
}

// Edits returns the edits of the batch.
func (b Batch) Edits() []buffer.Edit {
	edits := make([]buffer.Edit, len(b.Entries))
	for i, e := range b.Entries {
		edits[i] = e.Edit
	}
	return edits
}

// IsEmpty reports whether the batch has no edits.
func (b Batch) IsEmpty() bool {
	return len(b.Entries) == 0
}

// Errors returns the structural errors of the steps, in order.
func (b Batch) Errors() []error {
	var errs []error
	for _, s := range b.Steps {
		if s.Result.Err != nil {
			errs = append(errs, s.Result.Err)
		}
	}
	return errs
}

// Err joins the structural errors of the steps. Nil if none failed.
func (b Batch) Err() error {
	return errors.Join(b.Errors()...)
}

// Traces returns the traces of the steps that produced edits.
func (b Batch) Traces() []string {
	var traces []string
	for _, s := range b.Steps {
		if s.Result.Trace != "" {
			traces = append(traces, s.Result.Trace)
		}
	}
	return traces
}

// Apply applies the batch to doc, the snapshot it was computed on.
// On failure the returned error is an *ApplyError naming the transformation
// that produced the offending edit, and doc is unchanged.
func (b Batch) Apply(doc *buffer.Document) (*buffer.Document, error) {
	out, err := doc.Apply(b.Edits())
	if err == nil {
		return out, nil
	}

	applyErr := &ApplyError{BatchID: b.ID, Index: -1, Err: err}
	var editErr *buffer.EditError
	if errors.As(err, &editErr) && editErr.Index >= 0 && editErr.Index < len(b.Entries) {
		applyErr.Index = editErr.Index
		applyErr.Transformation = b.Entries[editErr.Index].Source
		applyErr.Edit = editErr.Edit
		applyErr.Err = editErr.Err
	}
	return nil, applyErr
}

// Pipeline runs the save-time transformations in order.
type Pipeline struct {
	steps  []Transformation
	logger logrus.FieldLogger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger used for traces.
func WithLogger(l logrus.FieldLogger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSteps replaces the default transformations.
func WithSteps(steps ...Transformation) PipelineOption {
	return func(p *Pipeline) {
		p.steps = steps
	}
}

// NewPipeline creates the standard pipeline:
// SetEndOfLine, TrimTrailingWhitespace, InsertFinalNewline.
func NewPipeline(host HostPolicy, opts ...PipelineOption) *Pipeline {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Pipeline{
		steps: []Transformation{
			SetEndOfLine{},
			TrimTrailingWhitespace{Host: host},
			InsertFinalNewline{Host: host},
		},
		logger: discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Steps returns the names of the pipeline's transformations.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run evaluates every transformation against the same snapshot and
// combines their edits. A failing transformation never discards the edits
// of the others.
func (p *Pipeline) Run(props style.Properties, doc *buffer.Document, reason SaveReason) Batch {
	batch := Batch{ID: uuid.NewString()}
	log := p.logger.WithField("batch", batch.ID)

	for _, step := range p.steps {
		res := step.Transform(props, doc, reason)
		batch.Steps = append(batch.Steps, StepResult{Name: step.Name(), Result: res})

		if res.Err != nil {
			log.WithField("transformation", step.Name()).WithError(res.Err).Warn("transformation declined")
			continue
		}
		if res.Trace != "" {
			log.WithField("reason", reason.String()).Debug(res.Trace)
		}
		for _, e := range res.Edits {
			batch.Entries = append(batch.Entries, Entry{Source: step.Name(), Edit: e})
		}
	}

	batch.Entries, batch.Subsumed = dropSubsumed(batch.Entries)
	for _, s := range batch.Subsumed {
		log.WithField("transformation", s.Source).Debugf("edit %s subsumed by a later deletion", s.Edit)
	}
	return batch
}

// dropSubsumed removes range edits whose range lies inside a later pure
// deletion. Trimming a blank line that the final newline step deletes is
// the common case.
func dropSubsumed(entries []Entry) (kept, dropped []Entry) {
	for i, e := range entries {
		if e.Edit.Kind == buffer.EditReplace && subsumedByLater(e.Edit, entries[i+1:]) {
			dropped = append(dropped, e)
			continue
		}
		kept = append(kept, e)
	}
	return kept, dropped
}

func subsumedByLater(edit buffer.Edit, later []Entry) bool {
	for _, l := range later {
		if l.Edit.Kind != buffer.EditReplace || !l.Edit.IsDelete() {
			continue
		}
		if l.Edit.Range.ContainsRange(edit.Range) && l.Edit.Range.Overlaps(edit.Range) {
			return true
		}
		if edit.Range.IsEmpty() && l.Edit.Range.Start.Before(edit.Range.Start) && edit.Range.Start.Before(l.Edit.Range.End) {
			return true
		}
	}
	return false
}
