package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readout/internal/catalog"
	"github.com/dgnsrekt/readout/internal/event"
	"github.com/dgnsrekt/readout/internal/extract"
	"github.com/dgnsrekt/readout/internal/outpath"
	"github.com/dgnsrekt/readout/internal/synth"
)

// Item identifies one discovered input file. Immutable once created.
type Item struct {
	Path  string
	Index int
}

// Outcome is the full accounting for one item: per-step results plus the
// terminal error, if any. Read-only once returned.
type Outcome struct {
	Path    string
	Success bool
	Steps   map[string]StepResult
	Err     error
}

// Config is the validated per-run configuration the pipeline needs.
type Config struct {
	Retries         int
	ContinueOnError bool
	ITunesEnabled   bool
	Synth           synth.Options
}

// Extractor produces clean text from a document file.
type Extractor interface {
	ExtractText(path string) (*extract.Document, error)
}

// Synthesizer converts text into an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string, opts synth.Options) (*synth.Result, error)
}

// Resolver decides where an item's audio lands.
type Resolver interface {
	Resolve(srcPath string) (outpath.Placement, error)
}

// Pipeline runs the conversion steps for single items. Safe for
// concurrent use; per-item state lives on the stack of Run.
type Pipeline struct {
	extractor Extractor
	synth     Synthesizer
	importer  catalog.Importer
	resolver  Resolver
	temps     *outpath.TempSet
	bus       *event.Bus
}

// New wires a pipeline from its collaborators.
func New(extractor Extractor, synthesizer Synthesizer, importer catalog.Importer, resolver Resolver, temps *outpath.TempSet, bus *event.Bus) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		synth:     synthesizer,
		importer:  importer,
		resolver:  resolver,
		temps:     temps,
		bus:       bus,
	}
}

// Run drives one item through the step sequence.
//
// A step failure aborts the remaining steps. When cfg.ContinueOnError is
// set the failure stays inside the returned Outcome; otherwise it is also
// returned as an error so the caller aborts the batch.
func (p *Pipeline) Run(ctx context.Context, item Item, cfg Config) (Outcome, error) {
	p.bus.Publish(event.Event{Type: event.FileStarted, Path: item.Path})
	log.Debug("item started", "file", item.Path, "index", item.Index)

	out := Outcome{Path: item.Path, Steps: make(map[string]StepResult)}

	fail := func(res StepResult) (Outcome, error) {
		out.Err = res.Err
		p.bus.Publish(event.Event{
			Type:  event.FileFailed,
			Path:  item.Path,
			Step:  res.Step,
			Error: res.Err.Error(),
		})
		if cfg.ContinueOnError {
			return out, nil
		}
		return out, fmt.Errorf("%s failed for %s: %w", res.Step, item.Path, res.Err)
	}

	// Step 1: text extraction.
	res := runStep(ctx, p.bus, item.Path, StepExtract, cfg.Retries, func(context.Context) (any, error) {
		return p.extractor.ExtractText(item.Path)
	})
	out.Steps[StepExtract] = res
	if res.Status == StatusFailed {
		return fail(res)
	}
	doc := res.Payload.(*extract.Document)

	// Destination resolution happens outside the step sequence: an
	// already-existing artifact is not a failure, the item just has
	// nothing left to do.
	place, err := p.resolver.Resolve(item.Path)
	if err != nil {
		if errors.Is(err, outpath.ErrExists) {
			p.bus.Publish(event.Event{
				Type:   event.FileWarning,
				Path:   item.Path,
				Reason: "audio already exists, skipping (enable overwrite to redo)",
			})
			out.Steps[StepConvert] = skippedStep(StepConvert, "destination exists and overwrite is disabled")
			out.Success = true
			p.bus.Publish(event.Event{Type: event.FileCompleted, Path: item.Path, Payload: out})
			return out, nil
		}
		res := StepResult{Step: StepConvert, Status: StatusFailed, Err: err, Attempts: 1}
		out.Steps[StepConvert] = res
		return fail(res)
	}
	if !place.Direct {
		p.temps.Add(place.Path)
	}

	// Step 2: audio conversion.
	res = runStep(ctx, p.bus, item.Path, StepConvert, cfg.Retries, func(ctx context.Context) (any, error) {
		return p.synth.Synthesize(ctx, doc.Content, place.Path, cfg.Synth)
	})
	out.Steps[StepConvert] = res
	if res.Status == StatusFailed {
		return fail(res)
	}

	// Step 3: catalog import, only when enabled.
	if !cfg.ITunesEnabled {
		out.Steps[StepImport] = skippedStep(StepImport, "iTunes integration disabled")
	} else {
		res = runStep(ctx, p.bus, item.Path, StepImport, cfg.Retries, func(ctx context.Context) (any, error) {
			return p.importer.ImportAudioFile(ctx, place.Path, doc.Meta.Title)
		})
		out.Steps[StepImport] = res
		if res.Status == StatusFailed {
			return fail(res)
		}
	}

	// Step 4: cleanup, only when the output was staged.
	if place.Direct {
		out.Steps[StepCleanup] = skippedStep(StepCleanup, "Direct output mode - no temp files to clean")
	} else {
		res = runStep(ctx, p.bus, item.Path, StepCleanup, cfg.Retries, func(context.Context) (any, error) {
			if err := os.Remove(place.Path); err != nil && !os.IsNotExist(err) {
				return nil, err
			}
			p.temps.Remove(place.Path)
			return nil, nil
		})
		out.Steps[StepCleanup] = res
		if res.Status == StatusFailed {
			return fail(res)
		}
	}

	out.Success = true
	p.bus.Publish(event.Event{Type: event.FileCompleted, Path: item.Path, Payload: out})
	log.Debug("item completed", "file", item.Path)
	return out, nil
}
