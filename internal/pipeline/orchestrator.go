package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/metrics"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// Checkpoints is the workspace surface the orchestrator depends on.
type Checkpoints interface {
	HasCheckpoint(key string) bool
	LoadCheckpointRaw(key string) (json.RawMessage, bool)
	SaveCheckpoint(key string, payload any)
	SaveReport(name, text string) error
}

// Orchestrator runs phases strictly in order.
type Orchestrator struct {
	ws      Checkpoints
	phases  []Phase
	runID   string
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records phase durations.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(o *Orchestrator) { o.metrics = rec }
}

// WithRunID tags logs and the summary with the run identifier.
func WithRunID(id string) Option {
	return func(o *Orchestrator) { o.runID = id }
}

// New builds an Orchestrator over phases.
func New(ws Checkpoints, phases []Phase, opts ...Option) *Orchestrator {
	o := &Orchestrator{ws: ws, phases: phases, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "orchestrator")
	return o
}

// Plan reports each phase as Skipped when its checkpoint exists and
// NotStarted otherwise, without running anything.
func (o *Orchestrator) Plan() []Result {
	results := make([]Result, 0, len(o.phases))
	for _, phase := range o.phases {
		state := NotStarted
		if o.ws.HasCheckpoint(phase.Key()) {
			state = Skipped
		}
		results = append(results, Result{Name: phase.Name(), Key: phase.Key(), State: state})
	}
	return results
}

// Run executes the phases in order. A phase with a checkpoint is skipped
// without side effects. The first failure aborts the run; later phases stay
// NotStarted.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	if o.runID != "" {
		ctx = services.WithRunID(ctx, o.runID)
	}
	summary := Summary{RunID: o.runID, Results: make([]Result, len(o.phases))}
	for i, phase := range o.phases {
		summary.Results[i] = Result{Name: phase.Name(), Key: phase.Key(), State: NotStarted}
	}

	runStart := time.Now()
	for i, phase := range o.phases {
		result := &summary.Results[i]
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := o.runPhase(ctx, phase, result); err != nil {
			logging.WithContext(ctx, o.logger).Error("run aborted",
				logging.String(logging.FieldEventType, "run_aborted"),
				logging.String("failed_phase", phase.Name()),
				logging.Int("remaining", len(o.phases)-i-1),
			)
			return summary, err
		}
	}

	logging.WithContext(ctx, o.logger).Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("skipped", summary.Count(Skipped)),
		logging.Int("checkpointed", summary.Count(Checkpointed)),
		logging.Duration("duration", time.Since(runStart)),
	)
	return summary, nil
}

func (o *Orchestrator) runPhase(ctx context.Context, phase Phase, result *Result) error {
	phaseCtx := services.WithPhase(ctx, phase.Name())
	logger := logging.WithContext(phaseCtx, o.logger)

	if o.ws.HasCheckpoint(phase.Key()) {
		if raw, ok := o.ws.LoadCheckpointRaw(phase.Key()); ok {
			result.State = Skipped
			result.Payload = raw
			logger.Info("phase skipped",
				logging.String(logging.FieldEventType, "phase_skipped"),
				logging.String("checkpoint", phase.Key()),
			)
			o.metrics.Phase(phase.Name(), string(Skipped), 0)
			return nil
		}
	}

	start := time.Now()
	result.State = Running
	logger.Info("phase started",
		logging.String(logging.FieldEventType, "phase_start"),
		logging.String("checkpoint", phase.Key()),
	)

	out, err := phase.Execute(phaseCtx)
	if err == nil {
		err = o.persist(phase, out, result)
	}
	result.Duration = time.Since(start)
	if err != nil {
		result.State = Failed
		result.Err = err
		logger.Error("phase failed",
			logging.String(logging.FieldEventType, "phase_failure"),
			logging.Duration("duration", result.Duration),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.Error(err),
		)
		o.metrics.Phase(phase.Name(), string(Failed), result.Duration)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("phase %s: %w", phase.Name(), err)
	}

	result.State = Checkpointed
	logger.Info("phase completed",
		logging.String(logging.FieldEventType, "phase_complete"),
		logging.Duration("duration", result.Duration),
		logging.String("reports", strings.Join(result.Reports, ", ")),
	)
	o.metrics.Phase(phase.Name(), string(Checkpointed), result.Duration)
	return nil
}

// persist writes reports first so a checkpoint never exists without them.
func (o *Orchestrator) persist(phase Phase, out Output, result *Result) error {
	for _, artifact := range out.Reports {
		if err := o.ws.SaveReport(artifact.Filename, artifact.Content); err != nil {
			return err
		}
		result.Reports = append(result.Reports, artifact.Filename)
	}
	if out.Checkpoint == nil {
		return services.Wrap(services.ErrValidation, phase.Name(), "checkpoint", "phase produced no checkpoint payload", nil)
	}
	raw, err := json.Marshal(out.Checkpoint)
	if err != nil {
		return services.Wrap(services.ErrValidation, phase.Name(), "checkpoint", "encode payload", err)
	}
	o.ws.SaveCheckpoint(phase.Key(), out.Checkpoint)
	result.Payload = raw
	return nil
}
