package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"freightdesk/quote/internal/logger"
	"freightdesk/quote/internal/models"
	"freightdesk/quote/internal/offers"
	"freightdesk/quote/internal/reconcile"
	"freightdesk/quote/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypeOfferEvent = "offer:event"
	// TypeSweepPrefix is followed by the sweep name, e.g. "sweep:completion".
	TypeSweepPrefix = "sweep:"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

const offerEventMaxRetry = 10

// --- Task Client (Enqueuing tasks) ---

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// NewOfferEventTask wraps an extracted mail event for the worker.
func NewOfferEventTask(ev models.InboundEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal offer event: %w", err)
	}
	return asynq.NewTask(TypeOfferEvent, payload, asynq.Queue(QueueCritical), asynq.MaxRetry(offerEventMaxRetry)), nil
}

// SweepTaskType is the task type of the named sweep.
func SweepTaskType(name string) string {
	return TypeSweepPrefix + name
}

// --- Scheduling ---

// Registrar is the part of asynq.Scheduler used to register periodic tasks.
type Registrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

// NewScheduler creates the periodic task scheduler. Call RegisterSweeps, then Start.
func NewScheduler(rdb *redis.Client) *asynq.Scheduler {
	return asynq.NewScheduler(redisOpt(rdb), &asynq.SchedulerOpts{Location: time.UTC})
}

// RegisterSweeps schedules every sweep at its interval. Enqueues of the same
// sweep within one interval collapse into one task.
func RegisterSweeps(r Registrar, sweeps []reconcile.Sweep) error {
	for _, s := range sweeps {
		if s.Interval <= 0 {
			slog.Warn("sweep has no interval, not scheduled", "sweep", s.Name)
			continue
		}
		task := asynq.NewTask(SweepTaskType(s.Name), nil)
		id, err := r.Register("@every "+s.Interval.String(), task,
			asynq.Queue(QueueDefault),
			asynq.Unique(s.Interval),
			asynq.MaxRetry(0),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule sweep %s: %w", s.Name, err)
		}
		slog.Info("sweep scheduled", "sweep", s.Name, "every", s.Interval, "entry_id", id)
	}
	return nil
}

// --- Task Server (Processing tasks) ---

// EventHandler applies an extracted mail event to the offer workflow.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev models.InboundEvent) error
}

// SweepSource resolves sweeps by name.
type SweepSource interface {
	Lookup(name string) (reconcile.Sweep, bool)
}

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	events EventHandler
	sweeps SweepSource
	now    func() time.Time
}

func NewTaskProcessor(events EventHandler, sweeps SweepSource) *TaskProcessor {
	return &TaskProcessor{
		events: events,
		sweeps: sweeps,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Mux routes every task type to its handler.
func (p *TaskProcessor) Mux(sweeps []reconcile.Sweep) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeOfferEvent, p.HandleOfferEventTask)
	for _, s := range sweeps {
		mux.HandleFunc(SweepTaskType(s.Name), p.HandleSweepTask)
	}
	return mux
}

// SetupServer configures and starts an Asynq server instance.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, sweeps []reconcile.Sweep, concurrency int) (*asynq.Server, error) {
	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				slog.Error("task failed", "type", task.Type(), "retried", retried, "max_retry", maxRetry, "error", err)
			}),
		},
	)

	if err := srv.Start(processor.Mux(sweeps)); err != nil {
		return nil, fmt.Errorf("could not start asynq server: %w", err)
	}
	slog.Info("task server started", "sweeps", len(sweeps))
	return srv, nil
}

// --- Task Handlers ---

func withTaskID(ctx context.Context) context.Context {
	if id, ok := asynq.GetTaskID(ctx); ok {
		return logger.WithTaskID(ctx, id)
	}
	return ctx
}

// HandleOfferEventTask feeds one mail event to the offer workflow.
//
// Events that can never succeed (unknown offer, unknown supplier, a reply the
// offer's status does not accept) are not retried. With processing disabled
// the event is acknowledged and dropped.
func (p *TaskProcessor) HandleOfferEventTask(ctx context.Context, t *asynq.Task) error {
	ctx = withTaskID(ctx)
	var ev models.InboundEvent
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return fmt.Errorf("failed to unmarshal offer event payload: %v: %w", err, asynq.SkipRetry)
	}
	if ev.OfferNo != "" {
		ctx = logger.WithOfferNo(ctx, ev.OfferNo)
	}

	err := p.events.HandleEvent(ctx, ev)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, offers.ErrDisabled):
		logger.Warn(ctx, "offer processing disabled, dropping event", "kind", ev.Kind, "from", ev.Message.From)
		return nil
	case errors.Is(err, offers.ErrOfferNotFound),
		errors.Is(err, offers.ErrUnknownSupplier),
		errors.Is(err, offers.ErrInvalidTransition):
		logger.Warn(ctx, "offer event rejected", "kind", ev.Kind, "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	case errors.Is(err, services.ErrStaleStatus):
		logger.Info(ctx, "offer kept changing, event will be retried", "kind", ev.Kind)
		return err
	default:
		return err
	}
}

// HandleSweepTask runs the sweep named by the task type.
func (p *TaskProcessor) HandleSweepTask(ctx context.Context, t *asynq.Task) error {
	ctx = withTaskID(ctx)
	name := strings.TrimPrefix(t.Type(), TypeSweepPrefix)
	sweep, ok := p.sweeps.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown sweep %q: %w", name, asynq.SkipRetry)
	}

	started := p.now()
	logger.Debug(ctx, "sweep started", "sweep", name)
	if err := sweep.Handler(ctx, started); err != nil {
		return fmt.Errorf("sweep %s: %w", name, err)
	}
	logger.Debug(ctx, "sweep finished", "sweep", name, "took", time.Since(started))
	return nil
}
