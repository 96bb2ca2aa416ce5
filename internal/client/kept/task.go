package kept

import (
	"context"
	"fmt"
)

// TaskKind names the remote operation a SyncTask performs.
type TaskKind string

const (
	TaskCreate TaskKind = "create"
	TaskUpdate TaskKind = "update"
	TaskDelete TaskKind = "delete"
	TaskList   TaskKind = "list"
)

// Outcome is the result of a SyncTask once its remote call has resolved.
type Outcome int

const (
	// OutcomeSuccess means the remote call succeeded and its result was applied.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure means the remote call failed; syncError was set.
	OutcomeFailure
	// OutcomeSuperseded means the item changed or disappeared locally before
	// the result arrived. The result is dropped.
	OutcomeSuperseded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// SyncTask is the transient record of one reconciliation with the remote
// store. It lives for the duration of the call plus its rollback.
type SyncTask struct {
	Kind    TaskKind
	ItemID  string
	Outcome Outcome
	Err     error
}

// spawn runs fn in the background and reports its task to the observer.
// The task context is detached from ctx so that a caller returning does not
// cancel the remote call. Nothing is started once the engine is closed.
func (e *Engine) spawn(ctx context.Context, task SyncTask, fn func(ctx context.Context) (Outcome, error)) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.logger.Debug(ctx, "sync task dropped, engine closed", "kind", task.Kind, "id", task.ItemID)
		return
	}
	// Add under the lock so Close cannot start waiting in between.
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()

		tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()

		task.Outcome, task.Err = fn(tctx)

		switch task.Outcome {
		case OutcomeFailure:
			e.logger.Warn(ctx, "sync task failed", "kind", task.Kind, "id", task.ItemID, "error", task.Err)
		case OutcomeSuperseded:
			e.logger.Debug(ctx, "sync task superseded", "kind", task.Kind, "id", task.ItemID)
		default:
			e.logger.Debug(ctx, "sync task done", "kind", task.Kind, "id", task.ItemID)
		}

		if e.observer != nil {
			e.observer(task)
		}
	}()
}
