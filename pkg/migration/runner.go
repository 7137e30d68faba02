package migration

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"woomigrate/pkg/logging"
)

// Runner executes tasks in dependency order.
type Runner struct {
	log   *logging.Logger
	tasks []Task
}

// NewRunner creates a runner over the given tasks. Registration order
// breaks ties between tasks with no ordering constraint.
func NewRunner(log *logging.Logger, tasks ...Task) *Runner {
	return &Runner{log: log, tasks: tasks}
}

// Run executes the tasks. When only is non-empty, Run restricts the
// sequence to the named tasks plus everything they depend on. The first
// task error aborts the run.
func (r *Runner) Run(ctx context.Context, only ...string) error {
	ordered, err := r.order()
	if err != nil {
		return err
	}
	ordered, err = subset(ordered, only)
	if err != nil {
		return err
	}

	start := time.Now()
	for _, t := range ordered {
		taskStart := time.Now()
		r.log.Info("task starting", zap.String("task", t.Name()))

		if err := t.Up(ctx); err != nil {
			r.log.Error("task failed",
				zap.String("task", t.Name()),
				zap.Duration("took", time.Since(taskStart)),
				zap.Error(err))
			return fmt.Errorf("task %s: %w", t.Name(), err)
		}

		fields := []zap.Field{
			zap.String("task", t.Name()),
			zap.Duration("took", time.Since(taskStart)),
		}
		if rep, ok := t.(Reporter); ok {
			stats := rep.Stats()
			fields = append(fields,
				zap.Int("seen", stats.Seen),
				zap.Int("created", stats.Created),
				zap.Int("updated", stats.Updated))
		}
		r.log.Info("task finished", fields...)
	}

	r.log.Info("import finished",
		zap.Int("tasks", len(ordered)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// order topologically sorts the registered tasks, keeping registration
// order among tasks that become runnable at the same time.
func (r *Runner) order() ([]Task, error) {
	byName := make(map[string]Task, len(r.tasks))
	for _, t := range r.tasks {
		if _, dup := byName[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate task %s", t.Name())
		}
		byName[t.Name()] = t
	}

	indegree := make(map[string]int, len(r.tasks))
	dependents := make(map[string][]string)
	for _, t := range r.tasks {
		for _, dep := range t.After() {
			if _, known := byName[dep]; !known {
				continue
			}
			indegree[t.Name()]++
			dependents[dep] = append(dependents[dep], t.Name())
		}
	}

	ordered := make([]Task, 0, len(r.tasks))
	emitted := make(map[string]bool, len(r.tasks))
	for len(ordered) < len(r.tasks) {
		progressed := false
		for _, t := range r.tasks {
			if emitted[t.Name()] || indegree[t.Name()] > 0 {
				continue
			}
			emitted[t.Name()] = true
			ordered = append(ordered, t)
			for _, name := range dependents[t.Name()] {
				indegree[name]--
			}
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("dependency cycle among remaining tasks")
		}
	}
	return ordered, nil
}

// subset keeps the named tasks and their transitive dependencies,
// preserving the order of the already sorted input.
func subset(ordered []Task, only []string) ([]Task, error) {
	if len(only) == 0 {
		return ordered, nil
	}

	byName := make(map[string]Task, len(ordered))
	for _, t := range ordered {
		byName[t.Name()] = t
	}

	want := make(map[string]bool)
	var visit func(name string)
	visit = func(name string) {
		if want[name] {
			return
		}
		want[name] = true
		for _, dep := range byName[name].After() {
			if _, known := byName[dep]; known {
				visit(dep)
			}
		}
	}
	for _, name := range only {
		if _, known := byName[name]; !known {
			return nil, fmt.Errorf("unknown task %q", name)
		}
		visit(name)
	}

	kept := make([]Task, 0, len(want))
	for _, t := range ordered {
		if want[t.Name()] {
			kept = append(kept, t)
		}
	}
	return kept, nil
}
