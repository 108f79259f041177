package async

import (
	"context"
	"errors"
	"fmt"
)

// Task is a named operation run by Run.
type Task struct {
	Name string
	Func func(context.Context) error
}

// Run starts every task concurrently and waits for all of them. Each failure
// is wrapped with its task name; the result joins them in task order and is
// nil when every task succeeded.
func Run(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	errs := make([]error, len(tasks))
	done := make(chan struct{}, len(tasks))
	for i, task := range tasks {
		go func() {
			defer func() { done <- struct{}{} }()
			if err := task.Func(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", task.Name, err)
			}
		}()
	}
	for range tasks {
		<-done
	}

	return errors.Join(errs...)
}
