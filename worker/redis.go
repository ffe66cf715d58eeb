package worker

import (
	"context"
	"fmt"

	"text2phenotype.com/negex/tasks"
)

type redisTransactions interface {
	getNegationTask(ctx context.Context, redisKey string) (*tasks.NegationTask, error)
	getJobTask(ctx context.Context, task *Task) (*tasks.JobTask, error)
	onTaskStarted(ctx context.Context, task *Task) error
	onTaskCancelled(ctx context.Context, task *Task, errorMessages ...string) error
	onTaskExceededRetries(ctx context.Context, task *Task, maxRetries int) error
	onTaskFailedWithError(ctx context.Context, task *Task, err error) error
	onTaskComplete(ctx context.Context, task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) onTaskStarted(ctx context.Context, task *Task) error {
	return wrapper.tasksClient.Chunks.Update(ctx, task.redisKey, func(negationTask *tasks.NegationTask) {
		negationTask.Info.Status = tasks.TaskStatusStarted
		negationTask.Info.Attempts++
		negationTask.Info.StartedAt = getFormattedNow()
		negationTask.Info.CompletedAt = nil
	})
}

func (wrapper *redisClientWrapper) onTaskCancelled(ctx context.Context, task *Task, errorMessages ...string) error {
	return wrapper.tasksClient.Chunks.Update(ctx, task.redisKey, func(negationTask *tasks.NegationTask) {
		negationTask.Info.Status = tasks.TaskStatusCanceled
		negationTask.Info.StartedAt = getFormattedNow()
		negationTask.Info.CompletedAt = getFormattedNow()
		negationTask.Info.Attempts++
		negationTask.Info.ErrorMessages = append(negationTask.Info.ErrorMessages, errorMessages...)
	})
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(ctx context.Context, task *Task, maxRetries int) error {
	return wrapper.tasksClient.Chunks.Update(ctx, task.redisKey, func(negationTask *tasks.NegationTask) {
		negationTask.Info.Status = tasks.TaskStatusCompletedFailure
		negationTask.Info.StartedAt = getFormattedNow()
		negationTask.Info.CompletedAt = getFormattedNow()
		negationTask.Info.Attempts++
		negationTask.Info.ErrorMessages = append(
			negationTask.Info.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d )",
				negationTask.Info.Attempts,
				maxRetries,
			),
		)
	})
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(ctx context.Context, task *Task, err error) error {
	return wrapper.tasksClient.Chunks.Update(ctx, task.redisKey, func(negationTask *tasks.NegationTask) {
		negationTask.Info.Status = tasks.TaskStatusFailed
		negationTask.Info.CompletedAt = getFormattedNow()
		negationTask.Info.ErrorMessages = append(negationTask.Info.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(ctx context.Context, task *Task) error {
	return wrapper.tasksClient.Chunks.Update(ctx, task.redisKey, func(negationTask *tasks.NegationTask) {
		if !negationTask.Info.Status.Complete() {
			negationTask.Info.Status = tasks.TaskStatusCompletedSuccess
		}
		negationTask.Info.CompletedAt = getFormattedNow()
		negationTask.Info.ResultsFileKey = getResultsFileKey(task)
	})
}

func (wrapper *redisClientWrapper) getNegationTask(ctx context.Context, redisKey string) (*tasks.NegationTask, error) {
	return wrapper.tasksClient.Chunks.Get(ctx, redisKey)
}

func (wrapper *redisClientWrapper) getJobTask(ctx context.Context, task *Task) (*tasks.JobTask, error) {
	return wrapper.tasksClient.Jobs.GetCached(ctx, task.negationTask.JobID)
}
