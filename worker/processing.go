package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"text2phenotype.com/negex/pipeline"
	"text2phenotype.com/negex/tasks"
	"text2phenotype.com/negex/utils"
)

type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	delivery     *amqp.Delivery
	negationTask *tasks.NegationTask
	message      *Message
	redisKey     string
	negexLogger  *zerolog.Logger
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	ctx := context.Background()
	task, err := worker.createTask(ctx, delivery)
	rejectLogger := worker.negexLogger.With().Str("message_id", delivery.MessageId).Logger()
	if err != nil {
		worker.negexLogger.Err(err).
			Str("message_id", delivery.MessageId).
			Str("tid", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(ctx, task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.pingSequencer(task, *task.message); err != nil {
		task.negexLogger.Err(err).Msg("Got error while sending message to sequencer queue")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.negexLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.negexLogger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(ctx context.Context, delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	negationTask, err := worker.redis.getNegationTask(ctx, message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query negation task for message, got error %w", err)
	}
	taskLogger := worker.negexLogger.With().Str("tid", message.RedisKey).Logger()
	task := Task{
		delivery:     delivery,
		negationTask: negationTask,
		redisKey:     message.RedisKey,
		message:      &message,
		negexLogger:  &taskLogger,
	}
	return &task, nil
}

func (worker *Worker) processTask(ctx context.Context, task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(ctx, task)
	if err != nil {
		task.negexLogger.Err(err).
			Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(ctx, task); err != nil {
		task.negexLogger.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update TaskInfo: %w", err)
	}
	if err = worker.runPipeline(task); err != nil {
		task.negexLogger.Err(err).Msg("Got error while running pipeline")
		if err = worker.redis.onTaskFailedWithError(ctx, task, err); err != nil {
			return err
		}
		return nil
	}
	task.negexLogger.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(ctx, task); err != nil {
		task.negexLogger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runPipeline(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.negexLogger.Info().Msgf("Processing message from RMQ, attempt # %d", task.negationTask.Info.Attempts)
	data, err := worker.s3.getInputData(task)
	if err != nil {
		task.negexLogger.Err(err).Caller().Msg("Could not fetch input data from s3")
		return fmt.Errorf("failed fetch data from s3: %w", err)
	}
	request := newRequest(task.redisKey, data)
	result, ok := <-worker.ppln(request)
	if !ok {
		task.negexLogger.Error().Msg("Pipeline channel was closed before returning anything")
		return errors.New("pipeline channel was closed before returning anything")
	}
	task.negexLogger.Info().Msg("Finished pipeline, saving results to s3")
	if err = worker.s3.saveResultsFile(task, result); err != nil {
		task.negexLogger.Err(err).Msg("Got error while trying to save results")
		return err
	}
	warnConfigurationErrors(task, result)
	return nil
}

// warnConfigurationErrors logs every configuration that answered with an error.
// Such results are still saved and the task still completes.
func warnConfigurationErrors(task *Task, result string) {
	var responses map[string]struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(result), &responses); err != nil {
		task.negexLogger.Warn().Err(err).Msg("Could not decode pipeline result")
		return
	}
	for name, response := range responses {
		if len(response.Error) > 0 {
			task.negexLogger.Warn().
				Str("config_name", name).
				Str("error", response.Error).
				Msg("Configuration failed, saved its error result")
		}
	}
}

// newRequest decodes the chunk input; the redis key always wins as tid.
func newRequest(redisKey string, data []byte) pipeline.Request {
	request := pipeline.DecodeRequest(data)
	request.Tid = redisKey
	return request
}

func (worker *Worker) shouldPerformTask(ctx context.Context, task *Task) (bool, error) {
	taskInfo := task.negationTask.Info
	taskLogger := task.negexLogger

	if taskInfo.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Sending back to Sequencer.")
		return false, nil
	}
	taskJob, err := worker.redis.getJobTask(ctx, task)
	if err != nil {
		taskLogger.Err(err).Msg("Failed to query job task for negation task")
		return false, err
	}
	if taskJob.UserCanceled {
		taskLogger.Info().Msg("Job was canceled, no need to perform this task. Sending back to Sequencer.")
		err := worker.redis.onTaskCancelled(ctx, task)
		return false, err
	}
	if taskInfo.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("Negex task has exceeded retries. Sending back to Sequencer.")
		err = worker.redis.onTaskExceededRetries(ctx, task, worker.config.TaskMaxRetries)
		return false, err
	}
	return true, nil
}
