package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"text2phenotype.com/negex/redis"
)

const (
	JobsDB   redis.DB = 1
	ChunksDB redis.DB = 2

	// WorkerName keys this worker's entry in task_statuses.
	WorkerName = "negex"
)

type TaskStatus string

const (
	TaskStatusProcessing       TaskStatus = "processing"
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted || s == TaskStatusProcessing
}

// Store is the part of redis.Client the task documents need.
type Store interface {
	Get(ctx context.Context, redisKey string) (redis.Fields, error)
	Update(ctx context.Context, redisKey string, update func(fields redis.Fields) error) error
	Close() error
}

type TaskInfo struct {
	ResultsFileKey string     `json:"results_file_key"`
	StartedAt      *string    `json:"started_at"`
	CompletedAt    *string    `json:"completed_at"`
	Attempts       int        `json:"attempts"`
	Status         TaskStatus `json:"status"`
	ErrorMessages  []string   `json:"error_messages"`
}

// NegationTask is a chunk document as seen by this worker: the input location
// and its own entry of task_statuses.
type NegationTask struct {
	DocID          string   `json:"document_id"`
	JobID          string   `json:"job_id"`
	TextFileKey    string   `json:"text_file_key"`
	RequestFileKey string   `json:"negex_request_file_key"`
	Info           TaskInfo `json:"-"`
}

// InputKey is the S3 key of the pipeline input: a request document when the
// chunk carries one, its plain text otherwise.
func (task *NegationTask) InputKey() string {
	if len(task.RequestFileKey) > 0 {
		return task.RequestFileKey
	}
	return task.TextFileKey
}

func decodeNegationTask(fields redis.Fields) (*NegationTask, error) {
	buf, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var task NegationTask
	if err := json.Unmarshal(buf, &task); err != nil {
		return nil, err
	}
	statuses, err := taskStatuses(fields)
	if err != nil {
		return nil, err
	}
	if raw, ok := statuses[WorkerName]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &task.Info); err != nil {
			return nil, fmt.Errorf("task_statuses.%s: %w", WorkerName, err)
		}
	}
	return &task, nil
}

// encodeInfo writes info back under task_statuses without touching the
// entries of other workers.
func encodeInfo(fields redis.Fields, info TaskInfo) error {
	statuses, err := taskStatuses(fields)
	if err != nil {
		return err
	}
	if statuses == nil {
		statuses = make(map[string]json.RawMessage)
	}
	if statuses[WorkerName], err = json.Marshal(info); err != nil {
		return err
	}
	fields["task_statuses"], err = json.Marshal(statuses)
	return err
}

func taskStatuses(fields redis.Fields) (map[string]json.RawMessage, error) {
	raw, ok := fields["task_statuses"]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var statuses map[string]json.RawMessage
	if err := json.Unmarshal(raw, &statuses); err != nil {
		return nil, fmt.Errorf("task_statuses: %w", err)
	}
	return statuses, nil
}

type NegationTasks struct {
	store Store
}

func (tasks NegationTasks) Get(ctx context.Context, redisKey string) (*NegationTask, error) {
	fields, err := tasks.store.Get(ctx, redisKey)
	if err != nil {
		return nil, err
	}
	return decodeNegationTask(fields)
}

// Update changes this worker's status entry of the chunk document under lock.
func (tasks NegationTasks) Update(ctx context.Context, redisKey string, updateFunc func(task *NegationTask)) error {
	return tasks.store.Update(ctx, redisKey, func(fields redis.Fields) error {
		task, err := decodeNegationTask(fields)
		if err != nil {
			return err
		}
		updateFunc(task)
		return encodeInfo(fields, task.Info)
	})
}

type JobTask struct {
	UserCanceled bool `json:"user_canceled"`
}

type JobTasks struct {
	store Store
}

func (tasks JobTasks) GetCached(ctx context.Context, jobID string) (*JobTask, error) {
	fields, err := tasks.store.Get(ctx, cachedPropertiesKey(jobID))
	if err != nil {
		return nil, err
	}
	var task JobTask
	if raw, ok := fields["user_canceled"]; ok {
		if err := json.Unmarshal(raw, &task.UserCanceled); err != nil {
			return nil, fmt.Errorf("user_canceled: %w", err)
		}
	}
	return &task, nil
}

func cachedPropertiesKey(redisKey string) string {
	return fmt.Sprintf("%s-cached-properties", redisKey)
}
