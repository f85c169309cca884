package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aescanero/dago-node-transform/internal/config"
	"github.com/aescanero/dago-node-transform/internal/output"
	"github.com/aescanero/dago-node-transform/internal/pipeline"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StreamClient is the subset of the Redis client used by the worker
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// Worker represents the transform worker
type Worker struct {
	id            string
	config        *config.Config
	client        StreamClient
	pipeline      *pipeline.Pipeline
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	done          chan struct{}
	running       atomic.Bool
	streamKey     string
	consumerGroup string
	resultStream  string
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	client StreamClient,
	p *pipeline.Pipeline,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		client:        client,
		pipeline:      p,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting transform worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	w.running.Store(true)
	go w.processWork()

	w.logger.Info("transform worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops the worker and waits for the job in flight to finish
func (w *Worker) Stop() error {
	w.logger.Info("stopping transform worker", zap.String("worker_id", w.id))

	w.cancel()

	select {
	case <-w.done:
	case <-time.After(10 * time.Second):
		return fmt.Errorf("worker %s did not stop in time", w.id)
	}

	w.logger.Info("transform worker stopped", zap.String("worker_id", w.id))
	return nil
}

// Running reports whether the job loop is active
func (w *Worker) Running() bool {
	return w.running.Load()
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.client.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP error means the group already exists, which is fine
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork reads jobs one at a time until the worker is stopped
func (w *Worker) processWork() {
	defer close(w.done)
	defer w.running.Store(false)
	w.logger.Info("starting work processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
			streams, err := w.client.XReadGroup(w.ctx, &redis.XReadGroupArgs{
				Group:    w.consumerGroup,
				Consumer: w.id,
				Streams:  []string{w.streamKey, ">"},
				Count:    1,
				Block:    w.config.BlockTime,
			}).Result()

			if err != nil {
				if errors.Is(err, redis.Nil) || w.ctx.Err() != nil {
					continue
				}
				w.logger.Error("failed to read from stream", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			for _, stream := range streams {
				for _, message := range stream.Messages {
					w.handleMessage(message)
				}
			}
		}
	}
}

// handleMessage handles a single transform job message
func (w *Worker) handleMessage(message redis.XMessage) {
	messageID := message.ID
	w.logger.Info("processing transform job", zap.String("message_id", messageID))

	job, err := parseJob(message.Values)
	if err != nil {
		w.logger.Error("failed to parse transform job",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.acknowledgeMessage(messageID)
		return
	}

	result, err := w.runJob(w.ctx, job)
	if err != nil {
		w.logger.Error("transform job failed",
			zap.String("message_id", messageID),
			zap.String("job_id", job.JobID),
			zap.Error(err),
		)
		w.publishError(job, err)
	} else if err := w.publishResult(job, result); err != nil {
		w.logger.Error("failed to publish transform result",
			zap.String("job_id", job.JobID),
			zap.Error(err),
		)
	}

	w.acknowledgeMessage(messageID)
}

// Job is a transform request received from the stream
type Job struct {
	JobID string `json:"job_id"`
	pipeline.Request
}

// parseJob parses a job from a Redis message
func parseJob(values map[string]interface{}) (*Job, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var job Job
	if err := json.Unmarshal([]byte(dataStr), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transform job: %w", err)
	}

	if job.JobID == "" {
		return nil, fmt.Errorf("transform job is missing job_id")
	}

	return &job, nil
}

// runJob executes the job with buffered output
func (w *Worker) runJob(ctx context.Context, job *Job) (*pipeline.Result, error) {
	req := job.Request
	req.Output = output.ModeBuffered

	started := time.Now()
	result, err := w.pipeline.TransformFile(ctx, req)
	if err != nil {
		return nil, err
	}

	w.logger.Info("transform job finished",
		zap.String("job_id", job.JobID),
		zap.Int("records", result.Records),
		zap.Int("skipped", result.Skipped),
		zap.Int("filtered", result.Filtered),
		zap.Duration("duration", time.Since(started)),
	)

	return result, nil
}

// publishResult publishes the rendered output of a job
func (w *Worker) publishResult(job *Job, result *pipeline.Result) error {
	event := map[string]interface{}{
		"job_id":        job.JobID,
		"worker_id":     w.id,
		"output":        result.Output,
		"records":       result.Records,
		"skipped":       result.Skipped,
		"filtered":      result.Filtered,
		"blank":         result.Blank,
		"template_hash": result.TemplateHash,
		"timestamp":     time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = w.client.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.resultStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	w.logger.Info("published transform result",
		zap.String("job_id", job.JobID),
		zap.Int("records", result.Records),
	)

	return nil
}

// publishError publishes an error event
func (w *Worker) publishError(job *Job, err error) {
	errorEvent := map[string]interface{}{
		"job_id":    job.JobID,
		"worker_id": w.id,
		"error":     err.Error(),
		"timestamp": time.Now().UTC(),
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	_, publishErr := w.client.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.resultStream + ".errors",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(messageID string) {
	err := w.client.XAck(w.ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
