package statistics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
)

type BacklogError string

func (e BacklogError) Error() string {
	return string(e)
}

const (
	ErrNoWriter BacklogError = "statistics has no writer"
	ErrNoReader BacklogError = "statistics has no reader"
)

type Repository interface {
	SaveAttempt(ctx context.Context, attempt models.Attempt) error
}

// KafkaStatistics publishes registration attempts and, on the consumer side, stores them.
type KafkaStatistics struct {
	reader *kafka.Reader
	writer *kafka.Writer
	logger *slog.Logger
	repo   Repository
}

func NewKafkaStatistics(reader *kafka.Reader, writer *kafka.Writer, logger *slog.Logger, repo Repository) *KafkaStatistics {
	return &KafkaStatistics{
		reader: reader,
		writer: writer,
		logger: logger,
		repo:   repo,
	}
}

func (stat *KafkaStatistics) HealthCheck(_ context.Context) error {
	if stat.writer == nil && stat.reader == nil {
		return errors.New("statistics has neither writer nor reader")
	}
	return nil
}

func (stat *KafkaStatistics) Push(ctx context.Context, attempt models.Attempt) error {
	if stat.writer == nil {
		return ErrNoWriter
	}

	payload, err := json.Marshal(attempt)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(attempt.ID),
		Value: payload,
	}
	stat.logger.Debug("write message to kafka...",
		slog.String("topic", stat.writer.Topic),
		slog.String("key", attempt.ID),
	)

	err = stat.writer.WriteMessages(ctx, msg)
	if errors.Is(err, kafka.UnknownTopicOrPartition) {
		time.Sleep(5 * time.Second) // Wait for auto creating topic
		err = stat.writer.WriteMessages(ctx, msg)
	}

	return err
}

func (stat *KafkaStatistics) SaveAttempt(ctx context.Context) (err error) {
	if stat.reader == nil {
		return ErrNoReader
	}

	msg, err := stat.reader.ReadMessage(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			err = multierror.Append(err, stat.reader.SetOffset(msg.Offset))
		}
	}()

	stat.logger.Debug("read message from kafka",
		slog.String("topic", msg.Topic),
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
		slog.String("key", string(msg.Key)),
	)

	var attempt models.Attempt
	err = json.Unmarshal(msg.Value, &attempt)
	if err != nil {
		return err
	}

	return stat.repo.SaveAttempt(ctx, attempt)
}
