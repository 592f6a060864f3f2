package statistics

import (
	"context"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
)

func TestKafkaStatistics_WithoutWriter(t *testing.T) {
	stat := NewKafkaStatistics(nil, nil, slog.New(slog.DiscardHandler), nil)

	assert.ErrorIs(t, stat.Push(context.Background(), models.Attempt{ID: "1"}), ErrNoWriter)
	assert.ErrorIs(t, stat.SaveAttempt(context.Background()), ErrNoReader)
	assert.Error(t, stat.HealthCheck(context.Background()))
}

func TestKafkaStatistics_HealthCheck(t *testing.T) {
	writer := &kafka.Writer{Topic: "registration-attempts"}
	stat := NewKafkaStatistics(nil, writer, slog.New(slog.DiscardHandler), nil)

	assert.NoError(t, stat.HealthCheck(context.Background()))
}
