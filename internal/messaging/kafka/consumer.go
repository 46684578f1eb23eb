package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/validator"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func NewReader(brokers []string, groupID, topic string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}

// LifecycleConsumer keeps salary structures in step with employee records.
type LifecycleConsumer struct {
	reader  MessageReader
	service compensation.CompensationService
	logger  *zap.Logger

	backoff    time.Duration
	maxBackoff time.Duration
}

func NewLifecycleConsumer(reader MessageReader, service compensation.CompensationService, logger *zap.Logger) *LifecycleConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleConsumer{
		reader:     reader,
		service:    service,
		logger:     logger.Named("kafka.consumer.employee_lifecycle"),
		backoff:    time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// Run consumes until ctx is cancelled.
func (c *LifecycleConsumer) Run(ctx context.Context) {
	c.logger.Info("employee lifecycle consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("employee lifecycle consumer stopped")
				return
			}
			c.logger.Error("fetch employee lifecycle message failed", zap.Error(err))
			if !sleep(ctx, c.backoff) {
				return
			}
			continue
		}

		// The reader only moves forward, so a transient failure is retried
		// in place; committing a later offset would skip this one.
		wait := c.backoff
		for !c.Handle(ctx, msg) {
			c.logger.Warn("retrying employee lifecycle message",
				zap.Int64("offset", msg.Offset),
				zap.Duration("backoff", wait),
			)
			if !sleep(ctx, wait) {
				c.logger.Info("employee lifecycle consumer stopped")
				return
			}
			wait = min(wait*2, c.maxBackoff)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("commit employee lifecycle message failed", zap.Error(err))
		}
	}
}

// Handle applies one message and reports whether it may be committed.
// Transient failures are left uncommitted.
func (c *LifecycleConsumer) Handle(ctx context.Context, msg kafkago.Message) bool {
	event, err := decodeEvent(msg.Value)
	if err != nil {
		c.logger.Error("decode employee lifecycle event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return true
	}

	log := c.logger.With(
		zap.String("type", string(event.Type)),
		zap.String("employee_id", event.EmployeeID),
		zap.String("company_id", event.CompanyID),
	)

	switch event.Type {
	case EmployeeCreated:
		err = c.service.InitializeFromEvent(ctx, event.CompanyID, event.EmployeeID, event.MonthlyWage)
		if errors.Is(err, compensation.ErrStructureAlreadyExists) {
			log.Warn("salary structure already exists for event, skipping")
			return true
		}
	case EmployeeDeleted:
		err = c.service.DeleteFromEvent(ctx, event.CompanyID, event.EmployeeID)
	default:
		log.Debug("ignoring employee lifecycle event")
		return true
	}

	if err != nil {
		if isPermanent(err) {
			log.Warn("dropping employee lifecycle event", zap.Error(err))
			return true
		}
		log.Error("apply employee lifecycle event failed", zap.Error(err))
		return false
	}

	log.Info("employee lifecycle event applied")
	return true
}

func isPermanent(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs) ||
		errors.Is(err, employee.ErrEmployeeNotFound) ||
		errors.Is(err, employee.ErrEmployeeInactive) ||
		errors.Is(err, compensation.ErrInvalidMagnitude)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
