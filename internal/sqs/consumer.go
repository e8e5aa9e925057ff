package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	receiveErrorDelay = time.Second

	defaultBatchSize       = 10
	defaultWaitTimeSeconds = 20
)

var errEmptyBody = errors.New("message body is nil")

// ConsumerAPI defines the SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Handler processes a decoded product notification. A returned error keeps the
// message on the queue so it is redelivered after its visibility timeout.
type Handler func(ctx context.Context, msg ProductMessage) error

// ConsumerOption customizes a Consumer.
type ConsumerOption func(*Consumer)

// WithHandler replaces the default logging handler.
func WithHandler(h Handler) ConsumerOption {
	return func(c *Consumer) { c.handler = h }
}

// WithBatchSize sets how many messages one receive call may return (1..10).
func WithBatchSize(n int32) ConsumerOption {
	return func(c *Consumer) { c.batchSize = min(max(n, 1), 10) }
}

// WithWaitTime sets the long-polling wait of a receive call (0..20 seconds).
func WithWaitTime(seconds int32) ConsumerOption {
	return func(c *Consumer) { c.waitTimeSeconds = min(max(seconds, 0), 20) }
}

// Consumer long-polls a queue and hands every product notification to its handler.
type Consumer struct {
	client          ConsumerAPI
	queueURL        string
	handler         Handler
	batchSize       int32
	waitTimeSeconds int32
}

// NewConsumer creates a Consumer for queueURL. Without options, notifications are logged.
func NewConsumer(client ConsumerAPI, queueURL string, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		client:          client,
		queueURL:        queueURL,
		handler:         LogProductMessage,
		batchSize:       defaultBatchSize,
		waitTimeSeconds: defaultWaitTimeSeconds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LogProductMessage records the notification in the log.
func LogProductMessage(_ context.Context, msg ProductMessage) error {
	slog.Info("Received product notification",
		slog.String("action", msg.Action),
		slog.String("product_id", msg.ProductID),
		slog.String("name", msg.Name),
		slog.Float64("price", msg.Price),
	)
	return nil
}

// Start consumes messages until ctx is cancelled and then returns ctx.Err().
// Receive failures are logged and retried after a short pause.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("Stopping SQS consumer")
			return err
		}

		handled, err := c.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			slog.Error("Error receiving messages", slog.Any("err", err))
			select {
			case <-ctx.Done():
			case <-time.After(receiveErrorDelay):
			}
			continue
		}
		if handled > 0 {
			slog.Debug("batch processed", slog.Int("handled", handled))
		}
	}
}

// poll receives one batch and returns how many messages were handled and deleted.
func (c *Consumer) poll(ctx context.Context) (int, error) {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   c.batchSize,
		WaitTimeSeconds:       c.waitTimeSeconds,
		MessageAttributeNames: []string{attrAction, attrProductID},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to receive messages: %w", err)
	}

	handled := 0
	for _, message := range result.Messages {
		if err := c.handle(ctx, message); err != nil {
			slog.Error("Error processing message", slog.String("message_id", aws.ToString(message.MessageId)), slog.Any("err", err))
			continue
		}
		if err := c.delete(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.String("message_id", aws.ToString(message.MessageId)), slog.Any("err", err))
			continue
		}
		handled++
	}
	return handled, nil
}

func (c *Consumer) handle(ctx context.Context, message types.Message) error {
	msg, err := decodeProductMessage(message)
	if err != nil {
		return err
	}
	if err := c.handler(ctx, msg); err != nil {
		return fmt.Errorf("failed to handle message: %w", err)
	}
	return nil
}

// decodeProductMessage reads the JSON body, falling back to the action attribute
// when the body does not carry one.
func decodeProductMessage(message types.Message) (ProductMessage, error) {
	var msg ProductMessage
	if message.Body == nil {
		return msg, errEmptyBody
	}
	if err := json.Unmarshal([]byte(*message.Body), &msg); err != nil {
		return msg, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if msg.Action == "" {
		if attr, ok := message.MessageAttributes[attrAction]; ok {
			msg.Action = aws.ToString(attr.StringValue)
		}
	}
	return msg, nil
}

func (c *Consumer) delete(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
