package inbound

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	receiveBatchSize = 10
	receiveWaitTime  = 20
	receiveErrorWait = 5 * time.Second
)

// snsEnvelope is the wrapper SNS puts around a notification when the
// queue is subscribed through a topic.
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// receiptNotification is the SES receipt event describing where the
// raw message was stored.
type receiptNotification struct {
	NotificationType string `json:"notificationType"`
	Mail             struct {
		MessageID   string   `json:"messageId"`
		Destination []string `json:"destination"`
	} `json:"mail"`
	Receipt struct {
		Action struct {
			Type       string `json:"type"`
			BucketName string `json:"bucketName"`
			ObjectKey  string `json:"objectKey"`
		} `json:"action"`
	} `json:"receipt"`
}

// Consumer long-polls the inbound queue and feeds receipt events to the
// processor. Messages are deleted only after their record succeeds, so
// queue redelivery retries the failed subset.
type Consumer struct {
	client    *sqs.Client
	queueURL  string
	processor *Processor
	logger    *slog.Logger
}

// NewConsumer creates an SQS consumer for inbound mail events
func NewConsumer(awsCfg aws.Config, queueURL string, processor *Processor, logger *slog.Logger) *Consumer {
	return &Consumer{
		client:    sqs.NewFromConfig(awsCfg),
		queueURL:  queueURL,
		processor: processor,
		logger:    logger.With("component", "inbound_consumer"),
	}
}

// Run polls until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("starting inbound consumer", "queue_url", c.queueURL)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: receiveBatchSize,
			WaitTimeSeconds:     receiveWaitTime,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("failed to receive messages", "error", err)
			select {
			case <-time.After(receiveErrorWait):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		if len(out.Messages) > 0 {
			c.handleMessages(ctx, out.Messages)
		}
	}
}

func (c *Consumer) handleMessages(ctx context.Context, messages []types.Message) {
	for _, msg := range messages {
		rec, err := parseReceipt([]byte(aws.ToString(msg.Body)))
		if err != nil {
			// Malformed bodies would otherwise redeliver forever.
			c.logger.Error("dropping unparseable queue message", "error", err)
			c.delete(ctx, msg)
			continue
		}

		if err := c.processor.ProcessRecord(ctx, *rec); err != nil {
			c.logger.Error("failed to process queue message",
				"object_key", rec.ObjectKey,
				"error", err,
			)
			continue
		}
		c.delete(ctx, msg)
	}
}

func (c *Consumer) delete(ctx context.Context, msg types.Message) {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		c.logger.Error("failed to delete queue message", "error", err)
	}
}

// parseReceipt decodes a queue message body, unwrapping an SNS envelope
// when present.
func parseReceipt(body []byte) (*Record, error) {
	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Type == "Notification" && env.Message != "" {
		body = []byte(env.Message)
	}

	var n receiptNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("failed to decode receipt notification: %w", err)
	}
	if n.Receipt.Action.ObjectKey == "" {
		return nil, fmt.Errorf("receipt notification has no object key")
	}

	return &Record{
		ObjectKey:  n.Receipt.Action.ObjectKey,
		MessageID:  n.Mail.MessageID,
		Recipients: n.Mail.Destination,
	}, nil
}
