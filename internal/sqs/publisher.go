package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/product-catalog/internal/model"
)

// ActionCreated marks a notification about a newly created product.
const ActionCreated = "created"

// Message attribute names set on every product notification.
const (
	attrAction    = "action"
	attrProductID = "product_id"
)

// SenderAPI defines the SQS operation used by Publisher.
type SenderAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// ProductMessage is the JSON body of a product notification.
type ProductMessage struct {
	Action      string  `json:"action"`
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// NewProductCreatedMessage describes a product that has just been stored.
func NewProductCreatedMessage(p *model.Product) ProductMessage {
	return ProductMessage{
		Action:      ActionCreated,
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
	}
}

// Publisher sends product notifications to one queue.
type Publisher struct {
	client   SenderAPI
	queueURL string
}

// NewPublisher creates a Publisher for queueURL.
func NewPublisher(client SenderAPI, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
	}
}

// PublishProductMessage sends msg as JSON; action and product id are copied into
// message attributes so subscribers can filter without decoding the body.
func (p *Publisher) PublishProductMessage(ctx context.Context, msg ProductMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			attrAction:    stringAttribute(msg.Action),
			attrProductID: stringAttribute(msg.ProductID),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}
	return nil
}

func stringAttribute(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}
