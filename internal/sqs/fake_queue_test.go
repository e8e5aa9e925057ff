package sqs

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789/products"

// receiveResult is one scripted answer to ReceiveMessage.
type receiveResult struct {
	messages []types.Message
	err      error
}

// fakeQueue records what the publisher and consumer send to SQS.
type fakeQueue struct {
	mu sync.Mutex

	sendErr   error
	deleteErr error
	receives  []receiveResult
	// onExhausted runs once the scripted receives are used up.
	onExhausted func()

	sent           []*sqs.SendMessageInput
	received       []*sqs.ReceiveMessageInput
	deletedHandles []string
}

func (q *fakeQueue) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sent = append(q.sent, params)
	if q.sendErr != nil {
		return nil, q.sendErr
	}
	return &sqs.SendMessageOutput{}, nil
}

func (q *fakeQueue) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	q.mu.Lock()
	q.received = append(q.received, params)
	if len(q.receives) == 0 {
		hook := q.onExhausted
		q.mu.Unlock()
		if hook != nil {
			hook()
		}
		return nil, ctx.Err()
	}
	next := q.receives[0]
	q.receives = q.receives[1:]
	q.mu.Unlock()

	if next.err != nil {
		return nil, next.err
	}
	return &sqs.ReceiveMessageOutput{Messages: next.messages}, nil
}

func (q *fakeQueue) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.deleteErr != nil {
		return nil, q.deleteErr
	}
	q.deletedHandles = append(q.deletedHandles, *params.ReceiptHandle)
	return &sqs.DeleteMessageOutput{}, nil
}
