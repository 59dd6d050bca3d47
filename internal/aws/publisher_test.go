package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type mockSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (m *mockSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, in)
	return &sqs.SendMessageOutput{}, nil
}

func TestPublisher_SendMessage(t *testing.T) {
	m := &mockSQS{}
	p := NewPublisher(m, "https://sqs.local/queue")

	if err := p.SendMessage(context.Background(), `{"a":1}`, map[string]string{"event_type": "order.created", "order_id": "ORD-1"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(m.inputs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(m.inputs))
	}
	in := m.inputs[0]
	if *in.QueueUrl != "https://sqs.local/queue" || *in.MessageBody != `{"a":1}` {
		t.Fatalf("unexpected input: %+v", in)
	}
	// each attribute must keep its own value
	if got := *in.MessageAttributes["order_id"].StringValue; got != "ORD-1" {
		t.Fatalf("order_id attr = %s", got)
	}
	if got := *in.MessageAttributes["event_type"].StringValue; got != "order.created" {
		t.Fatalf("event_type attr = %s", got)
	}
}

func TestPublisher_SendMessageError(t *testing.T) {
	boom := errors.New("boom")
	p := NewPublisher(&mockSQS{err: boom}, "q")
	if err := p.SendMessage(context.Background(), "{}", nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}
