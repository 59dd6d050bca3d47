package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"github.com/imrishuroy/topup-storefront/internal/aws"
	orderevents "github.com/imrishuroy/topup-storefront/internal/events"
	"github.com/imrishuroy/topup-storefront/internal/orders"
)

const (
	metricCreated         = "OrdersCreated"
	metricApproved        = "OrdersApproved"
	metricRejected        = "OrdersRejected"
	metricApprovedRevenue = "ApprovedRevenue"
)

// Processor turns order lifecycle messages into CloudWatch metrics.
type Processor struct {
	cw        aws.CloudWatchAPI
	namespace string
	logger    *zap.Logger
}

// NewProcessor creates a Processor publishing under namespace.
func NewProcessor(cw aws.CloudWatchAPI, namespace string, logger *zap.Logger) *Processor {
	return &Processor{cw: cw, namespace: namespace, logger: logger}
}

// Handle receives an SQS batch and publishes one PutMetricData call for it.
// A malformed message fails the whole batch so Lambda retries it.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	var data []cwtypes.MetricDatum
	for _, rec := range ev.Records {
		var msg orderevents.Message
		if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
			return fmt.Errorf("invalid message body %s: %w", rec.MessageId, err)
		}
		p.logger.Info("order event",
			zap.String("type", string(msg.Type)),
			zap.String("order_id", msg.OrderID),
			zap.String("status", string(msg.Status)))
		data = append(data, datums(msg)...)
	}
	if len(data) == 0 {
		return nil
	}

	_, err := p.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

func datums(msg orderevents.Message) []cwtypes.MetricDatum {
	at := msg.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	count := func(name string) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Timestamp:  &at,
			Unit:       cwtypes.StandardUnitCount,
			Value:      float64Ptr(1),
		}
	}

	switch msg.Type {
	case orders.EventCreated:
		return []cwtypes.MetricDatum{count(metricCreated)}
	case orders.EventStatusChanged:
		switch msg.Status {
		case orders.StatusApproved:
			return []cwtypes.MetricDatum{
				count(metricApproved),
				{
					MetricName: aws.String(metricApprovedRevenue),
					Timestamp:  &at,
					Unit:       cwtypes.StandardUnitNone,
					Value:      float64Ptr(msg.TotalAmount),
				},
			}
		case orders.StatusRejected:
			return []cwtypes.MetricDatum{count(metricRejected)}
		}
	}
	return nil
}

func float64Ptr(v float64) *float64 { return &v }
