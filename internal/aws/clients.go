package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// AWSClients bundles all service clients for convenience.
type AWSClients struct {
	Region      string
	DynamoDB    DynamoDBAPI
	S3          S3API
	S3Presigner S3Presigner
	SQS         SQSAPI
	CloudWatch  CloudWatchAPI
}

// NewAWSClients loads AWS config and returns concrete service clients that implement our interfaces.
func NewAWSClients(ctx context.Context) (*AWSClients, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	// localstack serves buckets on the path, not as virtual hosts
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.BaseEndpoint != nil
	})

	return &AWSClients{
		Region:      cfg.Region,
		DynamoDB:    dynamodb.NewFromConfig(cfg),
		S3:          s3Client,
		S3Presigner: s3.NewPresignClient(s3Client),
		SQS:         sqs.NewFromConfig(cfg),
		CloudWatch:  cloudwatch.NewFromConfig(cfg),
	}, nil
}
