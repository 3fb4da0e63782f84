package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/spacesedan/ideaflow/config"
)

// NewDynamoDBClient builds a DynamoDB client for the configured region. A
// non-empty AWS_ENDPOINT overrides the base endpoint, which is how local
// DynamoDB is reached.
func NewDynamoDBClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	slog.Info("[AWSClient] Initializing AWS Config...", slog.String("region", cfg.AWSRegion))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("[AWSClient] failed to load AWS config: %w", err)
	}

	endpoint := cfg.AWSEndpoint
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	slog.Info("[AWSClient] AWS Config Initialized", slog.String("endpoint", endpoint))
	return client, nil
}
