// Package cloud loads the AWS SDK configuration shared by the DynamoDB and SNS clients.
package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/MrJamesThe3rd/payreminder/internal/config"
)

// Load resolves region and credentials. Static keys are used when configured,
// otherwise the default provider chain applies.
func Load(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWS.Region),
	}

	if cfg.AWS.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}

	return awsCfg, nil
}

// Endpoint returns the override for local stacks such as LocalStack, or nil.
func Endpoint(cfg *config.Config) *string {
	if cfg.AWS.EndpointURL == "" {
		return nil
	}

	return aws.String(cfg.AWS.EndpointURL)
}
