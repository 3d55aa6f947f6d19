package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/prohmpiriya/autostore-platform/pkg/retry"
)

// lambdaInvoker is the part of *lambda.Client the notifier needs
type lambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaConfig configures LambdaNotifier
type LambdaConfig struct {
	FunctionName string
	Region       string
	// EndpointURL overrides the service endpoint, e.g. for localstack
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	// From is the sender used when an email does not set one
	From  string
	Retry *retry.Config
}

// LambdaNotifier hands email to a Lambda function that delivers it
type LambdaNotifier struct {
	client   lambdaInvoker
	function string
	from     string
	retry    *retry.Config
}

// NewLambdaNotifier loads AWS configuration and builds a Lambda client
func NewLambdaNotifier(ctx context.Context, cfg *LambdaConfig) (*LambdaNotifier, error) {
	if cfg == nil || cfg.FunctionName == "" {
		return nil, errors.New("lambda function name is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := lambda.NewFromConfig(awsCfg, func(o *lambda.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	})
	n := newLambdaNotifier(client, cfg.FunctionName, cfg.Retry)
	n.from = cfg.From
	return n, nil
}

func newLambdaNotifier(client lambdaInvoker, function string, retryCfg *retry.Config) *LambdaNotifier {
	return &LambdaNotifier{client: client, function: function, retry: retryCfg}
}

// Send invokes the function synchronously. Transport errors are retried; an
// error raised inside the function is not.
func (n *LambdaNotifier) Send(ctx context.Context, email *Email) error {
	msg := *email
	if msg.From == "" {
		msg.From = n.from
	}
	payload, err := json.Marshal(&msg)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	res := retry.New(n.retry).Do(ctx, func(ctx context.Context) error {
		out, err := n.client.Invoke(ctx, &lambda.InvokeInput{
			FunctionName:   aws.String(n.function),
			InvocationType: types.InvocationTypeRequestResponse,
			Payload:        payload,
		})
		if err != nil {
			return fmt.Errorf("invoke %s: %w", n.function, err)
		}
		if out.FunctionError != nil {
			return retry.Permanent(fmt.Errorf("lambda %s failed: %s: %s", n.function, aws.ToString(out.FunctionError), out.Payload))
		}
		return nil
	})
	if res.Err == nil {
		return nil
	}
	if res.LastError != nil {
		return res.LastError
	}
	return res.Err
}
