package metrics

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/lkscloud/order-console/internal/apiclient"
)

// Namespace for the console's CloudWatch metrics.
const Namespace = "LKS/OrderConsole"

// putTimeout bounds each best-effort metric publish so a slow or
// credential-less environment cannot stall the caller for long.
const putTimeout = 2 * time.Second

// CloudWatchAPI is the slice of the CloudWatch client the publisher needs,
// kept narrow so tests can provide an in-memory fake.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// LoadAWSConfig loads the SDK config for the given region, falling back to
// AWS_REGION and then us-east-1.
func LoadAWSConfig(ctx context.Context, region string) (sdkaws.Config, error) {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1" // default fallback
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return cfg, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewClient returns a concrete CloudWatch client for the region.
func NewClient(ctx context.Context, region string) (CloudWatchAPI, error) {
	cfg, err := LoadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return cloudwatch.NewFromConfig(cfg), nil
}

// Publisher ships one latency datapoint per API call to CloudWatch. It
// implements apiclient.Sink. Publishing is best-effort: failures are logged
// and never propagate to the operation that triggered them.
type Publisher struct {
	cw        CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewPublisher builds a Publisher against the given client. An empty
// namespace uses the console default.
func NewPublisher(cw CloudWatchAPI, namespace string) *Publisher {
	if namespace == "" {
		namespace = Namespace
	}
	return &Publisher{cw: cw, namespace: namespace, nowFunc: time.Now}
}

// RecordCall publishes APIResponseTime in milliseconds, dimensioned by HTTP
// method and outcome.
func (p *Publisher) RecordCall(rec apiclient.CallRecord) {
	outcome := "Success"
	if rec.Err != nil {
		outcome = "Failure"
	}

	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	_, err := p.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &p.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("APIResponseTime"),
				Timestamp:  sdkaws.Time(p.nowFunc()),
				Value:      sdkaws.Float64(float64(rec.Duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("Method"), Value: awsString(rec.Method)},
					{Name: awsString("Outcome"), Value: awsString(outcome)},
				},
			},
		},
	})
	if err != nil {
		log.Printf("[metrics] put metric data: %v", err)
	}
}

func awsString(s string) *string { return &s }
