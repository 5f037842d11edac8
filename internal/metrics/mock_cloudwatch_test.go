package metrics

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
)

// mockCloudWatch is a minimal in-memory fake for PutMetricData used in unit
// tests.
type mockCloudWatch struct {
	mu       sync.Mutex
	inputs   []*cloudwatch.PutMetricDataInput
	putCalls int
	failNext bool
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.failNext {
		m.failNext = false
		return nil, errors.New("throttled")
	}
	m.inputs = append(m.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}
