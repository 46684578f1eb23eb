package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/employee"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventCall struct {
	kind       string
	companyID  string
	employeeID string
	wage       *decimal.Decimal
}

type recordingService struct {
	compensation.CompensationService

	mu      sync.Mutex
	calls   []eventCall
	initErr error
	delErr  error
	// initFailures makes the next n InitializeFromEvent calls fail transiently.
	initFailures int
}

func (s *recordingService) InitializeFromEvent(_ context.Context, companyID, employeeID string, wage *decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, eventCall{"init", companyID, employeeID, wage})
	if s.initFailures > 0 {
		s.initFailures--
		return errors.New("connection reset")
	}
	return s.initErr
}

func (s *recordingService) DeleteFromEvent(_ context.Context, companyID, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, eventCall{"delete", companyID, employeeID, nil})
	return s.delErr
}

// fakeReader serves queued messages and then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafkago.Message
	committed []int64
	drained   chan struct{}
}

func newFakeReader(values ...string) *fakeReader {
	r := &fakeReader{drained: make(chan struct{})}
	for i, v := range values {
		r.queue = append(r.queue, kafkago.Message{Offset: int64(i), Value: []byte(v)})
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	select {
	case <-r.drained:
	default:
		close(r.drained)
	}
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

const (
	companyID   = "0192f0c6-7b1e-7c3a-9a55-1f0e3f4c2a10"
	employeeID  = "0192f0c6-7b1e-7c3a-9a55-1f0e3f4c2a11"
	employeeID2 = "0192f0c6-7b1e-7c3a-9a55-1f0e3f4c2a12"
)

// runUntilDrained runs c until reader has served its queue.
func runUntilDrained(t *testing.T, c *LifecycleConsumer, reader *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain the queue")
	}
	cancel()
	<-done
}

func TestLifecycleConsumer_Handle(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		initErr    error
		delErr     error
		wantCommit bool
		wantCall   string
	}{
		{
			name:       "created initializes with wage",
			value:      `{"type":"employee.created","company_id":"` + companyID + `","employee_id":"` + employeeID + `","monthly_wage":"50000"}`,
			wantCommit: true,
			wantCall:   "init",
		},
		{
			name:       "duplicate created is skipped",
			value:      `{"type":"employee.created","company_id":"` + companyID + `","employee_id":"` + employeeID + `"}`,
			initErr:    compensation.ErrStructureAlreadyExists,
			wantCommit: true,
			wantCall:   "init",
		},
		{
			name:       "unknown employee is dropped",
			value:      `{"type":"employee.created","company_id":"` + companyID + `","employee_id":"` + employeeID + `"}`,
			initErr:    employee.ErrEmployeeNotFound,
			wantCommit: true,
			wantCall:   "init",
		},
		{
			name:       "database failure is retried",
			value:      `{"type":"employee.created","company_id":"` + companyID + `","employee_id":"` + employeeID + `"}`,
			initErr:    errors.New("connection reset"),
			wantCommit: false,
			wantCall:   "init",
		},
		{
			name:       "deleted removes structure",
			value:      `{"type":"employee.deleted","company_id":"` + companyID + `","employee_id":"` + employeeID + `"}`,
			wantCommit: true,
			wantCall:   "delete",
		},
		{
			name:       "malformed payload is committed",
			value:      `{not json`,
			wantCommit: true,
		},
		{
			name:       "missing ids is committed",
			value:      `{"type":"employee.created"}`,
			wantCommit: true,
		},
		{
			name:       "non uuid ids are committed",
			value:      `{"type":"employee.created","company_id":"c","employee_id":"e"}`,
			wantCommit: true,
		},
		{
			name:       "other event types are ignored",
			value:      `{"type":"employee.updated","company_id":"` + companyID + `","employee_id":"` + employeeID + `"}`,
			wantCommit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &recordingService{initErr: tt.initErr, delErr: tt.delErr}
			c := NewLifecycleConsumer(newFakeReader(), svc, nil)

			got := c.Handle(context.Background(), kafkago.Message{Value: []byte(tt.value)})
			assert.Equal(t, tt.wantCommit, got)

			if tt.wantCall == "" {
				assert.Empty(t, svc.calls)
				return
			}
			require.Len(t, svc.calls, 1)
			assert.Equal(t, tt.wantCall, svc.calls[0].kind)
			assert.Equal(t, companyID, svc.calls[0].companyID)
			assert.Equal(t, employeeID, svc.calls[0].employeeID)
		})
	}
}

func TestLifecycleConsumer_HandlePassesWage(t *testing.T) {
	svc := &recordingService{}
	c := NewLifecycleConsumer(newFakeReader(), svc, nil)

	c.Handle(context.Background(), kafkago.Message{Value: []byte(`{"type":"employee.created","company_id":"` + companyID + `","employee_id":"` + employeeID + `","monthly_wage":"64000.50"}`)})

	require.Len(t, svc.calls, 1)
	require.NotNil(t, svc.calls[0].wage)
	assert.True(t, decimal.RequireFromString("64000.50").Equal(*svc.calls[0].wage))
}

func TestLifecycleConsumer_RunCommitsHandledMessages(t *testing.T) {
	reader := newFakeReader(
		`{"type":"employee.created","company_id":"`+companyID+`","employee_id":"`+employeeID+`"}`,
		`{broken`,
		`{"type":"employee.deleted","company_id":"`+companyID+`","employee_id":"`+employeeID2+`"}`,
	)
	svc := &recordingService{}
	c := NewLifecycleConsumer(reader, svc, nil)

	runUntilDrained(t, c, reader)

	assert.Equal(t, []int64{0, 1, 2}, reader.committed)
	require.Len(t, svc.calls, 2)
	assert.Equal(t, "init", svc.calls[0].kind)
	assert.Equal(t, "delete", svc.calls[1].kind)
}

func TestLifecycleConsumer_RunRetriesTransientFailureInPlace(t *testing.T) {
	reader := newFakeReader(
		`{"type":"employee.created","company_id":"`+companyID+`","employee_id":"`+employeeID+`"}`,
		`{"type":"employee.deleted","company_id":"`+companyID+`","employee_id":"`+employeeID2+`"}`,
	)
	svc := &recordingService{initFailures: 2}
	c := NewLifecycleConsumer(reader, svc, nil)
	c.backoff = time.Millisecond
	c.maxBackoff = 2 * time.Millisecond

	runUntilDrained(t, c, reader)

	require.Len(t, svc.calls, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, "init", svc.calls[i].kind, "call %d", i)
		assert.Equal(t, employeeID, svc.calls[i].employeeID)
	}
	assert.Equal(t, "delete", svc.calls[3].kind)
	assert.Equal(t, employeeID2, svc.calls[3].employeeID)
	assert.Equal(t, []int64{0, 1}, reader.committed)
}

func TestLifecycleConsumer_RunStopsRetryingOnCancel(t *testing.T) {
	reader := newFakeReader(
		`{"type":"employee.created","company_id":"`+companyID+`","employee_id":"`+employeeID+`"}`,
	)
	svc := &recordingService{initFailures: 1 << 30}
	c := NewLifecycleConsumer(reader, svc, nil)
	c.backoff = time.Millisecond
	c.maxBackoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.calls) >= 3
	}, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer kept retrying after cancel")
	}
	assert.Empty(t, reader.committed)
}
