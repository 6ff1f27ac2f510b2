package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// MockUpstreamClient is a mock implementation of service.UpstreamClient for testing.
// It returns predefined test data instead of making actual HTTP calls.
type MockUpstreamClient struct {
	mu sync.Mutex

	// MockSnapshot is returned from FetchSnapshot
	MockSnapshot *model.Snapshot
	// MockResult is returned from refresh and upload calls
	MockResult model.OperationResult
	// MockError is returned from every call when set
	MockError error
	// MockOperationError is returned from refresh and upload calls only
	MockOperationError error

	// FetchCount tracks how many times FetchSnapshot was called
	FetchCount int
	// OperationCount tracks refresh and upload calls
	OperationCount int
	// LastUpload records the filename and password of the last upload
	LastUpload struct {
		Filename string
		Password string
		Body     string
	}
}

// NewMockUpstreamClient creates a new mock upstream client serving SampleSnapshot.
func NewMockUpstreamClient() *MockUpstreamClient {
	return &MockUpstreamClient{
		MockSnapshot: SampleSnapshot(),
		MockResult:   model.OperationResult{Status: "success", Message: "ok"},
	}
}

// FetchSnapshot returns a copy of MockSnapshot so callers cannot alter the fixture.
func (m *MockUpstreamClient) FetchSnapshot(_ context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCount++
	if m.MockError != nil {
		return nil, m.MockError
	}
	if m.MockSnapshot == nil {
		return nil, nil
	}
	snap := *m.MockSnapshot
	return &snap, nil
}

func (m *MockUpstreamClient) RefreshNAV(_ context.Context) (model.OperationResult, error) {
	return m.operation()
}

func (m *MockUpstreamClient) RefreshData(_ context.Context) (model.OperationResult, error) {
	return m.operation()
}

func (m *MockUpstreamClient) UploadStatement(_ context.Context, filename string, file io.Reader, password string) (model.OperationResult, error) {
	body, _ := io.ReadAll(file)

	m.mu.Lock()
	m.LastUpload.Filename = filename
	m.LastUpload.Password = password
	m.LastUpload.Body = string(body)
	m.mu.Unlock()

	return m.operation()
}

func (m *MockUpstreamClient) operation() (model.OperationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.OperationCount++
	if m.MockError != nil {
		return model.OperationResult{}, m.MockError
	}
	if m.MockOperationError != nil {
		return model.OperationResult{Status: "error", Message: m.MockOperationError.Error()}, m.MockOperationError
	}
	return m.MockResult, nil
}

// WithError configures the mock to fail every call with err.
func (m *MockUpstreamClient) WithError(err error) *MockUpstreamClient {
	m.MockError = err
	return m
}

// WithOperationError configures refresh and upload calls to fail while FetchSnapshot keeps working.
func (m *MockUpstreamClient) WithOperationError(err error) *MockUpstreamClient {
	m.MockOperationError = err
	return m
}

// WithSnapshot configures the snapshot returned from FetchSnapshot.
func (m *MockUpstreamClient) WithSnapshot(snap *model.Snapshot) *MockUpstreamClient {
	m.MockSnapshot = snap
	return m
}

// Fetches returns FetchCount under the mock's lock.
func (m *MockUpstreamClient) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FetchCount
}
