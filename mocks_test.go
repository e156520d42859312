package accounts_test

import (
	"context"

	"github.com/finboard/go-accounts"
	"github.com/stretchr/testify/mock"
)

// testConfig is a plain Config for tests
type testConfig struct {
	baseURL string
	timeout int
}

func (c testConfig) GetBaseURL() string     { return c.baseURL }
func (c testConfig) GetRequestTimeout() int { return c.timeout }
func (c testConfig) GetSigningKey() string  { return "test-signing-key" }
func (c testConfig) GetIssuer() string      { return "test-issuer" }

// MockRemoteRegistry implements accounts.RemoteUserRegistry
type MockRemoteRegistry struct {
	mock.Mock
}

func (m *MockRemoteRegistry) List(ctx context.Context) ([]accounts.UserRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]accounts.UserRecord)
	return records, args.Error(1)
}

func (m *MockRemoteRegistry) Create(ctx context.Context, record accounts.UserRecord) (accounts.UserRecord, string, error) {
	args := m.Called(ctx, record)
	created, _ := args.Get(0).(accounts.UserRecord)
	return created, args.String(1), args.Error(2)
}

func (m *MockRemoteRegistry) Authenticate(ctx context.Context, userID, password string) (accounts.UserRecord, string, error) {
	args := m.Called(ctx, userID, password)
	record, _ := args.Get(0).(accounts.UserRecord)
	return record, args.String(1), args.Error(2)
}

func (m *MockRemoteRegistry) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockLocalRegistry implements accounts.LocalUserRegistry
type MockLocalRegistry struct {
	mock.Mock
}

func (m *MockLocalRegistry) List(ctx context.Context) ([]accounts.UserRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]accounts.UserRecord)
	return records, args.Error(1)
}

func (m *MockLocalRegistry) Create(ctx context.Context, record accounts.UserRecord) (accounts.UserRecord, error) {
	args := m.Called(ctx, record)
	created, _ := args.Get(0).(accounts.UserRecord)
	return created, args.Error(1)
}

func (m *MockLocalRegistry) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
