package mailrelay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thlight-panel/internal/domain"
)

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) Send(ctx context.Context, msg domain.OutboundEmail) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type mockTransport struct {
	mock.Mock
	name string
}

func (m *mockTransport) Name() string { return m.name }
func (m *mockTransport) Deliver(ctx context.Context, msg domain.OutboundEmail) error {
	return m.Called(ctx, msg).Error(0)
}

var msg = domain.OutboundEmail{To: "a@gmail.com", Subject: "S", Body: "B", Code: "123456"}

func TestRelay_RecordsThenDeliversToAll(t *testing.T) {
	rec := &mockRecorder{}
	rec.On("Send", mock.Anything, msg).Return("id-1", nil)
	t1 := &mockTransport{name: "smtp"}
	t1.On("Deliver", mock.Anything, msg).Return(nil)
	t2 := &mockTransport{name: "sns"}
	t2.On("Deliver", mock.Anything, msg).Return(nil)

	id, err := New(rec, t1, t2).Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
	rec.AssertExpectations(t)
	t1.AssertExpectations(t)
	t2.AssertExpectations(t)
}

func TestRelay_TransportFailureIsSwallowed(t *testing.T) {
	rec := &mockRecorder{}
	rec.On("Send", mock.Anything, msg).Return("id-1", nil)
	bad := &mockTransport{name: "smtp"}
	bad.On("Deliver", mock.Anything, msg).Return(errors.New("connection refused"))
	good := &mockTransport{name: "sns"}
	good.On("Deliver", mock.Anything, msg).Return(nil)

	id, err := New(rec, bad, good).Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
	good.AssertExpectations(t)
}

func TestRelay_RecorderFailureSkipsTransports(t *testing.T) {
	rec := &mockRecorder{}
	rec.On("Send", mock.Anything, msg).Return("", errors.New("redis down"))
	tr := &mockTransport{name: "smtp"}

	_, err := New(rec, tr).Send(context.Background(), msg)
	assert.ErrorContains(t, err, "redis down")
	tr.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}
