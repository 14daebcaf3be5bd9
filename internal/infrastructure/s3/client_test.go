package s3infra

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thlight-panel/internal/domain"
)

type mockObjectAPI struct{ mock.Mock }

func (m *mockObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockObjectAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func TestStore_Get_ReadsPrefixedObject(t *testing.T) {
	api := &mockObjectAPI{}
	api.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Bucket == "panel" && *in.Key == "state/thlight-servers.json"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(`[]`))}, nil)

	s := &Store{client: api, bucket: "panel", prefix: "state/"}
	raw, err := s.Get(context.Background(), "thlight-servers")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestStore_Get_NoSuchKeyIsNotFound(t *testing.T) {
	api := &mockObjectAPI{}
	api.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

	s := &Store{client: api, bucket: "panel", prefix: "state/"}
	_, err := s.Get(context.Background(), "thlight-servers")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_Get_OtherErrorsPassThrough(t *testing.T) {
	api := &mockObjectAPI{}
	api.On("GetObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	s := &Store{client: api, bucket: "panel", prefix: "state/"}
	_, err := s.Get(context.Background(), "thlight-servers")
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	assert.ErrorContains(t, err, "access denied")
}

func TestStore_SetAndRemove(t *testing.T) {
	api := &mockObjectAPI{}
	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return *in.Key == "state/thlight-banned-emails.json" &&
			*in.ContentType == "application/json" &&
			string(body) == `["x@gmail.com"]`
	})).Return(nil)
	api.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return *in.Key == "state/thlight-banned-emails.json"
	})).Return(nil)

	s := &Store{client: api, bucket: "panel", prefix: "state/"}
	require.NoError(t, s.Set(context.Background(), "thlight-banned-emails", []byte(`["x@gmail.com"]`)))
	require.NoError(t, s.Remove(context.Background(), "thlight-banned-emails"))
	api.AssertExpectations(t)
}
