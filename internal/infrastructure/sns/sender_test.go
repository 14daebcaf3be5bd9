package sns

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thlight-panel/internal/domain"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestPublishInput_CarriesRecipientAttribute(t *testing.T) {
	in := publishInput("arn:aws:sns:us-east-1:000000000000:otp", domain.OutboundEmail{
		To: "a@gmail.com", Subject: "Code", Body: "123456",
	})
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:otp", aws.ToString(in.TopicArn))
	assert.Equal(t, "Code", aws.ToString(in.Subject))
	assert.Equal(t, "123456", aws.ToString(in.Message))
	assert.Equal(t, "a@gmail.com", aws.ToString(in.MessageAttributes["recipient"].StringValue))
}

func TestPublishInput_TruncatesLongSubject(t *testing.T) {
	in := publishInput("arn", domain.OutboundEmail{Subject: strings.Repeat("x", 150)})
	assert.Len(t, aws.ToString(in.Subject), 100)
}

func TestDeliver_PublishesToTopic(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.TopicArn) == "arn:topic"
	})).Return(&sns.PublishOutput{}, nil)

	tr := &Transport{client: pub, topicARN: "arn:topic"}
	require.NoError(t, tr.Deliver(context.Background(), domain.OutboundEmail{To: "a@gmail.com"}))
	pub.AssertExpectations(t)
}

func TestDeliver_PropagatesError(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
	tr := &Transport{client: pub, topicARN: "arn:topic"}
	assert.ErrorContains(t, tr.Deliver(context.Background(), domain.OutboundEmail{}), "throttled")
}
