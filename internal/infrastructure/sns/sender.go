package sns

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/thlight-panel/internal/config"
	"github.com/thlight-panel/internal/domain"
)

// publisher is the subset of *sns.Client the transport needs.
type publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Transport publishes rendered emails to an SNS topic. Email subscriptions on
// the topic receive the message; the recipient is carried as an attribute so
// subscription filter policies can route it.
type Transport struct {
	client   publisher
	topicARN string
}

func NewTransport(cfg *config.Config) (*Transport, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	opts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &Transport{client: sns.NewFromConfig(awsCfg, opts...), topicARN: cfg.SNSTopicARN}, nil
}

func (t *Transport) Name() string { return "sns" }

func (t *Transport) Deliver(ctx context.Context, msg domain.OutboundEmail) error {
	_, err := t.client.Publish(ctx, publishInput(t.topicARN, msg))
	return err
}

func publishInput(topicARN string, msg domain.OutboundEmail) *sns.PublishInput {
	// SNS caps subjects at 100 characters.
	subject := msg.Subject
	if len(subject) > 100 {
		subject = subject[:100]
	}
	return &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(msg.Body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"recipient": {DataType: aws.String("String"), StringValue: aws.String(msg.To)},
		},
	}
}
