// Package mailer delivers workflow email through AWS SES.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/ignite/email-subscribers/internal/pkg/logger"
)

// sesAPI is the subset of the SES v2 client the mailer uses.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Options configures an SESMailer.
type Options struct {
	Region           string
	AccessKey        string
	SecretKey        string
	FromEmail        string
	FromName         string
	ConfigurationSet string
}

// SESMailer sends HTML email via AWS SES using the SDK v2.
type SESMailer struct {
	client sesAPI
	opts   Options
}

// NewSESMailer loads AWS configuration and returns a mailer. Static
// credentials are used when both keys are set; otherwise the default
// credential chain applies (IAM role on ECS).
func NewSESMailer(ctx context.Context, opts Options) (*SESMailer, error) {
	if opts.FromEmail == "" {
		return nil, errors.New("ses mailer: from email is required")
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newSESMailer(sesv2.NewFromConfig(cfg), opts), nil
}

func newSESMailer(client sesAPI, opts Options) *SESMailer {
	return &SESMailer{client: client, opts: opts}
}

func (m *SESMailer) from() string {
	if m.opts.FromName == "" {
		return m.opts.FromEmail
	}
	return (&mail.Address{Name: m.opts.FromName, Address: m.opts.FromEmail}).String()
}

// SendEmail delivers one HTML message to a single recipient.
func (m *SESMailer) SendEmail(ctx context.Context, to, subject, html string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from()),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("origin"), Value: aws.String("workflow")},
		},
	}
	if m.opts.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(m.opts.ConfigurationSet)
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	messageID := ""
	if out != nil && out.MessageId != nil {
		messageID = *out.MessageId
	}
	logger.Info("workflow email sent", "email", to, "message_id", messageID)
	return nil
}
