package reminder

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
)

const charset = "UTF-8"

// sesAPI is the subset of *sesv2.Client used by SESTransport.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESTransport sends mail through Amazon SES v2.
type SESTransport struct {
	api  sesAPI
	from string
}

// NewSESTransport loads the default AWS credential chain for region.
func NewSESTransport(ctx context.Context, region, fromAddress, fromName string) (*SESTransport, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESTransport{
		api:  sesv2.NewFromConfig(cfg),
		from: (&mail.Address{Name: fromName, Address: fromAddress}).String(),
	}, nil
}

func (t *SESTransport) Send(ctx context.Context, msg Message) error {
	to := (&mail.Address{Name: msg.ToName, Address: msg.To}).String()

	_, err := t.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(t.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String(charset)},
					Text: &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String(charset)},
				},
			},
		},
	})
	if err != nil {
		return mapSESError(err)
	}
	return nil
}

func mapSESError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("ses %s: %s: %w", apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
	}
	return fmt.Errorf("ses: %w", err)
}

var _ Transport = (*SESTransport)(nil)
