package mail

import (
	"context"
	"fmt"

	"github.com/hieungocdinh/mad-project-n16/shared"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/pkg/errors"
)

type Mailer interface {
	SendAccountCreatedEmail(ctx context.Context, email, username string) error
}

// SesMailer sends transactional mail through Amazon SES. When no sender
// address is configured the mailer stays disabled and every send is a no-op,
// so local setups work without AWS credentials.
type SesMailer struct {
	Config *shared.AppConfig `inject:""`
	Logger *shared.Logger    `inject:""`

	client *sesv2.Client
}

func (m *SesMailer) Init(ctx context.Context) error {
	if m.Config.SesSenderAddress == "" {
		m.Logger.Info(ctx, "mailer disabled, no sender address configured")
		return nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(m.Config.SesRegion))
	if err != nil {
		return errors.Wrap(err, "failed to load aws config")
	}
	m.client = sesv2.NewFromConfig(cfg)
	return nil
}

func (m *SesMailer) SendAccountCreatedEmail(ctx context.Context, email, username string) error {
	subject := "Your genealogy account is ready"
	textBody := fmt.Sprintf("Hello %s,\n\nYour account has been created. Sign in at %s to complete your profile.\n", username, m.Config.AppBaseUrl)
	htmlBody := fmt.Sprintf("<p>Hello %s,</p><p>Your account has been created. Sign in at <a href=%q>%s</a> to complete your profile.</p>", username, m.Config.AppBaseUrl, m.Config.AppBaseUrl)
	return m.send(ctx, email, subject, htmlBody, textBody)
}

func (m *SesMailer) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if m.client == nil {
		m.Logger.Debug(ctx, "mailer disabled, skipping send", "to", to, "subject", subject)
		return nil
	}

	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.Config.SesSenderAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to send email to %s", to)
	}
	return nil
}
