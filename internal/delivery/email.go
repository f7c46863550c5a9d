package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/1Levick3/Analyser-chess/internal/errors"
	"github.com/1Levick3/Analyser-chess/internal/logger"
)

// Email sends reports as plain-text email via Amazon SES. Email bodies have
// no practical size limit, so no splitting is needed on this channel.
type Email struct {
	client   *sesv2.Client
	from     string
	fromName string
	to       string
	log      *logger.Logger
}

func NewEmail(awsRegion, from, fromName, to string) (*Email, error) {
	log := logger.Default().WithPrefix("email")

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		log.Error("failed to load AWS config: %v", err)
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("email delivery enabled: from=%s, region=%s", from, awsRegion)
	return &Email{
		client:   sesv2.NewFromConfig(cfg),
		from:     from,
		fromName: fromName,
		to:       to,
		log:      log,
	}, nil
}

func (e *Email) Name() string { return "email" }

func (e *Email) Deliver(ctx context.Context, document string) error {
	fromAddress := e.from
	if e.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", e.fromName, e.from)
	}
	subject := fmt.Sprintf("Chess analysis report %s", time.Now().UTC().Format("2006-01-02"))

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{e.to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(document),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := e.client.SendEmail(ctx, input); err != nil {
		e.log.Error("failed to send report email: %v", err)
		return errors.NewDeliveryError(e.Name(), err)
	}
	e.log.Info("report emailed to %s", e.to)
	return nil
}
