// Package sesmail delivers documents as email attachments through AWS
// SES. Without credentials the sender runs in simulation mode: it
// accepts every message and fabricates a message id, so the rest of the
// pipeline behaves the same in development as in production.
package sesmail

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/printmechecks/server/internal/config"
	"github.com/printmechecks/server/internal/pkg/logger"
)

// Attachment is a document to attach to an outbound email.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// Message is a single outbound email.
type Message struct {
	To          string
	Subject     string
	PlainText   string
	Attachments []Attachment
}

// Result records the provider's answer, serialized verbatim into the
// job's provider response.
type Result struct {
	MessageID   string   `json:"messageId"`
	Status      string   `json:"status"`
	To          string   `json:"to"`
	Subject     string   `json:"subject"`
	Attachments []string `json:"attachments,omitempty"`
	Simulated   bool     `json:"simulated,omitempty"`
}

// Sender sends emails via AWS SES using the SDK v2.
type Sender struct {
	sender string
	client *sesv2.Client
}

// NewSender creates an SES sender. Initializes the AWS SDK client if
// credentials are provided; otherwise the sender stays in simulation
// mode.
func NewSender(cfg config.EmailConfig) *Sender {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	s := &Sender{sender: cfg.SenderAddress}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		)
		if err != nil {
			log.Printf("[SES] Warning: Failed to initialize AWS config: %v", err)
		} else {
			s.client = sesv2.NewFromConfig(awsCfg)
		}
	}

	return s
}

// Simulated reports whether the sender fabricates deliveries instead of
// calling SES.
func (s *Sender) Simulated() bool {
	return s.client == nil
}

// Send delivers a single email. Attachments force the raw MIME path
// since the SES simple content type cannot carry them.
func (s *Sender) Send(ctx context.Context, msg Message) (*Result, error) {
	if msg.To == "" {
		return nil, fmt.Errorf("recipient address is empty")
	}

	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Name)
	}

	if s.Simulated() {
		res := &Result{
			MessageID:   "ses_" + gonanoid.Must(21),
			Status:      "QUEUED",
			To:          msg.To,
			Subject:     msg.Subject,
			Attachments: names,
			Simulated:   true,
		}
		log.Printf("[SES] Simulated send to %s (%d attachments)", logger.RedactEmail(msg.To), len(msg.Attachments))
		return res, nil
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.sender),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
	}

	if len(msg.Attachments) > 0 {
		raw, err := buildRawMessage(s.sender, msg)
		if err != nil {
			return nil, fmt.Errorf("building MIME message: %w", err)
		}
		input.Content = &types.EmailContent{Raw: &types.RawMessage{Data: raw}}
	} else {
		input.Content = &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.PlainText), Charset: aws.String("UTF-8")},
				},
			},
		}
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		log.Printf("[SES] Failed to send to %s: %v", logger.RedactEmail(msg.To), err)
		return nil, fmt.Errorf("ses send: %w", err)
	}

	messageID := ""
	if out.MessageId != nil {
		messageID = *out.MessageId
	}
	log.Printf("[SES] Sent to %s (id: %s)", logger.RedactEmail(msg.To), messageID)

	return &Result{
		MessageID:   messageID,
		Status:      "SUBMITTED",
		To:          msg.To,
		Subject:     msg.Subject,
		Attachments: names,
	}, nil
}
