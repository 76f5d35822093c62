package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"spurt/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// pubSubSender queues messages on a Google Pub/Sub topic for the mail worker.
type pubSubSender struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    *slog.Logger
}

// NewPubSubSender creates a sender publishing to topicID. When credentialsPath is
// empty, application default credentials are used.
func NewPubSubSender(ctx context.Context, projectID, topicID, credentialsPath string, logger *slog.Logger) (service.EmailSender, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Check if topic exists using TopicAdminClient
	topicPath := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	_, err = client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
		Topic: topicPath,
	})
	if err != nil {
		client.Close()

		return nil, errors.Wrapf(err, "failed to get topic %s", topicID)
	}

	logger.Info("Google Pub/Sub mail queue initialized",
		slog.String("project_id", projectID),
		slog.String("topic_id", topicID),
	)

	return &pubSubSender{
		client:    client,
		publisher: client.Publisher(topicID),
		logger:    logger,
	}, nil
}

func (s *pubSubSender) Send(ctx context.Context, msg *service.EmailMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.WithStack(err)
	}

	result := s.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: messageAttributes(msg),
	})

	serverID, err := result.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to publish email")
	}

	s.logger.InfoContext(ctx, "[GooglePubSub] Email queued",
		slog.String("to", msg.ToAddress),
		slog.String("server_id", serverID),
	)

	return nil
}

// Close flushes pending publishes and releases Pub/Sub client resources
func (s *pubSubSender) Close() error {
	if s.publisher != nil {
		s.publisher.Stop()
	}
	if s.client != nil {
		return errors.WithStack(s.client.Close())
	}

	return nil
}
