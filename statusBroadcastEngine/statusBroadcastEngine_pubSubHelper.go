package statusBroadcastEngine

import (
	"TestProbeServer/common_config"
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

func pubSubPublish(msg string) (err error) {
	projectID := common_config.GCPProjectId
	topicID := common_config.ExecutionStatusUpdatesPubSubTopic

	// Remove any unwanted characters
	// Remove '\n'
	var cleanedMessage string
	cleanedMessage = strings.Replace(msg, "\n", "", -1)

	// Replace '\"' with '"'
	cleanedMessage = strings.ReplaceAll(cleanedMessage, "\\\"", "\"")

	var pubSubClient *pubsub.Client
	var opts []grpc.DialOption

	ctx := context.Background()

	// PubSub is handled within GCP so add TLS

	var creds credentials.TransportCredentials
	creds = credentials.NewTLS(&tls.Config{
		InsecureSkipVerify: true,
	})

	opts = []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
	}

	// Create PubSub-client
	pubSubClient, err = pubsub.NewClient(ctx, projectID, option.WithGRPCDialOption(opts[0]))

	if err != nil {

		common_config.Logger.WithFields(logrus.Fields{
			"ID":  "79cf0346-d16a-4b19-9e2b-a54c54b69b0c",
			"err": err,
		}).Error("Got some problem when creating 'pubsub.NewClient'")

		return
	}

	defer pubSubClient.Close()

	var pubSubTopic *pubsub.Topic
	var pubSubResult *pubsub.PublishResult
	pubSubTopic = pubSubClient.Topic(topicID)
	pubSubResult = pubSubTopic.Publish(ctx, &pubsub.Message{
		Data: []byte(cleanedMessage),
	})

	// Block until the pubSubResult is returned and a server-generated
	// ID is returned for the published message.
	var pubSubResultId string
	pubSubResultId, err = pubSubResult.Get(ctx)
	if err != nil {

		common_config.Logger.WithFields(logrus.Fields{
			"ID":  "9f2b1df5-07e4-4f95-b1f5-6be214b7cfab",
			"msg": msg,
		}).Error(fmt.Errorf("pubsub: pubSubResult.Get: %w", err))

		return err

	}

	common_config.Logger.WithFields(logrus.Fields{
		"ID": "8f7ce232-6e2b-4a9c-9c2f-59f1de2cb7b7",
	}).Debug(fmt.Sprintf("Published a message; msg ID: %v", pubSubResultId))

	return err
}
