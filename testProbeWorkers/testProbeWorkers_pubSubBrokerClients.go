package testProbeWorkers

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"context"
	"sync/atomic"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
)

// PubSubProducerBrokerClientStruct
// Producer client backed by PubSub. Publishes one probe-message per interval on the broker
// topic until the context is cancelled
type PubSubProducerBrokerClientStruct struct {
	pubSubClient *pubsub.Client
}

func NewPubSubProducerBrokerClient(pubSubClient *pubsub.Client) *PubSubProducerBrokerClientStruct {
	return &PubSubProducerBrokerClientStruct{
		pubSubClient: pubSubClient,
	}
}

// PublishProbeMessages
// Publish probe-messages until the context is cancelled. Each probe-message carries the
// TestUuid and, when a SecurityDirective exists for the topic, the security protocol in its
// attributes so topic listeners can correlate the traffic with the TestExecution
func (pubSubProducerBrokerClient *PubSubProducerBrokerClientStruct) PublishProbeMessages(
	ctx context.Context,
	testUuid string,
	brokerTopic string,
	securityDirective *workerProtocol.SecurityDirectiveStruct) (numberOfPublishedProbeMessages int, err error) {

	var pubSubTopic *pubsub.Topic
	pubSubTopic = pubSubProducerBrokerClient.pubSubClient.Topic(brokerTopic)
	defer pubSubTopic.Stop()

	var probeMessageAttributes map[string]string
	probeMessageAttributes = map[string]string{
		"testId": testUuid,
	}
	if securityDirective != nil {
		probeMessageAttributes["securityProtocol"] = securityDirective.SecurityProtocol
	}

	probeMessageTicker := time.NewTicker(common_config.ProbeMessageIntervalDuration)
	defer probeMessageTicker.Stop()

	for {
		select {

		case <-ctx.Done():
			return numberOfPublishedProbeMessages, nil

		case <-probeMessageTicker.C:

			var pubSubResult *pubsub.PublishResult
			pubSubResult = pubSubTopic.Publish(ctx, &pubsub.Message{
				Data:       []byte("probe-message from test " + testUuid),
				Attributes: probeMessageAttributes,
			})

			_, err = pubSubResult.Get(ctx)
			if err != nil {

				// Cancellation while a publish is in flight is a normal stop, not a failure
				if ctx.Err() != nil {
					return numberOfPublishedProbeMessages, nil
				}

				common_config.Logger.WithFields(logrus.Fields{
					"id":          "cc2b2a9f-52cf-4b24-a09b-19aaf5fe2dc1",
					"testUuid":    testUuid,
					"brokerTopic": brokerTopic,
					"err":         err,
				}).Error("Couldn't publish probe-message on broker topic")

				return numberOfPublishedProbeMessages, err
			}

			numberOfPublishedProbeMessages = numberOfPublishedProbeMessages + 1
		}
	}
}

// PubSubConsumerBrokerClientStruct
// Consumer client backed by PubSub. Pulls probe-messages from the probe-subscription of the
// broker topic until the context is cancelled
type PubSubConsumerBrokerClientStruct struct {
	pubSubClient *pubsub.Client
}

func NewPubSubConsumerBrokerClient(pubSubClient *pubsub.Client) *PubSubConsumerBrokerClientStruct {
	return &PubSubConsumerBrokerClientStruct{
		pubSubClient: pubSubClient,
	}
}

// PullProbeMessages
// Receive probe-messages until the context is cancelled and report how many that arrived
func (pubSubConsumerBrokerClient *PubSubConsumerBrokerClientStruct) PullProbeMessages(
	ctx context.Context,
	testUuid string,
	brokerTopic string,
	securityDirective *workerProtocol.SecurityDirectiveStruct) (numberOfReceivedProbeMessages int, err error) {

	var pubSubSubscription *pubsub.Subscription
	pubSubSubscription = pubSubConsumerBrokerClient.pubSubClient.Subscription(brokerTopic + "-probe")

	// Receive uses several goroutines internally so the counter must be atomic
	var receivedProbeMessagesCounter int64

	err = pubSubSubscription.Receive(ctx, func(ctx context.Context, pubSubMessage *pubsub.Message) {
		pubSubMessage.Ack()
		atomic.AddInt64(&receivedProbeMessagesCounter, 1)
	})

	numberOfReceivedProbeMessages = int(atomic.LoadInt64(&receivedProbeMessagesCounter))

	// Receive ends with nil when the context is cancelled
	if err != nil {

		common_config.Logger.WithFields(logrus.Fields{
			"id":          "3f0cbd36-9b87-4b8e-9c81-0f7a51c4f5c9",
			"testUuid":    testUuid,
			"brokerTopic": brokerTopic,
			"err":         err,
		}).Error("Couldn't pull probe-messages from broker topic")

		return numberOfReceivedProbeMessages, err
	}

	return numberOfReceivedProbeMessages, nil
}
