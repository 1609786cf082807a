package testProbeWorkers

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// The ProducerWorker for one TestExecution. Initialized in the cascade fan-out. Once ready
// it exercises the broker topic by publishing probe-messages until it receives the
// Stop-command, and then reports how many probe-messages that were published
func startProducerWorker(
	testUuid string,
	workerCommandChannel workerProtocol.ProducerWorkerCommandChannelType,
	workerEventChannel workerProtocol.WorkerEventChannelType,
	producerBrokerClient ProducerBrokerClientInterface) {

	var incomingWorkerCommand workerProtocol.ProducerWorkerCommandStruct
	var probeMessagesContext context.Context
	var cancelProbeMessages context.CancelFunc
	var probeMessagesResultChannel chan int

	for {

		// Wait for incoming command over channel
		incomingWorkerCommand = <-workerCommandChannel

		switch incomingWorkerCommand.WorkerCommand {

		case workerProtocol.ProducerWorkerCommandInitialize:

			// Exercise the first broker topic named by the TestDirective. A TestDirective
			// without topics gives an idle but ready producer
			if len(incomingWorkerCommand.TestDirective.BrokerTopics) > 0 {

				var brokerTopic string
				brokerTopic = incomingWorkerCommand.TestDirective.BrokerTopics[0]

				var securityDirective *workerProtocol.SecurityDirectiveStruct
				securityDirective = findSecurityDirectiveForBrokerTopic(
					brokerTopic, incomingWorkerCommand.SecurityDirectives)

				probeMessagesContext, cancelProbeMessages = context.WithCancel(context.Background())
				probeMessagesResultChannel = make(chan int, 1)

				go func(probeMessagesContext context.Context, brokerTopic string,
					securityDirective *workerProtocol.SecurityDirectiveStruct) {

					var numberOfPublishedProbeMessages int
					var err error

					numberOfPublishedProbeMessages, err = producerBrokerClient.PublishProbeMessages(
						probeMessagesContext, testUuid, brokerTopic, securityDirective)
					if err != nil {

						workerEventChannel <- workerProtocol.WorkerEventStruct{
							WorkerEvent:   workerProtocol.WorkerEventWorkerFailureOccurred,
							TestUuid:      testUuid,
							WorkerKind:    workerProtocol.WorkerKindProducer,
							WorkerFailure: fmt.Errorf("producer worker couldn't publish probe-messages: %w", err),
						}
					}

					probeMessagesResultChannel <- numberOfPublishedProbeMessages

				}(probeMessagesContext, brokerTopic, securityDirective)

			}

			// This worker is internally ready
			workerEventChannel <- workerProtocol.WorkerEventStruct{
				WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
				TestUuid:    testUuid,
				WorkerKind:  workerProtocol.WorkerKindProducer,
			}

		case workerProtocol.ProducerWorkerCommandStop:

			// Stop the publish-loop and report the counter as evidence of the broker exercise
			if cancelProbeMessages != nil {
				cancelProbeMessages()

				var numberOfPublishedProbeMessages int
				numberOfPublishedProbeMessages = <-probeMessagesResultChannel

				common_config.Logger.WithFields(logrus.Fields{
					"id":                             "9ecba4a4-96a8-4e24-bdfd-92fc60c83a0b",
					"testUuid":                       testUuid,
					"numberOfPublishedProbeMessages": numberOfPublishedProbeMessages,
				}).Info("ProducerWorker stops, probe-messages were published on broker topic")

			} else {

				common_config.Logger.WithFields(logrus.Fields{
					"id":       "67b2c0d4-e9f6-49a9-b0c5-fb5a2df3bb71",
					"testUuid": testUuid,
				}).Debug("ProducerWorker stops")
			}

			return

		// No other command is supported
		default:
			common_config.Logger.WithFields(logrus.Fields{
				"id":                    "5e569e6a-1c76-4de7-a1e3-bb6de34a2b9a",
				"testUuid":              testUuid,
				"incomingWorkerCommand": incomingWorkerCommand,
			}).Fatalln("Unknown command in CommandChannel for ProducerWorker")
		}

	}

}
