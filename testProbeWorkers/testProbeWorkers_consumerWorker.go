package testProbeWorkers

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// The ConsumerWorker for one TestExecution. Initialized in the cascade fan-out. Once ready
// it exercises the broker topic by pulling probe-messages until it receives the
// Stop-command, and then reports how many probe-messages that were received
func startConsumerWorker(
	testUuid string,
	workerCommandChannel workerProtocol.ConsumerWorkerCommandChannelType,
	workerEventChannel workerProtocol.WorkerEventChannelType,
	consumerBrokerClient ConsumerBrokerClientInterface) {

	var incomingWorkerCommand workerProtocol.ConsumerWorkerCommandStruct
	var probeMessagesContext context.Context
	var cancelProbeMessages context.CancelFunc
	var probeMessagesResultChannel chan int

	for {

		// Wait for incoming command over channel
		incomingWorkerCommand = <-workerCommandChannel

		switch incomingWorkerCommand.WorkerCommand {

		case workerProtocol.ConsumerWorkerCommandInitialize:

			// Exercise the first broker topic named by the TestDirective. A TestDirective
			// without topics gives an idle but ready consumer
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

					var numberOfReceivedProbeMessages int
					var err error

					numberOfReceivedProbeMessages, err = consumerBrokerClient.PullProbeMessages(
						probeMessagesContext, testUuid, brokerTopic, securityDirective)
					if err != nil {

						workerEventChannel <- workerProtocol.WorkerEventStruct{
							WorkerEvent:   workerProtocol.WorkerEventWorkerFailureOccurred,
							TestUuid:      testUuid,
							WorkerKind:    workerProtocol.WorkerKindConsumer,
							WorkerFailure: fmt.Errorf("consumer worker couldn't pull probe-messages: %w", err),
						}
					}

					probeMessagesResultChannel <- numberOfReceivedProbeMessages

				}(probeMessagesContext, brokerTopic, securityDirective)

			}

			// This worker is internally ready
			workerEventChannel <- workerProtocol.WorkerEventStruct{
				WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
				TestUuid:    testUuid,
				WorkerKind:  workerProtocol.WorkerKindConsumer,
			}

		case workerProtocol.ConsumerWorkerCommandStop:

			// Stop the pull-loop and report the counter as evidence of the broker exercise
			if cancelProbeMessages != nil {
				cancelProbeMessages()

				var numberOfReceivedProbeMessages int
				numberOfReceivedProbeMessages = <-probeMessagesResultChannel

				common_config.Logger.WithFields(logrus.Fields{
					"id":                            "d2e0f4e0-0b6f-47e2-92a4-75ba25b88e3d",
					"testUuid":                      testUuid,
					"numberOfReceivedProbeMessages": numberOfReceivedProbeMessages,
				}).Info("ConsumerWorker stops, probe-messages were received from broker topic")

			} else {

				common_config.Logger.WithFields(logrus.Fields{
					"id":       "a3c2b54f-4f97-4f5d-8c88-e3e0b3a6d00f",
					"testUuid": testUuid,
				}).Debug("ConsumerWorker stops")
			}

			return

		// No other command is supported
		default:
			common_config.Logger.WithFields(logrus.Fields{
				"id":                    "7ab9a939-8a3b-4e26-86f3-2b7ad6e20cf6",
				"testUuid":              testUuid,
				"incomingWorkerCommand": incomingWorkerCommand,
			}).Fatalln("Unknown command in CommandChannel for ConsumerWorker")
		}

	}

}
