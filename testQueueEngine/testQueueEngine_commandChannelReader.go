package testQueueEngine

import (
	"TestProbeServer/common_config"

	"github.com/sirupsen/logrus"
)

// Channel reader which is used for reading out commands and lifecycle events for the
// QueueEngine. Messages are processed strictly one at a time in arrival order
func (testQueueEngineObject *TestQueueEngineObjectStruct) startCommandChannelReader() {

	var incomingChannelCommand ChannelCommandStruct
	var incomingLifecycleEvent common_config.TestLifecycleEventStruct
	var channelSize int

	for {

		// Wait for incoming command or lifecycle event over channel
		select {

		case incomingChannelCommand = <-*testQueueEngineObject.CommandChannelReference:

			// If size of Channel > 'EngineCommandChannelWarningLevel' then log Warning message
			channelSize = len(*testQueueEngineObject.CommandChannelReference)
			if channelSize > common_config.EngineCommandChannelWarningLevel {
				common_config.Logger.WithFields(logrus.Fields{
					"id":                               "8d31c6a5-4b9f-4f55-bbcb-16ab1e21b028",
					"channelSize":                      channelSize,
					"EngineCommandChannelWarningLevel": common_config.EngineCommandChannelWarningLevel,
				}).Warning("Number of messages on CommandChannel for QueueEngine has reached a critical level")
			}

			testQueueEngineObject.processChannelCommand(incomingChannelCommand)

		case incomingLifecycleEvent = <-testQueueEngineObject.LifecycleEventChannel:

			testQueueEngineObject.processLifecycleEvent(incomingLifecycleEvent)

		}

	}

}

// Dispatch one incoming channel command depending on command type
func (testQueueEngineObject *TestQueueEngineObjectStruct) processChannelCommand(
	incomingChannelCommand ChannelCommandStruct) {

	switch incomingChannelCommand.ChannelCommand {

	case ChannelCommandSubmitTest:
		testQueueEngineObject.processSubmitTest(incomingChannelCommand)

	case ChannelCommandStartTest:
		testQueueEngineObject.processStartTest(incomingChannelCommand)

	case ChannelCommandGetTestStatus:
		testQueueEngineObject.processGetTestStatus(incomingChannelCommand)

	case ChannelCommandGetQueueStatus:
		testQueueEngineObject.processGetQueueStatus(incomingChannelCommand)

	case ChannelCommandCancelTest:
		testQueueEngineObject.processCancelTest(incomingChannelCommand)

	// No other command is supported
	default:
		common_config.Logger.WithFields(logrus.Fields{
			"id":                     "6b2b6b54-74d5-45b6-90b0-8e8082e1f0ce",
			"incomingChannelCommand": incomingChannelCommand,
		}).Fatalln("Unknown command in CommandChannel for QueueEngine")
	}
}
