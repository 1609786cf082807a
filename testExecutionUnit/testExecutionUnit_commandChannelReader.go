package testExecutionUnit

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"

	"github.com/sirupsen/logrus"
)

// Channel reader which is used for reading out commands and worker events for one
// TestExecutionUnit. Messages are processed strictly one at a time in arrival order, so no
// two state transitions of the same TestExecution ever race
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) startCommandChannelReader() {

	var incomingChannelCommand ChannelCommandStruct
	var incomingWorkerEvent workerProtocol.WorkerEventStruct
	var channelSize int
	var unitShouldTerminate bool

	for {

		// Wait for incoming command or worker event over channel
		select {

		case incomingChannelCommand = <-*testExecutionUnitObject.CommandChannelReference:

			// If size of Channel > 'EngineCommandChannelWarningLevel' then log Warning message
			channelSize = len(*testExecutionUnitObject.CommandChannelReference)
			if channelSize > common_config.EngineCommandChannelWarningLevel {
				common_config.Logger.WithFields(logrus.Fields{
					"id":                               "9bd8f29f-9e6b-4a86-88e8-79e2a4a9a66c",
					"testUuid":                         testExecutionUnitObject.TestUuid,
					"channelSize":                      channelSize,
					"EngineCommandChannelWarningLevel": common_config.EngineCommandChannelWarningLevel,
				}).Warning("Number of messages on CommandChannel for TestExecutionUnit has reached a critical level")
			}

			unitShouldTerminate = testExecutionUnitObject.processChannelCommand(incomingChannelCommand)

		case incomingWorkerEvent = <-testExecutionUnitObject.workerEventChannel:

			unitShouldTerminate = testExecutionUnitObject.processWorkerEvent(incomingWorkerEvent)

		}

		// The Unit has reached 'ShuttingDown' and has told its workers to stop, so end the reader
		if unitShouldTerminate == true {
			return
		}

	}

}

// Dispatch one incoming channel command depending on command type
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processChannelCommand(
	incomingChannelCommand ChannelCommandStruct) (unitShouldTerminate bool) {

	switch incomingChannelCommand.ChannelCommand {

	case ChannelCommandStartTest:
		unitShouldTerminate = testExecutionUnitObject.processStartTest(incomingChannelCommand)

	case ChannelCommandStartTesting:
		unitShouldTerminate = testExecutionUnitObject.processStartTesting()

	case ChannelCommandGetTestStatus:
		testExecutionUnitObject.processGetTestStatus(incomingChannelCommand)

	case ChannelCommandCancelTest:
		unitShouldTerminate = testExecutionUnitObject.processCancelTest(incomingChannelCommand)

	case ChannelCommandStateTimeOutOccurred:
		unitShouldTerminate = testExecutionUnitObject.processStateTimeOutOccurred(incomingChannelCommand)

	// No other command is supported
	default:
		common_config.Logger.WithFields(logrus.Fields{
			"id":                     "5cb52a7a-9c2a-44e8-9f0f-01e1e1a9ed88",
			"testUuid":               testExecutionUnitObject.TestUuid,
			"incomingChannelCommand": incomingChannelCommand,
		}).Fatalln("Unknown command in CommandChannel for TestExecutionUnit")
	}

	return unitShouldTerminate
}
