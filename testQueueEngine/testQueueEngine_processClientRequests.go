package testQueueEngine

import (
	"TestProbeServer/common_config"
	"TestProbeServer/testExecutionUnit"
	"time"

	uuidGenerator "github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Process the Submit-command. Generates a fresh TestUuid, creates a new TestExecutionUnit
// and inserts a registry entry in state 'Setup'. Has no precondition and always succeeds.
// A fresh submission always gets a fresh Unit and a fresh TestUuid
func (testQueueEngineObject *TestQueueEngineObjectStruct) processSubmitTest(
	incomingChannelCommand ChannelCommandStruct) {

	// Create Unique Uuid for the TestExecution
	var testUuid string
	testUuid = uuidGenerator.New().String()

	// Create the TestExecutionUnit that will own the TestExecution
	var testExecutionUnitObject *testExecutionUnit.TestExecutionUnitObjectStruct
	testExecutionUnitObject = testExecutionUnit.InitiateTestExecutionUnit(
		testUuid,
		&testQueueEngineObject.LifecycleEventChannel,
		testQueueEngineObject.workerSpawner)

	// Insert registry entry in state 'Setup'
	testQueueEngineObject.testRegistry[testUuid] = &TestQueueEntryStruct{
		TestUuid:                    testUuid,
		UnitCommandChannelReference: testExecutionUnitObject.CommandChannelReference,
		TestExecutionState:          common_config.TestExecutionStateSetup,
	}

	common_config.Logger.WithFields(logrus.Fields{
		"id":       "5a8e15a9-00f4-4b43-9daf-8c4cfcbf26f9",
		"testUuid": testUuid,
	}).Info("New TestExecution was submitted")

	// Send Response over channel to initiator
	if incomingChannelCommand.SubmitTestResponseChannelReference != nil {
		*incomingChannelCommand.SubmitTestResponseChannelReference <- common_config.SubmitTestResponseStruct{
			TestUuid: testUuid,
			Message:  "Test was submitted and is in state 'Setup'",
		}
	}
}

// Process the StartTest-command. An unknown TestUuid is silently dropped, with no reply,
// because it is treated as a stale or racy request rather than an error
func (testQueueEngineObject *TestQueueEngineObjectStruct) processStartTest(
	incomingChannelCommand ChannelCommandStruct) {

	var testQueueEntry *TestQueueEntryStruct
	var existsInTestRegistry bool

	testQueueEntry, existsInTestRegistry = testQueueEngineObject.testRegistry[incomingChannelCommand.TestUuid]
	if existsInTestRegistry == false {

		common_config.Logger.WithFields(logrus.Fields{
			"id":       "34e6e2a7-3bc5-4a0f-b0cd-b4d5f72a7dff",
			"testUuid": incomingChannelCommand.TestUuid,
		}).Debug("StartTest for unknown TestUuid, dropping request")

		return
	}

	// Remember the StartTest-data in the registry entry
	testQueueEntry.Bucket = incomingChannelCommand.Bucket
	testQueueEntry.TestType = incomingChannelCommand.TestType
	testQueueEntry.StartRequestTime = time.Now()

	// Forward the StartTest-command to the TestExecutionUnit together with the reply handle.
	// 'currentTest' is not touched here, that happens only via later lifecycle events
	*testQueueEntry.UnitCommandChannelReference <- testExecutionUnit.ChannelCommandStruct{
		ChannelCommand:                    testExecutionUnit.ChannelCommandStartTest,
		Bucket:                            incomingChannelCommand.Bucket,
		TestType:                          incomingChannelCommand.TestType,
		StartTestResponseChannelReference: incomingChannelCommand.StartTestResponseChannelReference,
	}
}

// Process the GetTestStatus-command for one specific TestExecution. The status request is
// forwarded to the Unit, which answers from its own local state
func (testQueueEngineObject *TestQueueEngineObjectStruct) processGetTestStatus(
	incomingChannelCommand ChannelCommandStruct) {

	var testQueueEntry *TestQueueEntryStruct
	var existsInTestRegistry bool

	testQueueEntry, existsInTestRegistry = testQueueEngineObject.testRegistry[incomingChannelCommand.TestUuid]
	if existsInTestRegistry == false {

		common_config.Logger.WithFields(logrus.Fields{
			"id":       "cb1dc5f9-9a4a-4f3d-8c5c-e735a1c45186",
			"testUuid": incomingChannelCommand.TestUuid,
		}).Debug("GetTestStatus for unknown TestUuid, dropping request")

		return
	}

	*testQueueEntry.UnitCommandChannelReference <- testExecutionUnit.ChannelCommandStruct{
		ChannelCommand:                     testExecutionUnit.ChannelCommandGetTestStatus,
		TestStatusResponseChannelReference: incomingChannelCommand.TestStatusResponseChannelReference,
	}
}

// Process the GetQueueStatus-command. Returns an aggregate snapshot with a count per state
// plus 'currentTest'. Always answered synchronously from the QueueEngine's own registry
// mirror, never blocking on a Unit
func (testQueueEngineObject *TestQueueEngineObjectStruct) processGetQueueStatus(
	incomingChannelCommand ChannelCommandStruct) {

	if incomingChannelCommand.QueueStatusResponseChannelReference == nil {
		return
	}

	var queueStatusResponse common_config.QueueStatusResponseStruct
	queueStatusResponse.TotalTests = len(testQueueEngineObject.testRegistry)
	queueStatusResponse.CurrentlyTesting = testQueueEngineObject.currentTest

	// Count registry entries per mirrored state
	for _, testQueueEntry := range testQueueEngineObject.testRegistry {

		switch testQueueEntry.TestExecutionState {

		case common_config.TestExecutionStateSetup:
			queueStatusResponse.SetupCount = queueStatusResponse.SetupCount + 1

		case common_config.TestExecutionStateLoading:
			queueStatusResponse.LoadingCount = queueStatusResponse.LoadingCount + 1

		case common_config.TestExecutionStateLoaded:
			queueStatusResponse.LoadedCount = queueStatusResponse.LoadedCount + 1

		case common_config.TestExecutionStateTesting:
			queueStatusResponse.TestingCount = queueStatusResponse.TestingCount + 1

		case common_config.TestExecutionStateCompleted:
			queueStatusResponse.CompletedCount = queueStatusResponse.CompletedCount + 1

		case common_config.TestExecutionStateException:
			queueStatusResponse.ExceptionCount = queueStatusResponse.ExceptionCount + 1

		}
	}

	// Send Response over channel to initiator
	*incomingChannelCommand.QueueStatusResponseChannelReference <- queueStatusResponse
}

// Process the CancelTest-command. Unknown TestUuids are dropped silently, matching the
// StartTest policy
func (testQueueEngineObject *TestQueueEngineObjectStruct) processCancelTest(
	incomingChannelCommand ChannelCommandStruct) {

	var testQueueEntry *TestQueueEntryStruct
	var existsInTestRegistry bool

	testQueueEntry, existsInTestRegistry = testQueueEngineObject.testRegistry[incomingChannelCommand.TestUuid]
	if existsInTestRegistry == false {

		common_config.Logger.WithFields(logrus.Fields{
			"id":       "d59e21ac-9141-4f28-b793-5c0ae4e59c71",
			"testUuid": incomingChannelCommand.TestUuid,
		}).Debug("CancelTest for unknown TestUuid, dropping request")

		return
	}

	*testQueueEntry.UnitCommandChannelReference <- testExecutionUnit.ChannelCommandStruct{
		ChannelCommand:                     testExecutionUnit.ChannelCommandCancelTest,
		CancelTestResponseChannelReference: incomingChannelCommand.CancelTestResponseChannelReference,
	}
}
