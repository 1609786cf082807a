package testQueueEngine

import (
	"TestProbeServer/common_config"
	"TestProbeServer/statusBroadcastEngine"
	"TestProbeServer/testExecutionUnit"
	"time"

	"github.com/jinzhu/copier"
	"github.com/sirupsen/logrus"
)

// Dispatch one incoming lifecycle event, reported asynchronously from a TestExecutionUnit
func (testQueueEngineObject *TestQueueEngineObjectStruct) processLifecycleEvent(
	incomingLifecycleEvent common_config.TestLifecycleEventStruct) {

	var testQueueEntry *TestQueueEntryStruct
	var existsInTestRegistry bool

	testQueueEntry, existsInTestRegistry = testQueueEngineObject.testRegistry[incomingLifecycleEvent.TestUuid]
	if existsInTestRegistry == false {

		// Lifecycle events for an already removed TestExecution can arrive when a Unit is
		// torn down, they are idempotent cleanup notifications
		common_config.Logger.WithFields(logrus.Fields{
			"id":             "a1ad6f20-47f7-450b-bbd1-ed25c2c6fcd3",
			"testUuid":       incomingLifecycleEvent.TestUuid,
			"lifecycleEvent": incomingLifecycleEvent.LifecycleEvent,
		}).Debug("Lifecycle event for TestUuid missing in registry, ignoring")

		return
	}

	switch incomingLifecycleEvent.LifecycleEvent {

	case common_config.TestLifecycleEventInitialized:
		// Already true on creation, this confirms that the Unit is live
		testQueueEntry.TestExecutionState = common_config.TestExecutionStateSetup

	case common_config.TestLifecycleEventLoading:
		testQueueEntry.TestExecutionState = common_config.TestExecutionStateLoading

	case common_config.TestLifecycleEventLoaded:
		testQueueEngineObject.processTestLoaded(testQueueEntry)

	case common_config.TestLifecycleEventStarted:
		testQueueEngineObject.processTestStarted(testQueueEntry)

	case common_config.TestLifecycleEventCompleted:
		testQueueEntry.TestExecutionState = common_config.TestExecutionStateCompleted
		testQueueEngineObject.releaseExecutionSlot(testQueueEntry.TestUuid)

	case common_config.TestLifecycleEventException:
		testQueueEntry.TestExecutionState = common_config.TestExecutionStateException
		testQueueEngineObject.releaseExecutionSlot(testQueueEntry.TestUuid)

	case common_config.TestLifecycleEventStopping:
		testQueueEngineObject.processTestStopping(testQueueEntry)

	// No other lifecycle event is supported
	default:
		common_config.Logger.WithFields(logrus.Fields{
			"id":                     "91f0d7fd-f571-4733-baf3-b3b8c7c8fc76",
			"incomingLifecycleEvent": incomingLifecycleEvent,
		}).Fatalln("Unknown lifecycle event in LifecycleEventChannel for QueueEngine")
	}

	// Broadcast the status update when broadcasting is switched on
	testQueueEngineObject.broadcastStatusUpdate(incomingLifecycleEvent.TestUuid)
}

// A TestExecution finished loading. Insert it into the loaded-FIFO and, when the execution
// slot is free, immediately promote the longest-waiting loaded TestExecution. This is the
// scheduling point. Ties are broken by the order loading completed, never by TestUuid value
func (testQueueEngineObject *TestQueueEngineObjectStruct) processTestLoaded(
	testQueueEntry *TestQueueEntryStruct) {

	testQueueEntry.TestExecutionState = common_config.TestExecutionStateLoaded

	if testQueueEngineObject.loadedTestsSet[testQueueEntry.TestUuid] == false {
		testQueueEngineObject.loadedTestsSet[testQueueEntry.TestUuid] = true
		testQueueEngineObject.loadedTestsQueue = append(testQueueEngineObject.loadedTestsQueue, testQueueEntry.TestUuid)
	}

	testQueueEngineObject.promoteNextLoadedTest()
}

// The promoted TestExecution confirmed that its scenario run has started
func (testQueueEngineObject *TestQueueEngineObjectStruct) processTestStarted(
	testQueueEntry *TestQueueEntryStruct) {

	testQueueEntry.TestExecutionState = common_config.TestExecutionStateTesting

	if testQueueEngineObject.currentTest != testQueueEntry.TestUuid {
		common_config.Logger.WithFields(logrus.Fields{
			"id":          "00d2c0b1-e2b5-48b5-94a5-76a8e5b17c88",
			"testUuid":    testQueueEntry.TestUuid,
			"currentTest": testQueueEngineObject.currentTest,
		}).Warning("Started-event from TestExecution that is not 'currentTest'")
	}
}

// A TestExecution is being torn down. Remove it everywhere and remember it briefly so late
// notifications for the same TestExecution stay idempotent
func (testQueueEngineObject *TestQueueEngineObjectStruct) processTestStopping(
	testQueueEntry *TestQueueEntryStruct) {

	delete(testQueueEngineObject.testRegistry, testQueueEntry.TestUuid)
	delete(testQueueEngineObject.loadedTestsSet, testQueueEntry.TestUuid)

	testQueueEngineObject.stoppedTests[testQueueEntry.TestUuid] = time.Now()
	testQueueEngineObject.pruneStoppedTests()

	common_config.Logger.WithFields(logrus.Fields{
		"id":       "25b14bf8-02e9-4bd5-9d03-dd287e55b66a",
		"testUuid": testQueueEntry.TestUuid,
	}).Info("TestExecution was removed from the registry")

	testQueueEngineObject.releaseExecutionSlot(testQueueEntry.TestUuid)
}

// Clear the execution slot when it was held by the leaving TestExecution and run the
// promotion step. This is the only path by which the execution slot is released
func (testQueueEngineObject *TestQueueEngineObjectStruct) releaseExecutionSlot(testUuid string) {

	if testQueueEngineObject.currentTest != testUuid {
		return
	}

	testQueueEngineObject.currentTest = ""

	// The promotion attempt is unconditional. When the loaded-FIFO is empty the slot simply
	// stays empty until the next Loaded-event arrives and promotes immediately
	testQueueEngineObject.promoteNextLoadedTest()
}

// Promote the longest-waiting loaded TestExecution into the execution slot and send it the
// StartTesting-command. Does nothing when the slot is occupied or no TestExecution is loaded
func (testQueueEngineObject *TestQueueEngineObjectStruct) promoteNextLoadedTest() {

	if testQueueEngineObject.currentTest != "" {
		return
	}

	for len(testQueueEngineObject.loadedTestsQueue) > 0 {

		var nextTestUuid string
		nextTestUuid = testQueueEngineObject.loadedTestsQueue[0]
		testQueueEngineObject.loadedTestsQueue = testQueueEngineObject.loadedTestsQueue[1:]

		// TestUuids that left the loaded-set, cancelled or stopped, are skipped
		if testQueueEngineObject.loadedTestsSet[nextTestUuid] == false {
			continue
		}
		delete(testQueueEngineObject.loadedTestsSet, nextTestUuid)

		var testQueueEntry *TestQueueEntryStruct
		var existsInTestRegistry bool
		testQueueEntry, existsInTestRegistry = testQueueEngineObject.testRegistry[nextTestUuid]
		if existsInTestRegistry == false {
			continue
		}

		testQueueEngineObject.currentTest = nextTestUuid

		common_config.Logger.WithFields(logrus.Fields{
			"id":       "e3e77e2f-3c31-46c8-8622-b8e8ed9bb32f",
			"testUuid": nextTestUuid,
		}).Info("TestExecution was promoted into the execution slot")

		*testQueueEntry.UnitCommandChannelReference <- testExecutionUnit.ChannelCommandStruct{
			ChannelCommand: testExecutionUnit.ChannelCommandStartTesting,
		}

		return
	}
}

// Forget stopped TestExecutions that have passed their retention time
func (testQueueEngineObject *TestQueueEngineObjectStruct) pruneStoppedTests() {

	var oldestAllowedStopTime time.Time
	oldestAllowedStopTime = time.Now().Add(-common_config.StoppedTestsRetentionDuration)

	for stoppedTestUuid, stopTime := range testQueueEngineObject.stoppedTests {
		if stopTime.Before(oldestAllowedStopTime) {
			delete(testQueueEngineObject.stoppedTests, stoppedTestUuid)
		}
	}
}

// Send a status update for one TestExecution to the StatusBroadcastEngine
func (testQueueEngineObject *TestQueueEngineObjectStruct) broadcastStatusUpdate(testUuid string) {

	if common_config.UseStatusBroadcastingForExecutionStatusUpdates == false {
		return
	}

	var broadcastMessage statusBroadcastEngine.BroadcastingMessageForTestExecutionStruct
	broadcastMessage.BroadcastTimeStamp = common_config.GenerateDatetimeTimeStampForBroadcastMessage()
	broadcastMessage.TestUuid = testUuid

	// The registry entry still exists for every lifecycle event except 'Stopping'
	var testQueueEntry *TestQueueEntryStruct
	var existsInTestRegistry bool
	testQueueEntry, existsInTestRegistry = testQueueEngineObject.testRegistry[testUuid]
	if existsInTestRegistry == true {

		err := copier.Copy(&broadcastMessage, testQueueEntry)
		if err != nil {
			common_config.Logger.WithFields(logrus.Fields{
				"id":  "b9a3e7b7-6e0d-4d35-a1ba-bd2b7a6be688",
				"err": err,
			}).Error("Couldn't copy registry entry into broadcast-message")

			return
		}

		broadcastMessage.TestExecutionState = testQueueEntry.TestExecutionState.String()

	} else {
		broadcastMessage.TestExecutionState = common_config.TestExecutionStateShuttingDown.String()
	}

	statusBroadcastEngine.BroadcastEngineMessageChannel <- broadcastMessage
}
