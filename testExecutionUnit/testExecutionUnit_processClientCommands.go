package testExecutionUnit

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"time"

	"github.com/sirupsen/logrus"
)

// Process the StartTest-command coming from the client via the QueueEngine.
// Only accepted in state 'Setup'. A second StartTest for the same TestExecution is ignored,
// so worker spawns are never duplicated beyond the first successful cascade
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processStartTest(
	incomingChannelCommand ChannelCommandStruct) (unitShouldTerminate bool) {

	if testExecutionUnitObject.currentTestExecutionState != common_config.TestExecutionStateSetup {

		common_config.Logger.WithFields(logrus.Fields{
			"id":           "8e6aa5f1-fd4c-48e7-bf91-d45b2dfbe9a7",
			"testUuid":     testExecutionUnitObject.TestUuid,
			"currentState": testExecutionUnitObject.currentTestExecutionState.String(),
		}).Debug("StartTest-command received in wrong state, ignoring")

		return false
	}

	// Save data from the StartTest-command
	testExecutionUnitObject.bucket = incomingChannelCommand.Bucket
	testExecutionUnitObject.testType = incomingChannelCommand.TestType
	testExecutionUnitObject.startRequestTime = time.Now()

	// Move to state 'Loading' and bound the time the loading cascade may take
	testExecutionUnitObject.transitionToState(
		common_config.TestExecutionStateLoading, common_config.LoadingStateTimeOutDuration)

	// Report 'Loading' to QueueEngine
	testExecutionUnitObject.reportLifecycleEvent(common_config.TestLifecycleEventLoading, nil)

	// Spawn the five workers. The Unit owns the returned command channels for its entire lifetime
	testExecutionUnitObject.workerCommandChannels = testExecutionUnitObject.workerSpawner.SpawnWorkersForTestExecution(
		testExecutionUnitObject.TestUuid, testExecutionUnitObject.workerEventChannel)
	testExecutionUnitObject.workersWereSpawned = true

	// The initialization cascade is dependency-ordered. Only the BlockStorageWorker receives
	// Initialize now, the VaultWorker waits for the fetched TestDirective and the remaining
	// three workers wait for the fetched SecurityDirectives
	testExecutionUnitObject.workerCommandChannels.BlockStorageWorkerCommandChannel <- workerProtocol.BlockStorageWorkerCommandStruct{
		WorkerCommand: workerProtocol.BlockStorageWorkerCommandInitialize,
		TestUuid:      testExecutionUnitObject.TestUuid,
		Bucket:        testExecutionUnitObject.bucket,
	}

	// Send Response over channel to initiator
	if incomingChannelCommand.StartTestResponseChannelReference != nil {
		*incomingChannelCommand.StartTestResponseChannelReference <- common_config.StartTestResponseStruct{
			TestUuid:        testExecutionUnitObject.TestUuid,
			TestWasAccepted: true,
			TestType:        testExecutionUnitObject.testType,
			Message:         "Test is loading",
		}
	}

	return false
}

// Process the StartTesting-command coming from the QueueEngine when this TestExecution is
// promoted into the execution slot. Only accepted in state 'Loaded'
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processStartTesting() (unitShouldTerminate bool) {

	if testExecutionUnitObject.currentTestExecutionState != common_config.TestExecutionStateLoaded {

		common_config.Logger.WithFields(logrus.Fields{
			"id":           "c6ff07a5-5a9f-4ca6-b943-84a7b3a0ff30",
			"testUuid":     testExecutionUnitObject.TestUuid,
			"currentState": testExecutionUnitObject.currentTestExecutionState.String(),
		}).Debug("StartTesting-command received in wrong state, ignoring")

		return false
	}

	// Move to state 'Testing'. An in-flight scenario run may take unbounded time, so no timer
	testExecutionUnitObject.transitionToState(common_config.TestExecutionStateTesting, 0)

	// Report 'Started' to QueueEngine, which confirms this TestExecution as 'currentTest'
	testExecutionUnitObject.reportLifecycleEvent(common_config.TestLifecycleEventStarted, nil)

	// Tell the ScenarioRunnerWorker to begin the scenario suite run
	testExecutionUnitObject.workerCommandChannels.ScenarioRunnerWorkerCommandChannel <- workerProtocol.ScenarioRunnerWorkerCommandStruct{
		WorkerCommand: workerProtocol.ScenarioRunnerWorkerCommandStartTest,
		TestUuid:      testExecutionUnitObject.TestUuid,
	}

	return false
}

// Process the GetTestStatus-command. Always answered from the Unit's local state
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processGetTestStatus(
	incomingChannelCommand ChannelCommandStruct) {

	if incomingChannelCommand.TestStatusResponseChannelReference == nil {
		return
	}

	var testStatusResponse common_config.TestStatusResponseStruct
	testStatusResponse = common_config.TestStatusResponseStruct{
		TestUuid:           testExecutionUnitObject.TestUuid,
		TestExecutionState: testExecutionUnitObject.currentTestExecutionState.String(),
		Bucket:             testExecutionUnitObject.bucket,
		TestType:           testExecutionUnitObject.testType,
	}

	if testExecutionUnitObject.startRequestTime.IsZero() == false {
		testStatusResponse.StartTime = common_config.GenerateUtcTimeStampAsString(testExecutionUnitObject.startRequestTime)
	}

	if testExecutionUnitObject.endTime.IsZero() == false {
		testStatusResponse.EndTime = common_config.GenerateUtcTimeStampAsString(testExecutionUnitObject.endTime)
	}

	// Only a Completed TestExecution has a fixed result
	if testExecutionUnitObject.currentTestExecutionState == common_config.TestExecutionStateCompleted &&
		testExecutionUnitObject.testResult != nil {
		var testWasSuccessful bool
		testWasSuccessful = testExecutionUnitObject.testResult.SuiteSucceeded
		testStatusResponse.TestWasSuccessful = &testWasSuccessful
	}

	// The captured failure is retained for status reporting while in state 'Exception'
	if testExecutionUnitObject.currentTestExecutionState == common_config.TestExecutionStateException &&
		testExecutionUnitObject.lastTestExecutionException != nil {
		testStatusResponse.TestError = testExecutionUnitObject.lastTestExecutionException.Error()
	}

	// Send Response over channel to initiator
	*incomingChannelCommand.TestStatusResponseChannelReference <- testStatusResponse
}

// Process the CancelTest-command. The cancellation policy is asymmetric. Cancellation
// succeeds in Setup, Loading and Loaded because no irreversible side effect has committed.
// It is rejected with a state-specific message in Testing, Completed and Exception
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processCancelTest(
	incomingChannelCommand ChannelCommandStruct) (unitShouldTerminate bool) {

	var cancelTestResponse common_config.CancelTestResponseStruct
	cancelTestResponse.TestUuid = testExecutionUnitObject.TestUuid

	switch testExecutionUnitObject.currentTestExecutionState {

	case common_config.TestExecutionStateSetup,
		common_config.TestExecutionStateLoading,
		common_config.TestExecutionStateLoaded:

		cancelTestResponse.TestWasCancelled = true
		cancelTestResponse.Message = "Test was cancelled"
		unitShouldTerminate = true

	case common_config.TestExecutionStateTesting:
		cancelTestResponse.TestWasCancelled = false
		cancelTestResponse.Message = "Cannot cancel, test is currently executing"

	case common_config.TestExecutionStateCompleted:
		cancelTestResponse.TestWasCancelled = false
		cancelTestResponse.Message = "Test already completed, cannot cancel"

	case common_config.TestExecutionStateException:
		cancelTestResponse.TestWasCancelled = false
		cancelTestResponse.Message = "Test in exception state, cleanup in progress"

	default:
		cancelTestResponse.TestWasCancelled = false
		cancelTestResponse.Message = "Test is shutting down"
	}

	// Send Response over channel to initiator
	if incomingChannelCommand.CancelTestResponseChannelReference != nil {
		*incomingChannelCommand.CancelTestResponseChannelReference <- cancelTestResponse
	}

	if unitShouldTerminate == true {
		testExecutionUnitObject.startShutDown()
	}

	return unitShouldTerminate
}

// Process a fired state timeout-timer. The timeout is a self-addressed deferred message, so
// a timeout that fires just as a transition already moved the Unit elsewhere arrives with an
// old timer generation and is a no-op
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processStateTimeOutOccurred(
	incomingChannelCommand ChannelCommandStruct) (unitShouldTerminate bool) {

	if incomingChannelCommand.TimerGeneration != testExecutionUnitObject.currentTimerGeneration {

		common_config.Logger.WithFields(logrus.Fields{
			"id":                     "41a6a0a5-25b5-4c8f-97bd-f1c5ad98f640",
			"testUuid":               testExecutionUnitObject.TestUuid,
			"incomingGeneration":     incomingChannelCommand.TimerGeneration,
			"currentTimerGeneration": testExecutionUnitObject.currentTimerGeneration,
		}).Debug("Timeout-timer with old generation fired, ignoring")

		return false
	}

	common_config.Logger.WithFields(logrus.Fields{
		"id":           "2c1b57f5-4a6f-4c6a-8fb6-3b5fe2ab50a4",
		"testUuid":     testExecutionUnitObject.TestUuid,
		"currentState": testExecutionUnitObject.currentTestExecutionState.String(),
	}).Info("State timeout-timer fired, TestExecutionUnit cleans itself up")

	// A timeout is a normal terminal path, not a failure
	testExecutionUnitObject.startShutDown()

	return true
}
