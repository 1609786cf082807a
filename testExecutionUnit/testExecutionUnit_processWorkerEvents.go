package testExecutionUnit

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"time"

	"github.com/sirupsen/logrus"
)

// Dispatch one incoming worker event depending on event type
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processWorkerEvent(
	incomingWorkerEvent workerProtocol.WorkerEventStruct) (unitShouldTerminate bool) {

	switch incomingWorkerEvent.WorkerEvent {

	case workerProtocol.WorkerEventBlockStorageFetched:
		testExecutionUnitObject.processBlockStorageFetched(incomingWorkerEvent)

	case workerProtocol.WorkerEventSecurityFetched:
		testExecutionUnitObject.processSecurityFetched(incomingWorkerEvent)

	case workerProtocol.WorkerEventChildGoodToGo:
		testExecutionUnitObject.processChildGoodToGo(incomingWorkerEvent)

	case workerProtocol.WorkerEventTestCompleted:
		testExecutionUnitObject.processTestCompleted(incomingWorkerEvent)

	case workerProtocol.WorkerEventUploadCompleted:
		testExecutionUnitObject.processUploadCompleted()

	case workerProtocol.WorkerEventWorkerFailureOccurred:
		testExecutionUnitObject.processWorkerFailureOccurred(incomingWorkerEvent)

	// No other worker event is supported
	default:
		common_config.Logger.WithFields(logrus.Fields{
			"id":                  "ac8ff1df-1b76-4228-a605-9b2cf1cd20b7",
			"testUuid":            testExecutionUnitObject.TestUuid,
			"incomingWorkerEvent": incomingWorkerEvent,
		}).Fatalln("Unknown worker event in WorkerEventChannel for TestExecutionUnit")
	}

	return false
}

// The BlockStorageWorker has fetched the TestDirective, which is cascade step two.
// Forward the TestDirective to the VaultWorker in its Initialize-command
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processBlockStorageFetched(
	incomingWorkerEvent workerProtocol.WorkerEventStruct) {

	if testExecutionUnitObject.currentTestExecutionState != common_config.TestExecutionStateLoading {

		common_config.Logger.WithFields(logrus.Fields{
			"id":           "e2f0a2ef-c281-4a92-a79a-0e81ec30a15b",
			"testUuid":     testExecutionUnitObject.TestUuid,
			"currentState": testExecutionUnitObject.currentTestExecutionState.String(),
		}).Debug("BlockStorageFetched-event received in wrong state, ignoring")

		return
	}

	testExecutionUnitObject.fetchedTestDirective = incomingWorkerEvent.TestDirective

	testExecutionUnitObject.workerCommandChannels.VaultWorkerCommandChannel <- workerProtocol.VaultWorkerCommandStruct{
		WorkerCommand: workerProtocol.VaultWorkerCommandInitialize,
		TestUuid:      testExecutionUnitObject.TestUuid,
		TestDirective: testExecutionUnitObject.fetchedTestDirective,
	}
}

// The VaultWorker has fetched the per-topic SecurityDirectives, which is cascade step three.
// The remaining three workers receive their Initialize-commands simultaneously, each with
// the combined TestDirective and SecurityDirective-list
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processSecurityFetched(
	incomingWorkerEvent workerProtocol.WorkerEventStruct) {

	if testExecutionUnitObject.currentTestExecutionState != common_config.TestExecutionStateLoading {

		common_config.Logger.WithFields(logrus.Fields{
			"id":           "35cbcfb9-70c3-4a2e-97ab-c7cff2b84a4e",
			"testUuid":     testExecutionUnitObject.TestUuid,
			"currentState": testExecutionUnitObject.currentTestExecutionState.String(),
		}).Debug("SecurityFetched-event received in wrong state, ignoring")

		return
	}

	testExecutionUnitObject.fetchedSecurityDirectives = incomingWorkerEvent.SecurityDirectives

	testExecutionUnitObject.workerCommandChannels.ScenarioRunnerWorkerCommandChannel <- workerProtocol.ScenarioRunnerWorkerCommandStruct{
		WorkerCommand:      workerProtocol.ScenarioRunnerWorkerCommandInitialize,
		TestUuid:           testExecutionUnitObject.TestUuid,
		TestDirective:      testExecutionUnitObject.fetchedTestDirective,
		SecurityDirectives: testExecutionUnitObject.fetchedSecurityDirectives,
	}

	testExecutionUnitObject.workerCommandChannels.ProducerWorkerCommandChannel <- workerProtocol.ProducerWorkerCommandStruct{
		WorkerCommand:      workerProtocol.ProducerWorkerCommandInitialize,
		TestUuid:           testExecutionUnitObject.TestUuid,
		TestDirective:      testExecutionUnitObject.fetchedTestDirective,
		SecurityDirectives: testExecutionUnitObject.fetchedSecurityDirectives,
	}

	testExecutionUnitObject.workerCommandChannels.ConsumerWorkerCommandChannel <- workerProtocol.ConsumerWorkerCommandStruct{
		WorkerCommand:      workerProtocol.ConsumerWorkerCommandInitialize,
		TestUuid:           testExecutionUnitObject.TestUuid,
		TestDirective:      testExecutionUnitObject.fetchedTestDirective,
		SecurityDirectives: testExecutionUnitObject.fetchedSecurityDirectives,
	}
}

// A worker acknowledged that it is internally ready. The five acknowledgements may arrive in
// any order and are counted. The transition Loading to Loaded fires only when the count
// reaches exactly five
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processChildGoodToGo(
	incomingWorkerEvent workerProtocol.WorkerEventStruct) {

	if testExecutionUnitObject.currentTestExecutionState != common_config.TestExecutionStateLoading {

		common_config.Logger.WithFields(logrus.Fields{
			"id":           "d4f9f7a3-46b4-41d9-927f-6a19a84e79c4",
			"testUuid":     testExecutionUnitObject.TestUuid,
			"currentState": testExecutionUnitObject.currentTestExecutionState.String(),
		}).Debug("ChildGoodToGo-acknowledgement received in wrong state, ignoring")

		return
	}

	// Each worker sends exactly one acknowledgement, so a duplicate must not advance the count
	if testExecutionUnitObject.goodToGoWorkers[incomingWorkerEvent.WorkerKind] == true {

		common_config.Logger.WithFields(logrus.Fields{
			"id":         "6a5b2ff6-8e47-4bb9-ae32-e254a54aa8c2",
			"testUuid":   testExecutionUnitObject.TestUuid,
			"workerKind": incomingWorkerEvent.WorkerKind.String(),
		}).Warning("Duplicate ChildGoodToGo-acknowledgement from worker, ignoring")

		return
	}

	testExecutionUnitObject.goodToGoWorkers[incomingWorkerEvent.WorkerKind] = true
	testExecutionUnitObject.numberOfGoodToGoWorkers = testExecutionUnitObject.numberOfGoodToGoWorkers + 1

	common_config.Logger.WithFields(logrus.Fields{
		"id":                      "3e10ff84-6cb5-4e20-bd06-0ec1c5a77c80",
		"testUuid":                testExecutionUnitObject.TestUuid,
		"workerKind":              incomingWorkerEvent.WorkerKind.String(),
		"numberOfGoodToGoWorkers": testExecutionUnitObject.numberOfGoodToGoWorkers,
	}).Debug("ChildGoodToGo-acknowledgement received from worker")

	if testExecutionUnitObject.numberOfGoodToGoWorkers < workerProtocol.NumberOfWorkersPerTestExecution {
		return
	}

	// All five workers are ready. A loaded-but-not-started TestExecution may wait on the
	// execution slot for operator-controlled time, so no timer in state 'Loaded'
	testExecutionUnitObject.transitionToState(common_config.TestExecutionStateLoaded, 0)

	// Report 'Loaded' to QueueEngine, which is the scheduling point
	testExecutionUnitObject.reportLifecycleEvent(common_config.TestLifecycleEventLoaded, nil)
}

// The ScenarioRunnerWorker finished the scenario suite run. This does not itself complete
// the TestExecution. The result is durable first when the BlockStorageWorker has
// acknowledged the evidence upload, so a crash between the two leaves the TestExecution in
// state 'Testing' rather than falsely Completed
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processTestCompleted(
	incomingWorkerEvent workerProtocol.WorkerEventStruct) {

	if testExecutionUnitObject.currentTestExecutionState != common_config.TestExecutionStateTesting {

		common_config.Logger.WithFields(logrus.Fields{
			"id":           "b4cf16ad-93b7-4f74-b2a8-6e2ff9a80c46",
			"testUuid":     testExecutionUnitObject.TestUuid,
			"currentState": testExecutionUnitObject.currentTestExecutionState.String(),
		}).Debug("TestCompleted-event received in wrong state, ignoring")

		return
	}

	testExecutionUnitObject.testResult = incomingWorkerEvent.TestResult

	// Request the evidence upload from the BlockStorageWorker
	testExecutionUnitObject.workerCommandChannels.BlockStorageWorkerCommandChannel <- workerProtocol.BlockStorageWorkerCommandStruct{
		WorkerCommand: workerProtocol.BlockStorageWorkerCommandLoadToBlockStorage,
		TestUuid:      testExecutionUnitObject.TestUuid,
		TestResult:    testExecutionUnitObject.testResult,
	}
}

// The BlockStorageWorker acknowledged the evidence upload, so the result is now fixed and
// the TestExecution moves to state 'Completed'
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processUploadCompleted() {

	if testExecutionUnitObject.currentTestExecutionState != common_config.TestExecutionStateTesting {

		common_config.Logger.WithFields(logrus.Fields{
			"id":           "7fb9b3fd-4b40-4fd5-913f-7a2e0ac04f7b",
			"testUuid":     testExecutionUnitObject.TestUuid,
			"currentState": testExecutionUnitObject.currentTestExecutionState.String(),
		}).Debug("UploadCompleted-event received in wrong state, ignoring")

		return
	}

	testExecutionUnitObject.endTime = time.Now()

	// Bound how long the finished Unit's state remains queryable before self-cleanup
	testExecutionUnitObject.transitionToState(
		common_config.TestExecutionStateCompleted, common_config.CompletedStateTimeOutDuration)

	// Report 'Completed' to QueueEngine, which releases the execution slot
	testExecutionUnitObject.reportLifecycleEvent(common_config.TestLifecycleEventCompleted, nil)
}

// A worker failed. The failure never crashes the Unit. It is captured and converted into a
// transition to state 'Exception', skipping any remaining cascade steps
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) processWorkerFailureOccurred(
	incomingWorkerEvent workerProtocol.WorkerEventStruct) {

	switch testExecutionUnitObject.currentTestExecutionState {

	case common_config.TestExecutionStateException,
		common_config.TestExecutionStateShuttingDown,
		common_config.TestExecutionStateCompleted:

		common_config.Logger.WithFields(logrus.Fields{
			"id":            "0d0b7e55-6fd3-47b4-b263-bd5ae1c3fcbd",
			"testUuid":      testExecutionUnitObject.TestUuid,
			"currentState":  testExecutionUnitObject.currentTestExecutionState.String(),
			"workerFailure": incomingWorkerEvent.WorkerFailure,
		}).Debug("WorkerFailure-event received in terminal state, ignoring")

		return
	}

	common_config.Logger.WithFields(logrus.Fields{
		"id":            "f1c3f939-32fe-41a8-b7b7-13a70aa1e7f5",
		"testUuid":      testExecutionUnitObject.TestUuid,
		"workerKind":    incomingWorkerEvent.WorkerKind.String(),
		"workerFailure": incomingWorkerEvent.WorkerFailure,
	}).Error("Worker reported failure, moving TestExecution to state 'Exception'")

	testExecutionUnitObject.lastTestExecutionException = incomingWorkerEvent.WorkerFailure
	testExecutionUnitObject.endTime = time.Now()

	// Bound how long the failed Unit's state remains queryable before self-cleanup
	testExecutionUnitObject.transitionToState(
		common_config.TestExecutionStateException, common_config.ExceptionStateTimeOutDuration)

	// Report 'TestException' to QueueEngine together with the captured failure
	testExecutionUnitObject.reportLifecycleEvent(
		common_config.TestLifecycleEventException, testExecutionUnitObject.lastTestExecutionException)
}
