package testExecutionUnit

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"time"

	"github.com/sirupsen/logrus"
)

// Move the TestExecutionUnit to a new state. Any pending timeout-timer is always cancelled
// first and then, when 'stateTimeOutDuration' is larger than zero, the timer appropriate to
// the new state is armed. This keeps the invariant that at most one timer is ever pending
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) transitionToState(
	newTestExecutionState common_config.TestExecutionStateType,
	stateTimeOutDuration time.Duration) {

	common_config.Logger.WithFields(logrus.Fields{
		"id":       "1e2ff7b9-ffae-4a9c-8846-80bb5c0787a5",
		"testUuid": testExecutionUnitObject.TestUuid,
		"oldState": testExecutionUnitObject.currentTestExecutionState.String(),
		"newState": newTestExecutionState.String(),
	}).Debug("TestExecutionUnit transitions state")

	testExecutionUnitObject.cancelStateTimeOutTimer()

	testExecutionUnitObject.currentTestExecutionState = newTestExecutionState

	if stateTimeOutDuration > 0 {
		testExecutionUnitObject.armStateTimeOutTimer(stateTimeOutDuration)
	}
}

// Arm the timeout-timer for the current state. The fired timeout is delivered as a
// self-addressed command carrying the timer generation it was armed with
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) armStateTimeOutTimer(
	stateTimeOutDuration time.Duration) {

	// Advance the timer generation so an already fired, not yet delivered, timeout is ignored
	testExecutionUnitObject.currentTimerGeneration = testExecutionUnitObject.currentTimerGeneration + 1

	var stateTimer *common_config.CancellableTimerStruct
	stateTimer = common_config.NewCancellableTimer(
		testExecutionUnitObject.TestUuid, testExecutionUnitObject.currentTimerGeneration)

	testExecutionUnitObject.activeStateTimer = stateTimer

	// Wait for the timer in a separate goroutine and convert a real timeout into a
	// self-addressed command on the Unit's own CommandChannel
	go func(stateTimer *common_config.CancellableTimerStruct,
		commandChannelReference *TestExecutionUnitChannelType) {

		timedOut := <-stateTimer.After(stateTimeOutDuration)
		if timedOut == true {
			*commandChannelReference <- ChannelCommandStruct{
				ChannelCommand:  ChannelCommandStateTimeOutOccurred,
				TimerGeneration: stateTimer.TimerGeneration(),
			}
		}
	}(stateTimer, testExecutionUnitObject.CommandChannelReference)
}

// Cancel any pending timeout-timer. Safe to call when no timer is armed
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) cancelStateTimeOutTimer() {

	if testExecutionUnitObject.activeStateTimer != nil {
		testExecutionUnitObject.activeStateTimer.Cancel()
		testExecutionUnitObject.activeStateTimer = nil
	}

	// Advance generation as well, which handles the race where the timer already fired but
	// the timeout-command has not yet been processed
	testExecutionUnitObject.currentTimerGeneration = testExecutionUnitObject.currentTimerGeneration + 1
}

// Report one lifecycle event for this TestExecution to the QueueEngine
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) reportLifecycleEvent(
	lifecycleEvent common_config.TestLifecycleEventType,
	testExecutionException error) {

	*testExecutionUnitObject.lifecycleEventChannelReference <- common_config.TestLifecycleEventStruct{
		LifecycleEvent:         lifecycleEvent,
		TestUuid:               testExecutionUnitObject.TestUuid,
		TestExecutionException: testExecutionException,
	}
}

// Move to the terminal state 'ShuttingDown'. Broadcast Stop to all five workers, report
// 'Stopping' to the QueueEngine and let the channel reader goroutine end
func (testExecutionUnitObject *TestExecutionUnitObjectStruct) startShutDown() {

	testExecutionUnitObject.transitionToState(common_config.TestExecutionStateShuttingDown, 0)

	common_config.Logger.WithFields(logrus.Fields{
		"id":       "97ed4fd5-1a3f-488e-9b9f-6f0f82bd4bd4",
		"testUuid": testExecutionUnitObject.TestUuid,
	}).Info("TestExecutionUnit is shutting down")

	// Broadcast Stop to all five workers. The workers were only spawned if the TestExecution
	// ever left state 'Setup'
	if testExecutionUnitObject.workersWereSpawned == true {

		testExecutionUnitObject.workerCommandChannels.BlockStorageWorkerCommandChannel <- workerProtocol.BlockStorageWorkerCommandStruct{
			WorkerCommand: workerProtocol.BlockStorageWorkerCommandStop,
			TestUuid:      testExecutionUnitObject.TestUuid,
		}

		testExecutionUnitObject.workerCommandChannels.VaultWorkerCommandChannel <- workerProtocol.VaultWorkerCommandStruct{
			WorkerCommand: workerProtocol.VaultWorkerCommandStop,
			TestUuid:      testExecutionUnitObject.TestUuid,
		}

		testExecutionUnitObject.workerCommandChannels.ScenarioRunnerWorkerCommandChannel <- workerProtocol.ScenarioRunnerWorkerCommandStruct{
			WorkerCommand: workerProtocol.ScenarioRunnerWorkerCommandStop,
			TestUuid:      testExecutionUnitObject.TestUuid,
		}

		testExecutionUnitObject.workerCommandChannels.ProducerWorkerCommandChannel <- workerProtocol.ProducerWorkerCommandStruct{
			WorkerCommand: workerProtocol.ProducerWorkerCommandStop,
			TestUuid:      testExecutionUnitObject.TestUuid,
		}

		testExecutionUnitObject.workerCommandChannels.ConsumerWorkerCommandChannel <- workerProtocol.ConsumerWorkerCommandStruct{
			WorkerCommand: workerProtocol.ConsumerWorkerCommandStop,
			TestUuid:      testExecutionUnitObject.TestUuid,
		}
	}

	// Report 'Stopping' to QueueEngine so the registry entry is removed
	testExecutionUnitObject.reportLifecycleEvent(common_config.TestLifecycleEventStopping, nil)
}
