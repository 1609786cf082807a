package testExecutionUnit

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"

	"github.com/sirupsen/logrus"
)

// InitiateTestExecutionUnit
// Create a new TestExecutionUnit for one submitted TestExecution and start its channel
// reader. The Unit starts in state 'Setup' with the Setup-timeout-timer armed and lives
// until it voluntarily reports 'Stopping' to the QueueEngine. A Unit is never resurrected
func InitiateTestExecutionUnit(
	testUuid string,
	lifecycleEventChannelReference *common_config.TestLifecycleEventChannelType,
	workerSpawner workerProtocol.WorkerSpawnerInterface) (testExecutionUnitObject *TestExecutionUnitObjectStruct) {

	// Create Channel used for sending Commands to the TestExecutionUnit
	var testExecutionUnitCommandChannel TestExecutionUnitChannelType
	testExecutionUnitCommandChannel = make(chan ChannelCommandStruct, common_config.EngineCommandChannelSize)

	// Create Channel used by the five workers for reporting their events
	var workerEventChannel workerProtocol.WorkerEventChannelType
	workerEventChannel = make(chan workerProtocol.WorkerEventStruct, common_config.EngineCommandChannelSize)

	testExecutionUnitObject = &TestExecutionUnitObjectStruct{
		TestUuid:                       testUuid,
		CommandChannelReference:        &testExecutionUnitCommandChannel,
		workerEventChannel:             workerEventChannel,
		lifecycleEventChannelReference: lifecycleEventChannelReference,
		workerSpawner:                  workerSpawner,
		currentTestExecutionState:      common_config.TestExecutionStateSetup,
		goodToGoWorkers:                make(map[workerProtocol.WorkerKindType]bool),
	}

	common_config.Logger.WithFields(logrus.Fields{
		"id":       "0fce9cb7-2ebd-45a8-93ce-3e465ea84b1c",
		"testUuid": testUuid,
	}).Debug("New TestExecutionUnit was created")

	// Bound the time a never-started TestExecution may hold its resources
	testExecutionUnitObject.armStateTimeOutTimer(common_config.SetupStateTimeOutDuration)

	// Start Receiver channel for Commands and Worker-events
	go testExecutionUnitObject.startCommandChannelReader()

	// Confirm towards the QueueEngine that the Unit is live
	testExecutionUnitObject.reportLifecycleEvent(common_config.TestLifecycleEventInitialized, nil)

	return testExecutionUnitObject
}
