package testQueueEngine

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"time"

	"github.com/sirupsen/logrus"
)

// InitiateTestQueueEngine
// Create the QueueEngine, which owns the TestExecution registry and the execution slot, and
// start its channel reader. There is exactly one QueueEngine per Test Probe Server instance
func InitiateTestQueueEngine(
	workerSpawner workerProtocol.WorkerSpawnerInterface) (testQueueEngineObject *TestQueueEngineObjectStruct) {

	// Create Channel used for sending Commands to the QueueEngine
	var testQueueEngineCommandChannel TestQueueChannelType
	testQueueEngineCommandChannel = make(chan ChannelCommandStruct, common_config.EngineCommandChannelSize)

	// Create Channel used by the TestExecutionUnits for reporting lifecycle events
	var lifecycleEventChannel common_config.TestLifecycleEventChannelType
	lifecycleEventChannel = make(chan common_config.TestLifecycleEventStruct, common_config.EngineCommandChannelSize)

	testQueueEngineObject = &TestQueueEngineObjectStruct{
		CommandChannelReference: &testQueueEngineCommandChannel,
		LifecycleEventChannel:   lifecycleEventChannel,
		workerSpawner:           workerSpawner,
		testRegistry:            make(map[string]*TestQueueEntryStruct),
		loadedTestsSet:          make(map[string]bool),
		stoppedTests:            make(map[string]time.Time),
	}

	common_config.Logger.WithFields(logrus.Fields{
		"id": "b8f1cf17-8d63-45ea-b582-05cbfa47c7fb",
	}).Info("QueueEngine was created")

	// Start Receiver channel for Commands and lifecycle events
	go testQueueEngineObject.startCommandChannelReader()

	return testQueueEngineObject
}
