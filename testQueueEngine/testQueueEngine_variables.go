package testQueueEngine

import (
	"TestProbeServer/common_config"
	"TestProbeServer/testExecutionUnit"
	"TestProbeServer/workerProtocol"
	"time"
)

// TestQueueEngineObjectStruct
// The QueueEngine owns the TestExecution registry, enforces FIFO admission and
// single-concurrency execution, routes client requests to the correct TestExecutionUnit and
// aggregates status. All state below is owned exclusively by the engine's own channel
// reader goroutine. The engine never reaches into a Unit's private state, it only observes
// the Units through their reported lifecycle events
type TestQueueEngineObjectStruct struct {

	// Channel used for sending commands to the QueueEngine
	CommandChannelReference *TestQueueChannelType

	// Channel on which the TestExecutionUnits report their lifecycle events
	LifecycleEventChannel common_config.TestLifecycleEventChannelType

	// Spawner handed to every new TestExecutionUnit
	workerSpawner workerProtocol.WorkerSpawnerInterface

	// Registry over all live TestExecutions, TestUuid -> entry
	testRegistry map[string]*TestQueueEntryStruct

	// TestUuids that have finished loading, in the order loading completed. The FIFO used by
	// the promotion step
	loadedTestsQueue []string

	// TestUuids currently eligible to be scheduled next
	loadedTestsSet map[string]bool

	// At most one TestUuid currently executing, the single-concurrency invariant.
	// Empty string means that the execution slot is free
	currentTest string

	// TestUuids that have been torn down, retained briefly for idempotent cleanup notifications
	stoppedTests map[string]time.Time
}

// TestQueueEntryStruct
// One registry entry per submitted TestExecution. Created when a submission is accepted,
// mutated only by the QueueEngine in response to lifecycle events and removed when the Unit
// reports 'Stopping'
type TestQueueEntryStruct struct {
	TestUuid                    string
	UnitCommandChannelReference *testExecutionUnit.TestExecutionUnitChannelType

	// Mirror of the Unit's state as observed through lifecycle events
	TestExecutionState common_config.TestExecutionStateType

	Bucket           string
	TestType         string
	StartRequestTime time.Time
}

type TestQueueChannelType chan ChannelCommandStruct

type ChannelCommandType uint8

const (
	ChannelCommandSubmitTest ChannelCommandType = iota
	ChannelCommandStartTest
	ChannelCommandGetTestStatus
	ChannelCommandGetQueueStatus
	ChannelCommandCancelTest
)

type ChannelCommandStruct struct {
	ChannelCommand ChannelCommandType

	// Used for 'StartTest', 'GetTestStatus' and 'CancelTest'
	TestUuid string

	// Only used for 'StartTest'
	Bucket   string
	TestType string

	// Response channel references. Only the reference matching the command is used
	SubmitTestResponseChannelReference  *common_config.SubmitTestResponseChannelType
	StartTestResponseChannelReference   *common_config.StartTestResponseChannelType
	TestStatusResponseChannelReference  *common_config.TestStatusResponseChannelType
	QueueStatusResponseChannelReference *common_config.QueueStatusResponseChannelType
	CancelTestResponseChannelReference  *common_config.CancelTestResponseChannelType
}
