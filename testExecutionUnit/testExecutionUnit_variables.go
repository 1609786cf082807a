package testExecutionUnit

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"time"
)

// TestExecutionUnitObjectStruct
// One instance per submitted TestExecution. The Unit is a state machine that owns the five
// workers, drives the initialization cascade, enforces per-state timeouts and reports
// lifecycle events to the QueueEngine. All state below is owned exclusively by the Unit's
// own channel reader goroutine and is never shared
type TestExecutionUnitObjectStruct struct {
	TestUuid string

	// Channel used for sending commands to this TestExecutionUnit
	CommandChannelReference *TestExecutionUnitChannelType

	// Channel on which the five workers report their events back to the Unit
	workerEventChannel workerProtocol.WorkerEventChannelType

	// Channel used for reporting lifecycle events to the QueueEngine
	lifecycleEventChannelReference *common_config.TestLifecycleEventChannelType

	// Spawns the five workers when the Unit enters state 'Loading'
	workerSpawner workerProtocol.WorkerSpawnerInterface

	// Command channels towards the five workers. Only valid when 'workersWereSpawned' is true
	workerCommandChannels workerProtocol.WorkerCommandChannelsStruct
	workersWereSpawned    bool

	// Current state for the TestExecution
	currentTestExecutionState common_config.TestExecutionStateType

	// Data received in the StartTest-command
	bucket           string
	testType         string
	startRequestTime time.Time

	// Set when the TestExecution reaches a terminal state
	endTime time.Time

	// Number of distinct 'ChildGoodToGo'-acknowledgements received from the workers, 0..5
	numberOfGoodToGoWorkers int

	// Which workers that have sent their 'ChildGoodToGo'-acknowledgement
	goodToGoWorkers map[workerProtocol.WorkerKindType]bool

	// TestDirective fetched by the BlockStorageWorker
	fetchedTestDirective *workerProtocol.TestDirectiveStruct

	// SecurityDirectives fetched by the VaultWorker
	fetchedSecurityDirectives []workerProtocol.SecurityDirectiveStruct

	// The result from the ScenarioRunnerWorker. Fixed when the evidence upload is acknowledged
	testResult *workerProtocol.TestResultStruct

	// Captured failure, retained for status reporting while in state 'Exception'
	lastTestExecutionException error

	// At most one timeout-timer is ever armed per Unit. Every state transition first cancels
	// any pending timer, then arms the timer appropriate to the new state, or none.
	// A fired timeout carrying an old generation is ignored
	activeStateTimer       *common_config.CancellableTimerStruct
	currentTimerGeneration uint64
}

type TestExecutionUnitChannelType chan ChannelCommandStruct

type ChannelCommandType uint8

const (
	// Client requested that the TestExecution should start loading
	ChannelCommandStartTest ChannelCommandType = iota

	// The QueueEngine promoted this TestExecution into the execution slot
	ChannelCommandStartTesting

	// Client asks for the status of this TestExecution
	ChannelCommandGetTestStatus

	// Client requests cancellation of this TestExecution
	ChannelCommandCancelTest

	// A state timeout-timer fired. Self-addressed deferred message
	ChannelCommandStateTimeOutOccurred
)

type ChannelCommandStruct struct {
	ChannelCommand ChannelCommandType

	// Only used for 'ChannelCommandStartTest'
	Bucket   string
	TestType string

	// Only used for 'ChannelCommandStateTimeOutOccurred'
	TimerGeneration uint64

	// Response channel references. Only the reference matching the command is used
	StartTestResponseChannelReference  *common_config.StartTestResponseChannelType
	TestStatusResponseChannelReference *common_config.TestStatusResponseChannelType
	CancelTestResponseChannelReference *common_config.CancelTestResponseChannelType
}
