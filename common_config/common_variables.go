package common_config

import (
	"github.com/sirupsen/logrus"
)

// Logger that all parts of the Test Probe Server share
var Logger *logrus.Logger

// Unique Uuid for the running instance of the application. Created at start up
var ApplicationRuntimeUuid string

// Number of messages that can be buffered in an engine command channel
const EngineCommandChannelSize = 100

// If number of messages on an engine command channel passes this level then a warning is logged
const EngineCommandChannelWarningLevel = 75

// The seven states that a TestExecutionUnit can be in. The QueueEngine mirrors these states
// in its registry, based on the lifecycle events reported by the Units
type TestExecutionStateType uint8

const (
	TestExecutionStateSetup TestExecutionStateType = iota
	TestExecutionStateLoading
	TestExecutionStateLoaded
	TestExecutionStateTesting
	TestExecutionStateCompleted
	TestExecutionStateException
	TestExecutionStateShuttingDown
)

// String
// Convert the TestExecutionState into the state name used in status responses
func (testExecutionState TestExecutionStateType) String() string {

	switch testExecutionState {
	case TestExecutionStateSetup:
		return "Setup"
	case TestExecutionStateLoading:
		return "Loading"
	case TestExecutionStateLoaded:
		return "Loaded"
	case TestExecutionStateTesting:
		return "Testing"
	case TestExecutionStateCompleted:
		return "Completed"
	case TestExecutionStateException:
		return "Exception"
	case TestExecutionStateShuttingDown:
		return "ShuttingDown"
	default:
		return "Unknown"
	}
}

// ***********************************************************************************************************
// Lifecycle events, sent from a TestExecutionUnit to the QueueEngine

type TestLifecycleEventType uint8

const (
	TestLifecycleEventInitialized TestLifecycleEventType = iota
	TestLifecycleEventLoading
	TestLifecycleEventLoaded
	TestLifecycleEventStarted
	TestLifecycleEventCompleted
	TestLifecycleEventException
	TestLifecycleEventStopping
)

type TestLifecycleEventStruct struct {
	LifecycleEvent TestLifecycleEventType
	TestUuid       string

	// Only used for 'TestLifecycleEventException'
	TestExecutionException error
}

// Channel used by TestExecutionUnits for reporting lifecycle events to the QueueEngine
type TestLifecycleEventChannelType chan TestLifecycleEventStruct

// ***********************************************************************************************************
// Response structures, sent back over response channels to the caller of the QueueEngine

// Response for 'Submit'
type SubmitTestResponseStruct struct {
	TestUuid string `json:"testId"`
	Message  string `json:"message"`
}

type SubmitTestResponseChannelType chan SubmitTestResponseStruct

// Response for 'StartTest'
type StartTestResponseStruct struct {
	TestUuid        string `json:"testId"`
	TestWasAccepted bool   `json:"accepted"`
	TestType        string `json:"testType,omitempty"`
	Message         string `json:"message"`
}

type StartTestResponseChannelType chan StartTestResponseStruct

// Response for 'GetTestStatus'
type TestStatusResponseStruct struct {
	TestUuid           string `json:"testId"`
	TestExecutionState string `json:"state"`
	Bucket             string `json:"bucket,omitempty"`
	TestType           string `json:"testType,omitempty"`
	StartTime          string `json:"startTime,omitempty"`
	EndTime            string `json:"endTime,omitempty"`
	TestWasSuccessful  *bool  `json:"success,omitempty"`
	TestError          string `json:"error,omitempty"`
}

type TestStatusResponseChannelType chan TestStatusResponseStruct

// Response for 'GetQueueStatus'
type QueueStatusResponseStruct struct {
	TotalTests       int    `json:"totalTests"`
	SetupCount       int    `json:"setupCount"`
	LoadingCount     int    `json:"loadingCount"`
	LoadedCount      int    `json:"loadedCount"`
	TestingCount     int    `json:"testingCount"`
	CompletedCount   int    `json:"completedCount"`
	ExceptionCount   int    `json:"exceptionCount"`
	CurrentlyTesting string `json:"currentlyTesting,omitempty"`
}

type QueueStatusResponseChannelType chan QueueStatusResponseStruct

// Response for 'CancelTest'
type CancelTestResponseStruct struct {
	TestUuid         string `json:"testId"`
	TestWasCancelled bool   `json:"cancelled"`
	Message          string `json:"message,omitempty"`
}

type CancelTestResponseChannelType chan CancelTestResponseStruct
