package common_config

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ***********************************************************************************************************
// The following variables receives their values from environment variables

// Where is the Test Probe Server running
var ExecutionLocationForTestProbeServer ExecutionLocationTypeType

// Definitions for where the Test Probe Server is running
type ExecutionLocationTypeType int

// Constants used for where stuff is running
const (
	LocalhostNoDocker ExecutionLocationTypeType = iota
	LocalhostDocker
	GCP
)

// Test Probe Server Port to use, will have its value from Environment variables at startup
var TestProbeServerPort int

// Log level used by the Logger
var LoggingLevel logrus.Level

// GCP Project where the message broker topics live
var GCPProjectId string

// Name of the Vault cloud function that serves per-topic security directives
var VaultFunctionName string

// Object key, within the test bucket, where the test directive file is expected to be found
var TestDirectiveObjectKey string

// Should status updates for TestExecutions be broadcasted on PubSub-topic
var UseStatusBroadcastingForExecutionStatusUpdates bool

// PubSub-Topic used when broadcasting status updates for TestExecutions
var ExecutionStatusUpdatesPubSubTopic string

// Local path to Service-Account file, used when running outside GCP
var LocalServiceAccountPath string

// Maximum time a TestExecution is allowed to stay in state 'Setup' before the Unit cleans itself up
var SetupStateTimeOutDuration time.Duration

// Maximum time a TestExecution is allowed to stay in state 'Loading' before the Unit cleans itself up
var LoadingStateTimeOutDuration time.Duration

// How long a finished TestExecution, state 'Completed', stays queryable before the Unit cleans itself up
var CompletedStateTimeOutDuration time.Duration

// How long a failed TestExecution, state 'Exception', stays queryable before the Unit cleans itself up
var ExceptionStateTimeOutDuration time.Duration

// How long the REST-Api waits for a response from the QueueEngine before treating the request as dropped
var RestApiResponseTimeOutDuration time.Duration

// How long stopped TestExecutions are remembered for idempotent cleanup notifications
var StoppedTestsRetentionDuration time.Duration

// Time between two probe-messages published by a ProducerWorker on the broker topic
var ProbeMessageIntervalDuration time.Duration
