package main

import (
	"TestProbeServer/common_config"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	uuidGenerator "github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// mustGetEnv is a helper function for getting environment variables.
// Displays a warning if the environment variable is not set.
func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("Warning: %s environment variable not set.\n", k)
	}
	return v
}

// mustGetenvAsDuration is a helper function for getting environment variables holding durations, eg '15s' or '2m'
func mustGetenvAsDuration(k string) time.Duration {
	v, err := time.ParseDuration(mustGetenv(k))
	if err != nil {
		fmt.Println("Couldn't convert environment variable '"+k+"' to a duration, error: ", err)
		os.Exit(0)
	}
	return v
}

func init() {

	// Create Unique Uuid for run time instance
	common_config.ApplicationRuntimeUuid = uuidGenerator.New().String()
	fmt.Println("ApplicationRuntimeUuid: " + common_config.ApplicationRuntimeUuid)

	var err error

	// Get Environment variable to tell were the Test Probe Server is running
	var executionLocationForTestProbeServer = mustGetenv("ExecutionLocationForTestProbeServer")

	switch executionLocationForTestProbeServer {
	case "LOCALHOST_NODOCKER":
		common_config.ExecutionLocationForTestProbeServer = common_config.LocalhostNoDocker

	case "LOCALHOST_DOCKER":
		common_config.ExecutionLocationForTestProbeServer = common_config.LocalhostDocker

	case "GCP":
		common_config.ExecutionLocationForTestProbeServer = common_config.GCP

	default:
		fmt.Println("Unknown Execution location for Test Probe Server: " + executionLocationForTestProbeServer + ". Expected one of the following: 'LOCALHOST_NODOCKER', 'LOCALHOST_DOCKER', 'GCP'")
		os.Exit(0)

	}

	// Port for Test Probe Server REST-Api
	common_config.TestProbeServerPort, err = strconv.Atoi(mustGetenv("TestProbeServerPort"))
	if err != nil {
		fmt.Println("Couldn't convert environment variable 'TestProbeServerPort' to an integer, error: ", err)
		os.Exit(0)

	}

	// Extract Debug level
	var loggingLevel = mustGetenv("LoggingLevel")

	switch loggingLevel {

	case "DebugLevel":
		common_config.LoggingLevel = logrus.DebugLevel

	case "InfoLevel":
		common_config.LoggingLevel = logrus.InfoLevel

	default:
		fmt.Println("Unknown LoggingLevel '" + loggingLevel + "'. Expected one of the following: 'DebugLevel', 'InfoLevel'")
		os.Exit(0)

	}

	// GCP Project where the broker topics live
	common_config.GCPProjectId = mustGetenv("ProjectId")

	// Name of the Vault cloud function that serves per-topic security directives
	common_config.VaultFunctionName = mustGetenv("VaultFunctionName")

	// Object key where the test directive file is expected to be found in the test bucket
	common_config.TestDirectiveObjectKey = mustGetenv("TestDirectiveObjectKey")

	// Should status updates for TestExecutions be broadcasted on PubSub-topic
	common_config.UseStatusBroadcastingForExecutionStatusUpdates, err = strconv.ParseBool(mustGetenv("UseStatusBroadcastingForExecutionStatusUpdates"))
	if err != nil {
		fmt.Println("Couldn't convert environment variable 'UseStatusBroadcastingForExecutionStatusUpdates' to a boolean, error: ", err)
		os.Exit(0)
	}

	// Extract PubSub-Topic for where to send status updates for TestExecutions
	common_config.ExecutionStatusUpdatesPubSubTopic = mustGetenv("ExecutionStatusUpdatesPubSubTopic")

	// Extract local path to Service-Account file
	common_config.LocalServiceAccountPath = mustGetenv("LocalServiceAccountPath")
	// The only way have an OK space is to replace an existing character
	if common_config.LocalServiceAccountPath == "#" {
		common_config.LocalServiceAccountPath = ""
	}

	// Set the environment variable that Google-client-libraries look for
	os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", common_config.LocalServiceAccountPath)

	// Per-state timeout durations for the TestExecutionUnits
	common_config.SetupStateTimeOutDuration = mustGetenvAsDuration("SetupStateTimeOutDuration")
	common_config.LoadingStateTimeOutDuration = mustGetenvAsDuration("LoadingStateTimeOutDuration")
	common_config.CompletedStateTimeOutDuration = mustGetenvAsDuration("CompletedStateTimeOutDuration")
	common_config.ExceptionStateTimeOutDuration = mustGetenvAsDuration("ExceptionStateTimeOutDuration")

	// How long the REST-Api waits for a response from the QueueEngine
	common_config.RestApiResponseTimeOutDuration = mustGetenvAsDuration("RestApiResponseTimeOutDuration")

	// How long stopped TestExecutions are remembered
	common_config.StoppedTestsRetentionDuration = mustGetenvAsDuration("StoppedTestsRetentionDuration")

	// Time between two probe-messages published by a ProducerWorker
	common_config.ProbeMessageIntervalDuration = mustGetenvAsDuration("ProbeMessageIntervalDuration")

}
