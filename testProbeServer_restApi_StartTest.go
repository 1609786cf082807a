package main

import (
	"TestProbeServer/common_config"
	"TestProbeServer/testQueueEngine"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Request body for 'restApiStartTest'
type startTestRequestStruct struct {
	Bucket   string `json:"bucket"`
	TestType string `json:"testType"`
}

// restApiStartTest
// Start one submitted TestExecution. The bucket names where the TestExecutionUnit's workers
// find the test assets. A TestUuid that the QueueEngine doesn't know is silently dropped by
// the engine, so no response within the time limit is answered with '404'
func (testProbeServerObject *testProbeServerObjectStruct) restApiStartTest(
	responseWriter http.ResponseWriter,
	httpRequest *http.Request) {

	var testUuid string
	testUuid = mux.Vars(httpRequest)["testUuid"]

	testProbeServerObject.logger.WithFields(logrus.Fields{
		"id":       "c73cb6f6-9b6f-44a1-8fc7-78e6e18a42dd",
		"testUuid": testUuid,
	}).Debug("Incoming REST-Api 'restApiStartTest'")

	defer testProbeServerObject.logger.WithFields(logrus.Fields{
		"id":       "8dbcca4f-9107-4ae3-b05f-eb07f08dbbf2",
		"testUuid": testUuid,
	}).Debug("Outgoing REST-Api 'restApiStartTest'")

	var startTestRequest startTestRequestStruct
	err := json.NewDecoder(httpRequest.Body).Decode(&startTestRequest)
	if err != nil {
		testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusBadRequest,
			restApiErrorResponseStruct{Message: "Couldn't parse request body as json"})

		return
	}

	// The bucket is required, without it the workers have nothing to load
	if startTestRequest.Bucket == "" {
		testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusBadRequest,
			restApiErrorResponseStruct{Message: "A bucket must be specified"})

		return
	}

	var startTestResponseChannel common_config.StartTestResponseChannelType
	startTestResponseChannel = make(chan common_config.StartTestResponseStruct, 1)

	channelCommand := testQueueEngine.ChannelCommandStruct{
		ChannelCommand:                    testQueueEngine.ChannelCommandStartTest,
		TestUuid:                          testUuid,
		Bucket:                            startTestRequest.Bucket,
		TestType:                          startTestRequest.TestType,
		StartTestResponseChannelReference: &startTestResponseChannel,
	}

	*testProbeServerObject.queueEngine.CommandChannelReference <- channelCommand

	select {

	case startTestResponse := <-startTestResponseChannel:

		if startTestResponse.TestWasAccepted == true {
			testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusAccepted, startTestResponse)
		} else {
			testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusConflict, startTestResponse)
		}

	case <-time.After(common_config.RestApiResponseTimeOutDuration):

		testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusNotFound,
			restApiErrorResponseStruct{Message: "Unknown testId '" + testUuid + "'"})
	}

}
