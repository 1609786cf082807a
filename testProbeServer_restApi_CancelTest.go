package main

import (
	"TestProbeServer/common_config"
	"TestProbeServer/testQueueEngine"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// restApiCancelTest
// Cancel one TestExecution. Whether the cancellation is accepted depends on the state of the
// TestExecution, only TestExecutions that haven't started testing can be cancelled. A
// TestUuid that the QueueEngine doesn't know is silently dropped by the engine, so no
// response within the time limit is answered with '404'
func (testProbeServerObject *testProbeServerObjectStruct) restApiCancelTest(
	responseWriter http.ResponseWriter,
	httpRequest *http.Request) {

	var testUuid string
	testUuid = mux.Vars(httpRequest)["testUuid"]

	testProbeServerObject.logger.WithFields(logrus.Fields{
		"id":       "70df38dc-9f0d-4ed0-9f3e-0b66e99e06cb",
		"testUuid": testUuid,
	}).Debug("Incoming REST-Api 'restApiCancelTest'")

	defer testProbeServerObject.logger.WithFields(logrus.Fields{
		"id":       "a2d2e04e-a6d1-4bb1-97a1-e3f11e4a2ff4",
		"testUuid": testUuid,
	}).Debug("Outgoing REST-Api 'restApiCancelTest'")

	var cancelTestResponseChannel common_config.CancelTestResponseChannelType
	cancelTestResponseChannel = make(chan common_config.CancelTestResponseStruct, 1)

	channelCommand := testQueueEngine.ChannelCommandStruct{
		ChannelCommand:                     testQueueEngine.ChannelCommandCancelTest,
		TestUuid:                           testUuid,
		CancelTestResponseChannelReference: &cancelTestResponseChannel,
	}

	*testProbeServerObject.queueEngine.CommandChannelReference <- channelCommand

	select {

	case cancelTestResponse := <-cancelTestResponseChannel:

		if cancelTestResponse.TestWasCancelled == true {
			testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusOK, cancelTestResponse)
		} else {
			testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusConflict, cancelTestResponse)
		}

	case <-time.After(common_config.RestApiResponseTimeOutDuration):

		testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusNotFound,
			restApiErrorResponseStruct{Message: "Unknown testId '" + testUuid + "'"})
	}

}
