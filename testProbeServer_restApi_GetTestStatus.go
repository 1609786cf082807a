package main

import (
	"TestProbeServer/common_config"
	"TestProbeServer/testQueueEngine"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// restApiGetTestStatus
// Report the status for one TestExecution. A TestUuid that the QueueEngine doesn't know is
// silently dropped by the engine, so no response within the time limit is answered with '404'
func (testProbeServerObject *testProbeServerObjectStruct) restApiGetTestStatus(
	responseWriter http.ResponseWriter,
	httpRequest *http.Request) {

	var testUuid string
	testUuid = mux.Vars(httpRequest)["testUuid"]

	testProbeServerObject.logger.WithFields(logrus.Fields{
		"id":       "0d1cf3a4-d922-46d9-b2c6-9e1d7d3ac6ea",
		"testUuid": testUuid,
	}).Debug("Incoming REST-Api 'restApiGetTestStatus'")

	defer testProbeServerObject.logger.WithFields(logrus.Fields{
		"id":       "6cf8ff33-9f23-4fd6-ad0a-38ddb87ad8dc",
		"testUuid": testUuid,
	}).Debug("Outgoing REST-Api 'restApiGetTestStatus'")

	var testStatusResponseChannel common_config.TestStatusResponseChannelType
	testStatusResponseChannel = make(chan common_config.TestStatusResponseStruct, 1)

	channelCommand := testQueueEngine.ChannelCommandStruct{
		ChannelCommand:                     testQueueEngine.ChannelCommandGetTestStatus,
		TestUuid:                           testUuid,
		TestStatusResponseChannelReference: &testStatusResponseChannel,
	}

	*testProbeServerObject.queueEngine.CommandChannelReference <- channelCommand

	select {

	case testStatusResponse := <-testStatusResponseChannel:
		testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusOK, testStatusResponse)

	case <-time.After(common_config.RestApiResponseTimeOutDuration):

		testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusNotFound,
			restApiErrorResponseStruct{Message: "Unknown testId '" + testUuid + "'"})
	}

}
