package main

import (
	"TestProbeServer/common_config"
	"TestProbeServer/testQueueEngine"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// restApiSubmitTest
// Submit one new TestExecution. The QueueEngine creates the TestExecutionUnit and responds
// with the TestUuid that all later requests use to address the TestExecution
func (testProbeServerObject *testProbeServerObjectStruct) restApiSubmitTest(
	responseWriter http.ResponseWriter,
	httpRequest *http.Request) {

	testProbeServerObject.logger.WithFields(logrus.Fields{
		"id": "09cf3c9c-84c0-44cf-92a4-4dd7ef01b55c",
	}).Debug("Incoming REST-Api 'restApiSubmitTest'")

	defer testProbeServerObject.logger.WithFields(logrus.Fields{
		"id": "d8d16e4d-09a9-4d52-b16d-92cbb36f6c5b",
	}).Debug("Outgoing REST-Api 'restApiSubmitTest'")

	// Create response channel and send the command to the QueueEngine
	var submitTestResponseChannel common_config.SubmitTestResponseChannelType
	submitTestResponseChannel = make(chan common_config.SubmitTestResponseStruct, 1)

	channelCommand := testQueueEngine.ChannelCommandStruct{
		ChannelCommand:                     testQueueEngine.ChannelCommandSubmitTest,
		SubmitTestResponseChannelReference: &submitTestResponseChannel,
	}

	*testProbeServerObject.queueEngine.CommandChannelReference <- channelCommand

	select {

	case submitTestResponse := <-submitTestResponseChannel:
		testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusCreated, submitTestResponse)

	case <-time.After(common_config.RestApiResponseTimeOutDuration):

		testProbeServerObject.logger.WithFields(logrus.Fields{
			"id": "4df69e99-c2b2-4be4-a6b7-97b7e2ff6d2c",
		}).Error("Didn't receive any response from QueueEngine for 'restApiSubmitTest'")

		testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusInternalServerError,
			restApiErrorResponseStruct{Message: "No response from the test queue"})
	}

}
