package main

import (
	"TestProbeServer/common_config"
	"TestProbeServer/testQueueEngine"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// restApiGetQueueStatus
// Report the aggregated status over all live TestExecutions in the queue
func (testProbeServerObject *testProbeServerObjectStruct) restApiGetQueueStatus(
	responseWriter http.ResponseWriter,
	httpRequest *http.Request) {

	testProbeServerObject.logger.WithFields(logrus.Fields{
		"id": "0fd5fa5e-07d9-4f24-b8a3-b6e313f33a0f",
	}).Debug("Incoming REST-Api 'restApiGetQueueStatus'")

	defer testProbeServerObject.logger.WithFields(logrus.Fields{
		"id": "d4b71f2d-bc19-4a1e-bb28-cfc08cd607be",
	}).Debug("Outgoing REST-Api 'restApiGetQueueStatus'")

	var queueStatusResponseChannel common_config.QueueStatusResponseChannelType
	queueStatusResponseChannel = make(chan common_config.QueueStatusResponseStruct, 1)

	channelCommand := testQueueEngine.ChannelCommandStruct{
		ChannelCommand:                      testQueueEngine.ChannelCommandGetQueueStatus,
		QueueStatusResponseChannelReference: &queueStatusResponseChannel,
	}

	*testProbeServerObject.queueEngine.CommandChannelReference <- channelCommand

	select {

	case queueStatusResponse := <-queueStatusResponseChannel:
		testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusOK, queueStatusResponse)

	case <-time.After(common_config.RestApiResponseTimeOutDuration):

		testProbeServerObject.logger.WithFields(logrus.Fields{
			"id": "2e7ab6a0-f0cc-44fe-97e9-d3e4ad7f937f",
		}).Error("Didn't receive any response from QueueEngine for 'restApiGetQueueStatus'")

		testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusInternalServerError,
			restApiErrorResponseStruct{Message: "No response from the test queue"})
	}

}
