package main

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Response body for 'restApiAreYouAlive'
type areYouAliveResponseStruct struct {
	AckNack  bool   `json:"ackNack"`
	Comments string `json:"comments"`
}

// restApiAreYouAlive
// Anyone can check if the Test Probe Server is alive with this route
func (testProbeServerObject *testProbeServerObjectStruct) restApiAreYouAlive(
	responseWriter http.ResponseWriter,
	httpRequest *http.Request) {

	testProbeServerObject.logger.WithFields(logrus.Fields{
		"id": "a47ac1cb-11a5-43ee-82b9-7e5b58e55ce1",
	}).Debug("Incoming REST-Api 'restApiAreYouAlive'")

	defer testProbeServerObject.logger.WithFields(logrus.Fields{
		"id": "54e3a0f3-5e6d-4b4e-9c5f-87ef9e14e3f3",
	}).Debug("Outgoing REST-Api 'restApiAreYouAlive'")

	testProbeServerObject.writeRestApiResponse(responseWriter, http.StatusOK,
		areYouAliveResponseStruct{AckNack: true, Comments: "I'am alive."})

}
