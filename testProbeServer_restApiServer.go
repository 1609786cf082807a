package main

import (
	"TestProbeServer/common_config"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// startRestApiServer
// Set up the routes for the REST-Api towards the Submission Gateway and start serving them
func (testProbeServerObject *testProbeServerObjectStruct) startRestApiServer() {

	testProbeServerObject.restApiRouter = mux.NewRouter()

	testProbeServerObject.restApiRouter.HandleFunc("/testProbe/areYouAlive",
		testProbeServerObject.restApiAreYouAlive).Methods(http.MethodGet)

	testProbeServerObject.restApiRouter.HandleFunc("/testProbe/submit",
		testProbeServerObject.restApiSubmitTest).Methods(http.MethodPost)

	testProbeServerObject.restApiRouter.HandleFunc("/testProbe/start/{testUuid}",
		testProbeServerObject.restApiStartTest).Methods(http.MethodPost)

	testProbeServerObject.restApiRouter.HandleFunc("/testProbe/status/{testUuid}",
		testProbeServerObject.restApiGetTestStatus).Methods(http.MethodGet)

	testProbeServerObject.restApiRouter.HandleFunc("/testProbe/queueStatus",
		testProbeServerObject.restApiGetQueueStatus).Methods(http.MethodGet)

	testProbeServerObject.restApiRouter.HandleFunc("/testProbe/cancel/{testUuid}",
		testProbeServerObject.restApiCancelTest).Methods(http.MethodPost)

	var restApiAddress string
	restApiAddress = ":" + strconv.Itoa(common_config.TestProbeServerPort)

	testProbeServerObject.restApiServer = &http.Server{
		Addr:    restApiAddress,
		Handler: testProbeServerObject.restApiRouter,
	}

	go func() {

		testProbeServerObject.logger.WithFields(logrus.Fields{
			"id":             "1e8fddab-58e8-4b8f-9be6-8ea687a0eaa4",
			"restApiAddress": restApiAddress,
		}).Info("REST-Api server is starting to serve")

		err := testProbeServerObject.restApiServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {

			testProbeServerObject.logger.WithFields(logrus.Fields{
				"id":  "5a5cf0c4-83b7-41f0-b63f-4fd07a3c60a7",
				"err": err,
			}).Fatalln("REST-Api server couldn't serve")
		}
	}()

}

// Write one response structure as json back to the REST-Api caller
func (testProbeServerObject *testProbeServerObjectStruct) writeRestApiResponse(
	responseWriter http.ResponseWriter,
	httpStatusCode int,
	responseStructure interface{}) {

	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(httpStatusCode)

	err := json.NewEncoder(responseWriter).Encode(responseStructure)
	if err != nil {
		testProbeServerObject.logger.WithFields(logrus.Fields{
			"id":  "9c6db7ee-b0f6-4b64-86aa-0c9cf847f1ad",
			"err": err,
		}).Error("Couldn't encode REST-Api response into json")
	}

}

// Error body used by the REST-Api when a request can't be served
type restApiErrorResponseStruct struct {
	Message string `json:"message"`
}
