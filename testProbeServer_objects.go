package main

import (
	"TestProbeServer/testQueueEngine"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type testProbeServerObjectStruct struct {
	logger *logrus.Logger

	// The QueueEngine that owns the TestExecution registry and the execution slot
	queueEngine *testQueueEngine.TestQueueEngineObjectStruct

	// REST-Api server towards the Submission Gateway
	restApiRouter *mux.Router
	restApiServer *http.Server
}

// Variable holding everything together
var testProbeServerObject *testProbeServerObjectStruct
