package main

import (
	"TestProbeServer/common_config"
	"TestProbeServer/statusBroadcastEngine"
	"TestProbeServer/testProbeWorkers"
	"TestProbeServer/testQueueEngine"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

func cleanup() {

	// Stop receiving new REST-Api requests and let in-flight requests finish
	if testProbeServerObject.restApiServer != nil {

		restApiShutdownContext, cancelRestApiShutdownContext := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelRestApiShutdownContext()

		err := testProbeServerObject.restApiServer.Shutdown(restApiShutdownContext)
		if err != nil {
			testProbeServerObject.logger.WithFields(logrus.Fields{
				"id":  "a26f8e0c-5702-4a40-a2a6-0a2eaa5b347b",
				"err": err,
			}).Error("Couldn't shut down REST-Api server in a graceful way")
		}
	}

	testProbeServerObject.logger.WithFields(logrus.Fields{
		"id": "e8b8cf65-42bc-4c0f-b3ba-1a79a40ef9e2",
	}).Info("Test Probe Server is shutting down")

}

func testProbeServerMain() {

	// Set up TestProbeServerObject
	testProbeServerObject = &testProbeServerObjectStruct{}

	// Init logger
	testProbeServerObject.InitLogger("")

	// Clean up when leaving. Is placed after logger because shutdown logs
	defer cleanup()

	// Share the Logger with all parts of the application
	common_config.Logger = testProbeServerObject.logger

	// Load AWS-config used by the Block Storage- and Vault-clients
	awsConfiguration, err := awsConfig.LoadDefaultConfig(context.Background())
	if err != nil {
		testProbeServerObject.logger.WithFields(logrus.Fields{
			"id":  "8d7e9a14-a3c6-4e60-8dfe-2b0e12b84c55",
			"err": err,
		}).Fatalln("Couldn't load AWS-configuration")
	}

	// Create the clients that the workers delegate their blocking I/O to
	var s3Client *s3.Client
	s3Client = s3.NewFromConfig(awsConfiguration)

	var lambdaClient *lambda.Client
	lambdaClient = lambda.NewFromConfig(awsConfiguration)

	pubSubClient, err := newPubSubClient(context.Background())
	if err != nil {
		testProbeServerObject.logger.WithFields(logrus.Fields{
			"id":  "12b3fd0b-8be1-45c2-95a0-0d2d2a8a6d40",
			"err": err,
		}).Fatalln("Couldn't create PubSub-client for the broker workers")
	}
	defer pubSubClient.Close()

	// The WorkerSpawner that spawns the five workers for each TestExecution
	var workerSpawner *testProbeWorkers.WorkerSpawnerStruct
	workerSpawner = &testProbeWorkers.WorkerSpawnerStruct{
		BlockStorageClient:   testProbeWorkers.NewS3BlockStorageClient(s3Client),
		VaultClient:          testProbeWorkers.NewLambdaVaultClient(lambdaClient),
		ScenarioSuiteRunner:  testProbeWorkers.NewGodogScenarioSuiteRunner(),
		ProducerBrokerClient: testProbeWorkers.NewPubSubProducerBrokerClient(pubSubClient),
		ConsumerBrokerClient: testProbeWorkers.NewPubSubConsumerBrokerClient(pubSubClient),
	}

	// Start Status Broadcast Engine, if it should be used
	if common_config.UseStatusBroadcastingForExecutionStatusUpdates == true {
		go statusBroadcastEngine.InitiateAndStartStatusBroadcastEngine()
	}

	// Start the QueueEngine that owns the TestExecution registry and the execution slot
	testProbeServerObject.queueEngine = testQueueEngine.InitiateTestQueueEngine(workerSpawner)

	// Start the REST-Api towards the Submission Gateway
	testProbeServerObject.startRestApiServer()

	// Wait for 'ctrl c' or SIGTERM to exit
	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)

	receivedSignal := <-signalChannel

	testProbeServerObject.logger.WithFields(logrus.Fields{
		"id":             "0b7f8e42-6ec1-4405-ba08-4ad4e282d16b",
		"receivedSignal": receivedSignal.String(),
	}).Info("Received signal to exit")

}
