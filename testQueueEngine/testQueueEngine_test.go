package testQueueEngine

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testResponseTimeOut = 2 * time.Second

func TestMain(m *testing.M) {

	common_config.Logger = logrus.New()
	common_config.Logger.Out = io.Discard

	common_config.SetupStateTimeOutDuration = time.Hour
	common_config.LoadingStateTimeOutDuration = time.Hour
	common_config.CompletedStateTimeOutDuration = time.Hour
	common_config.ExceptionStateTimeOutDuration = time.Hour
	common_config.StoppedTestsRetentionDuration = time.Hour

	os.Exit(m.Run())
}

// autoWorkerSpawnerStruct plays the role of all five workers for every spawned
// TestExecution. The loading cascade is answered automatically, while the scenario run is
// held open until the test releases it, so the tests control when the execution slot frees up
type autoWorkerSpawnerStruct struct {
	mutexForReleaseChannels sync.Mutex
	releaseChannels         map[string]chan bool
}

func newAutoWorkerSpawner() *autoWorkerSpawnerStruct {
	return &autoWorkerSpawnerStruct{
		releaseChannels: make(map[string]chan bool),
	}
}

// Let the scenario run for one TestExecution finish
func (autoWorkerSpawner *autoWorkerSpawnerStruct) finishScenarioRun(testUuid string) {

	autoWorkerSpawner.mutexForReleaseChannels.Lock()
	releaseChannel := autoWorkerSpawner.releaseChannels[testUuid]
	autoWorkerSpawner.mutexForReleaseChannels.Unlock()

	releaseChannel <- true
}

func (autoWorkerSpawner *autoWorkerSpawnerStruct) SpawnWorkersForTestExecution(
	testUuid string,
	workerEventChannel workerProtocol.WorkerEventChannelType) (workerCommandChannels workerProtocol.WorkerCommandChannelsStruct) {

	workerCommandChannels = workerProtocol.WorkerCommandChannelsStruct{
		BlockStorageWorkerCommandChannel:   make(chan workerProtocol.BlockStorageWorkerCommandStruct, common_config.EngineCommandChannelSize),
		VaultWorkerCommandChannel:          make(chan workerProtocol.VaultWorkerCommandStruct, common_config.EngineCommandChannelSize),
		ScenarioRunnerWorkerCommandChannel: make(chan workerProtocol.ScenarioRunnerWorkerCommandStruct, common_config.EngineCommandChannelSize),
		ProducerWorkerCommandChannel:       make(chan workerProtocol.ProducerWorkerCommandStruct, common_config.EngineCommandChannelSize),
		ConsumerWorkerCommandChannel:       make(chan workerProtocol.ConsumerWorkerCommandStruct, common_config.EngineCommandChannelSize),
	}

	var releaseChannel chan bool
	releaseChannel = make(chan bool, 1)

	autoWorkerSpawner.mutexForReleaseChannels.Lock()
	autoWorkerSpawner.releaseChannels[testUuid] = releaseChannel
	autoWorkerSpawner.mutexForReleaseChannels.Unlock()

	go func() {
		for {
			select {

			case blockStorageCommand := <-workerCommandChannels.BlockStorageWorkerCommandChannel:

				switch blockStorageCommand.WorkerCommand {

				case workerProtocol.BlockStorageWorkerCommandInitialize:
					workerEventChannel <- workerProtocol.WorkerEventStruct{
						WorkerEvent: workerProtocol.WorkerEventBlockStorageFetched,
						TestUuid:    testUuid,
						WorkerKind:  workerProtocol.WorkerKindBlockStorage,
						TestDirective: &workerProtocol.TestDirectiveStruct{
							Bucket:       blockStorageCommand.Bucket,
							FeaturePath:  "features/",
							BrokerTopics: []string{"orders-topic"},
						},
					}
					workerEventChannel <- workerProtocol.WorkerEventStruct{
						WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
						TestUuid:    testUuid,
						WorkerKind:  workerProtocol.WorkerKindBlockStorage,
					}

				case workerProtocol.BlockStorageWorkerCommandLoadToBlockStorage:
					workerEventChannel <- workerProtocol.WorkerEventStruct{
						WorkerEvent: workerProtocol.WorkerEventUploadCompleted,
						TestUuid:    testUuid,
						WorkerKind:  workerProtocol.WorkerKindBlockStorage,
					}

				case workerProtocol.BlockStorageWorkerCommandStop:
					return
				}

			case vaultCommand := <-workerCommandChannels.VaultWorkerCommandChannel:

				switch vaultCommand.WorkerCommand {

				case workerProtocol.VaultWorkerCommandInitialize:
					workerEventChannel <- workerProtocol.WorkerEventStruct{
						WorkerEvent: workerProtocol.WorkerEventSecurityFetched,
						TestUuid:    testUuid,
						WorkerKind:  workerProtocol.WorkerKindVault,
						SecurityDirectives: []workerProtocol.SecurityDirectiveStruct{
							{BrokerTopic: "orders-topic", SecurityProtocol: "SASL_SSL"},
						},
					}
					workerEventChannel <- workerProtocol.WorkerEventStruct{
						WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
						TestUuid:    testUuid,
						WorkerKind:  workerProtocol.WorkerKindVault,
					}

				case workerProtocol.VaultWorkerCommandStop:
					return
				}

			case scenarioRunnerCommand := <-workerCommandChannels.ScenarioRunnerWorkerCommandChannel:

				switch scenarioRunnerCommand.WorkerCommand {

				case workerProtocol.ScenarioRunnerWorkerCommandInitialize:
					workerEventChannel <- workerProtocol.WorkerEventStruct{
						WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
						TestUuid:    testUuid,
						WorkerKind:  workerProtocol.WorkerKindScenarioRunner,
					}

				case workerProtocol.ScenarioRunnerWorkerCommandStartTest:
					// The scenario run is held open until the test releases it
					go func() {
						<-releaseChannel
						workerEventChannel <- workerProtocol.WorkerEventStruct{
							WorkerEvent: workerProtocol.WorkerEventTestCompleted,
							TestUuid:    testUuid,
							WorkerKind:  workerProtocol.WorkerKindScenarioRunner,
							TestResult: &workerProtocol.TestResultStruct{
								TestUuid:       testUuid,
								SuiteSucceeded: true,
							},
						}
					}()

				case workerProtocol.ScenarioRunnerWorkerCommandStop:
					return
				}

			case producerCommand := <-workerCommandChannels.ProducerWorkerCommandChannel:

				switch producerCommand.WorkerCommand {

				case workerProtocol.ProducerWorkerCommandInitialize:
					workerEventChannel <- workerProtocol.WorkerEventStruct{
						WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
						TestUuid:    testUuid,
						WorkerKind:  workerProtocol.WorkerKindProducer,
					}

				case workerProtocol.ProducerWorkerCommandStop:
					return
				}

			case consumerCommand := <-workerCommandChannels.ConsumerWorkerCommandChannel:

				switch consumerCommand.WorkerCommand {

				case workerProtocol.ConsumerWorkerCommandInitialize:
					workerEventChannel <- workerProtocol.WorkerEventStruct{
						WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
						TestUuid:    testUuid,
						WorkerKind:  workerProtocol.WorkerKindConsumer,
					}

				case workerProtocol.ConsumerWorkerCommandStop:
					return
				}
			}
		}
	}()

	return workerCommandChannels
}

func submitTest(t *testing.T, testQueueEngineObject *TestQueueEngineObjectStruct) string {

	t.Helper()

	var submitTestResponseChannel common_config.SubmitTestResponseChannelType
	submitTestResponseChannel = make(chan common_config.SubmitTestResponseStruct, 1)

	*testQueueEngineObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:                     ChannelCommandSubmitTest,
		SubmitTestResponseChannelReference: &submitTestResponseChannel,
	}

	select {
	case submitTestResponse := <-submitTestResponseChannel:
		require.NotEmpty(t, submitTestResponse.TestUuid)
		require.Equal(t, "Test was submitted and is in state 'Setup'", submitTestResponse.Message)
		return submitTestResponse.TestUuid

	case <-time.After(testResponseTimeOut):
		t.Fatal("Didn't receive any Submit-response within the time limit")
		return ""
	}
}

func startTest(t *testing.T, testQueueEngineObject *TestQueueEngineObjectStruct, testUuid string) {

	t.Helper()

	var startTestResponseChannel common_config.StartTestResponseChannelType
	startTestResponseChannel = make(chan common_config.StartTestResponseStruct, 1)

	*testQueueEngineObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:                    ChannelCommandStartTest,
		TestUuid:                          testUuid,
		Bucket:                            "test-bucket-1",
		TestType:                          "smoke",
		StartTestResponseChannelReference: &startTestResponseChannel,
	}

	select {
	case startTestResponse := <-startTestResponseChannel:
		require.True(t, startTestResponse.TestWasAccepted)

	case <-time.After(testResponseTimeOut):
		t.Fatal("Didn't receive any StartTest-response within the time limit")
	}
}

func getQueueStatus(t *testing.T, testQueueEngineObject *TestQueueEngineObjectStruct) common_config.QueueStatusResponseStruct {

	t.Helper()

	var queueStatusResponseChannel common_config.QueueStatusResponseChannelType
	queueStatusResponseChannel = make(chan common_config.QueueStatusResponseStruct, 1)

	*testQueueEngineObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:                      ChannelCommandGetQueueStatus,
		QueueStatusResponseChannelReference: &queueStatusResponseChannel,
	}

	select {
	case queueStatusResponse := <-queueStatusResponseChannel:
		return queueStatusResponse

	case <-time.After(testResponseTimeOut):
		t.Fatal("Didn't receive any QueueStatus-response within the time limit")
		return common_config.QueueStatusResponseStruct{}
	}
}

// Poll the queue status until the condition holds
func awaitQueueStatus(
	t *testing.T,
	testQueueEngineObject *TestQueueEngineObjectStruct,
	description string,
	condition func(queueStatusResponse common_config.QueueStatusResponseStruct) bool) {

	t.Helper()

	require.Eventually(t, func() bool {
		return condition(getQueueStatus(t, testQueueEngineObject))
	}, testResponseTimeOut, 10*time.Millisecond, description)
}

func TestSubmitCreatesTestExecutionInSetup(t *testing.T) {

	testQueueEngineObject := InitiateTestQueueEngine(newAutoWorkerSpawner())

	testUuid := submitTest(t, testQueueEngineObject)
	assert.NotEmpty(t, testUuid)

	awaitQueueStatus(t, testQueueEngineObject, "one TestExecution in state 'Setup'",
		func(queueStatusResponse common_config.QueueStatusResponseStruct) bool {
			return queueStatusResponse.TotalTests == 1 &&
				queueStatusResponse.SetupCount == 1 &&
				queueStatusResponse.CurrentlyTesting == ""
		})
}

func TestStartForUnknownTestUuidIsSilentlyDropped(t *testing.T) {

	testQueueEngineObject := InitiateTestQueueEngine(newAutoWorkerSpawner())

	var startTestResponseChannel common_config.StartTestResponseChannelType
	startTestResponseChannel = make(chan common_config.StartTestResponseStruct, 1)

	*testQueueEngineObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:                    ChannelCommandStartTest,
		TestUuid:                          "this-test-uuid-does-not-exist",
		Bucket:                            "test-bucket-1",
		StartTestResponseChannelReference: &startTestResponseChannel,
	}

	select {
	case <-startTestResponseChannel:
		t.Fatal("StartTest for an unknown TestUuid must not be answered")
	case <-time.After(200 * time.Millisecond):
	}

	// The engine is still alive and untouched
	queueStatusResponse := getQueueStatus(t, testQueueEngineObject)
	assert.Equal(t, 0, queueStatusResponse.TotalTests)
}

func TestCancelForUnknownTestUuidIsSilentlyDropped(t *testing.T) {

	testQueueEngineObject := InitiateTestQueueEngine(newAutoWorkerSpawner())

	var cancelTestResponseChannel common_config.CancelTestResponseChannelType
	cancelTestResponseChannel = make(chan common_config.CancelTestResponseStruct, 1)

	*testQueueEngineObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:                     ChannelCommandCancelTest,
		TestUuid:                           "this-test-uuid-does-not-exist",
		CancelTestResponseChannelReference: &cancelTestResponseChannel,
	}

	select {
	case <-cancelTestResponseChannel:
		t.Fatal("CancelTest for an unknown TestUuid must not be answered")
	case <-time.After(200 * time.Millisecond):
	}

	queueStatusResponse := getQueueStatus(t, testQueueEngineObject)
	assert.Equal(t, 0, queueStatusResponse.TotalTests)
}

func TestSingleConcurrencyWithFifoPromotion(t *testing.T) {

	autoWorkerSpawner := newAutoWorkerSpawner()
	testQueueEngineObject := InitiateTestQueueEngine(autoWorkerSpawner)

	firstTestUuid := submitTest(t, testQueueEngineObject)
	secondTestUuid := submitTest(t, testQueueEngineObject)

	// Start the first TestExecution and let it claim the execution slot
	startTest(t, testQueueEngineObject, firstTestUuid)

	awaitQueueStatus(t, testQueueEngineObject, "first TestExecution is testing",
		func(queueStatusResponse common_config.QueueStatusResponseStruct) bool {
			return queueStatusResponse.CurrentlyTesting == firstTestUuid &&
				queueStatusResponse.TestingCount == 1
		})

	// Start the second TestExecution. It loads fully but must wait for the slot
	startTest(t, testQueueEngineObject, secondTestUuid)

	awaitQueueStatus(t, testQueueEngineObject, "second TestExecution is loaded and waiting",
		func(queueStatusResponse common_config.QueueStatusResponseStruct) bool {
			return queueStatusResponse.LoadedCount == 1 &&
				queueStatusResponse.TestingCount == 1 &&
				queueStatusResponse.CurrentlyTesting == firstTestUuid
		})

	// Never more than one TestExecution in state 'Testing'
	queueStatusResponse := getQueueStatus(t, testQueueEngineObject)
	assert.LessOrEqual(t, queueStatusResponse.TestingCount, 1)

	// Let the first scenario run finish, which frees the slot and promotes the second
	autoWorkerSpawner.finishScenarioRun(firstTestUuid)

	awaitQueueStatus(t, testQueueEngineObject, "second TestExecution was promoted",
		func(queueStatusResponse common_config.QueueStatusResponseStruct) bool {
			return queueStatusResponse.CurrentlyTesting == secondTestUuid &&
				queueStatusResponse.CompletedCount == 1
		})

	autoWorkerSpawner.finishScenarioRun(secondTestUuid)

	awaitQueueStatus(t, testQueueEngineObject, "both TestExecutions completed",
		func(queueStatusResponse common_config.QueueStatusResponseStruct) bool {
			return queueStatusResponse.CompletedCount == 2 &&
				queueStatusResponse.CurrentlyTesting == ""
		})
}

func TestCancelledLoadedTestIsSkippedByPromotion(t *testing.T) {

	autoWorkerSpawner := newAutoWorkerSpawner()
	testQueueEngineObject := InitiateTestQueueEngine(autoWorkerSpawner)

	firstTestUuid := submitTest(t, testQueueEngineObject)
	secondTestUuid := submitTest(t, testQueueEngineObject)
	thirdTestUuid := submitTest(t, testQueueEngineObject)

	// The first TestExecution claims the execution slot, the second and third line up behind it
	startTest(t, testQueueEngineObject, firstTestUuid)

	awaitQueueStatus(t, testQueueEngineObject, "first TestExecution is testing",
		func(queueStatusResponse common_config.QueueStatusResponseStruct) bool {
			return queueStatusResponse.CurrentlyTesting == firstTestUuid
		})

	startTest(t, testQueueEngineObject, secondTestUuid)
	startTest(t, testQueueEngineObject, thirdTestUuid)

	awaitQueueStatus(t, testQueueEngineObject, "second and third TestExecutions are loaded",
		func(queueStatusResponse common_config.QueueStatusResponseStruct) bool {
			return queueStatusResponse.LoadedCount == 2
		})

	// Cancel the second, still loaded, TestExecution
	var cancelTestResponseChannel common_config.CancelTestResponseChannelType
	cancelTestResponseChannel = make(chan common_config.CancelTestResponseStruct, 1)

	*testQueueEngineObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:                     ChannelCommandCancelTest,
		TestUuid:                           secondTestUuid,
		CancelTestResponseChannelReference: &cancelTestResponseChannel,
	}

	select {
	case cancelTestResponse := <-cancelTestResponseChannel:
		require.True(t, cancelTestResponse.TestWasCancelled)
		require.Equal(t, "Test was cancelled", cancelTestResponse.Message)

	case <-time.After(testResponseTimeOut):
		t.Fatal("Didn't receive any CancelTest-response within the time limit")
	}

	// The cancelled TestExecution leaves the registry
	awaitQueueStatus(t, testQueueEngineObject, "cancelled TestExecution was removed",
		func(queueStatusResponse common_config.QueueStatusResponseStruct) bool {
			return queueStatusResponse.TotalTests == 2
		})

	// Free the slot. The promotion must skip the cancelled TestExecution and pick the third
	autoWorkerSpawner.finishScenarioRun(firstTestUuid)

	awaitQueueStatus(t, testQueueEngineObject, "third TestExecution was promoted",
		func(queueStatusResponse common_config.QueueStatusResponseStruct) bool {
			return queueStatusResponse.CurrentlyTesting == thirdTestUuid
		})
}

func TestGetTestStatusIsForwardedToUnit(t *testing.T) {

	testQueueEngineObject := InitiateTestQueueEngine(newAutoWorkerSpawner())

	testUuid := submitTest(t, testQueueEngineObject)

	var testStatusResponseChannel common_config.TestStatusResponseChannelType
	testStatusResponseChannel = make(chan common_config.TestStatusResponseStruct, 1)

	*testQueueEngineObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:                     ChannelCommandGetTestStatus,
		TestUuid:                           testUuid,
		TestStatusResponseChannelReference: &testStatusResponseChannel,
	}

	select {
	case testStatusResponse := <-testStatusResponseChannel:
		assert.Equal(t, testUuid, testStatusResponse.TestUuid)
		assert.Equal(t, "Setup", testStatusResponse.TestExecutionState)

	case <-time.After(testResponseTimeOut):
		t.Fatal("Didn't receive any TestStatus-response within the time limit")
	}
}
