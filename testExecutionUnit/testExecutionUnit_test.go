package testExecutionUnit

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"errors"
	"io"
	"os"
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

	// Long enough to never fire during a test, unless a test shortens them on purpose
	common_config.SetupStateTimeOutDuration = time.Hour
	common_config.LoadingStateTimeOutDuration = time.Hour
	common_config.CompletedStateTimeOutDuration = time.Hour
	common_config.ExceptionStateTimeOutDuration = time.Hour

	os.Exit(m.Run())
}

// fakeWorkerSpawnerStruct stands in for the real WorkerSpawner. It hands out buffered command
// channels that the tests inspect and exposes the Unit's worker event channel so the tests
// can play the role of the five workers
type fakeWorkerSpawnerStruct struct {
	numberOfSpawnCalls int

	// The worker event channel is captured on the Unit's own goroutine, so it is handed over
	// via a channel to avoid sharing
	capturedWorkerEventChannel chan workerProtocol.WorkerEventChannelType

	blockStorageWorkerCommandChannel   workerProtocol.BlockStorageWorkerCommandChannelType
	vaultWorkerCommandChannel          workerProtocol.VaultWorkerCommandChannelType
	scenarioRunnerWorkerCommandChannel workerProtocol.ScenarioRunnerWorkerCommandChannelType
	producerWorkerCommandChannel       workerProtocol.ProducerWorkerCommandChannelType
	consumerWorkerCommandChannel       workerProtocol.ConsumerWorkerCommandChannelType
}

func newFakeWorkerSpawner() *fakeWorkerSpawnerStruct {
	return &fakeWorkerSpawnerStruct{
		capturedWorkerEventChannel:         make(chan workerProtocol.WorkerEventChannelType, 1),
		blockStorageWorkerCommandChannel:   make(chan workerProtocol.BlockStorageWorkerCommandStruct, common_config.EngineCommandChannelSize),
		vaultWorkerCommandChannel:          make(chan workerProtocol.VaultWorkerCommandStruct, common_config.EngineCommandChannelSize),
		scenarioRunnerWorkerCommandChannel: make(chan workerProtocol.ScenarioRunnerWorkerCommandStruct, common_config.EngineCommandChannelSize),
		producerWorkerCommandChannel:       make(chan workerProtocol.ProducerWorkerCommandStruct, common_config.EngineCommandChannelSize),
		consumerWorkerCommandChannel:       make(chan workerProtocol.ConsumerWorkerCommandStruct, common_config.EngineCommandChannelSize),
	}
}

func (fakeWorkerSpawner *fakeWorkerSpawnerStruct) SpawnWorkersForTestExecution(
	testUuid string,
	workerEventChannel workerProtocol.WorkerEventChannelType) (workerCommandChannels workerProtocol.WorkerCommandChannelsStruct) {

	fakeWorkerSpawner.numberOfSpawnCalls = fakeWorkerSpawner.numberOfSpawnCalls + 1
	fakeWorkerSpawner.capturedWorkerEventChannel <- workerEventChannel

	return workerProtocol.WorkerCommandChannelsStruct{
		BlockStorageWorkerCommandChannel:   fakeWorkerSpawner.blockStorageWorkerCommandChannel,
		VaultWorkerCommandChannel:          fakeWorkerSpawner.vaultWorkerCommandChannel,
		ScenarioRunnerWorkerCommandChannel: fakeWorkerSpawner.scenarioRunnerWorkerCommandChannel,
		ProducerWorkerCommandChannel:       fakeWorkerSpawner.producerWorkerCommandChannel,
		ConsumerWorkerCommandChannel:       fakeWorkerSpawner.consumerWorkerCommandChannel,
	}
}

// Create one Unit together with its fake spawner and a lifecycle channel, and consume the
// initial 'Initialized' lifecycle event
func initiateUnitForTest(t *testing.T, testUuid string) (
	testExecutionUnitObject *TestExecutionUnitObjectStruct,
	lifecycleEventChannel common_config.TestLifecycleEventChannelType,
	fakeWorkerSpawner *fakeWorkerSpawnerStruct) {

	t.Helper()

	lifecycleEventChannel = make(chan common_config.TestLifecycleEventStruct, common_config.EngineCommandChannelSize)
	fakeWorkerSpawner = newFakeWorkerSpawner()

	testExecutionUnitObject = InitiateTestExecutionUnit(testUuid, &lifecycleEventChannel, fakeWorkerSpawner)

	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventInitialized)

	return testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner
}

func awaitLifecycleEvent(
	t *testing.T,
	lifecycleEventChannel common_config.TestLifecycleEventChannelType,
	expectedLifecycleEvent common_config.TestLifecycleEventType) common_config.TestLifecycleEventStruct {

	t.Helper()

	select {
	case lifecycleEvent := <-lifecycleEventChannel:
		require.Equal(t, expectedLifecycleEvent, lifecycleEvent.LifecycleEvent)
		return lifecycleEvent

	case <-time.After(testResponseTimeOut):
		t.Fatal("Didn't receive any lifecycle event within the time limit")
		return common_config.TestLifecycleEventStruct{}
	}
}

func sendStartTest(
	t *testing.T,
	testExecutionUnitObject *TestExecutionUnitObjectStruct,
	bucket string,
	testType string) common_config.StartTestResponseStruct {

	t.Helper()

	var startTestResponseChannel common_config.StartTestResponseChannelType
	startTestResponseChannel = make(chan common_config.StartTestResponseStruct, 1)

	*testExecutionUnitObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:                    ChannelCommandStartTest,
		Bucket:                            bucket,
		TestType:                          testType,
		StartTestResponseChannelReference: &startTestResponseChannel,
	}

	select {
	case startTestResponse := <-startTestResponseChannel:
		return startTestResponse

	case <-time.After(testResponseTimeOut):
		t.Fatal("Didn't receive any StartTest-response within the time limit")
		return common_config.StartTestResponseStruct{}
	}
}

func getTestStatus(
	t *testing.T,
	testExecutionUnitObject *TestExecutionUnitObjectStruct) common_config.TestStatusResponseStruct {

	t.Helper()

	var testStatusResponseChannel common_config.TestStatusResponseChannelType
	testStatusResponseChannel = make(chan common_config.TestStatusResponseStruct, 1)

	*testExecutionUnitObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:                     ChannelCommandGetTestStatus,
		TestStatusResponseChannelReference: &testStatusResponseChannel,
	}

	select {
	case testStatusResponse := <-testStatusResponseChannel:
		return testStatusResponse

	case <-time.After(testResponseTimeOut):
		t.Fatal("Didn't receive any TestStatus-response within the time limit")
		return common_config.TestStatusResponseStruct{}
	}
}

func sendCancelTest(
	t *testing.T,
	testExecutionUnitObject *TestExecutionUnitObjectStruct) common_config.CancelTestResponseStruct {

	t.Helper()

	var cancelTestResponseChannel common_config.CancelTestResponseChannelType
	cancelTestResponseChannel = make(chan common_config.CancelTestResponseStruct, 1)

	*testExecutionUnitObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:                     ChannelCommandCancelTest,
		CancelTestResponseChannelReference: &cancelTestResponseChannel,
	}

	select {
	case cancelTestResponse := <-cancelTestResponseChannel:
		return cancelTestResponse

	case <-time.After(testResponseTimeOut):
		t.Fatal("Didn't receive any CancelTest-response within the time limit")
		return common_config.CancelTestResponseStruct{}
	}
}

// Drive one Unit from 'Setup' through the full loading cascade into state 'Loaded', playing
// the role of all five workers
func driveUnitToLoaded(
	t *testing.T,
	testExecutionUnitObject *TestExecutionUnitObjectStruct,
	lifecycleEventChannel common_config.TestLifecycleEventChannelType,
	fakeWorkerSpawner *fakeWorkerSpawnerStruct) (workerEventChannel workerProtocol.WorkerEventChannelType) {

	t.Helper()

	startTestResponse := sendStartTest(t, testExecutionUnitObject, "test-bucket-1", "smoke")
	require.True(t, startTestResponse.TestWasAccepted)

	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventLoading)

	select {
	case workerEventChannel = <-fakeWorkerSpawner.capturedWorkerEventChannel:
	case <-time.After(testResponseTimeOut):
		t.Fatal("Workers were never spawned")
	}

	// Cascade step one, the BlockStorageWorker receives Initialize and answers with the
	// fetched TestDirective
	blockStorageCommand := <-fakeWorkerSpawner.blockStorageWorkerCommandChannel
	require.Equal(t, workerProtocol.BlockStorageWorkerCommandInitialize, blockStorageCommand.WorkerCommand)
	require.Equal(t, "test-bucket-1", blockStorageCommand.Bucket)

	testDirective := &workerProtocol.TestDirectiveStruct{
		Bucket:       "test-bucket-1",
		FeaturePath:  "features/",
		BrokerTopics: []string{"orders-topic"},
	}

	workerEventChannel <- workerProtocol.WorkerEventStruct{
		WorkerEvent:   workerProtocol.WorkerEventBlockStorageFetched,
		TestUuid:      testExecutionUnitObject.TestUuid,
		WorkerKind:    workerProtocol.WorkerKindBlockStorage,
		TestDirective: testDirective,
	}

	// Cascade step two, the VaultWorker receives Initialize with the TestDirective and
	// answers with the SecurityDirectives
	vaultCommand := <-fakeWorkerSpawner.vaultWorkerCommandChannel
	require.Equal(t, workerProtocol.VaultWorkerCommandInitialize, vaultCommand.WorkerCommand)
	require.Equal(t, testDirective, vaultCommand.TestDirective)

	securityDirectives := []workerProtocol.SecurityDirectiveStruct{
		{BrokerTopic: "orders-topic", SecurityProtocol: "SASL_SSL"},
	}

	workerEventChannel <- workerProtocol.WorkerEventStruct{
		WorkerEvent:        workerProtocol.WorkerEventSecurityFetched,
		TestUuid:           testExecutionUnitObject.TestUuid,
		WorkerKind:         workerProtocol.WorkerKindVault,
		SecurityDirectives: securityDirectives,
	}

	// Cascade step three, the remaining three workers receive their Initialize-commands
	scenarioRunnerCommand := <-fakeWorkerSpawner.scenarioRunnerWorkerCommandChannel
	require.Equal(t, workerProtocol.ScenarioRunnerWorkerCommandInitialize, scenarioRunnerCommand.WorkerCommand)
	require.Equal(t, securityDirectives, scenarioRunnerCommand.SecurityDirectives)

	producerCommand := <-fakeWorkerSpawner.producerWorkerCommandChannel
	require.Equal(t, workerProtocol.ProducerWorkerCommandInitialize, producerCommand.WorkerCommand)

	consumerCommand := <-fakeWorkerSpawner.consumerWorkerCommandChannel
	require.Equal(t, workerProtocol.ConsumerWorkerCommandInitialize, consumerCommand.WorkerCommand)

	// All five workers acknowledge
	for _, workerKind := range []workerProtocol.WorkerKindType{
		workerProtocol.WorkerKindBlockStorage,
		workerProtocol.WorkerKindVault,
		workerProtocol.WorkerKindScenarioRunner,
		workerProtocol.WorkerKindProducer,
		workerProtocol.WorkerKindConsumer,
	} {
		workerEventChannel <- workerProtocol.WorkerEventStruct{
			WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
			TestUuid:    testExecutionUnitObject.TestUuid,
			WorkerKind:  workerKind,
		}
	}

	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventLoaded)

	return workerEventChannel
}

func TestStartTestMovesUnitIntoLoading(t *testing.T) {

	testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner := initiateUnitForTest(t, "unit-test-uuid-1")

	startTestResponse := sendStartTest(t, testExecutionUnitObject, "test-bucket-1", "smoke")

	assert.True(t, startTestResponse.TestWasAccepted)
	assert.Equal(t, "Test is loading", startTestResponse.Message)
	assert.Equal(t, "smoke", startTestResponse.TestType)

	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventLoading)

	testStatusResponse := getTestStatus(t, testExecutionUnitObject)
	assert.Equal(t, "Loading", testStatusResponse.TestExecutionState)
	assert.Equal(t, "test-bucket-1", testStatusResponse.Bucket)

	blockStorageCommand := <-fakeWorkerSpawner.blockStorageWorkerCommandChannel
	assert.Equal(t, workerProtocol.BlockStorageWorkerCommandInitialize, blockStorageCommand.WorkerCommand)
	assert.Equal(t, "test-bucket-1", blockStorageCommand.Bucket)
}

func TestSecondStartTestIsIgnored(t *testing.T) {

	testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner := initiateUnitForTest(t, "unit-test-uuid-2")

	firstStartTestResponse := sendStartTest(t, testExecutionUnitObject, "test-bucket-1", "")
	require.True(t, firstStartTestResponse.TestWasAccepted)
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventLoading)

	// A second StartTest in state 'Loading' is ignored without any response
	var startTestResponseChannel common_config.StartTestResponseChannelType
	startTestResponseChannel = make(chan common_config.StartTestResponseStruct, 1)

	*testExecutionUnitObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:                    ChannelCommandStartTest,
		Bucket:                            "another-bucket",
		StartTestResponseChannelReference: &startTestResponseChannel,
	}

	select {
	case <-startTestResponseChannel:
		t.Fatal("A second StartTest must not be answered")
	case <-time.After(200 * time.Millisecond):
	}

	// A later status query proves that the command was consumed and ignored
	testStatusResponse := getTestStatus(t, testExecutionUnitObject)
	assert.Equal(t, "Loading", testStatusResponse.TestExecutionState)
	assert.Equal(t, "test-bucket-1", testStatusResponse.Bucket)

	// Workers were only spawned once
	assert.Equal(t, 1, fakeWorkerSpawner.numberOfSpawnCalls)
}

func TestLoadedRequiresAllFiveWorkerAcknowledgements(t *testing.T) {

	testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner := initiateUnitForTest(t, "unit-test-uuid-3")

	startTestResponse := sendStartTest(t, testExecutionUnitObject, "test-bucket-1", "")
	require.True(t, startTestResponse.TestWasAccepted)
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventLoading)

	var workerEventChannel workerProtocol.WorkerEventChannelType
	select {
	case workerEventChannel = <-fakeWorkerSpawner.capturedWorkerEventChannel:
	case <-time.After(testResponseTimeOut):
		t.Fatal("Workers were never spawned")
	}

	// Four acknowledgements, including one duplicate, are not enough
	for _, workerKind := range []workerProtocol.WorkerKindType{
		workerProtocol.WorkerKindBlockStorage,
		workerProtocol.WorkerKindVault,
		workerProtocol.WorkerKindScenarioRunner,
		workerProtocol.WorkerKindProducer,
		workerProtocol.WorkerKindProducer,
	} {
		workerEventChannel <- workerProtocol.WorkerEventStruct{
			WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
			TestUuid:    testExecutionUnitObject.TestUuid,
			WorkerKind:  workerKind,
		}
	}

	testStatusResponse := getTestStatus(t, testExecutionUnitObject)
	require.Equal(t, "Loading", testStatusResponse.TestExecutionState)

	// The fifth distinct acknowledgement completes the set
	workerEventChannel <- workerProtocol.WorkerEventStruct{
		WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
		TestUuid:    testExecutionUnitObject.TestUuid,
		WorkerKind:  workerProtocol.WorkerKindConsumer,
	}

	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventLoaded)

	testStatusResponse = getTestStatus(t, testExecutionUnitObject)
	assert.Equal(t, "Loaded", testStatusResponse.TestExecutionState)
}

func TestFullTestExecutionReachesCompleted(t *testing.T) {

	testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner := initiateUnitForTest(t, "unit-test-uuid-4")

	workerEventChannel := driveUnitToLoaded(t, testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner)

	// The QueueEngine promotes the TestExecution into the execution slot
	*testExecutionUnitObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand: ChannelCommandStartTesting,
	}

	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventStarted)

	scenarioRunnerCommand := <-fakeWorkerSpawner.scenarioRunnerWorkerCommandChannel
	require.Equal(t, workerProtocol.ScenarioRunnerWorkerCommandStartTest, scenarioRunnerCommand.WorkerCommand)

	// The scenario suite run finishes, which triggers the evidence upload
	testResult := &workerProtocol.TestResultStruct{
		TestUuid:        testExecutionUnitObject.TestUuid,
		SuiteSucceeded:  true,
		ScenariosPassed: 3,
	}

	workerEventChannel <- workerProtocol.WorkerEventStruct{
		WorkerEvent: workerProtocol.WorkerEventTestCompleted,
		TestUuid:    testExecutionUnitObject.TestUuid,
		WorkerKind:  workerProtocol.WorkerKindScenarioRunner,
		TestResult:  testResult,
	}

	blockStorageCommand := <-fakeWorkerSpawner.blockStorageWorkerCommandChannel
	require.Equal(t, workerProtocol.BlockStorageWorkerCommandLoadToBlockStorage, blockStorageCommand.WorkerCommand)
	require.Equal(t, testResult, blockStorageCommand.TestResult)

	// The TestExecution is still 'Testing' until the upload is acknowledged
	testStatusResponse := getTestStatus(t, testExecutionUnitObject)
	require.Equal(t, "Testing", testStatusResponse.TestExecutionState)
	require.Nil(t, testStatusResponse.TestWasSuccessful)

	workerEventChannel <- workerProtocol.WorkerEventStruct{
		WorkerEvent: workerProtocol.WorkerEventUploadCompleted,
		TestUuid:    testExecutionUnitObject.TestUuid,
		WorkerKind:  workerProtocol.WorkerKindBlockStorage,
	}

	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventCompleted)

	testStatusResponse = getTestStatus(t, testExecutionUnitObject)
	assert.Equal(t, "Completed", testStatusResponse.TestExecutionState)
	require.NotNil(t, testStatusResponse.TestWasSuccessful)
	assert.True(t, *testStatusResponse.TestWasSuccessful)
	assert.NotEmpty(t, testStatusResponse.EndTime)
}

func TestCancelSucceedsBeforeTesting(t *testing.T) {

	testExecutionUnitObject, lifecycleEventChannel, _ := initiateUnitForTest(t, "unit-test-uuid-5")

	// Cancel in state 'Setup', before any worker exists
	cancelTestResponse := sendCancelTest(t, testExecutionUnitObject)

	assert.True(t, cancelTestResponse.TestWasCancelled)
	assert.Equal(t, "Test was cancelled", cancelTestResponse.Message)

	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventStopping)
}

func TestCancelSucceedsInLoadedAndStopsWorkers(t *testing.T) {

	testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner := initiateUnitForTest(t, "unit-test-uuid-6")

	driveUnitToLoaded(t, testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner)

	cancelTestResponse := sendCancelTest(t, testExecutionUnitObject)

	assert.True(t, cancelTestResponse.TestWasCancelled)
	assert.Equal(t, "Test was cancelled", cancelTestResponse.Message)

	// All five workers receive Stop
	blockStorageCommand := <-fakeWorkerSpawner.blockStorageWorkerCommandChannel
	assert.Equal(t, workerProtocol.BlockStorageWorkerCommandStop, blockStorageCommand.WorkerCommand)

	vaultCommand := <-fakeWorkerSpawner.vaultWorkerCommandChannel
	assert.Equal(t, workerProtocol.VaultWorkerCommandStop, vaultCommand.WorkerCommand)

	scenarioRunnerCommand := <-fakeWorkerSpawner.scenarioRunnerWorkerCommandChannel
	assert.Equal(t, workerProtocol.ScenarioRunnerWorkerCommandStop, scenarioRunnerCommand.WorkerCommand)

	producerCommand := <-fakeWorkerSpawner.producerWorkerCommandChannel
	assert.Equal(t, workerProtocol.ProducerWorkerCommandStop, producerCommand.WorkerCommand)

	consumerCommand := <-fakeWorkerSpawner.consumerWorkerCommandChannel
	assert.Equal(t, workerProtocol.ConsumerWorkerCommandStop, consumerCommand.WorkerCommand)

	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventStopping)
}

func TestCancelIsRejectedWhileTesting(t *testing.T) {

	testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner := initiateUnitForTest(t, "unit-test-uuid-7")

	driveUnitToLoaded(t, testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner)

	*testExecutionUnitObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand: ChannelCommandStartTesting,
	}
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventStarted)

	cancelTestResponse := sendCancelTest(t, testExecutionUnitObject)

	assert.False(t, cancelTestResponse.TestWasCancelled)
	assert.Equal(t, "Cannot cancel, test is currently executing", cancelTestResponse.Message)

	// Still testing
	testStatusResponse := getTestStatus(t, testExecutionUnitObject)
	assert.Equal(t, "Testing", testStatusResponse.TestExecutionState)
}

func TestCancelIsRejectedAfterCompleted(t *testing.T) {

	testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner := initiateUnitForTest(t, "unit-test-uuid-8")

	workerEventChannel := driveUnitToLoaded(t, testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner)

	*testExecutionUnitObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand: ChannelCommandStartTesting,
	}
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventStarted)

	workerEventChannel <- workerProtocol.WorkerEventStruct{
		WorkerEvent: workerProtocol.WorkerEventTestCompleted,
		TestUuid:    testExecutionUnitObject.TestUuid,
		WorkerKind:  workerProtocol.WorkerKindScenarioRunner,
		TestResult:  &workerProtocol.TestResultStruct{TestUuid: testExecutionUnitObject.TestUuid, SuiteSucceeded: true},
	}
	workerEventChannel <- workerProtocol.WorkerEventStruct{
		WorkerEvent: workerProtocol.WorkerEventUploadCompleted,
		TestUuid:    testExecutionUnitObject.TestUuid,
		WorkerKind:  workerProtocol.WorkerKindBlockStorage,
	}
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventCompleted)

	cancelTestResponse := sendCancelTest(t, testExecutionUnitObject)

	assert.False(t, cancelTestResponse.TestWasCancelled)
	assert.Equal(t, "Test already completed, cannot cancel", cancelTestResponse.Message)
}

func TestCancelIsRejectedInExceptionState(t *testing.T) {

	testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner := initiateUnitForTest(t, "unit-test-uuid-9")

	startTestResponse := sendStartTest(t, testExecutionUnitObject, "test-bucket-1", "")
	require.True(t, startTestResponse.TestWasAccepted)
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventLoading)

	var workerEventChannel workerProtocol.WorkerEventChannelType
	select {
	case workerEventChannel = <-fakeWorkerSpawner.capturedWorkerEventChannel:
	case <-time.After(testResponseTimeOut):
		t.Fatal("Workers were never spawned")
	}

	// The BlockStorageWorker fails during the cascade
	workerEventChannel <- workerProtocol.WorkerEventStruct{
		WorkerEvent:   workerProtocol.WorkerEventWorkerFailureOccurred,
		TestUuid:      testExecutionUnitObject.TestUuid,
		WorkerKind:    workerProtocol.WorkerKindBlockStorage,
		WorkerFailure: errors.New("bucket 'test-bucket-1' was not found"),
	}

	lifecycleEvent := awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventException)
	require.EqualError(t, lifecycleEvent.TestExecutionException, "bucket 'test-bucket-1' was not found")

	testStatusResponse := getTestStatus(t, testExecutionUnitObject)
	assert.Equal(t, "Exception", testStatusResponse.TestExecutionState)
	assert.Equal(t, "bucket 'test-bucket-1' was not found", testStatusResponse.TestError)

	cancelTestResponse := sendCancelTest(t, testExecutionUnitObject)

	assert.False(t, cancelTestResponse.TestWasCancelled)
	assert.Equal(t, "Test in exception state, cleanup in progress", cancelTestResponse.Message)
}

func TestWorkerFailureIsIgnoredAfterCompleted(t *testing.T) {

	testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner := initiateUnitForTest(t, "unit-test-uuid-10")

	workerEventChannel := driveUnitToLoaded(t, testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner)

	*testExecutionUnitObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand: ChannelCommandStartTesting,
	}
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventStarted)

	workerEventChannel <- workerProtocol.WorkerEventStruct{
		WorkerEvent: workerProtocol.WorkerEventTestCompleted,
		TestUuid:    testExecutionUnitObject.TestUuid,
		WorkerKind:  workerProtocol.WorkerKindScenarioRunner,
		TestResult:  &workerProtocol.TestResultStruct{TestUuid: testExecutionUnitObject.TestUuid, SuiteSucceeded: true},
	}
	workerEventChannel <- workerProtocol.WorkerEventStruct{
		WorkerEvent: workerProtocol.WorkerEventUploadCompleted,
		TestUuid:    testExecutionUnitObject.TestUuid,
		WorkerKind:  workerProtocol.WorkerKindBlockStorage,
	}
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventCompleted)

	// A straggler failure from a stopping worker must not flip Completed into Exception
	workerEventChannel <- workerProtocol.WorkerEventStruct{
		WorkerEvent:   workerProtocol.WorkerEventWorkerFailureOccurred,
		TestUuid:      testExecutionUnitObject.TestUuid,
		WorkerKind:    workerProtocol.WorkerKindConsumer,
		WorkerFailure: errors.New("subscription was closed"),
	}

	testStatusResponse := getTestStatus(t, testExecutionUnitObject)
	assert.Equal(t, "Completed", testStatusResponse.TestExecutionState)
	assert.Empty(t, testStatusResponse.TestError)
}

func TestTimeOutWithOldGenerationIsIgnored(t *testing.T) {

	testExecutionUnitObject, _, _ := initiateUnitForTest(t, "unit-test-uuid-11")

	// A timeout carrying a stale generation must not tear the Unit down
	*testExecutionUnitObject.CommandChannelReference <- ChannelCommandStruct{
		ChannelCommand:  ChannelCommandStateTimeOutOccurred,
		TimerGeneration: 999,
	}

	testStatusResponse := getTestStatus(t, testExecutionUnitObject)
	assert.Equal(t, "Setup", testStatusResponse.TestExecutionState)
}

func TestSetupTimeOutCleansUpUnit(t *testing.T) {

	common_config.SetupStateTimeOutDuration = 50 * time.Millisecond
	defer func() { common_config.SetupStateTimeOutDuration = time.Hour }()

	_, lifecycleEventChannel, _ := initiateUnitForTest(t, "unit-test-uuid-12")

	// A never-started TestExecution cleans itself up when the Setup-timer fires
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventStopping)
}

func TestSetupTimerIsCancelledByStartTest(t *testing.T) {

	common_config.SetupStateTimeOutDuration = 100 * time.Millisecond
	defer func() { common_config.SetupStateTimeOutDuration = time.Hour }()

	testExecutionUnitObject, lifecycleEventChannel, _ := initiateUnitForTest(t, "unit-test-uuid-13")

	startTestResponse := sendStartTest(t, testExecutionUnitObject, "test-bucket-1", "")
	require.True(t, startTestResponse.TestWasAccepted)
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventLoading)

	// Wait past the old Setup-timer. The cancelled timer must not tear the Unit down
	time.Sleep(300 * time.Millisecond)

	testStatusResponse := getTestStatus(t, testExecutionUnitObject)
	assert.Equal(t, "Loading", testStatusResponse.TestExecutionState)
}

func TestLoadingTimeOutCleansUpUnit(t *testing.T) {

	common_config.LoadingStateTimeOutDuration = 50 * time.Millisecond
	defer func() { common_config.LoadingStateTimeOutDuration = time.Hour }()

	testExecutionUnitObject, lifecycleEventChannel, fakeWorkerSpawner := initiateUnitForTest(t, "unit-test-uuid-14")

	startTestResponse := sendStartTest(t, testExecutionUnitObject, "test-bucket-1", "")
	require.True(t, startTestResponse.TestWasAccepted)
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventLoading)

	// The cascade never finishes, so the Loading-timer fires and the Unit stops its workers
	awaitLifecycleEvent(t, lifecycleEventChannel, common_config.TestLifecycleEventStopping)

	blockStorageCommand := <-fakeWorkerSpawner.blockStorageWorkerCommandChannel
	require.Equal(t, workerProtocol.BlockStorageWorkerCommandInitialize, blockStorageCommand.WorkerCommand)

	blockStorageCommand = <-fakeWorkerSpawner.blockStorageWorkerCommandChannel
	assert.Equal(t, workerProtocol.BlockStorageWorkerCommandStop, blockStorageCommand.WorkerCommand)
}
