package testProbeWorkers

import (
	"TestProbeServer/workerProtocol"
	"context"
)

// The five workers only sequence messages and delegate all blocking I/O to the clients
// below, so the TestExecutionUnit's own execution context never performs I/O

// BlockStorageClientInterface
// Fetches the TestDirective from Block Storage and stores the test evidence
type BlockStorageClientInterface interface {
	FetchTestDirective(
		ctx context.Context,
		testUuid string,
		bucket string) (testDirective *workerProtocol.TestDirectiveStruct, err error)

	UploadTestEvidence(
		ctx context.Context,
		testUuid string,
		testDirective *workerProtocol.TestDirectiveStruct,
		testResult *workerProtocol.TestResultStruct) (err error)
}

// VaultClientInterface
// Fetches per-topic SecurityDirectives from the secrets vault
type VaultClientInterface interface {
	FetchSecurityDirectives(
		ctx context.Context,
		testUuid string,
		brokerTopics []string) (securityDirectives []workerProtocol.SecurityDirectiveStruct, err error)
}

// ScenarioSuiteRunnerInterface
// Runs the BDD scenario suite named by the TestDirective
type ScenarioSuiteRunnerInterface interface {
	RunScenarioSuite(
		testUuid string,
		testDirective *workerProtocol.TestDirectiveStruct,
		securityDirectives []workerProtocol.SecurityDirectiveStruct) (testResult *workerProtocol.TestResultStruct, err error)
}

// ProducerBrokerClientInterface
// Publishes probe-messages on the broker topic until the context is cancelled and then
// reports how many probe-messages that were published
type ProducerBrokerClientInterface interface {
	PublishProbeMessages(
		ctx context.Context,
		testUuid string,
		brokerTopic string,
		securityDirective *workerProtocol.SecurityDirectiveStruct) (numberOfPublishedProbeMessages int, err error)
}

// ConsumerBrokerClientInterface
// Pulls probe-messages from the broker topic until the context is cancelled and then
// reports how many probe-messages that were received
type ConsumerBrokerClientInterface interface {
	PullProbeMessages(
		ctx context.Context,
		testUuid string,
		brokerTopic string,
		securityDirective *workerProtocol.SecurityDirectiveStruct) (numberOfReceivedProbeMessages int, err error)
}

// WorkerSpawnerStruct
// Spawns the five workers for one TestExecution. The clients are stateless across
// TestExecutions, each worker goroutine belongs to exactly one TestExecution and is never
// shared or reused
type WorkerSpawnerStruct struct {
	BlockStorageClient   BlockStorageClientInterface
	VaultClient          VaultClientInterface
	ScenarioSuiteRunner  ScenarioSuiteRunnerInterface
	ProducerBrokerClient ProducerBrokerClientInterface
	ConsumerBrokerClient ConsumerBrokerClientInterface
}

// Find the SecurityDirective matching one broker topic
func findSecurityDirectiveForBrokerTopic(
	brokerTopic string,
	securityDirectives []workerProtocol.SecurityDirectiveStruct) (securityDirective *workerProtocol.SecurityDirectiveStruct) {

	for securityDirectiveCounter := 0; securityDirectiveCounter < len(securityDirectives); securityDirectiveCounter++ {
		if securityDirectives[securityDirectiveCounter].BrokerTopic == brokerTopic {
			return &securityDirectives[securityDirectiveCounter]
		}
	}

	return nil
}
