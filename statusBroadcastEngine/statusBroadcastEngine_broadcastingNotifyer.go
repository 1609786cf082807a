package statusBroadcastEngine

import (
	"TestProbeServer/common_config"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

var BroadcastEngineMessageChannel BroadcastEngineMessageChannelType

type BroadcastEngineMessageChannelType chan BroadcastingMessageForTestExecutionStruct

// BroadcastingMessageForTestExecutionStruct
// One status update for one TestExecution, published on the status PubSub-topic so external
// listeners can follow the TestExecutions without polling the REST-Api
type BroadcastingMessageForTestExecutionStruct struct {
	BroadcastTimeStamp string `json:"timestamp"`
	TestUuid           string `json:"testId"`
	TestExecutionState string `json:"state"`
	Bucket             string `json:"bucket,omitempty"`
	TestType           string `json:"testType,omitempty"`
}

// InitiateAndStartStatusBroadcastEngine
// Start the engine that broadcasts status updates for TestExecutions on the PubSub-topic.
// Messages are sent to the engine using 'BroadcastEngineMessageChannel'
func InitiateAndStartStatusBroadcastEngine() {

	BroadcastEngineMessageChannel = make(chan BroadcastingMessageForTestExecutionStruct, common_config.EngineCommandChannelSize)

	var broadcastingMessageForTestExecution BroadcastingMessageForTestExecutionStruct
	var broadcastingMessageForTestExecutionAsByteSlice []byte
	var err error

	for {

		broadcastingMessageForTestExecution = <-BroadcastEngineMessageChannel

		broadcastingMessageForTestExecutionAsByteSlice, err = json.Marshal(broadcastingMessageForTestExecution)
		if err != nil {
			common_config.Logger.WithFields(logrus.Fields{
				"id":  "41ea4df9-f2a8-4b99-83ad-9c1c66d25a3c",
				"err": err,
				"broadcastingMessageForTestExecution": broadcastingMessageForTestExecution,
			}).Error("Couldn't marshal broadcast-message into json")

			continue
		}

		err = pubSubPublish(string(broadcastingMessageForTestExecutionAsByteSlice))
		if err != nil {
			common_config.Logger.WithFields(logrus.Fields{
				"id":  "cf2745a4-9a3a-47d6-ae1f-6a8f01e1d8d1",
				"err": err,
			}).Error("Couldn't publish broadcast-message on PubSub-topic")
		}

	}

}
