package testProbeWorkers

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/sirupsen/logrus"
)

// LambdaVaultClientStruct
// Vault client backed by a Lambda-function. The function receives the broker topics for the
// TestExecution and answers with one SecurityDirective per topic
type LambdaVaultClientStruct struct {
	lambdaClient *lambda.Client
}

func NewLambdaVaultClient(lambdaClient *lambda.Client) *LambdaVaultClientStruct {
	return &LambdaVaultClientStruct{
		lambdaClient: lambdaClient,
	}
}

// The request payload sent to the Vault-function
type vaultFunctionRequestStruct struct {
	TestUuid     string   `json:"testId"`
	BrokerTopics []string `json:"brokerTopics"`
}

// FetchSecurityDirectives
// Invoke the Vault-function and decode the per-topic SecurityDirectives from its response
func (lambdaVaultClient *LambdaVaultClientStruct) FetchSecurityDirectives(
	ctx context.Context,
	testUuid string,
	brokerTopics []string) (securityDirectives []workerProtocol.SecurityDirectiveStruct, err error) {

	var vaultFunctionRequest vaultFunctionRequestStruct
	vaultFunctionRequest = vaultFunctionRequestStruct{
		TestUuid:     testUuid,
		BrokerTopics: brokerTopics,
	}

	var vaultFunctionRequestAsByteSlice []byte
	vaultFunctionRequestAsByteSlice, err = json.Marshal(vaultFunctionRequest)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal vault function request: %w", err)
	}

	var invokeOutput *lambda.InvokeOutput
	invokeOutput, err = lambdaVaultClient.lambdaClient.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(common_config.VaultFunctionName),
		Payload:      vaultFunctionRequestAsByteSlice,
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't invoke vault function '%s': %w", common_config.VaultFunctionName, err)
	}

	// A failure inside the function arrives as a FunctionError, not as an invoke error
	if invokeOutput.FunctionError != nil {
		return nil, fmt.Errorf("vault function '%s' answered with function error '%s'",
			common_config.VaultFunctionName, *invokeOutput.FunctionError)
	}

	err = json.Unmarshal(invokeOutput.Payload, &securityDirectives)
	if err != nil {
		return nil, fmt.Errorf("couldn't unmarshal security directives json: %w", err)
	}

	common_config.Logger.WithFields(logrus.Fields{
		"id":                         "6d8faf0b-0a42-4428-b1f7-1d1e3a2c7b90",
		"testUuid":                   testUuid,
		"numberOfSecurityDirectives": len(securityDirectives),
	}).Debug("SecurityDirectives were fetched from Vault")

	return securityDirectives, nil
}
