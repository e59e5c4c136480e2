package secrets

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/lukefarrell/snapfeed/pkg/util"
)

type SecretsManager struct {
	client *secretsmanager.Client
}

func New() (SecretsManager, error) {
	config, err := config.LoadDefaultConfig(context.Background(), config.WithRegion("us-east-2"))
	if err != nil {
		return SecretsManager{}, util.WrapErr("failed to load aws config", err)
	}

	return SecretsManager{client: secretsmanager.NewFromConfig(config)}, nil
}

// GetServiceAPIKey fetches the remote service's API key under the given
// secret name. Used when SERVICE_API_KEY is not set directly in the env.
func (s SecretsManager) GetServiceAPIKey(secretName string) (string, error) {
	return s.getSecret(secretName)
}

func (s SecretsManager) getSecret(secretName string) (string, error) {
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}

	result, err := s.client.GetSecretValue(context.Background(), input)
	if err != nil {
		return "", util.WrapErr("failed to get secret value", err)
	}

	var secretString string = *result.SecretString
	return secretString, nil
}
