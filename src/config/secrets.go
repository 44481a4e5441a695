package config

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/tidwall/gjson"
)

// keys copied from the secret into the environment when present
var secretKeys = []string{"DATABASE_PASSWORD", "JWT_SECRET", "SMTP_PASSWORD"}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// LoadSecrets reads the JSON secret named by SECRETS_ID and exports the known keys. It is a
// no-op when SECRETS_ID is unset.
func LoadSecrets(ctx context.Context) error {
	secretID := os.Getenv("SECRETS_ID")
	if secretID == "" {
		return nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Error loading default config: %s\n", err.Error())
		return err
	}
	return ApplySecrets(ctx, secretsmanager.NewFromConfig(cfg), secretID)
}

func ApplySecrets(ctx context.Context, client SecretsClient, secretID string) error {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return fmt.Errorf("error retrieving secret %s: %w", secretID, err)
	}
	raw := aws.ToString(out.SecretString)
	if !gjson.Valid(raw) {
		return fmt.Errorf("secret %s is not valid JSON", secretID)
	}
	for _, key := range secretKeys {
		if v := gjson.Get(raw, key); v.Exists() {
			os.Setenv(key, v.String())
		}
	}
	return nil
}
