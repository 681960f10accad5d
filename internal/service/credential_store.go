package service

import (
	"context"
	"fmt"

	"app/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// CredentialStore holds per-user provider API keys. Keys are addressed by
// (userID, provider); a missing key returns an empty string with an error.
type CredentialStore interface {
	Store(ctx context.Context, userID, provider, apiKey string) error
	Get(ctx context.Context, userID, provider string) (string, error)
	Delete(ctx context.Context, userID, provider string) error
}

// NoopCredentialStore stands in when Secret Manager is not configured.
// Lookups find nothing, so callers must supply per-request keys; writes
// fail loudly.
type NoopCredentialStore struct{}

func (NoopCredentialStore) Store(ctx context.Context, userID, provider, apiKey string) error {
	return fmt.Errorf("credential store is not configured")
}

func (NoopCredentialStore) Get(ctx context.Context, userID, provider string) (string, error) {
	return "", nil
}

func (NoopCredentialStore) Delete(ctx context.Context, userID, provider string) error {
	return fmt.Errorf("credential store is not configured")
}

type secretManagerStore struct {
	client    *secretmanager.Client
	projectID string
}

// NewSecretManagerStore creates a CredentialStore backed by GCP Secret
// Manager, one secret per (user, provider) pair.
func NewSecretManagerStore(ctx context.Context, cfg *config.Config) (CredentialStore, error) {
	projectID := cfg.GetGCPProjectID()
	if projectID == "" {
		return nil, fmt.Errorf("GCP Project ID is not set for the current environment")
	}

	var opts []option.ClientOption
	// Note: Secret Manager requires a real GCP project even for local
	// development. Set GCP_PROJECT_ID_LOCAL to your local project ID.

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}

	return &secretManagerStore{
		client:    client,
		projectID: projectID,
	}, nil
}

func (s *secretManagerStore) secretName(userID, provider string) string {
	return fmt.Sprintf("user-%s-%s-key", userID, provider)
}

func (s *secretManagerStore) Store(ctx context.Context, userID, provider, apiKey string) error {
	secretName := s.secretName(userID, provider)
	secretPath := fmt.Sprintf("projects/%s/secrets/%s", s.projectID, secretName)

	secretExists := true
	_, err := s.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{
		Name: secretPath,
	})
	if err != nil {
		secretExists = false
	}

	if !secretExists {
		createReq := &secretmanagerpb.CreateSecretRequest{
			Parent:   fmt.Sprintf("projects/%s", s.projectID),
			SecretId: secretName,
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{
						Automatic: &secretmanagerpb.Replication_Automatic{},
					},
				},
			},
		}
		if _, err := s.client.CreateSecret(ctx, createReq); err != nil {
			return fmt.Errorf("failed to create secret: %w", err)
		}
	}

	addVersionReq := &secretmanagerpb.AddSecretVersionRequest{
		Parent: secretPath,
		Payload: &secretmanagerpb.SecretPayload{
			Data: []byte(apiKey),
		},
	}

	if _, err := s.client.AddSecretVersion(ctx, addVersionReq); err != nil {
		return fmt.Errorf("failed to add secret version: %w", err)
	}

	return nil
}

func (s *secretManagerStore) Get(ctx context.Context, userID, provider string) (string, error) {
	resourceName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.projectID, s.secretName(userID, provider))

	result, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resourceName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}

	return string(result.Payload.Data), nil
}

func (s *secretManagerStore) Delete(ctx context.Context, userID, provider string) error {
	secretPath := fmt.Sprintf("projects/%s/secrets/%s", s.projectID, s.secretName(userID, provider))

	err := s.client.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
		Name: secretPath,
	})
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	return nil
}
