package azure

import (
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/gobeaver/datafy"
)

func init() {
	datafy.RegisterFetcher("azblob", createFetcher)
}

func createFetcher(cfg *datafy.Config) (datafy.Fetcher, error) {
	serviceURL, err := serviceURL(cfg)
	if err != nil {
		return nil, err
	}

	// Without a key only public containers are readable
	if cfg.AzureAccountKey == "" {
		client, err := azblob.NewClientWithNoCredential(serviceURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure client: %w", err)
		}
		return New(client), nil
	}

	cred, err := azblob.NewSharedKeyCredential(cfg.AzureAccountName, cfg.AzureAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure credential: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}
	return New(client), nil
}

// serviceURL returns the configured endpoint or the account's public one
func serviceURL(cfg *datafy.Config) (string, error) {
	if cfg.AzureEndpoint != "" {
		return cfg.AzureEndpoint, nil
	}
	if cfg.AzureAccountName == "" {
		return "", errors.New("azure account name or endpoint is required")
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AzureAccountName), nil
}
