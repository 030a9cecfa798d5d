package gcs

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/gobeaver/datafy"
	"google.golang.org/api/option"
)

func init() {
	datafy.RegisterFetcher("gs", func(cfg *datafy.Config) (datafy.Fetcher, error) {
		// Without a credentials file the client uses GOOGLE_APPLICATION_CREDENTIALS
		// or the default credentials chain
		var opts []option.ClientOption
		if cfg.GCSCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
		}

		client, err := storage.NewClient(context.Background(), opts...)
		if err != nil {
			return nil, err
		}
		return New(client), nil
	})
}
