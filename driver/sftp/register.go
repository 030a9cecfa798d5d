package sftp

import (
	"fmt"
	"os"
	"time"

	"github.com/gobeaver/datafy"
)

func init() {
	datafy.RegisterFetcher("sftp", func(cfg *datafy.Config) (datafy.Fetcher, error) {
		sftpConfig := Config{
			Username:       cfg.SFTPUsername,
			Password:       cfg.SFTPPassword,
			KnownHostsFile: cfg.SFTPKnownHosts,
		}

		if d, err := time.ParseDuration(cfg.FetchTimeout); err == nil {
			sftpConfig.DialTimeout = d
		}

		// Load private key if specified
		if cfg.SFTPPrivateKey != "" {
			keyData, err := os.ReadFile(cfg.SFTPPrivateKey)
			if err != nil {
				return nil, fmt.Errorf("failed to read private key: %w", err)
			}
			sftpConfig.PrivateKey = keyData
		}

		return New(sftpConfig), nil
	})
}
