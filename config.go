package datafy

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Size guard default in bytes for network sources; 0 disables it
	SizeLimit int64 `env:"DATAFY_SIZE_LIMIT,default:0"`

	// Timeouts as Go duration strings
	ProbeTimeout string `env:"DATAFY_PROBE_TIMEOUT,default:1s"`
	FetchTimeout string `env:"DATAFY_FETCH_TIMEOUT,default:7s"`

	// HTTP fetcher
	UserAgent string `env:"DATAFY_USER_AGENT,default:datafy"`

	// Archive expansion
	ScratchDir             string `env:"DATAFY_SCRATCH_DIR"` // defaults to os.TempDir()
	MaxArchiveMembers      int    `env:"DATAFY_MAX_ARCHIVE_MEMBERS,default:1000"`
	MaxArchiveSize         int64  `env:"DATAFY_MAX_ARCHIVE_SIZE,default:1073741824"` // 1GB uncompressed
	MaxCompressionRatio    int    `env:"DATAFY_MAX_COMPRESSION_RATIO,default:100"`
	MaxArchiveDepth        int    `env:"DATAFY_MAX_ARCHIVE_DEPTH,default:3"`
	DisableArchiveValidate bool   `env:"DATAFY_DISABLE_ARCHIVE_VALIDATE,default:false"`

	// Item checksums (xxhash)
	Checksums bool `env:"DATAFY_CHECKSUMS,default:true"`

	// Logging
	LogLevel  string `env:"DATAFY_LOG_LEVEL,default:info"`
	LogFormat string `env:"DATAFY_LOG_FORMAT,default:text"`

	// S3 driver configuration
	S3Region          string `env:"DATAFY_S3_REGION,default:us-east-1"`
	S3Endpoint        string `env:"DATAFY_S3_ENDPOINT"`
	S3AccessKeyID     string `env:"DATAFY_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"DATAFY_S3_SECRET_ACCESS_KEY"`
	S3ForcePathStyle  bool   `env:"DATAFY_S3_FORCE_PATH_STYLE,default:false"`

	// GCS (Google Cloud Storage) driver configuration
	GCSCredentialsFile string `env:"DATAFY_GCS_CREDENTIALS_FILE"` // Path to service account JSON

	// Azure Blob Storage driver configuration
	AzureAccountName string `env:"DATAFY_AZURE_ACCOUNT_NAME"`
	AzureAccountKey  string `env:"DATAFY_AZURE_ACCOUNT_KEY"`
	AzureEndpoint    string `env:"DATAFY_AZURE_ENDPOINT"` // Optional custom endpoint

	// SFTP driver configuration
	SFTPUsername   string `env:"DATAFY_SFTP_USERNAME"`
	SFTPPassword   string `env:"DATAFY_SFTP_PASSWORD"`
	SFTPPrivateKey string `env:"DATAFY_SFTP_PRIVATE_KEY"` // Path to private key file
	SFTPKnownHosts string `env:"DATAFY_SFTP_KNOWN_HOSTS"` // Path to known_hosts; empty skips host key checks
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns the configuration GetConfig yields with an empty
// environment.
func DefaultConfig() *Config {
	return &Config{
		ProbeTimeout:        "1s",
		FetchTimeout:        "7s",
		UserAgent:           "datafy",
		MaxArchiveMembers:   1000,
		MaxArchiveSize:      1 << 30,
		MaxCompressionRatio: 100,
		MaxArchiveDepth:     3,
		Checksums:           true,
		LogLevel:            "info",
		LogFormat:           "text",
		S3Region:            "us-east-1",
	}
}
