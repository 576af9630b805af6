package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/ftpaccounts/internal/flagx"
	"github.com/dmitrijs2005/ftpaccounts/internal/timex"
)

// JsonConfig is the JSON shape of Config. PollInterval uses timex.Duration
// so both "5s" and integer nanoseconds are accepted.
type JsonConfig struct {
	UsersFile      string         `json:"users_file"`
	Storage        string         `json:"storage"`
	Hasher         string         `json:"hasher"`
	AdminName      string         `json:"admin_name"`
	PollInterval   timex.Duration `json:"poll_interval"`
	LogLevel       string         `json:"log_level"`
	LogFormat      string         `json:"log_format"`
	DatabaseDSN    string         `json:"database_dsn"`
	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by the -c or -config
// flag. Without either flag nothing is loaded. Keys absent from the file
// keep their current value.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{
		UsersFile:      config.UsersFile,
		Storage:        config.Storage,
		Hasher:         config.Hasher,
		AdminName:      config.AdminName,
		PollInterval:   timex.Duration{Duration: config.PollInterval},
		LogLevel:       config.LogLevel,
		LogFormat:      config.LogFormat,
		DatabaseDSN:    config.DatabaseDSN,
		S3RootUser:     config.S3RootUser,
		S3RootPassword: config.S3RootPassword,
		S3Bucket:       config.S3Bucket,
		S3Region:       config.S3Region,
		S3BaseEndpoint: config.S3BaseEndpoint,
	}

	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", jsonConfigFile, err)
	}

	config.UsersFile = c.UsersFile
	config.Storage = c.Storage
	config.Hasher = c.Hasher
	config.AdminName = c.AdminName
	config.PollInterval = c.PollInterval.Duration
	config.LogLevel = c.LogLevel
	config.LogFormat = c.LogFormat
	config.DatabaseDSN = c.DatabaseDSN
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	return nil
}
