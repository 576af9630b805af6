package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/ftpaccounts/internal/flagx"
)

// valueFlags are the flags handled here, all of which take a value.
var valueFlags = []string{"-f", "-s", "-x", "-n", "-i", "-l", "-o", "-d", "-u", "-p", "-b", "-g", "-e"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-f string   users document path (object key for S3)
//	-s string   storage, "file", "s3" or "postgres"
//	-x string   password hasher, "salted" or "argon2"
//	-n string   admin name
//	-i int      poll interval, seconds
//	-l string   log level
//	-o string   log format, "text" or "json"
//	-d string   PostgreSQL DSN
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// args are filtered with flagx.FilterArgs first, so commands and their
// arguments may appear anywhere on the command line.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, valueFlags)

	fs := flag.NewFlagSet("accounts", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.UsersFile, "f", config.UsersFile, "users document path")
	fs.StringVar(&config.Storage, "s", config.Storage, "storage (file|s3|postgres)")
	fs.StringVar(&config.Hasher, "x", config.Hasher, "password hasher (salted|argon2)")
	fs.StringVar(&config.AdminName, "n", config.AdminName, "admin name")

	pollInterval := fs.Int("i", int(config.PollInterval.Seconds()), "poll interval (in seconds)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "o", config.LogFormat, "log format (text|json)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.PollInterval = time.Duration(*pollInterval) * time.Second
	return nil
}

// Positional returns the command and its arguments from args, skipping
// every flag understood by LoadConfig together with its value.
func Positional(args []string) []string {
	return flagx.Positional(args, append([]string{"-c", "-config"}, valueFlags...))
}
