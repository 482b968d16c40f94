// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	migrateOnly    = pflag.Bool("migrate-only", false, "Runs database migrations and exits")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres"}
)

// MigrateOnly reports whether the process should exit after migrations.
func MigrateOnly() bool {
	return *migrateOnly
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")

	v.BindEnv("jwt.secret", "jwt_secret")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("s3.access_key_id", "s3_access_key_id")
	v.BindEnv("s3.secret_access_key", "s3_secret_access_key")
	v.BindEnv("s3.region", "s3_region")
	v.BindEnv("s3.bucket", "s3_bucket")
	v.BindEnv("s3.public_base_url", "s3_public_base_url")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.allowed_types", "upload_allowed_types")
	v.BindEnv("upload.multipart_threshold", "upload_multipart_threshold")
	v.BindEnv("upload.pending_ttl_minutes", "upload_pending_ttl_minutes")

	v.BindEnv("thumbnail.enabled", "thumbnail_enabled")
	v.BindEnv("thumbnail.workers", "thumbnail_workers")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	// Sizes are in MB here and converted to bytes below
	v.SetDefault("upload.max_size", 200)
	v.SetDefault("upload.multipart_threshold", 10)
	v.SetDefault("upload.pending_ttl_minutes", 60)
	v.SetDefault("upload.allowed_types", []string{
		"image/png", "image/jpeg", "image/webp", "image/gif",
		"video/mp4", "video/quicktime", "application/zip",
	})

	v.SetDefault("thumbnail.enabled", true)
	v.SetDefault("thumbnail.workers", 2)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("jwt.secret") == "" {
		return errors.New("jwt.secret can't be empty")
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.driver") == "postgres" && v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty when using postgres")
	}

	if v.GetString("s3.access_key_id") == "" {
		return errors.New("s3 access key id can't be empty")
	}
	if v.GetString("s3.secret_access_key") == "" {
		return errors.New("s3 secret access key can't be empty")
	}
	if v.GetString("s3.bucket") == "" {
		return errors.New("s3 bucket can't be empty")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetInt("upload.multipart_threshold") <= 0 {
		return errors.New("upload.multipart_threshold must be bigger than 0")
	}

	if len(v.GetStringSlice("upload.allowed_types")) == 0 {
		zap.L().Warn("No upload.allowed_types specified, any file type will be accepted")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	v.Set("upload.multipart_threshold", v.GetInt64("upload.multipart_threshold")<<20)
	return nil
}
