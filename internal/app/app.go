// Package app assembles the pieces shared by the server and seed binaries.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"urban-match/internal/config"
	"urban-match/internal/repository"
	"urban-match/internal/repository/sqlstore"
	"urban-match/internal/service"
	"urban-match/internal/storage"
)

// NewLogger builds the process logger from the log section of cfg.
func NewLogger(cfg config.Config) (*logrus.Logger, error) {
	logger := logrus.New()

	switch strings.ToLower(cfg.Log.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Log.Format)
	}

	level := logrus.InfoLevel
	if cfg.Log.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	logger.SetLevel(level)
	return logger, nil
}

// OpenUsers opens the configured database and migrates the users schema.
// The caller owns the returned DB.
func OpenUsers(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*sqlstore.DB, repository.UserRepository, error) {
	db, err := sqlstore.Open(cfg.Database.Driver, cfg.DataSource(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	users := sqlstore.NewUserRepository(db)
	if err := users.Init(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init user repository: %w", err)
	}
	return db, users, nil
}

// BuildStorage returns nil when no bucket is configured.
func BuildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("storage bucket not configured, snapshots disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}

// SnapshotConfig maps the storage section onto the snapshot service settings.
func SnapshotConfig(cfg config.Config) service.SnapshotConfig {
	return service.SnapshotConfig{
		Bucket:    cfg.Storage.Bucket,
		KeyPrefix: cfg.Storage.KeyPrefix,
		URLExpiry: cfg.Storage.URLExpiry,
	}
}
