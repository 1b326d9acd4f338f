package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"urban-match/internal/domain"
	"urban-match/internal/repository"
	"urban-match/internal/storage"
)

const (
	snapshotVersion  = 1
	snapshotPageSize = 500
)

// Snapshot is the document written to object storage by Export.
type Snapshot struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Users      []SnapshotUser `json:"users"`
}

// SnapshotUser is a user as stored in a snapshot. Ids are not kept; a restore assigns new ones.
type SnapshotUser struct {
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Gender    string   `json:"gender"`
	Email     string   `json:"email"`
	City      string   `json:"city"`
	Interests []string `json:"interests"`
}

// User converts the snapshot entry back into a domain user.
func (u SnapshotUser) User() domain.User {
	return domain.User{
		Name:      u.Name,
		Age:       u.Age,
		Gender:    u.Gender,
		Email:     u.Email,
		City:      u.City,
		Interests: u.Interests,
	}
}

// SnapshotInfo describes an exported snapshot.
type SnapshotInfo struct {
	Key        string
	Location   string
	URL        string
	Users      int
	ExportedAt time.Time
}

// SnapshotService exports the user directory to object storage and reads it back.
type SnapshotService interface {
	Export(ctx context.Context) (*SnapshotInfo, error)
	List(ctx context.Context) ([]storage.ObjectInfo, error)
	Load(ctx context.Context, key string) (*Snapshot, error)
	Delete(ctx context.Context, key string) error
}

// SnapshotConfig locates snapshots in a bucket.
type SnapshotConfig struct {
	Bucket    string
	KeyPrefix string
	URLExpiry time.Duration
}

type snapshotService struct {
	users  repository.UserRepository
	store  storage.Service
	cfg    SnapshotConfig
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewSnapshotService returns a snapshot service. A nil store or empty bucket
// yields a service whose operations fail with ErrStorageDisabled.
func NewSnapshotService(users repository.UserRepository, store storage.Service, cfg SnapshotConfig, logger logrus.FieldLogger) SnapshotService {
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	if logger == nil {
		logger = logrus.New()
	}
	return &snapshotService{
		users:  users,
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (s *snapshotService) enabled() bool {
	return s.store != nil && s.cfg.Bucket != ""
}

func (s *snapshotService) Export(ctx context.Context) (*SnapshotInfo, error) {
	if !s.enabled() {
		return nil, ErrStorageDisabled
	}

	exportedAt := s.now().UTC()
	snap := Snapshot{Version: snapshotVersion, ExportedAt: exportedAt, Users: []SnapshotUser{}}
	for offset := 0; ; offset += snapshotPageSize {
		page, err := s.users.List(ctx, offset, snapshotPageSize)
		if err != nil {
			return nil, fmt.Errorf("list users for snapshot: %w", err)
		}
		for _, u := range page {
			snap.Users = append(snap.Users, SnapshotUser{
				Name:      u.Name,
				Age:       u.Age,
				Gender:    u.Gender,
				Email:     u.Email,
				City:      u.City,
				Interests: u.Interests,
			})
		}
		if len(page) < snapshotPageSize {
			break
		}
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := s.snapshotKey(exportedAt)
	location, err := s.store.PutObject(ctx, bytes.NewReader(body), storage.PutOptions{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	info := &SnapshotInfo{
		Key:        key,
		Location:   location,
		Users:      len(snap.Users),
		ExportedAt: exportedAt,
	}
	if url, err := s.store.GetObjectURL(ctx, s.cfg.Bucket, key, s.cfg.URLExpiry); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("presign snapshot url")
	} else {
		info.URL = url
	}

	s.logger.WithFields(logrus.Fields{
		"key":   key,
		"users": info.Users,
	}).Info("snapshot exported")
	return info, nil
}

func (s *snapshotService) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	if !s.enabled() {
		return nil, ErrStorageDisabled
	}
	prefix := s.cfg.KeyPrefix
	if prefix != "" {
		prefix += "/"
	}
	objects, err := s.store.ListObjects(ctx, s.cfg.Bucket, prefix)
	if err != nil {
		return nil, err
	}
	if objects == nil {
		objects = []storage.ObjectInfo{}
	}
	return objects, nil
}

func (s *snapshotService) Load(ctx context.Context, key string) (*Snapshot, error) {
	if !s.enabled() {
		return nil, ErrStorageDisabled
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, invalid("key", "is required")
	}

	body, err := s.store.GetObject(ctx, s.cfg.Bucket, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var snap Snapshot
	if err := json.NewDecoder(body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot %s: unsupported version %d", key, snap.Version)
	}
	return &snap, nil
}

func (s *snapshotService) Delete(ctx context.Context, key string) error {
	if !s.enabled() {
		return ErrStorageDisabled
	}
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return invalid("key", "is required")
	}
	if s.cfg.KeyPrefix != "" && !strings.HasPrefix(key, s.cfg.KeyPrefix+"/") {
		return invalid("key", "is not a snapshot key")
	}

	if err := s.store.DeleteObject(ctx, s.cfg.Bucket, key); err != nil {
		return err
	}
	s.logger.WithField("key", key).Info("snapshot deleted")
	return nil
}

func (s *snapshotService) snapshotKey(at time.Time) string {
	name := fmt.Sprintf("users-%s-%s.json", at.Format("20060102T150405Z"), uuid.NewString()[:8])
	if s.cfg.KeyPrefix == "" {
		return name
	}
	return path.Join(s.cfg.KeyPrefix, name)
}
