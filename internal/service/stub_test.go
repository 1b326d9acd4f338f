package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"urban-match/internal/domain"
	"urban-match/internal/match"
	"urban-match/internal/repository"
	"urban-match/internal/storage"
)

type stubUserRepository struct {
	users    map[int64]domain.User
	nextID   int64
	queryErr error
	queries  []match.Criteria
}

func newStubUserRepository(users ...domain.User) *stubUserRepository {
	repo := &stubUserRepository{users: make(map[int64]domain.User)}
	for _, u := range users {
		repo.nextID++
		if u.ID == 0 {
			u.ID = repo.nextID
		}
		repo.users[u.ID] = u
	}
	return repo
}

func (s *stubUserRepository) Init(ctx context.Context) error { return nil }

func (s *stubUserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return user.ID, nil
}

func (s *stubUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *stubUserRepository) sorted() []domain.User {
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *stubUserRepository) List(ctx context.Context, offset, limit int) ([]domain.User, error) {
	all := s.sorted()
	if offset >= len(all) {
		return []domain.User{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (s *stubUserRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

func (s *stubUserRepository) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Apply(patch)
	s.users[id] = u
	return &u, nil
}

func (s *stubUserRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *stubUserRepository) Query(ctx context.Context, criteria match.Criteria) ([]domain.User, error) {
	s.queries = append(s.queries, criteria)
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var out []domain.User
	for _, u := range s.sorted() {
		if criteria.Matches(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

type memoryStorage struct {
	objects map[string][]byte
	putErr  error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) PutObject(ctx context.Context, body io.Reader, opts storage.PutOptions) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[opts.Key] = b
	return "s3://" + opts.Bucket + "/" + opts.Key, nil
}

func (m *memoryStorage) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memoryStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for key, b := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(b))})
		}
	}
	return out, nil
}

func (m *memoryStorage) DeleteObject(ctx context.Context, bucket, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	return "https://example.test/" + bucket + "/" + key, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
