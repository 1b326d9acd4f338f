// Command seed loads sample users, or a snapshot from object storage, into the user store.
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"urban-match/internal/app"
	"urban-match/internal/config"
	"urban-match/internal/domain"
	"urban-match/internal/repository"
	"urban-match/internal/service"
)

//go:embed users.json
var sampleUsers []byte

func main() {
	snapshotKey := flag.String("snapshot", "", "restore users from this snapshot key instead of the sample set")
	truncate := flag.Bool("truncate", false, "delete every existing user first")
	skipExisting := flag.Bool("skip-existing", false, "do nothing when the store already holds users")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger, err := app.NewLogger(cfg)
	if err != nil {
		logrus.Fatalf("setup logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, users, err := app.OpenUsers(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open user store: %v", err)
	}
	defer db.Close()

	var seed []domain.User
	if *snapshotKey != "" {
		store, err := app.BuildStorage(ctx, cfg, logger)
		if err != nil {
			logger.Fatalf("setup storage: %v", err)
		}
		snapshots := service.NewSnapshotService(users, store, app.SnapshotConfig(cfg), logger)
		seed, err = fromSnapshot(ctx, snapshots, *snapshotKey)
		if err != nil {
			logger.Fatalf("load snapshot: %v", err)
		}
	} else {
		seed, err = decodeUsers(sampleUsers)
		if err != nil {
			logger.Fatalf("decode sample users: %v", err)
		}
	}

	added, err := run(ctx, users, seed, options{truncate: *truncate, skipExisting: *skipExisting})
	if err != nil {
		logger.Fatalf("seed users: %v", err)
	}
	logger.Infof("%d users added successfully", added)
}

type options struct {
	truncate     bool
	skipExisting bool
}

func run(ctx context.Context, users repository.UserRepository, seed []domain.User, opts options) (int, error) {
	if opts.truncate {
		if err := deleteAll(ctx, users); err != nil {
			return 0, err
		}
	}

	if opts.skipExisting {
		n, err := users.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("count users: %w", err)
		}
		if n > 0 {
			return 0, nil
		}
	}

	svc := service.NewUserService(users)
	for i, u := range seed {
		if _, err := svc.Create(ctx, u); err != nil {
			return i, fmt.Errorf("create user %q: %w", u.Name, err)
		}
	}
	return len(seed), nil
}

func deleteAll(ctx context.Context, users repository.UserRepository) error {
	for {
		page, err := users.List(ctx, 0, service.MaxListLimit)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if len(page) == 0 {
			return nil
		}
		for _, u := range page {
			if err := users.Delete(ctx, u.ID); err != nil {
				return fmt.Errorf("delete user %d: %w", u.ID, err)
			}
		}
	}
}

func decodeUsers(data []byte) ([]domain.User, error) {
	var entries []service.SnapshotUser
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	out := make([]domain.User, len(entries))
	for i, e := range entries {
		out[i] = e.User()
	}
	return out, nil
}

func fromSnapshot(ctx context.Context, snapshots service.SnapshotService, key string) ([]domain.User, error) {
	snap, err := snapshots.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, len(snap.Users))
	for i, e := range snap.Users {
		out[i] = e.User()
	}
	return out, nil
}
