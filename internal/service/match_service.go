package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"urban-match/internal/domain"
	"urban-match/internal/match"
	"urban-match/internal/repository"
)

// MatchService finds and ranks candidate users for a target user.
type MatchService interface {
	// MatchByPreferences filters candidates with explicit preferences.
	MatchByPreferences(ctx context.Context, userID int64, prefs domain.MatchPreferences) ([]domain.User, error)
	// MatchByProfile derives the filters from the target's own profile.
	MatchByProfile(ctx context.Context, userID int64) ([]domain.User, error)
}

type matchService struct {
	users     repository.UserRepository
	ageSpread int
	logger    logrus.FieldLogger
}

func NewMatchService(users repository.UserRepository, ageSpread int, logger logrus.FieldLogger) MatchService {
	if ageSpread <= 0 {
		ageSpread = match.DefaultAgeSpread
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &matchService{
		users:     users,
		ageSpread: ageSpread,
		logger:    logger,
	}
}

func (s *matchService) MatchByPreferences(ctx context.Context, userID int64, prefs domain.MatchPreferences) ([]domain.User, error) {
	if err := validatePreferences(prefs); err != nil {
		return nil, err
	}
	target, err := s.target(ctx, userID)
	if err != nil {
		return nil, err
	}

	reference := prefs.Interests
	if len(domain.NormalizeTokens(reference)) == 0 {
		reference = target.Interests
	}
	return s.run(ctx, "preferences", *target, match.FromPreferences(*target, prefs), reference)
}

func (s *matchService) MatchByProfile(ctx context.Context, userID int64) ([]domain.User, error) {
	target, err := s.target(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, "profile", *target, match.FromProfile(*target, s.ageSpread), target.Interests)
}

func (s *matchService) target(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(userID, err)
	}
	return user, nil
}

func (s *matchService) run(ctx context.Context, source string, target domain.User, criteria match.Criteria, reference []string) ([]domain.User, error) {
	candidates, err := s.users.Query(ctx, criteria)
	if err != nil {
		return nil, err
	}
	ranked := match.Rank(reference, candidates)

	_, mode := criteria.Interests()
	s.logger.WithFields(logrus.Fields{
		"user_id":       target.ID,
		"source":        source,
		"gender":        criteria.Gender(),
		"interest_mode": mode.String(),
		"matches":       len(ranked),
	}).Debug("match query finished")

	if len(ranked) == 0 {
		return nil, ErrNoMatches
	}
	return ranked, nil
}

func validatePreferences(p domain.MatchPreferences) error {
	switch {
	case p.MinAge != nil && *p.MinAge < 0:
		return invalid("min_age", "must be non-negative")
	case p.MaxAge != nil && *p.MaxAge < 0:
		return invalid("max_age", "must be non-negative")
	case p.MinAge != nil && p.MaxAge != nil && *p.MinAge > *p.MaxAge:
		return invalid("min_age", "must not exceed max_age")
	}
	return nil
}
