package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/internal/modules/behavior"
)

// ProfileSummaryJob logs a nightly snapshot of profile coverage so drift in
// the stored profiles shows up in the logs without a dashboard.
type ProfileSummaryJob struct {
	repo *behavior.Repository
	log  zerolog.Logger
}

// NewProfileSummaryJob creates a new profile summary job
func NewProfileSummaryJob(repo *behavior.Repository, log zerolog.Logger) *ProfileSummaryJob {
	return &ProfileSummaryJob{
		repo: repo,
		log:  log.With().Str("job", "profile_summary").Logger(),
	}
}

func (j *ProfileSummaryJob) Name() string {
	return "profile_summary"
}

func (j *ProfileSummaryJob) Run() error {
	userIDs, err := j.repo.AllUserIDs()
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		profile, err := j.repo.Get(userID)
		if err != nil {
			j.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to load profile")
			continue
		}
		if profile == nil {
			continue
		}

		rare := behavior.RareCategories(profile, 3)
		j.log.Info().
			Int64("user_id", userID).
			Int("categories", len(profile.CategoryStats)).
			Int("rare_categories", len(rare)).
			Int64("transaction_count", profile.TransactionCount).
			Time("last_updated", profile.LastUpdated).
			Msg("Profile summary")
	}

	j.log.Info().Int("profiles", len(userIDs)).Msg("Profile summary completed")
	return nil
}
