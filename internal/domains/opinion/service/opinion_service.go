package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"what-to-watch/internal/domains/opinion/model"
	"what-to-watch/internal/domains/opinion/repository"
	"what-to-watch/internal/shared/metrics"
)

// opinionService implements ServiceInterface
type opinionService struct {
	repo repository.RepositoryInterface // Repository dependency (injected)
}

// NewOpinionService creates a new opinion service instance
func NewOpinionService(repo repository.RepositoryInterface) ServiceInterface {
	return &opinionService{
		repo: repo,
	}
}

func (s *opinionService) Create(ctx context.Context, req *model.CreateOpinionRequest, channel Channel) (*model.Opinion, error) {
	req.Normalize()
	if err := model.NewValidationError(req.Validate()); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, req.ToEntity())
	if err != nil {
		if errors.Is(err, model.ErrDuplicateText) {
			metrics.DuplicateTextRejectedTotal.Inc()
		}
		return nil, err
	}

	metrics.OpinionsCreatedTotal.WithLabelValues(string(channel)).Inc()
	log.Info().
		Int64("opinion_id", created.ID).
		Str("channel", string(channel)).
		Msg("Opinion created")

	return created, nil
}

func (s *opinionService) GetByID(ctx context.Context, id int64) (*model.Opinion, error) {
	if id <= 0 {
		return nil, model.ErrOpinionNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *opinionService) GetByText(ctx context.Context, text string) (*model.Opinion, error) {
	if text == "" {
		return nil, nil
	}
	return s.repo.GetByText(ctx, text)
}

func (s *opinionService) ListAll(ctx context.Context) ([]model.Opinion, error) {
	return s.repo.ListAll(ctx)
}

func (s *opinionService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *opinionService) Update(ctx context.Context, id int64, req *model.UpdateOpinionRequest) (*model.Opinion, error) {
	if id <= 0 {
		return nil, model.ErrOpinionNotFound
	}

	req.Normalize()
	if err := model.NewValidationError(req.Validate()); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, req.ToPatch())
	if err != nil {
		if errors.Is(err, model.ErrDuplicateText) {
			metrics.DuplicateTextRejectedTotal.Inc()
		}
		return nil, err
	}

	log.Info().Int64("opinion_id", id).Msg("Opinion updated")
	return updated, nil
}

func (s *opinionService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.ErrOpinionNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.OpinionsDeletedTotal.Inc()
	log.Info().Int64("opinion_id", id).Msg("Opinion deleted")
	return nil
}

func (s *opinionService) Random(ctx context.Context) (*model.Opinion, error) {
	return s.repo.RandomOne(ctx)
}
