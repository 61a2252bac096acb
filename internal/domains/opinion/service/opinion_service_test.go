package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"what-to-watch/internal/domains/opinion/mocks"
	"what-to-watch/internal/domains/opinion/model"
	"what-to-watch/internal/domains/opinion/service"
)

func strPtr(s string) *string { return &s }

func TestOpinionService_Create_Success(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := service.NewOpinionService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *model.Opinion) bool {
		return o.Title == "Heat" && o.Text == "Best shootout ever" && o.Source == nil && o.AddedBy == nil
	})).Return(&model.Opinion{
		ID:        1,
		Title:     "Heat",
		Text:      "Best shootout ever",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}, nil)

	got, err := svc.Create(context.Background(), &model.CreateOpinionRequest{
		Title:  strPtr("  Heat "),
		Text:   strPtr("Best shootout ever\n"),
		Source: strPtr("   "),
	}, service.ChannelAPI)

	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestOpinionService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		req    *model.CreateOpinionRequest
		fields []string
	}{
		{
			name:   "blank title and text",
			req:    &model.CreateOpinionRequest{Title: strPtr(" "), Text: strPtr("")},
			fields: []string{"title", "text"},
		},
		{
			name: "title too long",
			req: &model.CreateOpinionRequest{
				Title: strPtr(strings.Repeat("a", model.MaxTitleLength+1)),
				Text:  strPtr("fine"),
			},
			fields: []string{"title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockRepository(t)
			svc := service.NewOpinionService(repo)

			_, err := svc.Create(context.Background(), tt.req, service.ChannelWeb)

			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
			}
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestOpinionService_Create_DuplicateText(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := service.NewOpinionService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil, model.ErrDuplicateText)

	_, err := svc.Create(context.Background(), &model.CreateOpinionRequest{
		Title: strPtr("Heat"),
		Text:  strPtr("taken"),
	}, service.ChannelAPI)

	assert.ErrorIs(t, err, model.ErrDuplicateText)
}

func TestOpinionService_GetByID_NonPositiveID(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := service.NewOpinionService(repo)

	_, err := svc.GetByID(context.Background(), 0)

	assert.ErrorIs(t, err, model.ErrOpinionNotFound)
}

func TestOpinionService_GetByText_Empty(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := service.NewOpinionService(repo)

	got, err := svc.GetByText(context.Background(), "")

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestOpinionService_Update(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := service.NewOpinionService(repo)

	repo.On("Update", mock.Anything, int64(4), mock.MatchedBy(func(p model.OpinionPatch) bool {
		return p.Title == nil && p.Text != nil && *p.Text == "new text"
	})).Return(&model.Opinion{ID: 4, Title: "Old", Text: "new text"}, nil)

	got, err := svc.Update(context.Background(), 4, &model.UpdateOpinionRequest{Text: strPtr(" new text ")})

	require.NoError(t, err)
	assert.Equal(t, "new text", got.Text)
	assert.Equal(t, "Old", got.Title)
}

func TestOpinionService_Update_EmptyText(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := service.NewOpinionService(repo)

	_, err := svc.Update(context.Background(), 4, &model.UpdateOpinionRequest{Text: strPtr("  ")})

	assert.True(t, model.IsValidationError(err))
}

func TestOpinionService_Update_NotFound(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := service.NewOpinionService(repo)

	repo.On("Update", mock.Anything, int64(99), mock.Anything).Return(nil, model.ErrOpinionNotFound)

	_, err := svc.Update(context.Background(), 99, &model.UpdateOpinionRequest{Title: strPtr("x")})

	assert.ErrorIs(t, err, model.ErrOpinionNotFound)
}

func TestOpinionService_Delete(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := service.NewOpinionService(repo)

	repo.On("Delete", mock.Anything, int64(2)).Return(nil).Once()
	repo.On("Delete", mock.Anything, int64(3)).Return(model.ErrOpinionNotFound).Once()

	assert.NoError(t, svc.Delete(context.Background(), 2))
	assert.ErrorIs(t, svc.Delete(context.Background(), 3), model.ErrOpinionNotFound)
}

func TestOpinionService_Random(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := service.NewOpinionService(repo)

	repo.On("RandomOne", mock.Anything).Return(nil, model.ErrEmptyStore).Once()
	repo.On("RandomOne", mock.Anything).Return(&model.Opinion{ID: 7}, nil).Once()

	_, err := svc.Random(context.Background())
	assert.ErrorIs(t, err, model.ErrEmptyStore)

	got, err := svc.Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
}

func TestOpinionService_PropagatesStoreErrors(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := service.NewOpinionService(repo)

	storeErr := errors.New("connection reset")
	repo.On("ListAll", mock.Anything).Return(nil, storeErr)
	repo.On("Count", mock.Anything).Return(int64(0), storeErr)

	_, err := svc.ListAll(context.Background())
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.Count(context.Background())
	assert.ErrorIs(t, err, storeErr)
}
