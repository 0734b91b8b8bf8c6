package seed

import (
	"context"
	"errors"
	"io"
	"testing"

	"adhub/pkg/logger"
	"adhub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	count     int64
	created   []*model.AdSpace
	createErr error
}

func (s *stubService) GetByID(context.Context, string) (*model.AdSpace, error) { return nil, nil }

func (s *stubService) ListAvailable(context.Context, model.AdSpaceFilter, int, int64) ([]*model.AdSpace, int64, error) {
	return nil, 0, nil
}

func (s *stubService) Create(_ context.Context, adSpace *model.AdSpace) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, adSpace)
	return nil
}

func (s *stubService) Count(context.Context) (int64, error) { return s.count, nil }

var discard = logger.New(logger.Config{Output: io.Discard})

func TestRun_EmptyStore(t *testing.T) {
	svc := &stubService{}
	inventory := DemoInventory()

	n, err := Run(context.Background(), svc, inventory, discard)
	require.NoError(t, err)
	assert.Equal(t, len(inventory), n)
	assert.Len(t, svc.created, len(inventory))
}

func TestRun_SkipsPopulatedStore(t *testing.T) {
	svc := &stubService{count: 3}

	n, err := Run(context.Background(), svc, DemoInventory(), discard)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, svc.created)
}

func TestRun_StopsOnFirstFailure(t *testing.T) {
	svc := &stubService{createErr: errors.New("duplicate")}

	n, err := Run(context.Background(), svc, DemoInventory(), discard)
	require.Error(t, err)
	assert.Zero(t, n)
}

func TestDemoInventory_IsValid(t *testing.T) {
	for _, adSpace := range DemoInventory() {
		assert.True(t, adSpace.Type.Valid(), adSpace.Name)
		assert.False(t, adSpace.PricePerDay.IsNegative(), adSpace.Name)
		assert.NotEmpty(t, adSpace.City)
	}
}
