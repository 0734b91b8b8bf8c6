package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	adspaceserrors "adhub/internal/adspaces/errors"
	"adhub/internal/adspaces/validator"
	"adhub/pkg/config"
	apperrors "adhub/pkg/errors"
	"adhub/pkg/logger"
	"adhub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAdSpaceRepo struct {
	mu        sync.Mutex
	spaces    map[string]*model.AdSpace
	lastLimit int
	findErr   error
	countErr  error
	nextID    int
}

func newMockRepo(spaces ...*model.AdSpace) *mockAdSpaceRepo {
	r := &mockAdSpaceRepo{spaces: map[string]*model.AdSpace{}}
	for _, s := range spaces {
		r.spaces[s.ID] = s
	}
	return r
}

func (m *mockAdSpaceRepo) FindByID(_ context.Context, id string) (*model.AdSpace, error) {
	if id == "bad-id" {
		return nil, adspaceserrors.ErrInvalidID
	}
	if id == "boom" {
		return nil, errors.New("connection reset")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.spaces[id]
	if !ok {
		return nil, adspaceserrors.ErrNotFound
	}
	return s, nil
}

func (m *mockAdSpaceRepo) matching(filter model.AdSpaceFilter) []*model.AdSpace {
	var out []*model.AdSpace
	for _, s := range m.spaces {
		if s.Status != model.AdSpaceAvailable {
			continue
		}
		if filter.Type != "" && s.Type != filter.Type {
			continue
		}
		if filter.City != "" && !strings.EqualFold(s.City, filter.City) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (m *mockAdSpaceRepo) FindAvailable(_ context.Context, filter model.AdSpaceFilter, limit int, _ int64) ([]*model.AdSpace, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	out := m.matching(filter)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockAdSpaceRepo) CountAvailable(_ context.Context, filter model.AdSpaceFilter) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(filter))), nil
}

func (m *mockAdSpaceRepo) Create(_ context.Context, s *model.AdSpace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = fmt.Sprintf("as-%d", m.nextID)
	m.spaces[s.ID] = s
	return nil
}

func (m *mockAdSpaceRepo) Update(_ context.Context, s *model.AdSpace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spaces[s.ID] = s
	return nil
}

func (m *mockAdSpaceRepo) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.spaces)), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:         logger.New(logger.Config{Output: io.Discard}),
		ReadTimeout: time.Second,
	}
}

func newTestService(repo *mockAdSpaceRepo) AdSpaceService {
	cfg := testConfig()
	return NewAdSpaceService(repo, validator.NewAdSpaceValidator(cfg.Log), cfg)
}

func space(id string, typ model.AdSpaceType, city string, status model.AdSpaceStatus) *model.AdSpace {
	return &model.AdSpace{
		ID:          id,
		Name:        "Space " + id,
		Type:        typ,
		City:        city,
		Address:     "Main St",
		PricePerDay: model.MustMoney("100"),
		Status:      status,
	}
}

func TestGetByID(t *testing.T) {
	svc := newTestService(newMockRepo(space("a1", model.AdSpaceTypeBillboard, "Bangkok", model.AdSpaceAvailable)))

	got, err := svc.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)

	tests := []struct {
		id   string
		code string
	}{
		{"missing", apperrors.CodeNotFound},
		{"bad-id", apperrors.CodeInvalidInput},
		{"", apperrors.CodeInvalidInput},
		{"boom", apperrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.id, func(t *testing.T) {
			_, err := svc.GetByID(context.Background(), tt.id)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestListAvailable_FiltersAndCounts(t *testing.T) {
	repo := newMockRepo(
		space("a1", model.AdSpaceTypeBillboard, "Bangkok", model.AdSpaceAvailable),
		space("a2", model.AdSpaceTypeBillboard, "bangkok", model.AdSpaceAvailable),
		space("a3", model.AdSpaceTypeBusStop, "Bangkok", model.AdSpaceAvailable),
		space("a4", model.AdSpaceTypeBillboard, "Bangkok", model.AdSpaceBooked),
		space("a5", model.AdSpaceTypeBillboard, "Chiang Mai", model.AdSpaceAvailable),
	)
	svc := newTestService(repo)

	spaces, total, err := svc.ListAvailable(context.Background(), model.AdSpaceFilter{
		Type: model.AdSpaceTypeBillboard,
		City: "  BANGKOK ",
	}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, spaces, 2)
	assert.Equal(t, config.DefaultPageSize, repo.lastLimit)

	_, total, err = svc.ListAvailable(context.Background(), model.AdSpaceFilter{}, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, config.MaxPaginationLimit, repo.lastLimit)
}

func TestListAvailable_UnknownTypeIsInvalidInput(t *testing.T) {
	svc := newTestService(newMockRepo())

	_, _, err := svc.ListAvailable(context.Background(), model.AdSpaceFilter{Type: "BLIMP"}, 10, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestListAvailable_StoreFailure(t *testing.T) {
	repo := newMockRepo()
	repo.countErr = errors.New("socket closed")
	svc := newTestService(repo)

	_, _, err := svc.ListAvailable(context.Background(), model.AdSpaceFilter{}, 10, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestCreate_NormalizesAndDefaultsStatus(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	s := &model.AdSpace{
		Name:        "  Central   World  Screen ",
		Type:        model.AdSpaceTypeMallDisplay,
		City:        " Bangkok ",
		Address:     "Ratchadamri  Rd",
		PricePerDay: model.MustMoney("250.50"),
	}
	require.NoError(t, svc.Create(context.Background(), s))

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Central World Screen", s.Name)
	assert.Equal(t, "Bangkok", s.City)
	assert.Equal(t, model.AdSpaceAvailable, s.Status)

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreate_RejectsInvalid(t *testing.T) {
	svc := newTestService(newMockRepo())

	err := svc.Create(context.Background(), &model.AdSpace{Name: "X", Type: "BLIMP"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
