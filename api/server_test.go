package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gaznger/auth"
	"gaznger/config"
	"gaznger/models"
	"gaznger/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestServer(uow *service.MockUnitOfWork) (*Server, *auth.TokenIssuer) {
	factory := service.NewMockUnitOfWorkFactory(uow)
	tokens := auth.NewTokenIssuer("test-secret", 15*time.Minute, 7*24*time.Hour)

	return NewServer(
		service.NewAuthService(factory, tokens),
		service.NewUserService(factory),
		service.NewPointsService(factory),
		service.NewSettlementService(factory),
		service.NewOrderService(factory, config.RewardConfig{OrderPlaced: 50, OrderDelivered: 100, RatingSubmitted: 20}),
		service.NewStationService(factory),
		service.NewNotificationService(factory, nil),
		tokens,
	), tokens
}

func bearerRequest(t *testing.T, tokens *auth.TokenIssuer, method, path string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)

	access, err := tokens.IssueAccess(42)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+access)
	return req
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(service.NewMockUnitOfWork())

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_APIRequiresBearerToken(t *testing.T) {
	server, _ := newTestServer(service.NewMockUnitOfWork())

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/points/42", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_APIRejectsRefreshTokenAsBearer(t *testing.T) {
	server, tokens := newTestServer(service.NewMockUnitOfWork())

	refresh, _, err := tokens.IssueRefresh(42)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/points/42", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_GetPoints(t *testing.T) {
	uow := service.NewMockUnitOfWork()
	server, tokens := newTestServer(uow)

	uow.UserRepo.On("GetPoints", mock.Anything, int64(42)).Return(int64(150), nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, bearerRequest(t, tokens, http.MethodGet, "/api/points/42", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(150), body["points"])
	assert.NotContains(t, body, "effectivePoints", "balance reads serve the cache only")
	uow.PointRepo.AssertNotCalled(t, "SumEligible", mock.Anything, mock.Anything, mock.Anything)
}

func TestServer_GetPoints_EffectiveFlag(t *testing.T) {
	uow := service.NewMockUnitOfWork()
	server, tokens := newTestServer(uow)

	uow.UserRepo.On("GetPoints", mock.Anything, int64(42)).Return(int64(150), nil)
	uow.UserRepo.On("GetByID", mock.Anything, int64(42)).Return(&models.User{ID: 42, Points: 150}, nil)
	uow.PointRepo.On("SumEligible", mock.Anything, int64(42), mock.AnythingOfType("time.Time")).Return(int64(130), nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, bearerRequest(t, tokens, http.MethodGet, "/api/points/42?effective=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Points          int64 `json:"points"`
		EffectivePoints int64 `json:"effectivePoints"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(150), body.Points)
	assert.Equal(t, int64(130), body.EffectivePoints)
}

func TestServer_AdjustPoints(t *testing.T) {
	uow := service.NewMockUnitOfWork()
	server, tokens := newTestServer(uow)

	uow.UserRepo.On("GetByID", mock.Anything, int64(42)).Return(&models.User{ID: 42, Points: 100}, nil)
	uow.PointRepo.On("Insert", mock.Anything, mock.MatchedBy(func(e *models.PointEntry) bool {
		return e.Change == -40 && e.Kind == models.PointKindAdjust
	})).Return(nil)
	uow.UserRepo.On("ApplyPointsDelta", mock.Anything, int64(42), int64(-40)).Return(int64(60), nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.PointsChangeEvent")).Return()

	req := bearerRequest(t, tokens, http.MethodPatch, "/api/points/42", map[string]any{
		"change":      -40,
		"description": "support correction",
	})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Points int64 `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(60), body.Points)
}

func TestServer_AdjustPoints_ZeroChangeRejected(t *testing.T) {
	uow := service.NewMockUnitOfWork()
	server, tokens := newTestServer(uow)

	req := bearerRequest(t, tokens, http.MethodPatch, "/api/points/42", map[string]any{"change": 0})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Register(t *testing.T) {
	uow := service.NewMockUnitOfWork()
	server, _ := newTestServer(uow)

	uow.UserRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, nil)
	uow.UserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 7
	}).Return(nil)
	uow.RefreshTokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.RefreshToken")).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.UserRegisteredEvent")).Return()

	payload, _ := json.Marshal(map[string]string{
		"email":       "jane@example.com",
		"password":    "s3cret",
		"displayName": "Jane",
		"gender":      "female",
	})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(payload)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		User         struct{ ID int64 } `json:"user"`
		AccessToken  string             `json:"accessToken"`
		RefreshToken string             `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.User.ID)
	assert.NotEmpty(t, body.AccessToken)
	assert.NotEmpty(t, body.RefreshToken)
}

func TestServer_Register_DuplicateEmail(t *testing.T) {
	uow := service.NewMockUnitOfWork()
	server, _ := newTestServer(uow)

	uow.UserRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(&models.User{ID: 1}, nil)

	payload, _ := json.Marshal(map[string]string{
		"email":       "jane@example.com",
		"password":    "s3cret",
		"displayName": "Jane",
		"gender":      "female",
	})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(payload)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_ManualSettle(t *testing.T) {
	uow := service.NewMockUnitOfWork()
	server, tokens := newTestServer(uow)

	uow.PointRepo.On("MarkLapsed", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(0), nil)
	uow.PointRepo.On("ListEligibleUnsettled", mock.Anything, mock.AnythingOfType("time.Time")).Return([]*models.PointEntry{}, nil)
	uow.SettlementRunRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.SettlementRun")).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.SettlementCompleteEvent")).Return()

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, bearerRequest(t, tokens, http.MethodPost, "/api/points/settle", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var run models.SettlementRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, 0, run.EntriesSettled)
}
