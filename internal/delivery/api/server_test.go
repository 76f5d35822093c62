package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spurt/config"
	apimiddleware "spurt/internal/delivery/api/middleware"
	"spurt/internal/delivery/api/router"
	"spurt/internal/delivery/api/router/handler"
	"spurt/internal/domain/entity"
	domainerrors "spurt/internal/domain/errors"
	"spurt/internal/domain/service"
	"spurt/internal/infra/auth"
	"spurt/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubEventUsecase struct {
	mock.Mock
}

func (s *stubEventUsecase) CreateEvent(ctx context.Context, input *usecase.CreateEventInput) (*entity.Event, error) {
	args := s.Called(ctx, input)
	event, _ := args.Get(0).(*entity.Event)

	return event, args.Error(1)
}

func (s *stubEventUsecase) ListEvents(ctx context.Context) ([]*entity.Event, error) {
	args := s.Called(ctx)
	events, _ := args.Get(0).([]*entity.Event)

	return events, args.Error(1)
}

func (s *stubEventUsecase) GetEvent(ctx context.Context, id int64) (*entity.Event, error) {
	args := s.Called(ctx, id)
	event, _ := args.Get(0).(*entity.Event)

	return event, args.Error(1)
}

func (s *stubEventUsecase) EventShareQR(ctx context.Context, id int64) ([]byte, error) {
	args := s.Called(ctx, id)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}

type serverFixtures struct {
	echo   *echo.Echo
	events *stubEventUsecase
	issuer service.TokenIssuer
}

func createTestServer(t *testing.T) serverFixtures {
	t.Helper()

	cfg := &config.Config{
		SecretKey: config.SecretKeyConfig{Token: "server-test-secret"},
		Metrics:   &config.MetricsConfig{Enabled: true},
	}
	cfg.HTTP.MaxRequestBodySize = "1MB"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	events := &stubEventUsecase{}
	e := newEcho(ServerParams{
		Cfg:             cfg,
		Logger:          logger,
		ErrorMiddleware: apimiddleware.NewErrorMiddleware(logger),
		RouterParams: router.RouterParams{
			AccountHandler:    handler.NewAccountHandler(handler.AccountHandlerParams{Logger: logger}),
			EventHandler:      handler.NewEventHandler(handler.EventHandlerParams{EventUC: events, Logger: logger}),
			PhotoHandler:      handler.NewPhotoHandler(handler.PhotoHandlerParams{Logger: logger}),
			SubscriberHandler: handler.NewSubscriberHandler(nil),
			AuthMiddleware:    apimiddleware.NewAuthMiddleware(apimiddleware.AuthMiddlewareParams{TokenIssuer: issuer, Logger: logger}),
			Config:            cfg,
		},
	})

	return serverFixtures{echo: e, events: events, issuer: issuer}
}

func (fx serverFixtures) createEvent(t *testing.T, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/spurt/createEvent", strings.NewReader(`{"title":"Launch"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	fx.echo.ServeHTTP(rec, req)

	return rec
}

func TestServer_AdminRouteRequiresToken(t *testing.T) {
	fx := createTestServer(t)

	rec := fx.createEvent(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = fx.createEvent(t, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	fx.events.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
}

func TestServer_ConfirmationTokenIsNotAnAccessToken(t *testing.T) {
	fx := createTestServer(t)
	user := &entity.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: entity.RoleAdmin}

	token, err := fx.issuer.IssueConfirmation(user)
	require.NoError(t, err)

	rec := fx.createEvent(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_AdminCreatesEvent(t *testing.T) {
	fx := createTestServer(t)
	user := &entity.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: entity.RoleAdmin}
	token, err := fx.issuer.Issue(user)
	require.NoError(t, err)

	fx.events.On("CreateEvent", mock.Anything, &usecase.CreateEventInput{Title: "Launch"}).
		Return(&entity.Event{ID: 9, Title: "Launch"}, nil).Once()

	rec := fx.createEvent(t, "Bearer "+token)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	fx.events.AssertExpectations(t)
}

func TestServer_NonAdminRoleIsForbidden(t *testing.T) {
	fx := createTestServer(t)
	token, err := fx.issuer.Issue(&entity.User{ID: 2, Email: "guest@example.com", Role: entity.Role("Guest")})
	require.NoError(t, err)

	rec := fx.createEvent(t, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_ErrorEnvelopeHidesInternalDetails(t *testing.T) {
	fx := createTestServer(t)
	fx.events.On("ListEvents", mock.Anything).
		Return(nil, domainerrors.NewPersistenceError(errors.New("dial tcp 10.0.0.5:5432: refused"), "failed to list events")).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/spurt", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	fx.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		Meta struct {
			RequestID string `json:"request_id"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PERSISTENCE_ERROR", body.Error.Code)
	assert.Equal(t, "req-123", body.Meta.RequestID)
}

func TestServer_StaticRoutesWinOverID(t *testing.T) {
	fx := createTestServer(t)
	fx.events.On("GetEvent", mock.Anything, int64(3)).Return(&entity.Event{ID: 3, Title: "Launch"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/spurt/getEvent/3", nil)
	rec := httptest.NewRecorder()
	fx.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	fx.events.AssertExpectations(t)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	fx := createTestServer(t)

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		fx.echo.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
