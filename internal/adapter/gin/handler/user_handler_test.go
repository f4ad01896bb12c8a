package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	usecase "highscore-user-service/internal/usecase/user"
	pkgerrors "highscore-user-service/pkg/errors"
)

// MockUserUsecase is a mock implementation of user.UserUsecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) Register(ctx context.Context, req usecase.RegisterRequest) (*usecase.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserResponse), args.Error(1)
}

func (m *MockUserUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*usecase.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserResponse), args.Error(1)
}

func (m *MockUserUsecase) UpdateScore(ctx context.Context, req usecase.UpdateScoreRequest) (*usecase.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserResponse), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, req usecase.DeleteUserRequest) (*usecase.DeleteUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DeleteUserResponse), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserResponse), args.Error(1)
}

func setupTest(t *testing.T) (*gin.Engine, *UserHandler, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	handler := NewUserHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	r.POST("/register", handler.Register)
	r.POST("/login", handler.Login)
	r.PUT("/update-score/:user_id", handler.UpdateScore)
	r.DELETE("/delete-user/:user_id", handler.DeleteUser)
	r.GET("/users/:user_id", handler.GetUser)
	return r, handler, mockUsecase
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

var ann = &usecase.UserResponse{ID: "u1", Name: "Ann", Email: "a@x.com", Highscore: 0}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("Register", mock.Anything, usecase.RegisterRequest{
			Name: "Ann", Email: "a@x.com", Password: "pw",
		}).Return(ann, nil)

		w := doJSON(r, http.MethodPost, "/register", `{"name":"Ann","email":"a@x.com","password":"pw"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decode[UserResponse](t, w)
		assert.Equal(t, UserResponse{ID: "u1", Name: "Ann", Email: "a@x.com", Highscore: 0}, resp)
		assert.NotContains(t, w.Body.String(), "password")
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)

		w := doJSON(r, http.MethodPost, "/register", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_request", decode[ErrorResponse](t, w).Error)
		mockUsecase.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("Register", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewAlreadyExistsError("user", "email already exists"))

		w := doJSON(r, http.MethodPost, "/register", `{"name":"Ann","email":"a@x.com","password":"pw"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "already_exists", resp.Error)
		assert.Equal(t, "email already exists", resp.Message)
	})

	t.Run("Validation error", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("Register", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewValidationError("", "email is required"))

		w := doJSON(r, http.MethodPost, "/register", `{"name":"Ann","password":"pw"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", decode[ErrorResponse](t, w).Error)
	})

	t.Run("Internal error hides details", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("Register", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewInternalError("failed to create user", errors.New("db password wrong")))

		w := doJSON(r, http.MethodPost, "/register", `{"name":"Ann","email":"a@x.com","password":"pw"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "internal_error", resp.Error)
		assert.NotContains(t, resp.Message, "db password")
	})

	t.Run("Untyped error", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		w := doJSON(r, http.MethodPost, "/register", `{"name":"Ann","email":"a@x.com","password":"pw"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("Login", mock.Anything, usecase.LoginRequest{Name: "Ann", Password: "pw"}).Return(ann, nil)

		w := doJSON(r, http.MethodPost, "/login", `{"name":"Ann","password":"pw"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u1", decode[UserResponse](t, w).ID)
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("Login", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewUnauthorizedError("invalid credentials"))

		w := doJSON(r, http.MethodPost, "/login", `{"name":"Ann","password":"nope"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decode[ErrorResponse](t, w).Error)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		r, _, _ := setupTest(t)

		w := doJSON(r, http.MethodPost, "/login", `not json`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateScore(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateScore", mock.Anything, usecase.UpdateScoreRequest{ID: "u1", Highscore: 42}).
			Return(&usecase.UserResponse{ID: "u1", Name: "Ann", Email: "a@x.com", Highscore: 42}, nil)

		w := doJSON(r, http.MethodPut, "/update-score/u1", `{"highscore":42}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(42), decode[UserResponse](t, w).Highscore)
	})

	t.Run("Zero is a valid score", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateScore", mock.Anything, usecase.UpdateScoreRequest{ID: "u1", Highscore: 0}).
			Return(ann, nil)

		w := doJSON(r, http.MethodPut, "/update-score/u1", `{"highscore":0}`)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Missing highscore", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)

		w := doJSON(r, http.MethodPut, "/update-score/u1", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertNotCalled(t, "UpdateScore", mock.Anything, mock.Anything)
	})

	t.Run("Non-integer highscore", func(t *testing.T) {
		r, _, _ := setupTest(t)

		w := doJSON(r, http.MethodPut, "/update-score/u1", `{"highscore":"lots"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Not found", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateScore", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewNotFoundError("user", ""))

		w := doJSON(r, http.MethodPut, "/update-score/missing", `{"highscore":1}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "not_found", resp.Error)
		assert.Equal(t, "user not found", resp.Message)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("DeleteUser", mock.Anything, usecase.DeleteUserRequest{ID: "u1"}).
			Return(&usecase.DeleteUserResponse{ID: "u1", Message: usecase.DeletedMessage}, nil)

		w := doJSON(r, http.MethodDelete, "/delete-user/u1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"User deleted"}`, w.Body.String())
	})

	t.Run("Not found", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("DeleteUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewNotFoundError("user", ""))

		w := doJSON(r, http.MethodDelete, "/delete-user/u1", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: "u1"}).Return(ann, nil)

		w := doJSON(r, http.MethodGet, "/users/u1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Ann", decode[UserResponse](t, w).Name)
	})

	t.Run("Not found", func(t *testing.T) {
		r, _, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewNotFoundError("user", ""))

		w := doJSON(r, http.MethodGet, "/users/nope", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"healthy", nil, http.StatusOK, "healthy"},
		{"database down", errors.New("dial tcp: refused"), http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(fakePinger{tt.err}, "svc", zaptest.NewLogger(t)).Health)

			w := doJSON(r, http.MethodGet, "/health", "")

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, decode[map[string]string](t, w)["status"])
		})
	}
}
