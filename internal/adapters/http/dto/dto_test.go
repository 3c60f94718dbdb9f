package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/licensing-mesh/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewErrorResponse(t *testing.T) {
	got := NewErrorResponse(ErrorCodeNotFound, "resource not found")

	assert.Equal(t, &ErrorResponse{
		Error: ErrorDetail{Code: ErrorCodeNotFound, Message: "resource not found"},
	}, got)
}

func TestNewErrorResponseWithDetails(t *testing.T) {
	details := map[string]string{"licenseId": "this field is required"}

	got := NewErrorResponseWithDetails(ErrorCodeValidation, "validation failed", details)

	assert.Equal(t, ErrorCodeValidation, got.Error.Code)
	assert.Equal(t, details, got.Error.Details)
}

func TestWithTraceID(t *testing.T) {
	resp := NewErrorResponse(ErrorCodeInternal, "internal error")

	got := resp.WithTraceID("trace-123")

	assert.Equal(t, "trace-123", got.TraceID)
	assert.Same(t, resp, got)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeBadRequest, http.StatusBadRequest},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeBadGateway, http.StatusBadGateway},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestErrorResponse_Status(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, "no route").Status())
	assert.Equal(t, http.StatusBadGateway, NewErrorResponse(ErrorCodeBadGateway, "upstream").Status())
	assert.Equal(t, http.StatusInternalServerError, NewErrorResponse("", "").Status())
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"license not found", domain.NewNotFoundError("license", "abc"), http.StatusNotFound, ErrorCodeNotFound},
		{"wrapped not found", errors.Join(errors.New("ctx"), domain.NewNotFoundError("license", "abc")), http.StatusNotFound, ErrorCodeNotFound},
		{"validation", domain.NewValidationError("id", "required"), http.StatusBadRequest, ErrorCodeValidation},
		{"unavailable", domain.NewUnavailableError("organizationservice", "HTTP 500"), http.StatusServiceUnavailable, ErrorCodeUnavailable},
		{"no instances", domain.NewNoInstancesError("organizationservice"), http.StatusServiceUnavailable, ErrorCodeUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}

	t.Run("nil", func(t *testing.T) {
		status, resp := MapDomainError(nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Nil(t, resp)
	})

	t.Run("validation details", func(t *testing.T) {
		_, resp := MapDomainError(domain.NewValidationError("licenseId", "must not be empty"))
		assert.Equal(t, map[string]string{"licenseId": "must not be empty"}, resp.Error.Details)
	})

	t.Run("internal message is generic", func(t *testing.T) {
		_, resp := MapDomainError(errors.New("password=hunter2"))
		assert.NotContains(t, resp.Error.Message, "hunter2")
	})
}

func TestGetTraceID(t *testing.T) {
	tests := []struct {
		name         string
		setupContext func(*gin.Context)
		want         string
	}{
		{
			name:         "trace ID in context",
			setupContext: func(c *gin.Context) { c.Set(ContextKeyTraceID, "context-trace-123") },
			want:         "context-trace-123",
		},
		{
			name:         "request ID header",
			setupContext: func(c *gin.Context) { c.Request.Header.Set("X-Request-ID", "header-trace-456") },
			want:         "header-trace-456",
		},
		{
			name: "context takes precedence",
			setupContext: func(c *gin.Context) {
				c.Set(ContextKeyTraceID, "context-trace-123")
				c.Request.Header.Set("X-Request-ID", "header-trace-456")
			},
			want: "context-trace-123",
		},
		{
			name:         "none",
			setupContext: func(*gin.Context) {},
			want:         "",
		},
		{
			name:         "wrong type in context",
			setupContext: func(c *gin.Context) { c.Set(ContextKeyTraceID, 12345) },
			want:         "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			tt.setupContext(c)

			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatus     int
		wantCode       string
		wantMessageKey string
	}{
		{"not found", domain.NewNotFoundError("license", "123"), http.StatusNotFound, ErrorCodeNotFound, "license"},
		{"validation", domain.NewValidationError("licenseId", "must not be empty"), http.StatusBadRequest, ErrorCodeValidation, "licenseId"},
		{"no instances", domain.NewNoInstancesError("organizationservice"), http.StatusServiceUnavailable, ErrorCodeUnavailable, "organizationservice"},
		{"internal", errors.New("unexpected error"), http.StatusInternalServerError, ErrorCodeInternal, "internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(ContextKeyTraceID, "trace-123")

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

			assert.Equal(t, tt.wantCode, response.Error.Code)
			assert.Contains(t, response.Error.Message, tt.wantMessageKey)
			assert.Equal(t, "trace-123", response.TraceID)
		})
	}
}

func TestRespondWithErrorCode(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithErrorCode(c, ErrorCodeBadRequest, "bad path")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"BAD_REQUEST"`)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusServiceUnavailable, ErrorCodeUnavailable, "no instance of licensingservice", "req-42")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, ErrorCodeUnavailable, response.Error.Code)
	assert.Equal(t, "req-42", response.TraceID)
}

func TestValidator(t *testing.T) {
	assert.Same(t, Validator(), Validator())
}

type licensePath struct {
	LicenseID string `uri:"licenseId" validate:"notempty,max=64"`
}

func TestBindURIAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantField  string
	}{
		{"valid", "/licenses/f3831f8c", http.StatusOK, ""},
		{"blank", "/licenses/%20%20", http.StatusBadRequest, "licenseId"},
		{"too long", "/licenses/" + "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", http.StatusBadRequest, "licenseId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields map[string]string

			router := gin.New()
			router.GET("/licenses/:licenseId", func(c *gin.Context) {
				var p licensePath
				if err := BindURIAndValidate(c, &p); err != nil {
					fields = ValidationErrors(err)
					RespondWithValidationErrors(c, fields)
					return
				}
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantField != "" {
				assert.Contains(t, fields, tt.wantField)
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	type testStruct struct {
		Name  string `json:"name"  validate:"required"`
		Email string `json:"email" validate:"email"`
		Age   int    `json:"age"   validate:"gte=0,lte=120"`
	}

	err := Validate(&testStruct{Email: "not-an-email", Age: 150})
	require.ErrorIs(t, err, ErrValidation)

	got := ValidationErrors(err)
	assert.Len(t, got, 3)
	assert.Equal(t, "this field is required", got["name"])
	assert.Equal(t, "must be a valid email address", got["email"])
	assert.Equal(t, "must be less than or equal to 120", got["age"])

	assert.Empty(t, ValidationErrors(errors.New("some error")))
}

func TestIsValidationError(t *testing.T) {
	type testStruct struct {
		Name string `validate:"required"`
	}

	assert.True(t, IsValidationError(Validate(&testStruct{})))
	assert.False(t, IsValidationError(errors.New("some error")))
	assert.False(t, IsValidationError(nil))
}

func TestValidationMessage(t *testing.T) {
	type testStruct struct {
		Count    int    `json:"count"    validate:"min=1,max=10"`
		Role     string `json:"role"     validate:"oneof=rest feign discovery"`
		Text     string `json:"text"     validate:"min=5,max=100"`
		Username string `json:"username" validate:"notempty"`
		Kind     string `json:"kind"     validate:"alpha"`
	}

	err := Validate(&testStruct{Count: 20, Role: "grpc", Text: "abc", Username: "  ", Kind: "123"})
	require.Error(t, err)

	assert.Equal(t, map[string]string{
		"count":    "must be at most 10",
		"role":     "must be one of: rest feign discovery",
		"text":     "must be at least 5 characters",
		"username": "must not be empty",
		"kind":     "failed validation: alpha",
	}, ValidationErrors(err))
}

func TestIdentifierValidation(t *testing.T) {
	type path struct {
		ID string `uri:"organizationId" validate:"identifier"`
	}

	valid := []string{"e254f8c-c442-4ebe-a82a-e2fc1d1ff78a", "org_1", "crm.co:eu"}
	for _, id := range valid {
		assert.NoError(t, Validate(&path{ID: id}), id)
	}

	invalid := []string{"", " ", "-leading", "a b", "a/b"}
	for _, id := range invalid {
		err := Validate(&path{ID: id})
		require.Error(t, err, id)
		assert.Equal(t, map[string]string{"organizationId": "must be a valid identifier"}, ValidationErrors(err))
	}
}
