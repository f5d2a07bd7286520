package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

func TestRespondErrorStatuses(t *testing.T) {
	cases := map[error]int{
		shared.ErrNotFound:                       http.StatusNotFound,
		fmt.Errorf("x: %w", shared.ErrProtected): http.StatusConflict,
		fmt.Errorf("x: %w", shared.ErrDuplicate): http.StatusConflict,
		shared.Invalid("sku is required"):        http.StatusBadRequest,
		fmt.Errorf("boom"):                       http.StatusInternalServerError,
	}
	for err, status := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, err)
		require.Equal(t, status, rr.Code, err.Error())
		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Equal(t, status, body.Status)
	}
}

type bindTarget struct {
	Code string `json:"code" validate:"required"`
}

func TestBindValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":""}`))
	var target bindTarget
	err := Bind(req, &target)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "Code failed required")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"1000"}`))
	require.NoError(t, Bind(req, &target))
	require.Equal(t, "1000", target.Code)
}

func TestIDParam(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "42")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	id, err := IDParam(req, "id")
	require.NoError(t, err)
	require.EqualValues(t, 42, id)

	rctx.URLParams = chi.RouteParams{}
	rctx.URLParams.Add("id", "-1")
	_, err = IDParam(req, "id")
	require.ErrorIs(t, err, shared.ErrValidation)
}
