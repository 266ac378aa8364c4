package common_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quotepay/internal/common"
)

func TestWriteErrorAppError(t *testing.T) {
	cause := errors.New("boom")
	appErr := common.NewAppError("INVALID_AMOUNT", "amount must not be negative", http.StatusUnprocessableEntity, cause)
	require.ErrorIs(t, appErr, cause)
	var target *common.AppError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", appErr), &target)

	rr := httptest.NewRecorder()
	common.WriteError(rr, fmt.Errorf("wrapped: %w", appErr))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var body struct {
		Error common.ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "INVALID_AMOUNT", body.Error.Code)
	require.Equal(t, "amount must not be negative", body.Error.Message)
}

func TestData(t *testing.T) {
	rr := httptest.NewRecorder()
	common.Data(rr, http.StatusOK, map[string]string{"payload": "000201"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"data":{"payload":"000201"}}`, rr.Body.String())
}

func TestWriteErrorUnknown(t *testing.T) {
	rr := httptest.NewRecorder()
	common.WriteError(rr, errors.New("db exploded"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "db exploded")
}
