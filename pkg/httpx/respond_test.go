package httpx

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luciferfruits/storefront/pkg/apperr"
)

type detailedErr struct{}

func (detailedErr) Error() string { return "stock shortfall: x" }
func (detailedErr) Unwrap() error { return apperr.ErrStockShortfall }
func (detailedErr) ErrorFields() map[string]any {
	return map[string]any{"shortfalls": []string{"x"}}
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		apperr.ErrValidation:                     http.StatusBadRequest,
		fmt.Errorf("%w: bad", apperr.ErrFormat):  http.StatusBadRequest,
		fmt.Errorf("x %w", apperr.ErrNotFound):   http.StatusNotFound,
		apperr.ErrOutOfStock:                     http.StatusConflict,
		apperr.ErrInsufficientStock:              http.StatusConflict,
		detailedErr{}:                            http.StatusConflict,
		apperr.ErrConfirmationRequired:           http.StatusPreconditionRequired,
		fmt.Errorf("%w: disk", apperr.ErrStorage): http.StatusInsufficientStorage,
		errors.New("boom"):                       http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}

func TestFail(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	rec := httptest.NewRecorder()
	Fail(rec, log, errors.New("secret detail"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Fail(rec, log, detailedErr{})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"stock shortfall: x","shortfalls":["x"]}`, rec.Body.String())
}

func TestDecodeAndConfirmed(t *testing.T) {
	var v struct{ A int }
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"A":`))
	assert.ErrorIs(t, Decode(r, &v), apperr.ErrFormat)

	assert.True(t, Confirmed(httptest.NewRequest(http.MethodPost, "/?confirm=true", nil)))
	assert.False(t, Confirmed(httptest.NewRequest(http.MethodPost, "/?confirm=1", nil)))
}
