package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/handler"
	"github.com/dmitrymomot/sessionkit/core/router"
)

func TestChain(t *testing.T) {
	t.Parallel()

	t.Run("runs middleware in declaration order", func(t *testing.T) {
		t.Parallel()

		var order []string
		mw := func(name string) handler.Middleware[*router.Context] {
			return func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
				return func(ctx *router.Context) handler.Response {
					order = append(order, name)
					return next(ctx)
				}
			}
		}

		endpoint := func(ctx *router.Context) handler.Response {
			order = append(order, "endpoint")
			return func(w http.ResponseWriter, r *http.Request) error {
				w.WriteHeader(http.StatusTeapot)
				return nil
			}
		}

		h := handler.Chain([]handler.Middleware[*router.Context]{mw("first"), mw("second")}, endpoint)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		resp := h(router.NewContext(w, r))
		require.NotNil(t, resp)
		require.NoError(t, resp(w, r))

		assert.Equal(t, []string{"first", "second", "endpoint"}, order)
		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("empty chain returns endpoint", func(t *testing.T) {
		t.Parallel()

		called := false
		endpoint := func(ctx *router.Context) handler.Response {
			called = true
			return nil
		}

		h := handler.Chain(nil, endpoint)
		h(router.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.True(t, called)
	})
}
