package echoapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/educert/backend/core"
)

func TestOrdering_Bind(t *testing.T) {
	bind := func(raw string) Ordering {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/?ordering="+url.QueryEscape(raw), nil)
		ctx := e.NewContext(req, httptest.NewRecorder())
		var ord Ordering
		ord.Bind(ctx, "name", "email", "created_at")
		return ord
	}

	t.Run("sortable fields pass through", func(t *testing.T) {
		ord := bind("name,-created_at")
		assert.Equal(t, []core.DBOrdering{
			{Field: "name", Ascending: true},
			{Field: "created_at", Ascending: false},
		}, ord.Orderings)
	})

	t.Run("unknown fields are dropped", func(t *testing.T) {
		ord := bind(`name,password,email;DROP TABLE "user"--`)
		assert.Equal(t, []core.DBOrdering{{Field: "name", Ascending: true}}, ord.Orderings)
	})

	t.Run("empty param", func(t *testing.T) {
		assert.Empty(t, bind("").Orderings)
	})
}
