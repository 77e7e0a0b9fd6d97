package inkblog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestGuardPredicates(t *testing.T) {
	tests := []struct {
		name  string
		id    Identity
		admin bool
		owner bool
	}{
		{"anonymous", Identity{}, false, false},
		{"anonymous with stray level", Identity{Level: LevelAdmin}, false, false},
		{"reader", Identity{ID: 7}, false, false},
		{"admin", Identity{ID: 7, Level: LevelAdmin}, true, false},
		{"other level", Identity{ID: 7, Level: "editor"}, false, false},
		{"owner without level", Identity{ID: OwnerID}, false, true},
		{"owner with level", Identity{ID: OwnerID, Level: LevelAdmin}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.admin, IsAdmin(tt.id))
			assert.Equal(t, tt.owner, IsOwner(tt.id))
		})
	}
}

func TestOwnershipIgnoresLevel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("IsOwner depends only on the id", prop.ForAll(
		func(id uint, level string) bool {
			return IsOwner(Identity{ID: id, Level: level}) == (id == OwnerID)
		},
		gen.UIntRange(0, 10),
		gen.OneConstOf("", LevelAdmin, "editor"),
	))
	properties.Property("IsAdmin needs a signed-in admin", prop.ForAll(
		func(id uint, level string) bool {
			return IsAdmin(Identity{ID: id, Level: level}) == (id != 0 && level == LevelAdmin)
		},
		gen.UIntRange(0, 10),
		gen.OneConstOf("", LevelAdmin, "editor"),
	))

	properties.TestingRun(t)
}

func runGuard(id Identity, allow func(Identity) bool) (*httptest.ResponseRecorder, bool, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/guarded", nil), rec)
	c.Set(identityKey, id)
	reached := false
	err := requireIdentity(allow)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, reached, err
}

func TestRequireIdentity(t *testing.T) {
	t.Run("anonymous is redirected to login", func(t *testing.T) {
		rec, reached, err := runGuard(Identity{}, IsAdmin)
		assert.NoError(t, err)
		assert.False(t, reached)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("disallowed identity is forbidden", func(t *testing.T) {
		_, reached, err := runGuard(Identity{ID: 2}, IsAdmin)
		assert.False(t, reached)
		var he *echo.HTTPError
		if assert.ErrorAs(t, err, &he) {
			assert.Equal(t, http.StatusForbidden, he.Code)
		}
	})

	t.Run("allowed identity reaches the handler", func(t *testing.T) {
		rec, reached, err := runGuard(Identity{ID: OwnerID}, IsOwner)
		assert.NoError(t, err)
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestWithIdentityPassesResolvedIdentity(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	want := Identity{ID: 3, Name: "Cy", Email: "cy@example.com"}
	c.Set(identityKey, want)

	var got Identity
	err := withIdentity(func(c echo.Context, id Identity) error {
		got = id
		return nil
	})(c)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}
