package fountain

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRng() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func resourceFromApp[T any](t *testing.T, app *App) *T {
	t.Helper()
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	require.True(t, ok, "resource %T not installed", (*T)(nil))
	return r.(*T)
}
