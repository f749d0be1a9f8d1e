package spoke

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdReserve(t *testing.T) {
	r := NewIdReserve(10, 2)
	require.Equal(t, 2, r.Remaining())

	require.Equal(t, EntityId(10), r.Next())
	require.Equal(t, EntityId(11), r.Next())
	require.Equal(t, 0, r.Remaining())

	require.PanicsWithValue(t, "id reserve [10, 12) exhausted", func() {
		r.Next()
	})
}
