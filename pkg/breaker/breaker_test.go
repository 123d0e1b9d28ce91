package breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/bookwyrm/catalog/pkg/breaker"
	"github.com/stretchr/testify/require"
)

func TestBreaker_Call(t *testing.T) {
	t.Parallel()

	ok := func() error { return nil }
	boom := func() error { return errors.New("broker down") }

	b := breaker.New(4, 50*time.Millisecond, 0.5, 2)

	for i := 0; i < 4; i++ {
		require.NoError(t, b.Call(ok))
	}

	// half the window failing trips the breaker
	require.Error(t, b.Call(boom))
	require.Error(t, b.Call(boom))
	require.ErrorIs(t, b.Call(ok), breaker.ErrOpen)

	// after cooldown a probe goes through again
	time.Sleep(60 * time.Millisecond)
	require.NoError(t, b.Call(ok))
	require.NoError(t, b.Call(ok))

	// failing during half-open reopens immediately
	require.Error(t, b.Call(boom))
	require.ErrorIs(t, b.Call(ok), breaker.ErrOpen)

	b.Reset()
	require.NoError(t, b.Call(ok))
}
