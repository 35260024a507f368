package cronutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	err := s.Cron("not a cron spec", func() {})
	require.Error(t, err)

	fired := make(chan struct{}, 1)
	err = s.Cron("@every 1s", func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled callback never fired")
	}
}
