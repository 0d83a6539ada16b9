package mainlooptest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_AdvanceFiresDueTimersInOrder(t *testing.T) {
	l := New()
	var got []string
	l.AfterFunc(2*time.Second, func() { got = append(got, "b") })
	l.AfterFunc(time.Second, func() { got = append(got, "a") })
	l.AfterFunc(5*time.Second, func() { got = append(got, "c") })

	l.Advance(3 * time.Second)
	assert.Equal(t, []string{"a", "b"}, got)
	require.Len(t, l.Pending(), 1)
	assert.Equal(t, 2*time.Second, l.Pending()[0].Delay())
}

func TestLoop_StoppedTimerIsRemoved(t *testing.T) {
	l := New()
	ran := false
	timer := l.AfterFunc(time.Second, func() { ran = true })

	assert.True(t, timer.Stop())
	assert.Empty(t, l.Pending())
	l.Advance(time.Minute)
	assert.False(t, ran)
}

func TestLoop_NestedPostRunsAfterCurrentTask(t *testing.T) {
	l := New()
	var got []int
	l.Post(func() {
		l.Post(func() { got = append(got, 2) })
		got = append(got, 1)
	})
	assert.Equal(t, []int{1, 2}, got)
}
