package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/desknotify/internal/notification"
	"github.com/jmylchreest/desknotify/internal/notification/notificationtest"
	"github.com/jmylchreest/desknotify/internal/platform"
)

func newMention(b notification.Backend) *notification.Notification {
	return notification.NewMention(b, notification.MentionRequest{
		Title:     "Alice",
		Body:      "hello",
		ChannelID: "c1",
		TeamID:    "t1",
	}, "Community", platform.PolicyFor(platform.Linux))
}

func TestNotification_ShowFiresOnShowOnce(t *testing.T) {
	b := notificationtest.NewBackend()
	n := newMention(b)

	shows := 0
	n.OnShow(func() { shows++ })

	require.NoError(t, n.Show())
	assert.Equal(t, notification.StateShown, n.State())

	b.Toasts()[0].Emit(notification.RawShow)
	assert.Equal(t, 1, shows)
}

func TestNotification_ShowTwice(t *testing.T) {
	b := notificationtest.NewBackend()
	n := newMention(b)

	require.NoError(t, n.Show())
	assert.ErrorIs(t, n.Show(), notification.ErrAlreadyShown)
	assert.Len(t, b.Toasts(), 1)
}

func TestNotification_ShowFailure(t *testing.T) {
	b := notificationtest.NewBackend()
	b.FailShow = true
	n := newMention(b)

	err := n.Show()
	assert.ErrorIs(t, err, notificationtest.ErrShowFailed)
	assert.Equal(t, notification.StateClosed, n.State())
}

func TestNotification_NoBackend(t *testing.T) {
	n := newMention(nil)
	assert.ErrorIs(t, n.Show(), notification.ErrNoBackend)
}

func TestNotification_ClickFiresOnce(t *testing.T) {
	b := notificationtest.NewBackend()
	n := newMention(b)

	clicks := 0
	n.OnClick(func() { clicks++ })
	require.NoError(t, n.Show())

	toast := b.Toasts()[0]
	toast.Click()
	toast.Click()

	assert.Equal(t, 1, clicks)
	assert.Equal(t, notification.StateClicked, n.State())
}

func TestNotification_ClickBeforeShowImpliesShow(t *testing.T) {
	b := notificationtest.NewBackend()
	b.ManualShow = true
	n := newMention(b)

	var order []string
	n.OnShow(func() { order = append(order, "show") })
	n.OnClick(func() { order = append(order, "click") })
	require.NoError(t, n.Show())

	b.Toasts()[0].Click()
	b.Toasts()[0].Emit(notification.RawShow)

	assert.Equal(t, []string{"show", "click"}, order)
}

func TestNotification_CloseSuppressesLaterEvents(t *testing.T) {
	b := notificationtest.NewBackend()
	n := newMention(b)

	clicked := false
	n.OnClick(func() { clicked = true })
	require.NoError(t, n.Show())
	require.NoError(t, n.Close())

	b.Toasts()[0].Click()

	assert.False(t, clicked)
	assert.Equal(t, notification.StateClosed, n.State())
	assert.True(t, b.Toasts()[0].Closed())
}

func TestNotification_CloseIsNativeOnce(t *testing.T) {
	b := notificationtest.NewBackend()
	n := newMention(b)
	require.NoError(t, n.Show())

	require.NoError(t, n.Close())
	require.NoError(t, n.Close())

	assert.Equal(t, []string{"show:Community: Alice", "close:Community: Alice"}, b.Log())
}

func TestNotification_CloseBeforeShow(t *testing.T) {
	b := notificationtest.NewBackend()
	n := newMention(b)

	require.NoError(t, n.Close())
	assert.ErrorIs(t, n.Show(), notification.ErrClosed)
	assert.Empty(t, b.Toasts())
}

func TestNotification_NativeDismissIsTerminal(t *testing.T) {
	b := notificationtest.NewBackend()
	n := newMention(b)

	clicked := false
	n.OnClick(func() { clicked = true })
	require.NoError(t, n.Show())

	b.Toasts()[0].Emit(notification.RawClosed)
	b.Toasts()[0].Click()

	assert.False(t, clicked)
	assert.Equal(t, notification.StateClosed, n.State())
}

func TestNotification_ActionHandler(t *testing.T) {
	b := notificationtest.NewBackend()
	n, ok := notification.NewTest(b, platform.PolicyFor(platform.Darwin))
	require.True(t, ok)

	got := -1
	clicked := false
	n.OnAction(func(index int) { got = index })
	n.OnClick(func() { clicked = true })
	require.NoError(t, n.Show())

	b.Toasts()[0].Action(0)

	assert.Equal(t, 0, got)
	assert.False(t, clicked)
}

func TestNotification_ActionWithoutHandlerCountsAsClick(t *testing.T) {
	b := notificationtest.NewBackend()
	n := newMention(b)

	clicked := false
	n.OnClick(func() { clicked = true })
	require.NoError(t, n.Show())

	b.Toasts()[0].Action(0)
	assert.True(t, clicked)
}

func TestNotification_HasULID(t *testing.T) {
	a := newMention(nil)
	b := newMention(nil)
	assert.Len(t, a.ID, 26)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "created", notification.StateCreated.String())
	assert.Equal(t, "shown", notification.StateShown.String())
	assert.Equal(t, "clicked", notification.StateClicked.String())
	assert.Equal(t, "closed", notification.StateClosed.String())
	assert.True(t, notification.StateClicked.Terminal())
	assert.False(t, notification.StateShown.Terminal())
}
