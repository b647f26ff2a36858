package dbus

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/desknotify/internal/notification"
)

func TestCloseReason_String(t *testing.T) {
	tests := []struct {
		reason CloseReason
		want   string
	}{
		{CloseReasonExpired, "expired"},
		{CloseReasonDismissed, "dismissed"},
		{CloseReasonClosed, "closed"},
		{CloseReasonUndefined, "undefined"},
		{CloseReason(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.reason.String())
		})
	}
}

func TestFlattenActions(t *testing.T) {
	actions := []notification.Action{
		{Key: "default", Label: "Open"},
		{Key: "sounds-good", Label: "Sounds good"},
	}
	assert.Equal(t, []string{"default", "Open", "sounds-good", "Sounds good"}, FlattenActions(actions))
	assert.Empty(t, FlattenActions(nil))
}

func TestActionIndex(t *testing.T) {
	actions := []notification.Action{{Key: "a"}, {Key: "b"}}
	assert.Equal(t, 0, ActionIndex(actions, "a"))
	assert.Equal(t, 1, ActionIndex(actions, "b"))
	assert.Equal(t, -1, ActionIndex(actions, "c"))
}

func TestBuildHints(t *testing.T) {
	t.Run("full content", func(t *testing.T) {
		hints := BuildHints(notification.Content{
			Urgency:  notification.UrgencyCritical,
			Category: "im.received",
			Silent:   true,
			Icon:     "/usr/share/icons/app.png",
		}, "desknotify")

		assert.Equal(t, byte(2), hints["urgency"].Value())
		assert.Equal(t, "im.received", hints["category"].Value())
		assert.Equal(t, true, hints["suppress-sound"].Value())
		assert.Equal(t, "desknotify", hints["desktop-entry"].Value())
		assert.Equal(t, "/usr/share/icons/app.png", hints["image-path"].Value())
	})

	t.Run("minimal content", func(t *testing.T) {
		hints := BuildHints(notification.Content{Icon: "dialog-information"}, "")

		require.Contains(t, hints, "urgency")
		assert.Equal(t, byte(0), hints["urgency"].Value())
		assert.NotContains(t, hints, "category")
		assert.NotContains(t, hints, "suppress-sound")
		assert.NotContains(t, hints, "desktop-entry")
		assert.NotContains(t, hints, "image-path", "icon names are passed as app_icon, not image-path")
	})
}

func TestVariantsRoundTrip(t *testing.T) {
	assert.Nil(t, variantsToMap(nil))

	in := map[string]any{"soundName": "Bing", "count": int32(2)}
	out := variantsToMap(mapToVariants(in))
	assert.Equal(t, in, out)
}

func TestServer_DisplayMentionDecodesData(t *testing.T) {
	h := &fakeHandler{}
	s := NewServer(h, nil)

	derr := s.DisplayMention("Alice", "hi", "c1", "t1", "https://x/c1", true, "surface-1",
		map[string]dbus.Variant{"soundName": dbus.MakeVariant("Bing")})
	require.Nil(t, derr)

	require.Len(t, h.mentions, 1)
	req := h.mentions[0]
	assert.Equal(t, "Alice", req.Title)
	assert.Equal(t, "c1", req.ChannelID)
	assert.Equal(t, "t1", req.TeamID)
	assert.True(t, req.Silent)
	assert.Equal(t, "surface-1", req.SurfaceID)
	assert.Equal(t, "Bing", req.Data["soundName"])
}

func TestServer_RegisterSurfaceRejectsEmptyID(t *testing.T) {
	h := &fakeHandler{}
	s := NewServer(h, nil)

	assert.NotNil(t, s.RegisterSurface("", "label"))
	assert.Nil(t, s.RegisterSurface("s1", "Work"))
	assert.Equal(t, map[string]string{"s1": "Work"}, h.surfaces)
}

func TestServer_GetStatus(t *testing.T) {
	h := &fakeHandler{status: Status{Platform: "linux", Capable: true, Shown: 3}}
	s := NewServer(h, nil)

	raw, derr := s.GetStatus()
	require.Nil(t, derr)
	assert.Contains(t, raw, `"platform":"linux"`)
	assert.Contains(t, raw, `"shown":3`)
}

func TestServer_EmitWithoutConnection(t *testing.T) {
	s := NewServer(&fakeHandler{}, nil)
	assert.Error(t, s.EmitPlaySound("Bing"))
	assert.Error(t, s.EmitFlashAttention(true))
}

type fakeHandler struct {
	mentions []notification.MentionRequest
	surfaces map[string]string
	status   Status
}

func (h *fakeHandler) DisplayMention(req notification.MentionRequest) {
	h.mentions = append(h.mentions, req)
}
func (h *fakeHandler) DisplayDownloadCompleted(string, string, string) {}
func (h *fakeHandler) DisplayUpgrade(string, func()) {}
func (h *fakeHandler) DisplayRestartToUpgrade(string, func()) {}
func (h *fakeHandler) SendTestNotification() {}
func (h *fakeHandler) RegisterSurface(id, label string) {
	if h.surfaces == nil {
		h.surfaces = make(map[string]string)
	}
	h.surfaces[id] = label
}
func (h *fakeHandler) UnregisterSurface(id string) { delete(h.surfaces, id) }
func (h *fakeHandler) Status() Status { return h.status }
