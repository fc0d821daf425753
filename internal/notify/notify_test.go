package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWebhook struct {
	calls []*discordgo.WebhookParams
	ids   []string
	err   error
}

func (f *fakeWebhook) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, data)
	f.ids = append(f.ids, webhookID+"/"+token)
	return &discordgo.Message{ID: "msg"}, nil
}

func TestDiscord_PostsEmbed(t *testing.T) {
	hook := &fakeWebhook{}
	d := NewDiscord(hook, "123", "secret", 0, zap.NewNop())
	d.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	err := d.Notify(context.Background(), Alert{MatchID: "m1", Level: LevelWarn, Title: "Ranking repaired", Message: "team B had no final score"})
	require.NoError(t, err)

	require.Len(t, hook.calls, 1)
	assert.Equal(t, "123/secret", hook.ids[0])
	embed := hook.calls[0].Embeds[0]
	assert.Equal(t, "Ranking repaired", embed.Title)
	assert.Equal(t, "team B had no final score", embed.Description)
	assert.Equal(t, levelColors[LevelWarn], embed.Color)
	assert.Equal(t, "2026-01-02T03:04:05Z", embed.Timestamp)
	assert.Equal(t, "m1", embed.Fields[0].Value)
}

func TestDiscord_RateLimited(t *testing.T) {
	hook := &fakeWebhook{}
	d := NewDiscord(hook, "123", "secret", time.Hour, zap.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Notify(context.Background(), Alert{MatchID: "m1", Title: "x"}))
	}
	assert.Len(t, hook.calls, 1)
}

func TestDiscord_WrapsError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDiscord(&fakeWebhook{err: boom}, "123", "secret", 0, zap.NewNop())

	err := d.Notify(context.Background(), Alert{MatchID: "m1"})
	assert.ErrorIs(t, err, boom)
}

func TestLog_UsesLevel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := Log{Logger: zap.New(core)}

	require.NoError(t, n.Notify(context.Background(), Alert{MatchID: "m1", Level: LevelError, Title: "persist", Message: "save failed"}))
	require.NoError(t, n.Notify(context.Background(), Alert{MatchID: "m2", Message: "completed"}))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	assert.Equal(t, "save failed", entries[0].Message)
	assert.Equal(t, "m1", entries[0].ContextMap()["match_id"])
	assert.Equal(t, zap.InfoLevel, entries[1].Level)
}
