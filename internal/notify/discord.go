package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// WebhookExecutor is the part of *discordgo.Session used for webhooks.
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ WebhookExecutor = (*discordgo.Session)(nil)

var levelColors = map[Level]int{
	LevelInfo:  0x2ecc71,
	LevelWarn:  0xf1c40f,
	LevelError: 0xe74c3c,
}

// Discord posts alerts to a channel webhook. Alerts arriving faster than the
// limiter allows are dropped and logged.
type Discord struct {
	session   WebhookExecutor
	webhookID string
	token     string
	limiter   *rate.Limiter
	logger    *zap.Logger
	now       func() time.Time
}

func NewDiscord(session WebhookExecutor, webhookID, token string, interval time.Duration, logger *zap.Logger) *Discord {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Discord{
		session:   session,
		webhookID: webhookID,
		token:     token,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger.Named("discord"),
		now:       time.Now,
	}
}

// NewDiscordSession returns a session that can only execute webhooks.
func NewDiscordSession() (*discordgo.Session, error) {
	return discordgo.New("")
}

func (d *Discord) Notify(ctx context.Context, a Alert) error {
	if !d.limiter.Allow() {
		d.logger.Warn("alert dropped by rate limit", zap.String("match_id", a.MatchID), zap.String("title", a.Title))
		return nil
	}

	params := &discordgo.WebhookParams{
		Username: "Dual Strike",
		Embeds: []*discordgo.MessageEmbed{{
			Title:       a.Title,
			Description: a.Message,
			Color:       levelColors[a.Level],
			Timestamp:   d.now().UTC().Format(time.RFC3339),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Match", Value: a.MatchID, Inline: true},
				{Name: "Level", Value: string(a.Level), Inline: true},
			},
		}},
	}

	_, err := d.session.WebhookExecute(d.webhookID, d.token, false, params, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}
