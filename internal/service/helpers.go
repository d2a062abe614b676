package service

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/gamification"
	"github.com/noah-isme/sprint-connect-api/internal/observability"
	"github.com/noah-isme/sprint-connect-api/pkg/mailer"
)

// CacheInvalidator drops cached per-user views after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uint)
}

func invalidate(ctx context.Context, cache CacheInvalidator, userIDs ...uint) {
	if cache == nil {
		return
	}
	for _, id := range userIDs {
		cache.Invalidate(ctx, id)
	}
}

// awardBestEffort credits points without failing the caller's operation.
func awardBestEffort(ctx context.Context, points GamificationService, logger zerolog.Logger, userID uint, action gamification.Action, description string) *dto.PointsAward {
	if points == nil {
		return nil
	}
	award, err := points.Award(ctx, userID, action, description)
	if err != nil {
		logger.Warn().Err(err).Uint("user_id", userID).Str("action", string(action)).Msg("failed to award points")
		return nil
	}
	return &award
}

func notifyBestEffort(ctx context.Context, notifier Notifier, logger zerolog.Logger, payload dto.NotificationCreateRequest) {
	if notifier == nil {
		return
	}
	if _, err := notifier.Publish(ctx, payload); err != nil {
		logger.Warn().Err(err).Uint("user_id", payload.UserID).Str("type", payload.Type).Msg("failed to publish notification")
	}
}

// sendMailBestEffort delivers msg and only logs failures.
func sendMailBestEffort(ctx context.Context, m mailer.Mailer, logger zerolog.Logger, msg mailer.Message) {
	if m == nil || strings.TrimSpace(msg.ToEmail) == "" {
		return
	}
	if err := m.Send(ctx, msg); err != nil {
		observability.MailDeliveries().WithLabelValues(msg.Template, "failed").Inc()
		logger.Warn().Err(err).Str("template", msg.Template).Str("to", maskEmailAddress(msg.ToEmail)).Msg("failed to send email")
		return
	}
	observability.MailDeliveries().WithLabelValues(msg.Template, "sent").Inc()
}

func sanitizeText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(policy.Sanitize(strings.TrimSpace(value)))
}

func cleanList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

func maskEmailAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		return "***"
	}
	local := parts[0]
	domain := parts[1]
	if len(local) <= 2 {
		local = local[:1] + "***"
	} else {
		local = local[:1] + "***" + local[len(local)-1:]
	}
	return local + "@" + domain
}
