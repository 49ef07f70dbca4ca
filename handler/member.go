package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"scrimbot/errs"
	"scrimbot/events"
	"scrimbot/log"
	"scrimbot/transfer"
)

// handleMemberRemove reacts to a user leaving the guild. A departing
// team leader takes their team with them unless the leadership was
// handed over or an update session is mid-flight.
func (b *Bot) handleMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.GuildID != b.cfg.GuildID {
		return
	}

	ctx := context.Background()
	logger := log.Logger.With(zap.String("userID", m.User.ID))

	team, err := b.store.TeamByMember(ctx, m.User.ID)
	if err != nil {
		if err != errs.ErrNotFound {
			logger.Error("departure lookup failed", zap.Error(err))
			b.adapter.PublicLog(fmt.Sprintf(
				"⚠️ Failed to process the departure of <@%s>. Team data may be inconsistent.", m.User.ID))
		}
		return
	}

	outcome, err := b.transfers.HandleDeparture(ctx, m.User.ID, team)
	if err != nil {
		logger.Error("departure handling failed", zap.Error(err),
			zap.String("team", team.TeamName))
		b.adapter.PublicLog(fmt.Sprintf(
			"⚠️ Failed to process the departure of <@%s> from team **%s**.", m.User.ID, team.TeamName))
		return
	}

	logger.Info("member departure processed",
		zap.String("team", team.TeamName),
		zap.Stringer("outcome", outcome))

	if outcome == transfer.OutcomeDeleted || outcome == transfer.OutcomeDeletedInvalidTransfer {
		if _, err := b.allocator.Unregister(ctx, team.UserID); err != nil && err != errs.ErrNotRegistered {
			logger.Warn("failed releasing scrim registration", zap.Error(err))
		}
		b.bus.Publish(&events.AuditEvent{
			Kind: events.KindTeamDeleted, UserID: m.User.ID, Team: team.TeamName,
			Detail: "member departure", At: time.Now(),
		})
	}
}
