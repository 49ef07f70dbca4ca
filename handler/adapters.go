package handler

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"scrimbot/log"
)

// GuildAdapter implements the channel, membership and notification
// collaborators on top of a discordgo session.
type GuildAdapter struct {
	session *discordgo.Session
	guildID string

	publicLogChannelID string
	scrimChannelID     string
	logChannelID       string
}

func NewGuildAdapter(session *discordgo.Session, guildID, publicLogChannelID, scrimChannelID, logChannelID string) *GuildAdapter {
	return &GuildAdapter{
		session:            session,
		guildID:            guildID,
		publicLogChannelID: publicLogChannelID,
		scrimChannelID:     scrimChannelID,
		logChannelID:       logChannelID,
	}
}

// CreatePrivateChannel creates a text channel visible only to the owner.
func (g *GuildAdapter) CreatePrivateChannel(ctx context.Context, ownerID, name string) (string, error) {
	ch, err := g.session.GuildChannelCreateComplex(g.guildID, discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildText,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				// The @everyone role shares the guild's ID.
				ID:   g.guildID,
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			},
			{
				ID:    ownerID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}

	return ch.ID, nil
}

// DeleteChannel removes the channel, tolerating one already deleted
// externally.
func (g *GuildAdapter) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := g.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	if err != nil {
		if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Message != nil &&
			restErr.Message.Code == discordgo.ErrCodeUnknownChannel {
			return nil
		}
		return err
	}

	return nil
}

// IsMember reports whether userID is currently in the guild.
func (g *GuildAdapter) IsMember(ctx context.Context, userID string) (bool, error) {
	_, err := g.session.GuildMember(g.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Message != nil {
			switch restErr.Message.Code {
			case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
				return false, nil
			}
		}
		return false, err
	}

	return true, nil
}

// PublicLog posts to the public audit channel. Fire-and-forget: failures
// are logged locally and never propagate.
func (g *GuildAdapter) PublicLog(message string) {
	if g.publicLogChannelID == "" {
		return
	}

	if _, err := g.session.ChannelMessageSend(g.publicLogChannelID, message); err != nil {
		log.Logger.Warn("failed posting public log", zap.Error(err))
	}
}

// ScrimAnnounce posts a registration embed to the scrim channel.
func (g *GuildAdapter) ScrimAnnounce(embed *discordgo.MessageEmbed) {
	if g.scrimChannelID == "" {
		return
	}

	if _, err := g.session.ChannelMessageSendEmbed(g.scrimChannelID, embed); err != nil {
		log.Logger.Warn("failed posting scrim announcement", zap.Error(err))
	}
}

// AuditLog posts a detailed embed to the staff log channel.
func (g *GuildAdapter) AuditLog(embed *discordgo.MessageEmbed) {
	if g.logChannelID == "" {
		return
	}

	if _, err := g.session.ChannelMessageSendEmbed(g.logChannelID, embed); err != nil {
		log.Logger.Warn("failed posting audit log", zap.Error(err))
	}
}
