package handler

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"scrimbot/entity"
	"scrimbot/log"
)

const (
	colorTeal    = 0x00D4AA
	colorOrange  = 0xFFA500
	colorGreen   = 0x00FF00
	colorRed     = 0xFF0000
	colorSoftRed = 0xFF6B6B
	colorBlurple = 0x7289DA
	colorGold    = 0xFFD700
	colorBlue    = 0x4A90E2
	colorTeal2   = 0x17A2B8
)

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func editReply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	if err != nil {
		log.Logger.Warn("interaction edit failed", zap.Error(err))
	}
}

// interactionUser returns the invoking user for guild interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}

	return i.User
}

func snapshotUser(u *discordgo.User) entity.UserSnapshot {
	return entity.UserSnapshot{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.GlobalName,
		AvatarURL:   u.AvatarURL(""),
	}
}

// modalValue digs the value of the nth text input out of a modal
// submission.
func modalValue(data discordgo.ModalSubmitInteractionData, n int) string {
	if n >= len(data.Components) {
		return ""
	}

	row, ok := data.Components[n].(*discordgo.ActionsRow)
	if !ok || len(row.Components) == 0 {
		return ""
	}

	input, ok := row.Components[0].(*discordgo.TextInput)
	if !ok {
		return ""
	}

	return input.Value
}

// formatRoster renders up to limit roster entries as numbered mentions.
func formatRoster(players []entity.Player, limit int) string {
	var sb strings.Builder
	for idx, p := range players {
		if idx >= limit {
			fmt.Fprintf(&sb, "... and %d more", len(players)-limit)
			break
		}
		fmt.Fprintf(&sb, "%d. <@%s> - %s\n", idx+1, p.ID, p.Name)
	}

	return strings.TrimRight(sb.String(), "\n")
}
