package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"scrimbot/entity"
	"scrimbot/enrollment"
	"scrimbot/errs"
	"scrimbot/events"
	"scrimbot/log"
	"scrimbot/scrim"
)

// rejectionText maps classified outcomes to the user-facing messages.
// Anything unlisted is a system fault and gets the generic failure text.
var rejectionText = map[error]string{
	errs.ErrSessionActive:    "⚠️ You already have an active enrollment process. Please wait for it to complete or time out (10 minutes).",
	errs.ErrNoSession:        "❌ No active enrollment session found.",
	errs.ErrWrongStep:        "❌ That action is not available at this step.",
	errs.ErrTeamNameTooShort: "❌ Team name must be at least 2 characters long.",
	errs.ErrTeamTagTooShort:  "❌ Team tag must be at least 2 characters long.",
	errs.ErrTeamNameTaken:    "❌ A team with this name already exists. Please choose a different name.",
	errs.ErrRosterEmpty:      "❌ You must add at least 1 player.",
	errs.ErrRosterTooLarge:   "❌ Maximum 50 players allowed per team.",
	errs.ErrNoTeam:           "❌ You don't have a team to update. Please enroll first.",
	errs.ErrInvalidUserID:    "❌ Invalid Discord ID format. Please enter a valid 17-19 digit Discord ID.",
	errs.ErrNotRosterMember:  "❌ The new leader must be a current member of your team.",
	errs.ErrNotGuildMember:   "❌ The new leader is not in this server.",
	errs.ErrUpdateOnly:       "❌ Leadership transfer is only available during team updates.",
	errs.ErrChannel:          "❌ Failed to start enrollment process. Please try again later.",
}

func rejectionFor(err error) string {
	if msg, ok := rejectionText[err]; ok {
		return msg
	}

	return "❌ Something went wrong. Please try again."
}

func (b *Bot) handlePanel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if !b.cfg.IsAdmin(user.ID) {
		respondEphemeral(s, i, "❌ You do not have permission to use this command. Only administrators can create team management panels.")
		return
	}

	channel := i.ApplicationCommandData().Options[0].ChannelValue(s)

	embed := &discordgo.MessageEmbed{
		Title:       "🏆 Team Management Panel",
		Description: "Welcome to the Team Management Portal! Select an option below to manage your team:",
		Color:       colorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📝 Enroll", Value: "Create a new team registration", Inline: true},
			{Name: "🔄 Update", Value: "Modify your existing team details", Inline: true},
			{Name: "🗑️ Delete", Value: "Remove your team from the system", Inline: true},
			{Name: "📊 Status", Value: "View your current team information", Inline: true},
			{Name: "📋 List Teams", Value: "View all registered teams", Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "⚠️ Important: Alt accounts and fake mentions are prohibited.\n⏱️ Sessions timeout after 10 minutes of inactivity.",
		},
	}

	menu := discordgo.SelectMenu{
		CustomID:    "team_enrollment_select",
		Placeholder: "🎮 Choose your action...",
		Options: []discordgo.SelectMenuOption{
			{Label: "Enroll New Team", Description: "Register a brand new team", Value: "enroll", Emoji: &discordgo.ComponentEmoji{Name: "📝"}},
			{Label: "Update Team", Description: "Modify existing team details", Value: "update", Emoji: &discordgo.ComponentEmoji{Name: "🔄"}},
			{Label: "Delete Team", Description: "Remove team from system", Value: "delete", Emoji: &discordgo.ComponentEmoji{Name: "🗑️"}},
			{Label: "View My Team", Description: "Check current team status", Value: "status", Emoji: &discordgo.ComponentEmoji{Name: "📊"}},
			{Label: "List All Teams", Description: "Browse registered teams", Value: "list", Emoji: &discordgo.ComponentEmoji{Name: "📋"}},
		},
	}

	_, err := s.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}},
		},
	})
	if err != nil {
		log.Logger.Error("failed sending panel", zap.Error(err))
		respondEphemeral(s, i, "❌ Failed to send the panel. Please try again.")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("✅ Panel has been sent to <#%s>!", channel.ID))
}

func (b *Bot) startEnrollment(s *discordgo.Session, i *discordgo.InteractionCreate, isUpdate bool) {
	ctx := context.Background()
	user := interactionUser(i)

	sess, missing, err := b.wizard.Begin(ctx, user.ID, user.Username, isUpdate)
	if err != nil {
		if err == errs.ErrRosterMemberLeft {
			respondEphemeral(s, i, fmt.Sprintf(
				"❌ Your team has been automatically deleted because the following member(s) left the server: %s. Please enroll a new team.",
				strings.Join(missing, ", ")))
			return
		}
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	b.bus.Publish(&events.AuditEvent{
		Kind: events.KindEnrollStart, UserID: user.ID, At: time.Now(),
	})

	b.sendWelcome(s, sess, user)

	action := "Enrollment"
	if isUpdate {
		action = "Team update"
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ %s process started! Check <#%s> to continue.", action, sess.ChannelID))
}

func (b *Bot) sendWelcome(s *discordgo.Session, sess *enrollment.Session, user *discordgo.User) {
	title := "🎮 Team Enrollment Process Started!"
	verb := "enter"
	if sess.IsUpdate {
		title = "🔄 Team Update Process Started!"
		verb = "update"
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
		Description: fmt.Sprintf(
			"Welcome <@%s>! You have **10 minutes** to complete your enrollment.\n\n**Step 1/3: Team Information**\nPlease click the button below to %s your team name and tag.",
			user.ID, verb),
		Color: colorTeal,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "⏱️ Time Limit", Value: fmt.Sprintf("Expires <t:%d:R>", sess.Deadline(b.wizard.Timeout()).Unix()), Inline: true},
			{Name: "📋 Current Step", Value: "1/3: Team Info", Inline: true},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Session ID: " + sess.ID.String()},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if sess.IsUpdate && sess.Draft.TeamName != "" {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "📊 Current Team Name", Value: sess.Draft.TeamName, Inline: true},
			&discordgo.MessageEmbedField{Name: "🏷️ Current Team Tag", Value: sess.Draft.TeamTag, Inline: true},
			&discordgo.MessageEmbedField{Name: "👥 Current Players", Value: fmt.Sprintf("%d members", len(sess.Draft.Players)), Inline: true},
		)
	}

	infoLabel := "Enter Team Info"
	if sess.IsUpdate {
		infoLabel = "Update Team Info"
	}
	buttons := []discordgo.MessageComponent{
		discordgo.Button{CustomID: "team_info_modal", Label: infoLabel, Style: discordgo.PrimaryButton, Emoji: &discordgo.ComponentEmoji{Name: "📝"}},
	}
	if sess.IsUpdate {
		buttons = append(buttons, discordgo.Button{
			CustomID: "transfer_leadership", Label: "Transfer Leadership",
			Style: discordgo.SecondaryButton, Emoji: &discordgo.ComponentEmoji{Name: "👑"},
		})
	}
	buttons = append(buttons, discordgo.Button{
		CustomID: "cancel_enrollment", Label: "Cancel",
		Style: discordgo.SecondaryButton, Emoji: &discordgo.ComponentEmoji{Name: "❌"},
	})

	_, err := s.ChannelMessageSendComplex(sess.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s>", user.ID),
		Embeds:  []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: buttons},
		},
	})
	if err != nil {
		log.Logger.Error("failed sending welcome message", zap.Error(err))
	}
}

func (b *Bot) showTeamInfoModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	sess := b.registry.Get(user.ID)
	if sess == nil {
		respondEphemeral(s, i, rejectionFor(errs.ErrNoSession))
		return
	}

	title := "Team Information"
	if sess.IsUpdate {
		title = "Update Team Information"
	}

	nameInput := discordgo.TextInput{
		CustomID:    "team_name",
		Label:       "Team Name",
		Style:       discordgo.TextInputShort,
		Placeholder: "Enter your team name",
		Required:    true,
		MaxLength:   50,
	}
	tagInput := discordgo.TextInput{
		CustomID:    "team_tag",
		Label:       "Team Tag",
		Style:       discordgo.TextInputShort,
		Placeholder: "Enter your team tag (e.g., [TAG])",
		Required:    true,
		MaxLength:   10,
	}
	if sess.IsUpdate && sess.Draft.TeamName != "" {
		nameInput.Value = sess.Draft.TeamName
		tagInput.Value = sess.Draft.TeamTag
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "team_info_submit",
			Title:    title,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{nameInput}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{tagInput}},
			},
		},
	})
	if err != nil {
		log.Logger.Warn("modal respond failed", zap.Error(err))
	}
}

func (b *Bot) submitTeamInfo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)
	data := i.ModalSubmitData()

	sess, err := b.wizard.SubmitTeamInfo(ctx, user.ID, modalValue(data, 0), modalValue(data, 1))
	if err != nil {
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "📋 Step 2/3: Team Players",
		Description: fmt.Sprintf(
			"Great! Now let's add your team players.\n\n**Team Info Saved:**\n🏷️ **Name:** %s\n🔖 **Tag:** %s",
			sess.Draft.TeamName, sess.Draft.TeamTag),
		Color: colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📝 Instructions", Value: `Click the button below to add your team players. Use format: "Discord ID - Player Name" (one per line).`},
			{Name: "⚠️ Important", Value: "All Discord IDs must be valid 17-19 digit numbers. Player names must be 1-32 characters."},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{CustomID: "add_players_modal", Label: "Add Players", Style: discordgo.PrimaryButton, Emoji: &discordgo.ComponentEmoji{Name: "👥"}},
					discordgo.Button{CustomID: "cancel_player_step", Label: "Cancel", Style: discordgo.SecondaryButton, Emoji: &discordgo.ComponentEmoji{Name: "❌"}},
				}},
			},
		},
	})
	if err != nil {
		log.Logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) showRosterModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	sess := b.registry.Get(user.ID)
	if sess == nil {
		respondEphemeral(s, i, rejectionFor(errs.ErrNoSession))
		return
	}

	input := discordgo.TextInput{
		CustomID:    "players_list",
		Label:       "Player List (Discord ID - Player Name)",
		Style:       discordgo.TextInputParagraph,
		Placeholder: "123456789012345678 - Player Name\n987654321098765432 - Another Player\n...",
		Required:    true,
		MaxLength:   2000,
	}
	if sess.IsUpdate && len(sess.Draft.Players) > 0 {
		lines := make([]string, 0, len(sess.Draft.Players))
		for _, p := range sess.Draft.Players {
			lines = append(lines, fmt.Sprintf("%s - %s", p.ID, p.Name))
		}
		input.Value = strings.Join(lines, "\n")
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "players_submit",
			Title:    "Add Team Players",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{input}},
			},
		},
	})
	if err != nil {
		log.Logger.Warn("modal respond failed", zap.Error(err))
	}
}

func (b *Bot) submitRoster(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)
	data := i.ModalSubmitData()

	sess, invalid, err := b.wizard.SubmitRoster(ctx, user.ID, modalValue(data, 0))
	if err != nil {
		if err == errs.ErrRosterLine {
			shown := invalid
			extra := ""
			if len(shown) > 5 {
				extra = fmt.Sprintf("\n... and %d more", len(shown)-5)
				shown = shown[:5]
			}
			respondEphemeral(s, i, fmt.Sprintf(
				"❌ Some players have invalid formats. Use \"Discord ID - Player Name\" format:\n• %s%s",
				strings.Join(shown, "\n• "), extra))
			return
		}
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	action := "enrollment"
	finishLabel := "Complete Enrollment"
	if sess.IsUpdate {
		action = "the update"
		finishLabel = "Update Team"
	}

	embed := &discordgo.MessageEmbed{
		Title:       "✅ Step 3/3: Final Confirmation",
		Description: fmt.Sprintf("Please review your team information and confirm %s:", action),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏷️ Team Name", Value: sess.Draft.TeamName, Inline: true},
			{Name: "👤 Team Leader", Value: fmt.Sprintf("<@%s>", user.ID), Inline: true},
			{Name: "🔖 Team Tag", Value: sess.Draft.TeamTag, Inline: true},
			{Name: "👥 Players Count", Value: fmt.Sprintf("%d players", len(sess.Draft.Players)), Inline: true},
			{Name: "📝 Player List", Value: formatRoster(sess.Draft.Players, 15)},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{CustomID: "finish_enrollment", Label: finishLabel, Style: discordgo.SuccessButton, Emoji: &discordgo.ComponentEmoji{Name: "✅"}},
					discordgo.Button{CustomID: "cancel_enrollment", Label: "Cancel", Style: discordgo.DangerButton, Emoji: &discordgo.ComponentEmoji{Name: "❌"}},
				}},
			},
		},
	})
	if err != nil {
		log.Logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) finishEnrollment(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)

	wasUpdate := false
	if sess := b.registry.Get(user.ID); sess != nil {
		wasUpdate = sess.IsUpdate
	}

	team, err := b.wizard.Finish(ctx, user.ID)
	if err != nil {
		if err == errs.ErrDatabase {
			// Session and draft survive; the user can retry.
			respondEphemeral(s, i, "❌ An error occurred while saving your team data. Please try again.")
			return
		}
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	b.bus.Publish(&events.AuditEvent{
		Kind: events.KindEnrollFinish, UserID: user.ID, Team: team.TeamName, At: time.Now(),
	})

	title := "🎉 Team Enrollment Complete!"
	verb := "enrolled"
	if wasUpdate {
		title = "✅ Team Updated Successfully!"
		verb = "updated"
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("Your team has been %s successfully!", verb),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏷️ Team Name", Value: team.TeamName, Inline: true},
			{Name: "👤 Team Leader", Value: fmt.Sprintf("<@%s>", user.ID), Inline: true},
			{Name: "🔖 Team Tag", Value: team.TeamTag, Inline: true},
			{Name: "👥 Players", Value: fmt.Sprintf("%d members", len(team.Players)), Inline: true},
			{Name: "🎮 Next Steps", Value: "You can now register for scrims using `/scrim-register`"},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")},
		Timestamp: time.Now().Format(time.RFC3339),
	}, false)
}

func (b *Bot) cancelEnrollment(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)

	if err := b.wizard.Cancel(ctx, user.ID); err != nil {
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	b.bus.Publish(&events.AuditEvent{
		Kind: events.KindEnrollCancel, UserID: user.ID, At: time.Now(),
	})

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "❌ Enrollment Cancelled",
		Description: "Your enrollment process has been cancelled. The private channel will be deleted shortly.",
		Color:       colorSoftRed,
		Timestamp:   time.Now().Format(time.RFC3339),
	}, false)
}

func (b *Bot) showTransferModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	sess := b.registry.Get(user.ID)
	if sess == nil || !sess.IsUpdate {
		respondEphemeral(s, i, rejectionFor(errs.ErrUpdateOnly))
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "leadership_transfer_submit",
			Title:    "Transfer Team Leadership",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "new_leader_id",
						Label:       "New Leader Discord ID",
						Style:       discordgo.TextInputShort,
						Placeholder: "Enter the Discord ID of the new team leader",
						Required:    true,
						MaxLength:   20,
					},
				}},
			},
		},
	})
	if err != nil {
		log.Logger.Warn("modal respond failed", zap.Error(err))
	}
}

func (b *Bot) submitTransfer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)
	data := i.ModalSubmitData()
	newLeaderID := strings.TrimSpace(modalValue(data, 0))

	var teamName, teamTag string
	if sess := b.registry.Get(user.ID); sess != nil {
		teamName = sess.Draft.TeamName
		teamTag = sess.Draft.TeamTag
	}

	if err := b.wizard.TransferLeadership(ctx, user.ID, newLeaderID); err != nil {
		if err == errs.ErrDatabase {
			respondEphemeral(s, i, "❌ Failed to transfer leadership. Please try again.")
			return
		}
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	b.bus.Publish(&events.AuditEvent{
		Kind: events.KindTransfer, UserID: user.ID, Team: teamName,
		Detail: "new leader " + newLeaderID, At: time.Now(),
	})

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "👑 Leadership Transferred Successfully!",
		Description: fmt.Sprintf("Team leadership has been transferred to <@%s>.", newLeaderID),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏷️ Team Name", Value: teamName, Inline: true},
			{Name: "👤 Old Team Leader", Value: fmt.Sprintf("<@%s>", user.ID), Inline: true},
			{Name: "🔖 Team Tag", Value: teamTag, Inline: true},
			{Name: "👑 New Leader", Value: fmt.Sprintf("<@%s>", newLeaderID), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}, false)
}

func (b *Bot) showDeleteConfirm(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)

	team, err := b.store.Team(ctx, user.ID)
	if err != nil {
		if err == errs.ErrNotFound {
			respondEphemeral(s, i, "❌ You don't have a team to delete.")
			return
		}
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "⚠️ Confirm Team Deletion",
		Description: fmt.Sprintf("Are you sure you want to delete your team **%s**?\n\n**This action cannot be undone!**", team.TeamName),
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Team Name", Value: team.TeamName, Inline: true},
			{Name: "Team Leader", Value: fmt.Sprintf("<@%s>", user.ID), Inline: true},
			{Name: "Team Tag", Value: team.TeamTag, Inline: true},
			{Name: "Players", Value: fmt.Sprintf("%d members", len(team.Players)), Inline: true},
		},
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{CustomID: "cancel_delete_team", Label: "Cancel", Style: discordgo.SecondaryButton, Emoji: &discordgo.ComponentEmoji{Name: "❌"}},
					discordgo.Button{CustomID: "confirm_delete_team", Label: "Yes, Delete Team", Style: discordgo.DangerButton, Emoji: &discordgo.ComponentEmoji{Name: "🗑️"}},
				}},
			},
		},
	})
	if err != nil {
		log.Logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) confirmTeamDeletion(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)

	team, err := b.store.Team(ctx, user.ID)
	if err != nil {
		if err == errs.ErrNotFound {
			respondEphemeral(s, i, "❌ Team not found.")
			return
		}
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	// A deleted team releases its scrim slot and location too.
	if _, err := b.allocator.Unregister(ctx, user.ID); err != nil && err != errs.ErrNotRegistered {
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	if err := b.store.DeleteTeam(ctx, user.ID); err != nil {
		respondEphemeral(s, i, "❌ An error occurred while deleting your team. Please try again.")
		return
	}

	b.adapter.PublicLog(fmt.Sprintf("🗑️ <@%s> deleted team **%s** (Tag: %s).", user.ID, team.TeamName, team.TeamTag))
	b.bus.Publish(&events.AuditEvent{
		Kind: events.KindTeamDeleted, UserID: user.ID, Team: team.TeamName, At: time.Now(),
	})

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "✅ Team Deleted Successfully",
		Description: fmt.Sprintf("Team **%s** has been permanently deleted from the system.", team.TeamName),
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏷️ Deleted Team", Value: fmt.Sprintf("%s [%s]", team.TeamName, team.TeamTag), Inline: true},
			{Name: "👤 Team Leader", Value: fmt.Sprintf("<@%s>", user.ID), Inline: true},
			{Name: "👥 Had Players", Value: fmt.Sprintf("%d members", len(team.Players)), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}, true)
}

func (b *Bot) showTeamStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)

	team, err := b.store.Team(ctx, user.ID)
	if err != nil {
		if err == errs.ErrNotFound {
			respondEphemeral(s, i, `❌ You don't have a team enrolled. Use the "Enroll" option to create one.`)
			return
		}
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	team, err = b.pruneDepartedMembers(ctx, team)
	if err != nil {
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	scrimStatus := "Not registered for any scrims"
	if reg, err := b.allocator.CurrentRegistration(ctx, user.ID); err == nil {
		scrimStatus = "Registered for " + scrim.SlotLabel(reg.TimeSlot)
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "📊 Your Team Status",
		Description: "Current information about your enrolled team",
		Color:       colorTeal,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏷️ Team Name", Value: team.TeamName, Inline: true},
			{Name: "👤 Team Leader", Value: fmt.Sprintf("<@%s>", user.ID), Inline: true},
			{Name: "🔖 Team Tag", Value: team.TeamTag, Inline: true},
			{Name: "👥 Players Count", Value: fmt.Sprintf("%d", len(team.Players)), Inline: true},
			{Name: "📅 Enrolled Since", Value: fmt.Sprintf("<t:%d:R>", team.EnrollmentTime.Unix()), Inline: true},
			{Name: "🎮 Scrim Status", Value: scrimStatus, Inline: true},
			{Name: "📝 Player List", Value: formatRoster(team.Players, 20)},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")},
		Timestamp: time.Now().Format(time.RFC3339),
	}, true)
}

// pruneDepartedMembers drops roster entries whose users are no longer in
// the guild, persisting and logging the cleanup when anything changed.
func (b *Bot) pruneDepartedMembers(ctx context.Context, team *entity.Team) (*entity.Team, error) {
	valid := make([]entity.Player, 0, len(team.Players))
	var removed []string
	for _, p := range team.Players {
		ok, err := b.adapter.IsMember(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			valid = append(valid, p)
		} else {
			removed = append(removed, fmt.Sprintf("%s (%s)", p.Name, p.ID))
		}
	}

	if len(removed) == 0 {
		return team, nil
	}

	updated := *team
	updated.Players = valid
	updated.LastUpdated = time.Now()
	if err := b.store.PutTeam(ctx, &updated); err != nil {
		return nil, err
	}

	b.adapter.PublicLog(fmt.Sprintf(
		"🧹 Cleaned up team **%s**: Removed %d invalid member(s): %s. Team Leader: <@%s>",
		team.TeamName, len(removed), strings.Join(removed, ", "), team.UserID))

	return &updated, nil
}

func (b *Bot) showAllTeams(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	teams, err := b.store.Teams(ctx)
	if err != nil {
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	if len(teams) == 0 {
		respondEphemeral(s, i, "📭 No teams have been enrolled yet.")
		return
	}

	lines := make([]string, 0, len(teams))
	for idx, t := range teams {
		lines = append(lines, fmt.Sprintf("%d. **%s** [%s] - %d players", idx+1, t.TeamName, t.TeamTag, len(t.Players)))
	}

	var fields []*discordgo.MessageEmbedField
	for start := 0; start < len(lines); start += 10 {
		end := start + 10
		if end > len(lines) {
			end = len(lines)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Teams %d-%d", start+1, end),
			Value: strings.Join(lines[start:end], "\n"),
		})
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "📋 All Registered Teams",
		Description: fmt.Sprintf("Total: %d teams", len(teams)),
		Color:       colorBlurple,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Use the panel to manage your team"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}, true)
}
