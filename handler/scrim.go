package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"scrimbot/entity"
	"scrimbot/errs"
	"scrimbot/events"
	"scrimbot/log"
	"scrimbot/scrim"
)

func (b *Bot) handleScrimRegister(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)
	data := i.ApplicationCommandData()

	var timeSlot, location string
	for _, opt := range data.Options {
		switch opt.Name {
		case "time":
			timeSlot = opt.StringValue()
		case "location":
			location = opt.StringValue()
		}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Logger.Warn("interaction defer failed", zap.Error(err))
		return
	}

	reg, err := b.allocator.Register(ctx, user.ID, snapshotUser(user), timeSlot, location)
	if err != nil {
		switch err {
		case errs.ErrAlreadyRegistered:
			detail := ""
			if existing, lookupErr := b.allocator.CurrentRegistration(ctx, user.ID); lookupErr == nil {
				detail = fmt.Sprintf(" You are registered for %s.", scrim.SlotLabel(existing.TimeSlot))
			}
			editReply(s, i, "❌ You are already registered for a scrim."+detail+" Use `/scrim-unregister` first to change your slot.")
		case errs.ErrNoTeam:
			editReply(s, i, "❌ You need an enrolled team to register for scrims. Use the team panel to enroll first.")
		case errs.ErrLocationTaken:
			editReply(s, i, fmt.Sprintf("❌ **%s** has already been claimed by another team. Please pick a different location.", location))
		case errs.ErrLocationJustTaken:
			editReply(s, i, fmt.Sprintf("❌ **%s** was just taken by another team while you were registering. Please pick a different location.", location))
		case errs.ErrUnknownSlot:
			editReply(s, i, "❌ Invalid time slot selected.")
		default:
			editReply(s, i, "❌ Registration failed. Please try again later.")
		}
		return
	}

	b.bus.Publish(&events.AuditEvent{
		Kind: events.KindScrimRegister, UserID: user.ID, Team: reg.Team.TeamName,
		Detail: fmt.Sprintf("%s at %s", reg.TimeSlot, reg.Team.Location), At: time.Now(),
	})

	locationValue := reg.Team.Location
	if loc, ok := scrim.LocationByName(reg.Team.Location); ok {
		locationValue = fmt.Sprintf("%s (%d, %d)", loc.Name, loc.X, loc.Y)
	}

	b.adapter.ScrimAnnounce(&discordgo.MessageEmbed{
		Title:       "🎮 New Scrim Registration!",
		Description: fmt.Sprintf("Team **%s** has registered for scrims!", reg.Team.TeamName),
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏷️ Team", Value: fmt.Sprintf("%s [%s]", reg.Team.TeamName, reg.Team.TeamTag), Inline: true},
			{Name: "👤 Leader", Value: fmt.Sprintf("<@%s>", user.ID), Inline: true},
			{Name: "⏰ Time Slot", Value: scrim.SlotLabel(reg.TimeSlot), Inline: true},
			{Name: "📍 Drop Location", Value: locationValue, Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})

	b.adapter.AuditLog(&discordgo.MessageEmbed{
		Title: "Scrim Registration",
		Color: colorTeal2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Team", Value: reg.Team.TeamName, Inline: true},
			{Name: "Leader", Value: fmt.Sprintf("%s (%s)", user.Username, user.ID), Inline: true},
			{Name: "Slot", Value: reg.TimeSlot, Inline: true},
			{Name: "Location", Value: reg.Team.Location, Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})

	editReply(s, i, fmt.Sprintf(
		"✅ Team **%s** registered for %s at **%s**! See you on the battlefield! 🔥",
		reg.Team.TeamName, scrim.SlotLabel(reg.TimeSlot), reg.Team.Location))
}

func (b *Bot) handleLocationAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var focused string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "location" && opt.Focused {
			focused = strings.ToLower(opt.StringValue())
		}
	}

	available, err := b.allocator.AvailableLocations(ctx)
	if err != nil {
		available = nil
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 25)
	for _, loc := range available {
		if focused != "" && !strings.Contains(strings.ToLower(loc.Name), focused) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  loc.Name,
			Value: loc.Name,
		})
		if len(choices) == 25 {
			break
		}
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		log.Logger.Warn("autocomplete respond failed", zap.Error(err))
	}
}

func (b *Bot) handleScrimTimeSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)
	data := i.MessageComponentData()
	if len(data.Values) == 0 {
		return
	}

	reg, err := b.allocator.SelectSlot(ctx, user.ID, snapshotUser(user), data.Values[0])
	if err != nil {
		switch err {
		case errs.ErrNoTeam:
			respondEphemeral(s, i, "❌ You need an enrolled team to register for scrims. Use the team panel to enroll first.")
		case errs.ErrUnknownSlot:
			respondEphemeral(s, i, "❌ Invalid time slot selected.")
		default:
			respondEphemeral(s, i, "❌ Registration failed. Please try again later.")
		}
		return
	}

	b.bus.Publish(&events.AuditEvent{
		Kind: events.KindScrimRegister, UserID: user.ID, Team: reg.Team.TeamName,
		Detail: reg.TimeSlot, At: time.Now(),
	})

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "✅ Scrim Registration Confirmed!",
		Description: fmt.Sprintf("Team **%s** is registered for %s.", reg.Team.TeamName, scrim.SlotLabel(reg.TimeSlot)),
		Color:       colorGreen,
		Timestamp:   time.Now().Format(time.RFC3339),
	}, true)
}

func (b *Bot) handleScrimUnregister(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)

	reg, err := b.allocator.CurrentRegistration(ctx, user.ID)
	if err != nil {
		if err == errs.ErrNotRegistered {
			respondEphemeral(s, i, "❌ You are not registered for any scrims.")
			return
		}
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "⚠️ Confirm Unregistration",
		Description: fmt.Sprintf("You are currently registered for **%s**. Do you want to unregister?", scrim.SlotLabel(reg.TimeSlot)),
		Color:       colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏷️ Team", Value: reg.Team.TeamName, Inline: true},
			{Name: "⏰ Time Slot", Value: scrim.SlotLabel(reg.TimeSlot), Inline: true},
		},
	}
	if reg.Team.Location != "" {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "📍 Location", Value: reg.Team.Location, Inline: true})
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{CustomID: "scrim_unregister_now", Label: "Unregister", Style: discordgo.DangerButton, Emoji: &discordgo.ComponentEmoji{Name: "🗑️"}},
				}},
			},
		},
	})
	if err != nil {
		log.Logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) handleUnregisterButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)

	reg, err := b.allocator.Unregister(ctx, user.ID)
	if err != nil {
		if err == errs.ErrNotRegistered {
			respondEphemeral(s, i, "❌ You are not registered for any scrims.")
			return
		}
		respondEphemeral(s, i, "❌ Failed to unregister. Please try again.")
		return
	}

	b.bus.Publish(&events.AuditEvent{
		Kind: events.KindScrimUnregister, UserID: user.ID, Team: reg.Team.TeamName,
		Detail: reg.TimeSlot, At: time.Now(),
	})

	content := ""
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "✅ Unregistered Successfully",
				Description: fmt.Sprintf("Team **%s** has been unregistered from %s.", reg.Team.TeamName, scrim.SlotLabel(reg.TimeSlot)),
				Color:       colorGreen,
				Timestamp:   time.Now().Format(time.RFC3339),
			}},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Logger.Warn("interaction update failed", zap.Error(err))
	}
}

func (b *Bot) handleScrimStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	fields := make([]*discordgo.MessageEmbedField, 0, len(scrim.MenuSlots))
	total := 0
	for _, slot := range scrim.MenuSlots {
		regs, err := b.allocator.RegistrationsForSlot(ctx, slot)
		if err != nil {
			respondEphemeral(s, i, rejectionFor(err))
			return
		}
		total += len(regs)

		value := "*No teams registered*"
		if len(regs) > 0 {
			lines := make([]string, 0, len(regs))
			for _, reg := range regs {
				line := fmt.Sprintf("• **%s** [%s]", reg.Team.TeamName, reg.Team.TeamTag)
				if reg.Team.Location != "" {
					line += " @ " + reg.Team.Location
				}
				lines = append(lines, line)
			}
			value = strings.Join(lines, "\n")
		}

		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("⏰ %s (%d teams)", scrim.SlotLabel(slot), len(regs)),
			Value: value,
		})
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "📊 Scrim Registration Status",
		Description: fmt.Sprintf("Total registrations: **%d**", total),
		Color:       colorGold,
		Fields:      fields,
		Timestamp:   time.Now().Format(time.RFC3339),
	}, true)
}

func (b *Bot) handleSlotlist(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	regs, err := b.allocator.AllRegistrations(ctx)
	if err != nil {
		respondEphemeral(s, i, rejectionFor(err))
		return
	}

	if len(regs) == 0 {
		respondEphemeral(s, i, "📭 The slotlist is empty. No teams are registered yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("```\n")
	for idx, reg := range regs {
		fmt.Fprintf(&sb, "Slot %02d -> %s\n", idx+1, reg.Team.TeamName)
	}
	sb.WriteString("```")

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "📋 Scrims Slotlist",
		Description: sb.String(),
		Color:       colorBlurple,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d teams registered • Registration took %s", len(regs), formatDuration(registrationSpan(regs))),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}, false)
}

// registrationSpan is the time between the first and the last registration.
func registrationSpan(regs []entity.ScrimRegistration) time.Duration {
	var oldest, newest time.Time
	for _, reg := range regs {
		if oldest.IsZero() || reg.RegistrationTime.Before(oldest) {
			oldest = reg.RegistrationTime
		}
		if reg.RegistrationTime.After(newest) {
			newest = reg.RegistrationTime
		}
	}

	return newest.Sub(oldest)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}

	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func (b *Bot) handleDeleteData(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := interactionUser(i)

	if !b.cfg.IsAdmin(user.ID) {
		respondEphemeral(s, i, "❌ You do not have permission to use this command.")
		return
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}

	switch data.Options[0].Name {
	case "team":
		if err := b.store.DeleteAllTeams(ctx); err != nil {
			respondEphemeral(s, i, "❌ Failed to delete team data. Please try again.")
			return
		}
		b.adapter.PublicLog(fmt.Sprintf("🗑️ <@%s> deleted all team data.", user.ID))
		respondEphemeral(s, i, "✅ All team data has been deleted.")
	case "scrim":
		if err := b.store.DeleteAllRegistrations(ctx); err != nil {
			respondEphemeral(s, i, "❌ Failed to delete scrim data. Please try again.")
			return
		}
		b.adapter.PublicLog(fmt.Sprintf("🗑️ <@%s> cleared the scrim slotlist.", user.ID))
		respondEphemeral(s, i, "✅ All scrim slotlist data has been deleted.")
	}
}

func (b *Bot) handlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title: "🏓 Pong!",
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Gateway Latency", Value: s.HeartbeatLatency().Round(time.Millisecond).String(), Inline: true},
			{Name: "Active Sessions", Value: fmt.Sprintf("%d", b.registry.Active()), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}, true)
}
