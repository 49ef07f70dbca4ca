package handler

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"scrimbot/config"
	"scrimbot/enrollment"
	"scrimbot/events"
	"scrimbot/log"
	"scrimbot/scrim"
	"scrimbot/store"
	"scrimbot/transfer"
)

// Bot owns the gateway session and dispatches interactions to the
// enrollment wizard and the scrim allocator.
type Bot struct {
	cfg     *config.Config
	session *discordgo.Session
	adapter *GuildAdapter

	store     *store.Store
	registry  *enrollment.Registry
	wizard    *enrollment.Wizard
	allocator *scrim.Allocator
	transfers *transfer.Service
	bus       *events.Bus

	commands []*discordgo.ApplicationCommand
}

func New(cfg *config.Config, st *store.Store, bus *events.Bus) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	adapter := NewGuildAdapter(session, cfg.GuildID,
		cfg.PublicLogChannelID, cfg.ScrimChannelID, cfg.LogChannelID)

	registry := enrollment.NewRegistry(adapter)
	tracker := transfer.NewTracker()
	transfers := transfer.NewService(st, tracker, registry, adapter)
	wizard := enrollment.NewWizard(registry, st, adapter, adapter, adapter, transfers)
	allocator := scrim.NewAllocator(st)

	b := &Bot{
		cfg:       cfg,
		session:   session,
		adapter:   adapter,
		store:     st,
		registry:  registry,
		wizard:    wizard,
		allocator: allocator,
		transfers: transfers,
		bus:       bus,
	}

	wizard.OnExpire(func(userID string) {
		b.bus.Publish(&events.AuditEvent{
			Kind: events.KindEnrollTimeout, UserID: userID, At: time.Now(),
		})
	})

	session.AddHandler(b.handleInteraction)
	session.AddHandler(b.handleMemberRemove)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Logger.Info("gateway ready", zap.Int("guilds", len(r.Guilds)))
	})

	return b, nil
}

// Start opens the gateway connection and registers the slash commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return err
	}

	log.Logger.Info("connected", zap.String("user", b.session.State.User.Username))

	for _, cmd := range commandDefinitions() {
		registered, err := b.session.ApplicationCommandCreate(
			b.session.State.User.ID, b.cfg.GuildID, cmd)
		if err != nil {
			return err
		}
		b.commands = append(b.commands, registered)
	}
	log.Logger.Info("slash commands registered", zap.Int("count", len(b.commands)))

	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	adminPerm := int64(discordgo.PermissionAdministrator)

	timeChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(scrim.CommandSlots))
	for _, slot := range scrim.CommandSlots {
		timeChoices = append(timeChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  scrim.SlotLabel(slot),
			Value: slot,
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "panel",
			Description: "Team Management Panel - Manage your team enrollment and registration",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Select the channel to send the panel to",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
			},
		},
		{
			Name:        "scrim-register",
			Description: "Register your team for a scrim match!",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "time",
					Description: "Select your preferred scrim time",
					Required:    true,
					Choices:     timeChoices,
				},
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "location",
					Description:  "Select your drop location",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "scrim-unregister",
			Description: "Unregister your team from scrim matches",
		},
		{
			Name:        "scrim-status",
			Description: "View current scrim registration status",
		},
		{
			Name:        "slotlist",
			Description: "Show the scrims slotlist.",
		},
		{
			Name:                     "delete-data",
			Description:              "Delete team or scrim slotlist data (Admin only).",
			DefaultMemberPermissions: &adminPerm,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "team",
					Description: "Delete all team data",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "scrim",
					Description: "Delete all scrim slotlist data",
				},
			},
		},
		{
			Name:        "ping",
			Description: "Check the bot's latency",
		},
	}
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case "panel":
			b.handlePanel(s, i)
		case "scrim-register":
			b.handleScrimRegister(s, i)
		case "scrim-unregister":
			b.handleScrimUnregister(s, i)
		case "scrim-status":
			b.handleScrimStatus(s, i)
		case "slotlist":
			b.handleSlotlist(s, i)
		case "delete-data":
			b.handleDeleteData(s, i)
		case "ping":
			b.handlePing(s, i)
		default:
			log.Logger.Warn("unknown command", zap.String("command", data.Name))
		}

	case discordgo.InteractionApplicationCommandAutocomplete:
		if i.ApplicationCommandData().Name == "scrim-register" {
			b.handleLocationAutocomplete(s, i)
		}

	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)

	case discordgo.InteractionModalSubmit:
		b.handleModal(s, i)
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()

	switch data.CustomID {
	case "team_enrollment_select":
		if len(data.Values) == 0 {
			return
		}
		switch data.Values[0] {
		case "enroll":
			b.startEnrollment(s, i, false)
		case "update":
			b.startEnrollment(s, i, true)
		case "delete":
			b.showDeleteConfirm(s, i)
		case "status":
			b.showTeamStatus(s, i)
		case "list":
			b.showAllTeams(s, i)
		}
	case "scrim_time_select":
		b.handleScrimTimeSelect(s, i)
	case "team_info_modal":
		b.showTeamInfoModal(s, i)
	case "add_players_modal":
		b.showRosterModal(s, i)
	case "transfer_leadership":
		b.showTransferModal(s, i)
	case "finish_enrollment":
		b.finishEnrollment(s, i)
	case "cancel_enrollment", "cancel_player_step":
		b.cancelEnrollment(s, i)
	case "confirm_delete_team":
		b.confirmTeamDeletion(s, i)
	case "cancel_delete_team":
		respondEphemeral(s, i, "❌ Team deletion cancelled.")
	case "scrim_unregister_now":
		b.handleUnregisterButton(s, i)
	default:
		log.Logger.Warn("unknown component", zap.String("customID", data.CustomID))
	}
}

func (b *Bot) handleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()

	switch data.CustomID {
	case "team_info_submit":
		b.submitTeamInfo(s, i)
	case "players_submit":
		b.submitRoster(s, i)
	case "leadership_transfer_submit":
		b.submitTransfer(s, i)
	default:
		log.Logger.Warn("unknown modal", zap.String("customID", data.CustomID))
	}
}
