package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string
	GuildID      string

	MongoURI string

	// Optional: when empty, audit events are not published.
	RabbitMQConnString string

	PublicLogChannelID string
	ScrimChannelID     string
	LogChannelID       string

	// Users allowed to run admin commands (/panel, /delete-data).
	Admins []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:       os.Getenv("DISCORD_BOT_TOKEN"),
		GuildID:            os.Getenv("GUILD_ID"),
		MongoURI:           envOrDefaultString("MONGO_URI", "mongodb://localhost:27017"),
		RabbitMQConnString: os.Getenv("RABBITMQ_CONNSTRING"),
		PublicLogChannelID: os.Getenv("PUBLIC_LOG_CHANNEL_ID"),
		ScrimChannelID:     os.Getenv("SCRIM_CHANNEL_ID"),
		LogChannelID:       os.Getenv("LOG_CHANNEL_ID"),
	}

	if admins := os.Getenv("BOT_ADMINS"); admins != "" {
		cfg.Admins = strings.Split(admins, ",")
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}

	return cfg, nil
}

func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.Admins {
		if id == userID {
			return true
		}
	}

	return false
}

func envOrDefaultString(env, def string) string {
	if val, ok := os.LookupEnv(env); ok {
		return val
	}

	return def
}
