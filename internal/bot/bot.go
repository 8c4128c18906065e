// Package bot wires the ranked commands to a Discord gateway session.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/secondrobotics/ranked-bot/internal/logic"
	"github.com/secondrobotics/ranked-bot/internal/worker"
)

// CommandQueue runs command jobs off the gateway goroutine.
type CommandQueue interface {
	Enqueue(job worker.Job) bool
}

// CooldownStore limits how often a user may run a command.
type CooldownStore interface {
	Acquire(ctx context.Context, command, userID string) (bool, time.Duration, error)
}

// Config wires the bot to its session and services.
type Config struct {
	Session  *discordgo.Session
	GuildID  string
	Stats    logic.PlayerStatsService
	Queue    CommandQueue
	Cooldown CooldownStore
	Logger   *zap.Logger

	SiteURL           string
	RegisterURL       string
	FallbackAvatarURL string
	CommandTimeout    time.Duration
}

// Bot serves the ranked slash commands for one guild.
type Bot struct {
	session   *discordgo.Session
	guildID   string
	stats     logic.PlayerStatsService
	queue     CommandQueue
	cooldown  CooldownStore
	responder Responder
	latency   func() time.Duration
	logger    *zap.SugaredLogger

	siteURL           string
	registerURL       string
	fallbackAvatarURL string
	commandTimeout    time.Duration
}

// New creates a bot. Call Open to connect.
func New(cfg Config) *Bot {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	b := &Bot{
		session:           cfg.Session,
		guildID:           cfg.GuildID,
		stats:             cfg.Stats,
		queue:             cfg.Queue,
		cooldown:          cfg.Cooldown,
		responder:         sessionResponder{session: cfg.Session},
		logger:            cfg.Logger.Sugar(),
		siteURL:           cfg.SiteURL,
		registerURL:       cfg.RegisterURL,
		fallbackAvatarURL: cfg.FallbackAvatarURL,
		commandTimeout:    cfg.CommandTimeout,
	}
	b.latency = func() time.Duration {
		if b.session == nil {
			return 0
		}
		return b.session.HeartbeatLatency()
	}
	return b
}

// Open connects to the gateway and registers the guild commands.
func (b *Bot) Open() error {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Infow("Connected to gateway", "user", r.User.Username, "guilds", len(r.Guilds))
	})
	b.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		b.HandleInteraction(ic.Interaction)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, Commands)
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	b.logger.Infow("Registered commands", "guild", b.guildID, "count", len(registered))
	return nil
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	return b.session.Close()
}

// HandleInteraction routes an application command to its handler.
func (b *Bot) HandleInteraction(i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch name := i.ApplicationCommandData().Name; name {
	case commandPing:
		b.handlePing(i)
	case commandPlayerInfo:
		b.handlePlayerInfo(i)
	default:
		b.logger.Warnw("Unknown command", "command", name)
	}
}

func (b *Bot) handlePing(i *discordgo.Interaction) {
	ms := float64(b.latency()) / float64(time.Millisecond)
	if err := b.responder.Respond(i, fmt.Sprintf("Pong! Latency: %.2fms", ms), false); err != nil {
		b.logger.Errorw("Failed to respond to ping", "error", err)
	}
}

// interactionUser returns the invoking user and their guild nickname, if any.
func interactionUser(i *discordgo.Interaction) (*discordgo.User, string) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User, i.Member.Nick
	}
	if i.User != nil {
		return i.User, ""
	}
	return &discordgo.User{}, ""
}

func displayName(u *discordgo.User, nick string) string {
	switch {
	case nick != "":
		return nick
	case u.GlobalName != "":
		return u.GlobalName
	default:
		return u.Username
	}
}

// optionUserID returns the ID passed in the user option, if present.
func optionUserID(i *discordgo.Interaction) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name != optionUser || opt.Type != discordgo.ApplicationCommandOptionUser {
			continue
		}
		if id, ok := opt.Value.(string); ok {
			return id
		}
	}
	return ""
}
