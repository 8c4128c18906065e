package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/secondrobotics/ranked-bot/internal/logic"
	"github.com/secondrobotics/ranked-bot/internal/worker"
)

const (
	msgGenericFailure = "Something went wrong while fetching player info. Please try again later."
	msgBusy           = "The bot is busy right now. Please try again in a moment."

	// Discord drops interactions not acknowledged within 3s.
	cooldownTimeout = 500 * time.Millisecond
)

func (b *Bot) notRegisteredMessage() string {
	return fmt.Sprintf("The player you requested must register for an account at <%s> before you can get info.", b.registerURL)
}

func cooldownMessage(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("You're doing that too fast. Try again in %ds.", secs)
}

func (b *Bot) handlePlayerInfo(i *discordgo.Interaction) {
	caller, nick := interactionUser(i)
	targetID := optionUserID(i)
	if targetID == "" {
		targetID = caller.ID
	}
	invocationID := uuid.NewString()
	log := b.logger.With("invocation_id", invocationID, "caller", caller.ID, "target", targetID)

	log.Infow("/playerinfo", "caller_name", displayName(caller, nick))

	if b.cooldown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cooldownTimeout)
		ok, wait, err := b.cooldown.Acquire(ctx, commandPlayerInfo, caller.ID)
		cancel()
		if err != nil {
			// Fail open; the cooldown only protects the upstream API.
			log.Warnw("Cooldown check failed", "error", err)
		} else if !ok {
			if err := b.responder.Respond(i, cooldownMessage(wait), true); err != nil {
				log.Errorw("Failed to send cooldown reply", "error", err)
			}
			return
		}
	}

	if err := b.responder.Defer(i); err != nil {
		log.Errorw("Failed to defer interaction", "error", err)
		return
	}

	author := Author{Name: displayName(caller, nick), IconURL: caller.AvatarURL("")}
	job := worker.Job{
		ID:      invocationID,
		Command: commandPlayerInfo,
		Timeout: b.commandTimeout,
		Run: func(ctx context.Context) {
			b.runPlayerInfo(ctx, i, targetID, author, invocationID)
		},
	}

	if !b.queue.Enqueue(job) {
		b.followupText(i, msgBusy, invocationID)
	}
}

func (b *Bot) runPlayerInfo(ctx context.Context, i *discordgo.Interaction, targetID string, author Author, invocationID string) {
	log := b.logger.With("invocation_id", invocationID, "target", targetID)

	report, err := b.stats.FetchPlayerStats(ctx, targetID)
	switch {
	case errors.Is(err, logic.ErrPlayerNotFound):
		log.Infow("Player not registered")
		b.followupText(i, b.notRegisteredMessage(), invocationID)
		return
	case err != nil:
		log.Errorw("Failed to fetch player stats", "error", err)
		b.followupText(i, msgGenericFailure, invocationID)
		return
	}

	embed := PlayerEmbed(report, author, b.siteURL, b.fallbackAvatarURL)
	if err := b.responder.Followup(i, &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}); err != nil {
		log.Errorw("Failed to send player info", "error", err)
	}
}

func (b *Bot) followupText(i *discordgo.Interaction, content, invocationID string) {
	err := b.responder.Followup(i, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		b.logger.Errorw("Failed to send followup", "invocation_id", invocationID, "error", err)
	}
}
