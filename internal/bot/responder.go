package bot

import "github.com/bwmarrin/discordgo"

// Responder sends interaction replies.
type Responder interface {
	Respond(i *discordgo.Interaction, content string, ephemeral bool) error
	Defer(i *discordgo.Interaction) error
	Followup(i *discordgo.Interaction, params *discordgo.WebhookParams) error
}

type sessionResponder struct {
	session *discordgo.Session
}

func (r sessionResponder) Respond(i *discordgo.Interaction, content string, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return r.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (r sessionResponder) Defer(i *discordgo.Interaction) error {
	return r.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func (r sessionResponder) Followup(i *discordgo.Interaction, params *discordgo.WebhookParams) error {
	_, err := r.session.FollowupMessageCreate(i, true, params)
	return err
}
