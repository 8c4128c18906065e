package bot

import "github.com/bwmarrin/discordgo"

const (
	commandPing       = "ping"
	commandPlayerInfo = "playerinfo"

	optionUser = "user"
)

// Commands are registered to the configured guild at startup.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        commandPing,
		Description: "Ping the bot",
	},
	{
		Name:        commandPlayerInfo,
		Description: "Player Info",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        optionUser,
				Description: "Player to look up, defaults to you",
				Required:    false,
			},
		},
	},
}
