package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/secondrobotics/ranked-bot/internal/logic"
	"github.com/secondrobotics/ranked-bot/internal/models"
)

// Discord rejects field values longer than this.
const maxFieldValue = 1024

const truncatedMarker = "…"

// Author is the caller shown in the embed's author line.
type Author struct {
	Name    string
	IconURL string
}

// PlayerEmbed renders a report as the /playerinfo embed.
func PlayerEmbed(r *models.PlayerReport, author Author, siteURL, fallbackAvatar string) *discordgo.MessageEmbed {
	thumbnail := r.Profile.Avatar
	if thumbnail == "" {
		thumbnail = fallbackAvatar
	}

	embed := &discordgo.MessageEmbed{
		Title: "Player Information",
		Color: r.AccentColor,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    author.Name,
			IconURL: author.IconURL,
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: thumbnail},
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Display Name",
		Value:  fmt.Sprintf("[%s](%s/user/%s)", r.Profile.DisplayName, siteURL, r.UserID),
		Inline: false,
	})

	for idx, col := range r.Columns {
		if len(col) == 0 {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("Games (Column %d)", idx+1),
			Value:  truncateBlocks(logic.FormatColumn(col), maxFieldValue),
			Inline: true,
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Summary",
		Value:  logic.FormatSummary(r.Summary),
		Inline: false,
	})

	return embed
}

// truncateBlocks cuts s to at most limit bytes, preferring to drop whole
// game blocks (separated by blank lines).
func truncateBlocks(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	budget := limit - len(truncatedMarker)
	cut := s[:budget]
	if idx := strings.LastIndex(cut, "\n\n"); idx > 0 {
		return cut[:idx+2] + truncatedMarker
	}
	for budget > 0 && !utf8.RuneStart(s[budget]) {
		budget--
	}
	return s[:budget] + truncatedMarker
}
