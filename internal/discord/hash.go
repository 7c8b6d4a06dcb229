package discord

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// hashCommands returns a deterministic digest of a command set. IDs and
// versions assigned by Discord are ignored, as is the order of commands
// and options.
func hashCommands(cmds []*discordgo.ApplicationCommand) string {
	normalized := make([]map[string]any, 0, len(cmds))
	for _, c := range cmds {
		normalized = append(normalized, normalizeCommand(c))
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i]["name"].(string) < normalized[j]["name"].(string)
	})
	data, _ := json.Marshal(normalized)
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func normalizeCommand(c *discordgo.ApplicationCommand) map[string]any {
	obj := map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
	}
	if len(c.Options) > 0 {
		obj["options"] = normalizeOptions(c.Options)
	}
	return obj
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	normalized := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]any, len(o.Choices))
			for j, c := range o.Choices {
				choices[j] = map[string]any{"name": c.Name, "value": c.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		normalized[i] = entry
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i]["name"].(string) < normalized[j]["name"].(string)
	})
	return normalized
}
