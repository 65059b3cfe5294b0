package prompt

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	staticProviderName = "static"
	geminiProviderName = "gemini"

	fallbackReasoning = "Enhanced with AI-powered improvements"
)

func fallbackImprovements() []string {
	return []string{"Improved visual composition", "Enhanced cinematography", "Added technical details"}
}

var referencePrompts = []string{
	`Fluffy Characters Stop Motion: Inside a brightly colored, cozy kitchen made of felt and yarn. Professor Nibbles, a plump, fluffy hamster with oversized glasses, nervously stirs a bubbling pot on a miniature stove. The camera is a mid-shot, capturing his frantic stirring. Suddenly, the pot emits a loud "POP!" and a geyser of iridescent green slime erupts, covering the entire kitchen.`,
	`A fast-tracking POV shot through a grimy, neon-lit cyberpunk alleyway at night. Rain slicks the pavement, reflecting the glow of holographic advertisements. The sound of rapid, pounding footsteps and heavy breathing dominates the audio. The camera whips around to a lateral tracking shot following a nimble protagonist as she leaps over discarded crates, pursued by two armored security drones.`,
	`A gentle close-up on two small, brown macaque monkeys perched on a moss-covered branch in a misty rainforest. One monkey tenderly grooms the other's fur, making soft "chittering" sounds. The camera slowly zooms in further as they lean in and gaze at each other, followed by a soft, content "coo".`,
	`A dramatic low-angle tracking shot pulls back slowly from a vocalist bathed in warm, intimate stage lights in a smoky jazz club at night. Their eyes are closed in serene focus as they sing a powerful, uplifting note. The camera recedes, giving them space to fill the frame with their voice.`,
}

type modelEnhancePayload struct {
	EnhancedPrompt string   `json:"enhancedPrompt"`
	Reasoning      string   `json:"reasoning"`
	Improvements   []string `json:"improvements"`
}

func buildEnhancePrompt(original string) string {
	sb := &strings.Builder{}
	sb.WriteString("You are an expert prompt engineer for text-to-video models. ")
	sb.WriteString("Transform the user prompt into a cinematic, detailed prompt that will generate a high-quality video.\n\n")
	sb.WriteString("REFERENCE EXAMPLES:\n")
	sb.WriteString(strings.Join(referencePrompts, "\n\n"))
	sb.WriteString("\n\nInclude camera work, visual style, audio design, movement and action, environment, and technical specs.\n\n")
	sb.WriteString("ORIGINAL USER PROMPT: ")
	sb.WriteString(quote(original))
	sb.WriteString("\n\nRespond strictly with JSON matching this schema: ")
	sb.WriteString(`{"enhancedPrompt":string,"reasoning":string,"improvements":string[]}`)
	sb.WriteString(". Max 8 seconds, be specific with content per second.")
	return sb.String()
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// parseEnhancement decodes the model's JSON answer. Text that carries no
// usable JSON is returned verbatim as the enhanced prompt.
func parseEnhancement(raw string) *Enhancement {
	parsed, err := parseModelPayload[modelEnhancePayload](raw)
	if err != nil || strings.TrimSpace(parsed.EnhancedPrompt) == "" {
		return &Enhancement{
			EnhancedPrompt: strings.TrimSpace(raw),
			Reasoning:      fallbackReasoning,
			Improvements:   fallbackImprovements(),
		}
	}
	improvements := normalizeList(parsed.Improvements)
	if improvements == nil {
		improvements = []string{}
	}
	return &Enhancement{
		EnhancedPrompt: strings.TrimSpace(parsed.EnhancedPrompt),
		Reasoning:      strings.TrimSpace(parsed.Reasoning),
		Improvements:   improvements,
	}
}

func normalizeList(items []string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		key := strings.ToLower(it)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, it)
	}
	return result
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
