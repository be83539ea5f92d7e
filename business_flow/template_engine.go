package businessflow

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/amirphl/Ame-no-Uzume/models"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// suggestTopN caps the suggestion list length
const suggestTopN = 5

// extractPlaceholders returns the set of placeholder names in a body
func extractPlaceholders(body string) map[string]bool {
	names := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(body, -1) {
		names[match[1]] = true
	}
	return names
}

// validateTemplateDefinition checks a template definition and returns
// every problem found. A template failing validation is rejected at
// registration time, never at use time.
func validateTemplateDefinition(name, contentType, body string, variables []models.TemplateVariable) []string {
	var problems []string

	if strings.TrimSpace(name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(contentType) == "" {
		problems = append(problems, "content_type is required")
	}
	if strings.TrimSpace(body) == "" {
		problems = append(problems, "body is required")
	}

	declared := make(map[string]bool, len(variables))
	for i, v := range variables {
		if strings.TrimSpace(v.Name) == "" {
			problems = append(problems, fmt.Sprintf("variable %d has no name", i))
			continue
		}
		declared[v.Name] = true
		if !models.IsValidVariableType(v.Type) {
			problems = append(problems, fmt.Sprintf("variable %q has unrecognized type %q", v.Name, v.Type))
		}
		if v.Type == models.VariableTypeSelect && len(v.Options) == 0 {
			problems = append(problems, fmt.Sprintf("select variable %q requires a non-empty options list", v.Name))
		}
	}

	// Placeholder set must exactly equal the declared variable set
	placeholders := extractPlaceholders(body)
	for name := range placeholders {
		if !declared[name] {
			problems = append(problems, fmt.Sprintf("placeholder {{%s}} is not declared as a variable", name))
		}
	}
	for name := range declared {
		if !placeholders[name] {
			problems = append(problems, fmt.Sprintf("variable %q is never referenced in the body", name))
		}
	}

	sort.Strings(problems)
	return problems
}

// substituteTemplate fills a template body with the given values.
// Every missing required variable is reported at once; missing optional
// variables fall back to their declared default. Placeholders still
// unresolved afterwards become empty strings, logged but non-fatal.
func substituteTemplate(template *models.ContentTemplate, values map[string]string) (string, error) {
	var missing []string
	resolved := make(map[string]string, len(template.Variables))

	for _, v := range template.Variables {
		if value, ok := values[v.Name]; ok {
			resolved[v.Name] = value
			continue
		}
		if v.Required {
			missing = append(missing, v.Name)
			continue
		}
		if v.Default != nil {
			resolved[v.Name] = *v.Default
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &MissingVariableError{Missing: missing}
	}

	out := placeholderPattern.ReplaceAllStringFunc(template.Body, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]
		value, ok := resolved[name]
		if !ok {
			log.Printf("template %s: unresolved placeholder {{%s}} replaced with empty string", template.Name, name)
			return ""
		}
		return value
	})

	return normalizeWhitespace(out), nil
}

var (
	paragraphBreakPattern = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)
	whitespaceRunPattern  = regexp.MustCompile(`[ \t]+`)
	singleNewlinePattern  = regexp.MustCompile(`[ \t]*\n[ \t]*`)
)

// normalizeWhitespace collapses whitespace runs to a single space while
// keeping paragraph breaks: two or more newlines become exactly one
// blank line. Carriage returns count as newlines. The result is trimmed.
func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	paragraphs := paragraphBreakPattern.Split(text, -1)
	for i, p := range paragraphs {
		p = singleNewlinePattern.ReplaceAllString(p, " ")
		p = whitespaceRunPattern.ReplaceAllString(p, " ")
		paragraphs[i] = strings.TrimSpace(p)
	}
	kept := paragraphs[:0]
	for _, p := range paragraphs {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

type templateSuggestion struct {
	template *models.ContentTemplate
	affinity float64
}

// suggestTemplates ranks templates for a persona. Every template starts
// at 1.0; templates whose variables a persona can fill, or whose body
// speaks in the persona's tone register, rank higher. Ties keep the
// incoming (name) order; the list is truncated to the top 5.
func suggestTemplates(templates []*models.ContentTemplate, persona *models.Persona) []templateSuggestion {
	suggestions := make([]templateSuggestion, 0, len(templates))
	for _, t := range templates {
		suggestions = append(suggestions, templateSuggestion{template: t, affinity: templateAffinity(t, persona)})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].affinity > suggestions[j].affinity
	})
	if len(suggestions) > suggestTopN {
		suggestions = suggestions[:suggestTopN]
	}
	return suggestions
}

// toneMatchCap bounds the accumulated tone-word bonus
const toneMatchCap = 0.3

func templateAffinity(t *models.ContentTemplate, persona *models.Persona) float64 {
	affinity := 1.0

	for _, v := range t.Variables {
		if personaReusableFields[v.Name] {
			affinity += 0.2
			break
		}
	}

	body := strings.ToLower(t.Body)
	toneBonus := 0.0
	for _, word := range toneLexicons[persona.Tone] {
		if strings.Contains(body, word) {
			toneBonus += 0.1
		}
	}
	if toneBonus > toneMatchCap {
		toneBonus = toneMatchCap
	}
	return affinity + toneBonus
}
