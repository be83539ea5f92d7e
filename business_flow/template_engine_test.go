package businessflow

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTemplateDefinition_Valid(t *testing.T) {
	problems := validateTemplateDefinition(
		"release-announcement",
		models.ContentTypeReleaseAnnounce,
		"New single {{title}} drops on {{release_date}}!",
		[]models.TemplateVariable{
			{Name: "title", Type: models.VariableTypeText, Required: true},
			{Name: "release_date", Type: models.VariableTypeDate, Required: true},
		},
	)

	assert.Empty(t, problems)
}

func TestValidateTemplateDefinition_CollectsEveryProblem(t *testing.T) {
	problems := validateTemplateDefinition(
		"",
		"",
		"Hello {{undeclared}}",
		[]models.TemplateVariable{
			{Name: "", Type: models.VariableTypeText},
			{Name: "orphan", Type: "fancy"},
			{Name: "pick", Type: models.VariableTypeSelect},
		},
	)

	// One pass reports everything: required fields, the unnamed variable,
	// the bad type, the optionless select, the undeclared placeholder and
	// the two variables the body never uses.
	assert.Contains(t, problems, "name is required")
	assert.Contains(t, problems, "content_type is required")
	assert.Contains(t, problems, "variable 0 has no name")
	assert.Contains(t, problems, `variable "orphan" has unrecognized type "fancy"`)
	assert.Contains(t, problems, `select variable "pick" requires a non-empty options list`)
	assert.Contains(t, problems, "placeholder {{undeclared}} is not declared as a variable")
	assert.Contains(t, problems, `variable "orphan" is never referenced in the body`)
	assert.Contains(t, problems, `variable "pick" is never referenced in the body`)
}

func TestValidateTemplateDefinition_BodyRequired(t *testing.T) {
	problems := validateTemplateDefinition("n", models.ContentTypeTweet, "   ", nil)
	assert.Equal(t, []string{"body is required"}, problems)
}

func TestSubstituteTemplate_FillsValuesAndDefaults(t *testing.T) {
	template := &models.ContentTemplate{
		Name: "shout",
		Body: "Hey {{ name }}, check out {{track}} in {{city}}!",
		Variables: models.TemplateVariables{
			{Name: "name", Type: models.VariableTypeText, Required: true},
			{Name: "track", Type: models.VariableTypeText, Required: true},
			{Name: "city", Type: models.VariableTypeText, Default: utils.ToPtr("Tokyo")},
		},
	}

	out, err := substituteTemplate(template, map[string]string{
		"name":  "Aoi",
		"track": "Midnight Rain",
	})

	require.NoError(t, err)
	assert.Equal(t, "Hey Aoi, check out Midnight Rain in Tokyo!", out)
	assert.NotContains(t, out, "{{")
}

func TestSubstituteTemplate_ReportsAllMissingAtOnce(t *testing.T) {
	template := &models.ContentTemplate{
		Name: "shout",
		Body: "{{a}} {{b}} {{c}}",
		Variables: models.TemplateVariables{
			{Name: "a", Type: models.VariableTypeText, Required: true},
			{Name: "b", Type: models.VariableTypeText, Required: true},
			{Name: "c", Type: models.VariableTypeText, Required: true},
		},
	}

	_, err := substituteTemplate(template, map[string]string{"b": "x"})

	var missingErr *MissingVariableError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []string{"a", "c"}, missingErr.Missing)
	assert.True(t, errors.Is(err, ErrMissingVariables))
}

func TestSubstituteTemplate_UnresolvedOptionalBecomesEmpty(t *testing.T) {
	template := &models.ContentTemplate{
		Name: "shout",
		Body: "Before {{gap}} after",
		Variables: models.TemplateVariables{
			{Name: "gap", Type: models.VariableTypeText},
		},
	}

	out, err := substituteTemplate(template, nil)

	require.NoError(t, err)
	assert.Equal(t, "Before after", out)
}

func TestNormalizeWhitespace(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"runs collapse", "a   b\t\tc", "a b c"},
		{"trimmed", "  hello  ", "hello"},
		{"single newline joins", "line one\nline two", "line one line two"},
		{"paragraph break kept", "para one\n\n\n\npara two", "para one\n\npara two"},
		{"indented blank lines", "para one\n   \n\t\npara two", "para one\n\npara two"},
		{"crlf paragraph break kept", "para one\r\n\r\npara two", "para one\n\npara two"},
		{"bare carriage return joins", "a \r b", "a b"},
		{"empty", "   \n \n ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeWhitespace(tc.in))
		})
	}
}

func TestSuggestTemplates_PersonaVariableRanksHigher(t *testing.T) {
	persona := &models.Persona{Tone: models.ToneCasual}

	plain := &models.ContentTemplate{Name: "plain", Body: "announce {{thing}}",
		Variables: models.TemplateVariables{{Name: "thing", Type: models.VariableTypeText}}}
	personal := &models.ContentTemplate{Name: "personal", Body: "{{artist_name}} says hi",
		Variables: models.TemplateVariables{{Name: "artist_name", Type: models.VariableTypeText}}}

	suggestions := suggestTemplates([]*models.ContentTemplate{plain, personal}, persona)

	require.Len(t, suggestions, 2)
	assert.Equal(t, "personal", suggestions[0].template.Name)
	assert.Greater(t, suggestions[0].affinity, suggestions[1].affinity)
}

func TestSuggestTemplates_ToneWordsBoundedBonus(t *testing.T) {
	persona := &models.Persona{Tone: models.ToneCasual}
	words := toneLexicons[models.ToneCasual]
	require.GreaterOrEqual(t, len(words), 4)

	// A body stuffed with every tone word still caps its bonus
	stuffed := &models.ContentTemplate{Name: "stuffed", Body: strings.Join(words, " ")}
	suggestions := suggestTemplates([]*models.ContentTemplate{stuffed}, persona)

	require.Len(t, suggestions, 1)
	assert.InDelta(t, 1.3, suggestions[0].affinity, 1e-9)
}

func TestSuggestTemplates_TruncatesToTopFive(t *testing.T) {
	persona := &models.Persona{Tone: models.ToneEdgy}

	var templates []*models.ContentTemplate
	for i := 0; i < 8; i++ {
		templates = append(templates, &models.ContentTemplate{
			Name: fmt.Sprintf("t%d", i),
			Body: "static body",
		})
	}

	suggestions := suggestTemplates(templates, persona)

	require.Len(t, suggestions, 5)
	// Ties keep the incoming order
	assert.Equal(t, "t0", suggestions[0].template.Name)
	assert.Equal(t, "t4", suggestions[4].template.Name)
}
