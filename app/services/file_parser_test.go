package services

import (
	"bytes"
	"testing"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildTestWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, name, cell))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseExcel(t *testing.T) {
	parser := NewQuestionnaireFileParser()

	data := buildTestWorkbook(t, [][]string{
		{"key", "question", "answer", "type"},
		{"tone", "How do you want to sound?", "casual", "text"},
		{"Target Audience", "Who listens to you?", "indie rock fans", "text"},
		{"themes", "", "touring, vinyl, nightlife", ""},
		{"", "", "skipped, no key", ""},
	})

	answers, err := parser.Parse("persona.xlsx", data)
	require.NoError(t, err)
	require.Len(t, answers, 3)

	assert.Equal(t, "tone", answers[0].QuestionKey)
	assert.Equal(t, "How do you want to sound?", answers[0].QuestionText)
	assert.Equal(t, "casual", answers[0].Answer)
	assert.Equal(t, models.AnswerTypeText, answers[0].AnswerType)

	// Keys are lowercased with spaces collapsed to underscores
	assert.Equal(t, "target_audience", answers[1].QuestionKey)

	// Missing question text falls back to the key, missing type to text
	assert.Equal(t, "themes", answers[2].QuestionText)
	assert.Equal(t, models.AnswerTypeText, answers[2].AnswerType)
}

func TestParseCSV(t *testing.T) {
	parser := NewQuestionnaireFileParser()

	data := []byte("key,question,answer,type\n" +
		"tone,How do you sound?,edgy,text\n" +
		"persona_name,Stage persona name,Night Voltage,text\n")

	answers, err := parser.Parse("persona.csv", data)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "edgy", answers[0].Answer)
	assert.Equal(t, "Night Voltage", answers[1].Answer)
}

func TestParseCSVTwoColumns(t *testing.T) {
	parser := NewQuestionnaireFileParser()

	data := []byte("tone,mysterious\nthemes,\"synths, neon\"\n")

	answers, err := parser.Parse("persona.csv", data)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "tone", answers[0].QuestionKey)
	assert.Equal(t, "mysterious", answers[0].Answer)
	assert.Equal(t, "synths, neon", answers[1].Answer)
}

func TestParseText(t *testing.T) {
	parser := NewQuestionnaireFileParser()

	data := []byte(`# persona questionnaire
tone: friendly
Target Audience: festival crowds

this line has no separator
themes: summer, beaches, acoustic sets
`)

	answers, err := parser.Parse("persona.txt", data)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	assert.Equal(t, "tone", answers[0].QuestionKey)
	assert.Equal(t, "friendly", answers[0].Answer)
	assert.Equal(t, "target_audience", answers[1].QuestionKey)
	assert.Equal(t, "summer, beaches, acoustic sets", answers[2].Answer)
}

func TestParseUnsupportedExtension(t *testing.T) {
	parser := NewQuestionnaireFileParser()

	_, err := parser.Parse("persona.pdf", []byte("data"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestParseEmptyFile(t *testing.T) {
	parser := NewQuestionnaireFileParser()

	_, err := parser.Parse("persona.txt", []byte("\n\n# only comments\n"))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = parser.Parse("persona.csv", []byte(""))
	assert.ErrorIs(t, err, ErrEmptyFile)
}
