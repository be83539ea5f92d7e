package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/xuri/excelize/v2"
)

// ParsedAnswer is one questionnaire answer extracted from an uploaded file
type ParsedAnswer struct {
	QuestionKey  string
	QuestionText string
	Answer       string
	AnswerType   string
}

// Parser errors
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("file contains no answers")
)

// QuestionnaireFileParser extracts persona questionnaire answers from
// uploaded files. Supported: .xlsx, .csv, .txt, .md.
type QuestionnaireFileParser struct{}

// NewQuestionnaireFileParser creates a parser
func NewQuestionnaireFileParser() *QuestionnaireFileParser {
	return &QuestionnaireFileParser{}
}

// Parse dispatches on the file extension
func (p *QuestionnaireFileParser) Parse(filename string, data []byte) ([]ParsedAnswer, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return p.parseExcel(data)
	case ".csv":
		return p.parseCSV(data)
	case ".txt", ".md":
		return p.parseText(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(filename))
	}
}

// parseExcel reads the first sheet. Columns are key, question, answer,
// type in order; a header row with those names is skipped.
func (p *QuestionnaireFileParser) parseExcel(data []byte) ([]ParsedAnswer, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	var answers []ParsedAnswer
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		answer, ok := rowToAnswer(row)
		if !ok {
			continue
		}
		answers = append(answers, answer)
	}
	if len(answers) == 0 {
		return nil, ErrEmptyFile
	}
	return answers, nil
}

// parseCSV reads key, question, answer, type columns
func (p *QuestionnaireFileParser) parseCSV(data []byte) ([]ParsedAnswer, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var answers []ParsedAnswer
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		if first {
			first = false
			if isHeaderRow(row) {
				continue
			}
		}
		answer, ok := rowToAnswer(row)
		if !ok {
			continue
		}
		answers = append(answers, answer)
	}
	if len(answers) == 0 {
		return nil, ErrEmptyFile
	}
	return answers, nil
}

// parseText reads "key: answer" lines. Comment lines (#) and lines
// without a colon are ignored.
func (p *QuestionnaireFileParser) parseText(data []byte) ([]ParsedAnswer, error) {
	var answers []ParsedAnswer
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = normalizeQuestionKey(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		answers = append(answers, ParsedAnswer{
			QuestionKey:  key,
			QuestionText: key,
			Answer:       value,
			AnswerType:   models.AnswerTypeText,
		})
	}
	if len(answers) == 0 {
		return nil, ErrEmptyFile
	}
	return answers, nil
}

// rowToAnswer maps a tabular row to an answer. Key and answer are
// required; question text falls back to the key, type to text.
func rowToAnswer(row []string) (ParsedAnswer, bool) {
	if len(row) < 2 {
		return ParsedAnswer{}, false
	}
	key := normalizeQuestionKey(row[0])
	if key == "" {
		return ParsedAnswer{}, false
	}

	questionText := key
	answer := ""
	answerType := models.AnswerTypeText

	switch {
	case len(row) >= 3:
		if text := strings.TrimSpace(row[1]); text != "" {
			questionText = text
		}
		answer = strings.TrimSpace(row[2])
		if len(row) >= 4 {
			if t := strings.ToLower(strings.TrimSpace(row[3])); models.IsValidAnswerType(t) {
				answerType = t
			}
		}
	default:
		answer = strings.TrimSpace(row[1])
	}

	if answer == "" {
		return ParsedAnswer{}, false
	}
	return ParsedAnswer{
		QuestionKey:  key,
		QuestionText: questionText,
		Answer:       answer,
		AnswerType:   answerType,
	}, true
}

func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return first == "key" || first == "question_key"
}

func normalizeQuestionKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	return key
}
