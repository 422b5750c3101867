// Package importer reads question banks from Excel workbooks.
//
// Each sheet is a category. The first row is a header; every other row is
//
//	question | option 1 | option 2 | option 3 | option 4 | correct | difficulty
//
// where correct is 1-4, A-D or the text of the correct option, and
// difficulty (easy, medium or hard) is optional and defaults to medium.
package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mroshb/trivia_bot/internal/models"
	"github.com/mroshb/trivia_bot/internal/security"
	"github.com/mroshb/trivia_bot/internal/trivia"
	"github.com/mroshb/trivia_bot/pkg/utils"
	"github.com/xuri/excelize/v2"
)

const minColumns = 6

// RowError describes a row that was not imported.
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Sheet, e.Row, e.Err)
}

type Result struct {
	Questions []models.Question
	Skipped   []RowError
}

// OpenFile reads the workbook at path.
func OpenFile(path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read collects the questions of every sheet of f.
func Read(f *excelize.File) (*Result, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found")
	}

	result := &Result{}
	for _, sheetName := range sheets {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheetName, err)
		}

		category := security.SanitizeString(sheetName)
		for i, row := range rows {
			if i == 0 || isBlank(row) {
				continue
			}
			q, err := parseRow(category, row)
			if err != nil {
				result.Skipped = append(result.Skipped, RowError{Sheet: sheetName, Row: i + 1, Err: err})
				continue
			}
			result.Questions = append(result.Questions, *q)
		}
	}
	return result, nil
}

func parseRow(category string, row []string) (*models.Question, error) {
	if len(row) < minColumns {
		return nil, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(row))
	}

	prompt := security.SanitizeString(row[0])
	options := make([]string, 4)
	for i := range options {
		options[i] = utils.NormalizeAnswer(security.SanitizeString(row[i+1]))
	}

	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if opt == "" {
			return nil, fmt.Errorf("empty option")
		}
		if seen[opt] {
			return nil, fmt.Errorf("duplicate option %q", opt)
		}
		seen[opt] = true
	}

	correct, err := resolveCorrect(row[5], options)
	if err != nil {
		return nil, err
	}

	difficulty := trivia.DifficultyMedium
	if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
		difficulty = trivia.Difficulty(strings.ToLower(strings.TrimSpace(row[6])))
	}

	distractors := make([]string, 0, 3)
	for i, opt := range options {
		if i != correct {
			distractors = append(distractors, opt)
		}
	}
	candidate := trivia.Question{
		Category:    category,
		Difficulty:  difficulty,
		Prompt:      prompt,
		Correct:     options[correct],
		Distractors: distractors,
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}

	return &models.Question{
		QuestionText:  prompt,
		Category:      category,
		Difficulty:    string(difficulty),
		CorrectAnswer: options[correct],
		Options:       string(optionsJSON),
		Source:        "import",
	}, nil
}

// resolveCorrect returns the index of the correct option.
func resolveCorrect(indicator string, options []string) (int, error) {
	indicator = strings.TrimSpace(indicator)

	if n, err := strconv.Atoi(indicator); err == nil {
		if n < 1 || n > len(options) {
			return 0, fmt.Errorf("correct option %d out of range", n)
		}
		return n - 1, nil
	}
	if label, ok := trivia.ParseLabel(indicator); ok {
		for i, l := range trivia.Labels {
			if l == label {
				return i, nil
			}
		}
	}
	normalized := utils.NormalizeAnswer(indicator)
	for i, opt := range options {
		if opt == normalized {
			return i, nil
		}
	}
	return 0, fmt.Errorf("correct answer %q matches no option", indicator)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
