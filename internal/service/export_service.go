package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// Поддерживаемые форматы экспорта
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

var exportHeaders = []string{"Question #", "Question", "Choice #", "Choice", "Correct"}

// ExportFile - готовый к отдаче файл
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService выгружает вопросы и варианты викторины в CSV или XLSX
type ExportService struct {
	quizRepo repository.QuizRepository
}

// NewExportService создает сервис экспорта
func NewExportService(quizRepo repository.QuizRepository) *ExportService {
	return &ExportService{quizRepo: quizRepo}
}

// IsValidExportFormat проверяет формат экспорта
func IsValidExportFormat(format string) bool {
	return format == ExportFormatCSV || format == ExportFormatXLSX
}

// ExportQuiz выгружает викторину владельца. Чужая или отсутствующая викторина дает ErrNotFoundOrForbidden.
func (s *ExportService) ExportQuiz(ctx context.Context, userID, quizID, format string) (*ExportFile, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if !IsValidExportFormat(format) {
		return nil, fmt.Errorf("%w: unsupported export format %q", apperrors.ErrValidation, format)
	}
	if _, err := uuid.Parse(quizID); err != nil {
		return nil, apperrors.ErrNotFoundOrForbidden
	}

	quiz, err := s.quizRepo.GetOwnedWithQuestions(ctx, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz for export: %w", err)
	}
	if !quiz.IsOwnedBy(userID) {
		log.Printf("[ExportService] Викторина %s получена не для своего автора (user_id=%s)", quiz.ID, userID)
		return nil, apperrors.ErrNotFoundOrForbidden
	}

	rows := exportRows(quiz)
	filename := fmt.Sprintf("quiz-%s.%s", quiz.ID, format)

	var data []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		data, err = writeCSV(rows)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatXLSX:
		data, err = writeXLSX(rows)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		log.Printf("[ExportService] Ошибка формирования %s для викторины %s: %v", format, quiz.ID, err)
		return nil, fmt.Errorf("failed to build %s export: %w", format, err)
	}

	return &ExportFile{Filename: filename, ContentType: contentType, Data: data}, nil
}

// exportRows разворачивает вопросы в строки "вопрос x вариант"
func exportRows(quiz *entity.Quiz) [][]string {
	var rows [][]string
	for qi, question := range quiz.Questions {
		if len(question.Choices) == 0 {
			rows = append(rows, []string{strconv.Itoa(qi + 1), sanitizeForExcel(question.Text), "", "", ""})
			continue
		}
		for ci, choice := range question.Choices {
			correct := "no"
			if choice.IsCorrect {
				correct = "yes"
			}
			rows = append(rows, []string{
				strconv.Itoa(qi + 1),
				sanitizeForExcel(question.Text),
				strconv.Itoa(ci + 1),
				sanitizeForExcel(choice.Text),
				correct,
			})
		}
	}
	return rows
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	// UTF-8 BOM для корректного открытия в Excel
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportHeaders); err != nil {
		return nil, err
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeXLSX пишет строки через StreamWriter
func writeXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Questions"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return nil, err
	}

	if err := sw.SetRow("A1", toCells(exportHeaders)); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, toCells(row)); err != nil {
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
