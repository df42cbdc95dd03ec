// Package pdftext reconstructs ordered text lines from the positioned text
// fragments of a PDF. Statement PDFs carry no logical text flow, so lines
// are rebuilt from the fragments' coordinates: fragments sharing a rounded
// vertical position form one visual row, ordered left to right.
package pdftext

import (
	"bytes"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"finsight/bankstmt/internal/parsererror"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExtractLines returns the reconstructed text lines of each page, top to
// bottom. maxPages limits how many pages are read; zero means all pages.
//
// A password-protected document fails with PasswordProtectedError and a
// structurally broken one with DocumentUnreadableError, so callers can give
// the user an actionable message instead of a generic parse failure.
func ExtractLines(content []byte, maxPages int) ([][]string, error) {
	if err := validate(content); err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, &parsererror.DocumentUnreadableError{Err: err}
	}

	pageCount := reader.NumPage()
	if maxPages > 0 && pageCount > maxPages {
		pageCount = maxPages
	}

	pages := make([][]string, 0, pageCount)
	for pageNo := 1; pageNo <= pageCount; pageNo++ {
		page := reader.Page(pageNo)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, reconstructPage(page.Content().Text))
	}

	return pages, nil
}

// validate runs a structural check over the document up front. pdfcpu
// reports encryption separately from corruption, which is what lets us keep
// the two error kinds distinct.
func validate(content []byte) error {
	conf := model.NewDefaultConfiguration()
	_, err := api.ReadValidateAndOptimize(bytes.NewReader(content), conf)
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") {
		return &parsererror.PasswordProtectedError{}
	}
	return &parsererror.DocumentUnreadableError{Err: err}
}

// reconstructPage groups fragments into visual rows by rounded vertical
// coordinate, orders each row left to right and the rows top to bottom.
// PDF space grows upward, so top to bottom means descending Y.
func reconstructPage(fragments []pdf.Text) []string {
	rows := make(map[int][]pdf.Text)
	for _, frag := range fragments {
		if strings.TrimSpace(frag.S) == "" {
			continue
		}
		y := int(math.Round(frag.Y))
		rows[y] = append(rows[y], frag)
	}

	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		row := rows[y]
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })

		parts := make([]string, 0, len(row))
		for _, frag := range row {
			parts = append(parts, frag.S)
		}
		line := whitespaceRun.ReplaceAllString(strings.Join(parts, " "), " ")
		lines = append(lines, strings.TrimSpace(line))
	}

	return lines
}
