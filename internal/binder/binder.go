// Package binder fills ${name} placeholders in a doctree with text, table
// rows and images. Traversal is depth-first in document order and descends
// into tables nested inside table cells.
//
// Placeholders have no escaping: a replacement value that itself contains
// "${x}" is matched by a later bind of x.
package binder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amaumene/filmdocs/internal/doctree"
	"github.com/amaumene/filmdocs/internal/models"
)

// EMUPerPixel converts 96 dpi pixels to English Metric Units.
const EMUPerPixel = 9525

const (
	fieldPrefix = "${"
	fieldSuffix = "}"
)

// Placeholder returns the token for a field name.
func Placeholder(name string) string {
	return fieldPrefix + name + fieldSuffix
}

// walkRuns visits every run of tree in document order.
func walkRuns(tree doctree.Container, fn func(doctree.Run) error) error {
	for _, b := range tree.Blocks() {
		switch blk := b.(type) {
		case doctree.Paragraph:
			for _, r := range blk.Runs() {
				if err := fn(r); err != nil {
					return err
				}
			}
		case doctree.Table:
			for _, row := range blk.Rows() {
				for _, cell := range row.Cells() {
					if err := walkRuns(cell, fn); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// ReplaceText replaces target with replacement in every run containing it
// and returns the number of runs changed. A placeholder split across runs is
// not matched.
func ReplaceText(tree doctree.Container, target, replacement string) int {
	if target == "" {
		return 0
	}
	changed := 0
	_ = walkRuns(tree, func(r doctree.Run) error {
		text := r.Text()
		if strings.Contains(text, target) {
			r.SetText(strings.ReplaceAll(text, target, replacement))
			changed++
		}
		return nil
	})
	return changed
}

// FindTableContaining returns the first table, in depth-first order, with a
// cell whose own text contains anchor. A cell is checked before the tables
// nested inside it.
func FindTableContaining(tree doctree.Container, anchor string) doctree.Table {
	for _, b := range tree.Blocks() {
		tbl, ok := b.(doctree.Table)
		if !ok {
			continue
		}
		for _, row := range tbl.Rows() {
			for _, cell := range row.Cells() {
				if strings.Contains(cell.Text(), anchor) {
					return tbl
				}
				if found := FindTableContaining(cell, anchor); found != nil {
					return found
				}
			}
		}
	}
	return nil
}

// BindFields replaces ${name} with value for every entry, in name order.
func BindFields(tree doctree.Container, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ReplaceText(tree, Placeholder(name), fields[name])
	}
}

// CloneRowForEntry copies the template row (the last row when templateRow
// is negative), appends it to the table and strips the text inherited from
// the template. Cell count and formatting are kept.
func CloneRowForEntry(table doctree.Table, templateRow int) (doctree.Row, error) {
	row, err := table.CloneRow(templateRow)
	if err != nil {
		return nil, fmt.Errorf("failed to clone table row: %w", err)
	}
	for _, cell := range row.Cells() {
		cell.Clear()
	}
	return row, nil
}

// BindRows appends one row per entry, in order, modelled on the table's
// current last row. Values beyond the template's cell count are dropped.
func BindRows(table doctree.Table, entries [][]string) error {
	template := len(table.Rows()) - 1
	if template < 0 {
		return fmt.Errorf("table has no template row")
	}
	for _, values := range entries {
		row, err := CloneRowForEntry(table, template)
		if err != nil {
			return err
		}
		cells := row.Cells()
		for i, v := range values {
			if i >= len(cells) {
				break
			}
			cells[i].SetText(v)
		}
	}
	return nil
}

// RatingRows turns rating entries into (source, value) row values.
func RatingRows(ratings []models.RatingEntry) [][]string {
	rows := make([][]string, 0, len(ratings))
	for _, r := range ratings {
		rows = append(rows, []string{r.Source, r.Value})
	}
	return rows
}

// BindImage replaces every run whose text is exactly the ${field} token with
// the image, sized from its pixel dimensions. Runs mixing the token with other
// text are left alone. It returns the number of placements.
func BindImage(tree doctree.Container, field string, img models.ImagePayload) (int, error) {
	token := Placeholder(field)
	pic := doctree.Picture{
		Data:      img.Data,
		Format:    string(img.Format),
		Name:      img.LogicalName,
		WidthEMU:  int64(img.WidthPx) * EMUPerPixel,
		HeightEMU: int64(img.HeightPx) * EMUPerPixel,
	}

	placed := 0
	err := walkRuns(tree, func(r doctree.Run) error {
		if strings.TrimSpace(r.Text()) != token {
			return nil
		}
		r.SetText("")
		if err := r.InsertImage(pic); err != nil {
			return fmt.Errorf("failed to insert image for %s: %w", token, err)
		}
		placed++
		return nil
	})
	return placed, err
}
