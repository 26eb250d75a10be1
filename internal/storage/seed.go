package storage

import (
	"context"
	"fmt"
	"time"
)

// defaultTemplates are the recurring reports the product ships with.
// Managers manage templates from the admin dashboard; the seed only runs
// against an empty table.
var defaultTemplates = []ReportTemplate{
	{Title: "週報", Description: "今週の業務内容と来週の目標をまとめてください", DueDate: "金曜日", IsActive: true},
	{Title: "月報", Description: "今月の成果と来月の目標を記載してください", DueDate: "月末", IsActive: true},
	{Title: "KPT報告", Description: "Keep, Problem, Tryの観点で振り返りをお書きください", DueDate: "隔週水曜日", IsActive: true},
	{Title: "店舗ビジョン進捗", Description: "店舗ビジョンに向けた取り組み状況を報告してください", DueDate: "15日頃", IsActive: true},
	{Title: "外国人スタッフ週報", Description: "日本語学習状況や職場での困りごとをお聞かせください", DueDate: "日曜日", IsActive: true},
}

// DefaultTemplates returns a copy of the seed templates. Exposed so the
// in-memory backend can share the same fixtures.
func DefaultTemplates() []ReportTemplate {
	out := make([]ReportTemplate, len(defaultTemplates))
	copy(out, defaultTemplates)
	return out
}

func (db *DB) seedTemplates(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_templates`).Scan(&count); err != nil {
		return fmt.Errorf("count report templates: %w", err)
	}
	if count > 0 {
		return nil
	}

	query := `
		INSERT INTO report_templates (title, description, due_date, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	now := time.Now().Unix()
	for _, tpl := range defaultTemplates {
		if _, err := db.conn.ExecContext(ctx, query,
			tpl.Title, tpl.Description, tpl.DueDate, boolToInt(tpl.IsActive), now); err != nil {
			return fmt.Errorf("seed template %q: %w", tpl.Title, err)
		}
	}
	return nil
}
