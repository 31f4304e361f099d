package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"wellbeing/internal/domain"
	"wellbeing/internal/ports"
	"wellbeing/internal/scoring"
)

var _ ports.Store = (*DB)(nil)

// CatalogRepository

func (db *DB) GetQuestion(ctx context.Context, orderIndex int) (domain.Question, error) {
	q, err := scanQuestion(db.Pool.QueryRow(ctx, `
        SELECT id::text, order_index, category, title, description
        FROM questions WHERE order_index = $1
    `, orderIndex))
	if errors.Is(err, pgx.ErrNoRows) {
		return q, domain.NotFound("question", strconv.Itoa(orderIndex))
	}
	return q, err
}

func (db *DB) GetOptions(ctx context.Context, questionID string) ([]domain.Option, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id::text, question_id::text, label, value, order_index
        FROM options WHERE question_id::text = $1
        ORDER BY order_index
    `, questionID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanOption)
}

func (db *DB) GetAllQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id::text, order_index, category, title, description
        FROM questions ORDER BY order_index
    `)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Question, error) {
		return scanQuestion(row)
	})
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var q domain.Question
	var category string
	err := row.Scan(&q.ID, &q.OrderIndex, &category, &q.Title, &q.Description)
	q.Category = domain.Category(category)
	return q, err
}

func (db *DB) GetAllOptions(ctx context.Context) ([]domain.Option, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id::text, question_id::text, label, value, order_index
        FROM options ORDER BY question_id, order_index
    `)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanOption)
}

func scanOption(row pgx.CollectableRow) (domain.Option, error) {
	var o domain.Option
	err := row.Scan(&o.ID, &o.QuestionID, &o.Label, &o.Value, &o.OrderIndex)
	return o, err
}

// AssessmentRepository

const assessmentColumns = `id::text, user_id, status, created_at, completed_at`

func scanAssessment(row pgx.Row) (domain.Assessment, error) {
	var a domain.Assessment
	var status string
	if err := row.Scan(&a.ID, &a.UserID, &status, &a.CreatedAt, &a.CompletedAt); err != nil {
		return a, err
	}
	a.Status = domain.AssessmentStatus(status)
	a.Guest = a.UserID == nil
	return a, nil
}

func (db *DB) CreateAssessment(ctx context.Context, userID *string) (domain.Assessment, error) {
	return scanAssessment(db.Pool.QueryRow(ctx, `
        INSERT INTO assessments (user_id) VALUES ($1)
        RETURNING `+assessmentColumns, userID))
}

func (db *DB) GetAssessment(ctx context.Context, id string) (domain.Assessment, error) {
	a, err := scanAssessment(db.Pool.QueryRow(ctx, `
        SELECT `+assessmentColumns+` FROM assessments WHERE id::text = $1
    `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return a, domain.NotFound("assessment", id)
	}
	return a, err
}

func (db *DB) ListAssessments(ctx context.Context, userID string) ([]domain.Assessment, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT `+assessmentColumns+` FROM assessments
        WHERE user_id = $1 ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Assessment, error) {
		return scanAssessment(row)
	})
}

func (db *DB) SetStatus(ctx context.Context, id string, status domain.AssessmentStatus) error {
	tag, err := db.Pool.Exec(ctx, `
        UPDATE assessments
        SET status = $2,
            completed_at = CASE WHEN $2 <> 'in_progress' THEN COALESCE(completed_at, now()) ELSE completed_at END
        WHERE id::text = $1
    `, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("assessment", id)
	}
	return nil
}

// ResponseRepository

// GetResponses returns responses in write order so replaying them keeps
// last-write-wins.
func (db *DB) GetResponses(ctx context.Context, assessmentID string) ([]domain.Response, error) {
	if _, err := db.GetAssessment(ctx, assessmentID); err != nil {
		return nil, err
	}
	rows, err := db.Pool.Query(ctx, `
        SELECT question_key, option_id FROM responses
        WHERE assessment_id::text = $1
        ORDER BY updated_at, question_key
    `, assessmentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Response, error) {
		var r domain.Response
		err := row.Scan(&r.QuestionID, &r.OptionID)
		return r, err
	})
}

func (db *DB) SaveResponse(ctx context.Context, assessmentID string, r domain.Response) error {
	if _, err := db.GetAssessment(ctx, assessmentID); err != nil {
		return err
	}
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO responses (assessment_id, question_key, option_id)
        VALUES ($1::uuid, $2, $3)
        ON CONFLICT (assessment_id, question_key)
        DO UPDATE SET option_id = EXCLUDED.option_id, updated_at = clock_timestamp()
    `, assessmentID, r.QuestionID, r.OptionID)
	return err
}

// ScoreSink

func (db *DB) SaveScores(ctx context.Context, assessmentID string, b scoring.Breakdown) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return err
	}
	tag, err := db.Pool.Exec(ctx, `
        INSERT INTO scores (assessment_id, health_total, wealth_total, relationships_total,
                            overall_total, overall_percentage, grade, level, breakdown)
        SELECT id, $2, $3, $4, $5, $6, $7, $8, $9::jsonb FROM assessments WHERE id::text = $1
        ON CONFLICT (assessment_id) DO UPDATE SET
            health_total = EXCLUDED.health_total,
            wealth_total = EXCLUDED.wealth_total,
            relationships_total = EXCLUDED.relationships_total,
            overall_total = EXCLUDED.overall_total,
            overall_percentage = EXCLUDED.overall_percentage,
            grade = EXCLUDED.grade,
            level = EXCLUDED.level,
            breakdown = EXCLUDED.breakdown,
            computed_at = now()
    `, assessmentID, b.Health.Total, b.Wealth.Total, b.Relationships.Total,
		b.Overall.Total, b.Overall.Percentage, b.Overall.Grade, b.Overall.Level, string(payload))
	if err != nil {
		return fmt.Errorf("save scores: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("assessment", assessmentID)
	}
	return nil
}

func (db *DB) LatestScores(ctx context.Context, assessmentID string) (scoring.Breakdown, bool, error) {
	var b scoring.Breakdown
	var raw []byte
	err := db.Pool.QueryRow(ctx, `
        SELECT breakdown FROM scores WHERE assessment_id::text = $1
    `, assessmentID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return b, false, nil
	}
	if err != nil {
		return b, false, err
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return b, false, fmt.Errorf("decode scores: %w", err)
	}
	return b, true, nil
}
