package papers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/dbx"
	"github.com/dmitrijs2005/paperswipe/internal/server/models"
	"github.com/lib/pq"
)

const paperColumns = `id, user_id, paper_id, title, authors, abstract, categories,
	published, source_url, pdf_url, notes, tags, saved_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (*models.SavedPaper, error) {
	p := &models.SavedPaper{}
	var published sql.NullTime
	err := row.Scan(&p.ID, &p.UserID, &p.PaperID, &p.Title, pq.Array(&p.Authors), &p.Abstract,
		pq.Array(&p.Categories), &published, &p.SourceURL, &p.PDFURL, &p.Notes, pq.Array(&p.Tags), &p.SavedAt)
	if err != nil {
		return nil, err
	}
	if published.Valid {
		p.Published = published.Time
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.SavedPaper) (*models.SavedPaper, error) {
	query := `
		INSERT INTO saved_papers (user_id, paper_id, title, authors, abstract, categories,
			published, source_url, pdf_url, notes, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, saved_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.PaperID, p.Title, pq.Array(nonNil(p.Authors)), p.Abstract, pq.Array(nonNil(p.Categories)),
		nullTime(p.Published), p.SourceURL, p.PDFURL, p.Notes, pq.Array(nonNil(p.Tags)),
	).Scan(&p.ID, &p.SavedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch models.PaperPatch) (*models.SavedPaper, error) {
	sets := make([]string, 0, 2)
	args := []any{userID, id}
	if patch.Notes != nil {
		args = append(args, *patch.Notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}
	if patch.Tags != nil {
		args = append(args, pq.Array(patch.Tags))
		sets = append(sets, fmt.Sprintf("tags = $%d", len(args)))
	}

	var query string
	if len(sets) == 0 {
		query = `SELECT ` + paperColumns + ` FROM saved_papers WHERE user_id = $1 AND id = $2`
	} else {
		query = `UPDATE saved_papers SET ` + strings.Join(sets, ", ") +
			` WHERE user_id = $1 AND id = $2 RETURNING ` + paperColumns
	}

	p, err := scanPaper(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_papers WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID, tag string) ([]*models.SavedPaper, error) {
	query := `SELECT ` + paperColumns + ` FROM saved_papers WHERE user_id = $1`
	args := []any{userID}
	if tag != "" {
		query += ` AND $2 = ANY(tags)`
		args = append(args, tag)
	}
	query += ` ORDER BY saved_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.SavedPaper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
