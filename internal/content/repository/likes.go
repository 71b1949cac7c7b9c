package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jaehkim-quant/research-platform/internal/content/domain"
	"github.com/jaehkim-quant/research-platform/internal/db"
)

type PostgresLikeRepository struct {
	db *sqlx.DB
}

// NewPostgresLikeRepository returns a like repository that uses the given db for persistence.
func NewPostgresLikeRepository(conn *sqlx.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: conn}
}

func (r *PostgresLikeRepository) Status(ctx context.Context, postID, clientKey string) (domain.LikeStatus, error) {
	var st struct {
		LikeCount int  `db:"like_count"`
		Liked     bool `db:"liked"`
	}
	err := r.db.GetContext(ctx, &st, `
SELECT COUNT(*) AS like_count, COALESCE(BOOL_OR(ip = $2), FALSE) AS liked
FROM post_likes WHERE post_id = $1`, postID, clientKey)
	if err != nil {
		return domain.LikeStatus{}, err
	}
	return domain.LikeStatus{LikeCount: st.LikeCount, Liked: st.Liked}, nil
}

// Toggle deletes or inserts inside one transaction; the unique (post_id, ip) constraint makes a
// concurrent double insert a no-op.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, postID, clientKey, newID string, at time.Time) (domain.LikeStatus, error) {
	var out domain.LikeStatus
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND ip = $2`, postID, clientKey)
		if err != nil {
			return err
		}
		removed, err := affected(res)
		if err != nil {
			return err
		}
		if !removed {
			_, err = tx.ExecContext(ctx, `
INSERT INTO post_likes (id, post_id, ip, created_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (post_id, ip) DO NOTHING`, newID, postID, clientKey, at)
			if err != nil {
				return err
			}
		}
		out.Liked = !removed
		return tx.GetContext(ctx, &out.LikeCount, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID)
	})
	return out, err
}
