package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leasehub/exposure-rotation/internal/domain"
)

const itemColumns = `id, title, status, is_premium_tier, premium_rank, is_recommended, is_boosted,
		       premium_order, recommend_order, listing_order, boost_order,
		       activated_at, created_at, updated_at`

// queueDef maps a queue type to its order column, eligibility predicate, the
// state the activation workflow requires (guard) and what it sets besides the
// order (activate). Column names come from this fixed table only, never from
// caller input.
type queueDef struct {
	column    string
	predicate string
	guard     string
	activate  string
}

type pgItemRepository struct {
	pool   *pgxpool.Pool
	queues map[domain.QueueType]queueDef
}

// NewPgItemRepository returns an ItemRepository backed by PostgreSQL.
// premiumMaxRank is the worst premium rank still eligible for the premium queue.
func NewPgItemRepository(pool *pgxpool.Pool, premiumMaxRank int) ItemRepository {
	return &pgItemRepository{
		pool: pool,
		queues: map[domain.QueueType]queueDef{
			domain.QueuePremium: {
				column:    "premium_order",
				predicate: fmt.Sprintf("status = 'active' AND is_premium_tier AND premium_rank <= %d", premiumMaxRank),
				guard:     fmt.Sprintf("status = 'active' AND premium_rank <= %d", premiumMaxRank),
				activate:  "is_premium_tier = TRUE",
			},
			domain.QueueRecommended: {
				column:    "recommend_order",
				predicate: "status = 'active' AND is_recommended",
				guard:     "status = 'active'",
				activate:  "is_recommended = TRUE",
			},
			// listing_order = 0 marks a listing activation has not placed yet.
			// Joining the general queue is what activates a listing, so the
			// status flips in the same statement that writes the order.
			domain.QueueGeneral: {
				column:    "listing_order",
				predicate: "status = 'active' AND listing_order > 0",
				guard:     "status NOT IN ('sold', 'rejected')",
				activate:  "status = 'active'",
			},
			domain.QueueBoost: {
				column:    "boost_order",
				predicate: "status = 'active' AND is_boosted",
				guard:     "status = 'active'",
				activate:  "is_boosted = TRUE",
			},
		},
	}
}

func (r *pgItemRepository) def(q domain.QueueType) (queueDef, error) {
	d, ok := r.queues[q]
	if !ok {
		return queueDef{}, domain.ErrInvalidQueue
	}
	return d, nil
}

func (r *pgItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM listings WHERE id = $1`, id)

	it, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return it, err
}

func (r *pgItemRepository) TopByOrder(ctx context.Context, q domain.QueueType, limit int) ([]*domain.Item, error) {
	d, err := r.def(q)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM listings
		WHERE %s
		ORDER BY %s ASC, id ASC
		LIMIT $1`, itemColumns, d.predicate, d.column)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top %s by order: %w", q, err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *pgItemRepository) Freshest(ctx context.Context, limit int) ([]*domain.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM listings
		WHERE status = 'active' AND listing_order > 0 AND NOT is_boosted
		ORDER BY activated_at DESC NULLS LAST, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("freshest listings: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *pgItemRepository) MaxOrder(ctx context.Context, q domain.QueueType) (int64, error) {
	d, err := r.def(q)
	if err != nil {
		return 0, err
	}

	var maxOrder int64
	query := fmt.Sprintf(`SELECT COALESCE(MAX(%s), 0) FROM listings WHERE %s`, d.column, d.predicate)
	if err := r.pool.QueryRow(ctx, query).Scan(&maxOrder); err != nil {
		return 0, fmt.Errorf("max %s order: %w", q, err)
	}
	return maxOrder, nil
}

func (r *pgItemRepository) MoveToTail(ctx context.Context, q domain.QueueType, ids []int64) (int, error) {
	d, err := r.def(q)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Max is read inside the move, not at request time; two overlapping moves
	// may both read the same max and produce tied orders until compaction.
	var maxOrder int64
	maxQuery := fmt.Sprintf(`SELECT COALESCE(MAX(%s), 0) FROM listings WHERE %s`, d.column, d.predicate)
	if err := tx.QueryRow(ctx, maxQuery).Scan(&maxOrder); err != nil {
		return 0, fmt.Errorf("max %s order: %w", q, err)
	}

	// The predicate's columns only exist on listings, so they need no alias.
	// MockItemRepository.MoveToTail mirrors this statement; the cursor and
	// worker tests exercise these semantics through it.
	update := fmt.Sprintf(`
		UPDATE listings AS l
		SET %[1]s = $2 + v.pos, updated_at = NOW()
		FROM unnest($1::bigint[]) WITH ORDINALITY AS v(item_id, pos)
		WHERE l.id = v.item_id AND %[2]s`, d.column, d.predicate)

	tag, err := tx.Exec(ctx, update, ids, maxOrder)
	if err != nil {
		return 0, fmt.Errorf("move %s batch to tail: %w", q, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tail move: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *pgItemRepository) Renumber(ctx context.Context, q domain.QueueType) (int, error) {
	d, err := r.def(q)
	if err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Serialize compactions of the same queue across processes.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "exposure-compaction:"+string(q)); err != nil {
		return 0, fmt.Errorf("lock %s queue: %w", q, err)
	}

	// Mirrored by MockItemRepository.Renumber, which the compactor tests use.
	update := fmt.Sprintf(`
		WITH ranked AS (
			SELECT id, ROW_NUMBER() OVER (ORDER BY %[1]s ASC, id ASC) AS rn
			FROM listings
			WHERE %[2]s
		)
		UPDATE listings AS l
		SET %[1]s = ranked.rn
		FROM ranked
		WHERE l.id = ranked.id`, d.column, d.predicate)

	tag, err := tx.Exec(ctx, update)
	if err != nil {
		return 0, fmt.Errorf("renumber %s queue: %w", q, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit renumber: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *pgItemRepository) Activate(ctx context.Context, id int64, q domain.QueueType, order int64) error {
	d, err := r.def(q)
	if err != nil {
		return err
	}

	update := fmt.Sprintf(`
		UPDATE listings
		SET %s = $1, %s, activated_at = COALESCE(activated_at, NOW()), updated_at = NOW()
		WHERE id = $2 AND %s`, d.column, d.activate, d.guard)

	tag, err := r.pool.Exec(ctx, update, order, id)
	if err != nil {
		return fmt.Errorf("activate listing %d in %s: %w", id, q, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing updated: tell a missing row apart from one the guard rejected.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrNotActivatable
}

// ---- helpers ----

// scanItem reads a single listing row from any pgx row type.
func scanItem(row pgx.Row) (*domain.Item, error) {
	var it domain.Item
	err := row.Scan(
		&it.ID, &it.Title, &it.Status, &it.IsPremiumTier, &it.PremiumRank,
		&it.IsRecommended, &it.IsBoosted,
		&it.PremiumOrder, &it.RecommendOrder, &it.ListingOrder, &it.BoostOrder,
		&it.ActivatedAt, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func scanItems(rows pgx.Rows) ([]*domain.Item, error) {
	var result []*domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}
