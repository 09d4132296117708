package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benvon/card-collection/internal/collection"
	"github.com/benvon/card-collection/internal/models"
	"github.com/lib/pq"
)

// CollectionRepository handles collection database operations
type CollectionRepository struct {
	db *DB
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db *DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

var _ collection.Store = (*CollectionRepository)(nil)

// Get retrieves a collection and its cards in authored order
func (r *CollectionRepository) Get(ctx context.Context, id string) (*models.Collection, error) {
	c := &models.Collection{}
	var filterGroupsJSON []byte
	var filterLogic, defaultSort string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, featured_card_ids, filter_groups, filter_logic, default_sort,
			search_fields, total_card_limit, show_bookmarks, hide_gated
		FROM collections
		WHERE id = $1
	`, id).Scan(
		&c.ID,
		&c.Title,
		pq.Array(&c.FeaturedCardIDs),
		&filterGroupsJSON,
		&filterLogic,
		&defaultSort,
		pq.Array(&c.SearchFields),
		&c.TotalCardLimit,
		&c.ShowBookmarks,
		&c.HideGated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	if err := json.Unmarshal(filterGroupsJSON, &c.FilterGroups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal filter groups: %w", err)
	}
	c.FilterLogic = models.FilterType(filterLogic)
	c.DefaultSort = models.SortOption(defaultSort)

	cards, err := r.cards(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Cards = cards

	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CollectionRepository) cards(ctx context.Context, collectionID string) ([]*models.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, tags, start_date, end_date, modified_date, fields
		FROM cards
		WHERE collection_id = $1
		ORDER BY position ASC
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.Card
	for rows.Next() {
		card := &models.Card{}
		var fieldsJSON []byte
		if err := rows.Scan(
			&card.ID,
			&card.Title,
			&card.Description,
			pq.Array(&card.Tags),
			&card.StartDate,
			&card.EndDate,
			&card.ModifiedDate,
			&fieldsJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if err := json.Unmarshal(fieldsJSON, &card.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fields for card %s: %w", card.ID, err)
		}
		if len(card.Fields) == 0 {
			card.Fields = nil
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return cards, nil
}

// List returns every collection id, sorted
func (r *CollectionRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM collections ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan collection id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collections: %w", err)
	}
	return ids, nil
}

// Save upserts a collection and replaces its cards in a single transaction
func (r *CollectionRepository) Save(ctx context.Context, c *models.Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	filterGroupsJSON, err := json.Marshal(c.FilterGroups)
	if err != nil {
		return fmt.Errorf("failed to marshal filter groups: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (id, title, featured_card_ids, filter_groups, filter_logic, default_sort,
			search_fields, total_card_limit, show_bookmarks, hide_gated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			featured_card_ids = EXCLUDED.featured_card_ids,
			filter_groups = EXCLUDED.filter_groups,
			filter_logic = EXCLUDED.filter_logic,
			default_sort = EXCLUDED.default_sort,
			search_fields = EXCLUDED.search_fields,
			total_card_limit = EXCLUDED.total_card_limit,
			show_bookmarks = EXCLUDED.show_bookmarks,
			hide_gated = EXCLUDED.hide_gated
	`,
		c.ID,
		c.Title,
		pq.Array(nonNil(c.FeaturedCardIDs)),
		filterGroupsJSON,
		string(c.FilterLogic),
		string(c.DefaultSort),
		pq.Array(nonNil(c.SearchFields)),
		c.TotalCardLimit,
		c.ShowBookmarks,
		c.HideGated,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert collection: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE collection_id = $1`, c.ID); err != nil {
		return fmt.Errorf("failed to clear cards: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (collection_id, id, position, title, description, tags, start_date, end_date, modified_date, fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (collection_id, id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare card insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, card := range c.Cards {
		fieldsJSON, err := marshalFields(card.Fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields for card %s: %w", card.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID,
			card.ID,
			i,
			card.Title,
			card.Description,
			pq.Array(nonNil(card.Tags)),
			card.StartDate,
			card.EndDate,
			card.ModifiedDate,
			fieldsJSON,
		); err != nil {
			return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection: %w", err)
	}
	return nil
}

// Delete removes a collection and its cards
func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("collection %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func marshalFields(fields map[string]string) ([]byte, error) {
	if fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(fields)
}
