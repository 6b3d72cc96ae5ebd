package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"core/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// NewDB opens the shared PostgreSQL pool.
func NewDB(dsn string, maxConn, maxIdleConn int) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// PropertyRepository is the relational retrieval tier over the properties table.
type PropertyRepository struct {
	db *sqlx.DB
}

// NewPropertyRepository creates a new property repository.
func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

type propertyRow struct {
	ID             string          `db:"id"`
	Slug           sql.NullString  `db:"slug"`
	Address        sql.NullString  `db:"address"`
	City           sql.NullString  `db:"city"`
	State          sql.NullString  `db:"state_or_province"`
	PostalCode     sql.NullString  `db:"postal_code"`
	ListPrice      sql.NullFloat64 `db:"list_price"`
	BedroomsTotal  sql.NullInt64   `db:"bedrooms_total"`
	BathroomsTotal sql.NullInt64   `db:"bathrooms_total"`
	LivingArea     sql.NullFloat64 `db:"living_area"`
	MainPhotoURL   sql.NullString  `db:"main_photo_url"`
	HasPool        sql.NullBool    `db:"has_pool"`
	Features       sql.NullString  `db:"features"`
}

const propertyColumns = `id, slug, address, city, state_or_province, postal_code,
		list_price, bedrooms_total, bathrooms_total, living_area, main_photo_url,
		has_pool, features`

// baths-less column list used by the schema-drift retry.
const propertyColumnsNoBaths = `id, slug, address, city, state_or_province, postal_code,
		list_price, bedrooms_total, NULL AS bathrooms_total, living_area, main_photo_url,
		has_pool, features`

// SearchWithFilters runs one parametrized query that both filters and counts.
// On failure with a bathrooms predicate present it retries once without it,
// tolerating schemas that never gained the column; only then does the error
// propagate.
func (r *PropertyRepository) SearchWithFilters(
	ctx context.Context,
	filters model.SearchFilters,
	limit, offset int,
) ([]model.PropertyCard, int, error) {
	cards, total, err := r.search(ctx, filters, limit, offset, true)
	if err != nil && filters.Baths != nil {
		dropped := filters
		dropped.Baths = nil
		cards, total, err = r.search(ctx, dropped, limit, offset, false)
	}
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

func (r *PropertyRepository) search(
	ctx context.Context,
	filters model.SearchFilters,
	limit, offset int,
	withBaths bool,
) ([]model.PropertyCard, int, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filters.City != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("city ILIKE $%d", argIndex))
		args = append(args, "%"+filters.City+"%")
		argIndex++
	}
	if filters.State != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("state_or_province ILIKE $%d", argIndex))
		args = append(args, filters.State)
		argIndex++
	}
	if filters.MinPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("list_price >= $%d", argIndex))
		args = append(args, *filters.MinPrice)
		argIndex++
	}
	if filters.MaxPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("list_price <= $%d", argIndex))
		args = append(args, *filters.MaxPrice)
		argIndex++
	}
	if filters.Beds != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("bedrooms_total >= $%d", argIndex))
		args = append(args, *filters.Beds)
		argIndex++
	}
	if filters.Baths != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("bathrooms_total >= $%d", argIndex))
		args = append(args, *filters.Baths)
		argIndex++
	}
	if filters.HasPool {
		whereClauses = append(whereClauses, "has_pool = true")
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM properties WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	columns := propertyColumns
	if !withBaths {
		columns = propertyColumnsNoBaths
	}
	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE %s
		ORDER BY list_price ASC NULLS LAST, id
		LIMIT $%d OFFSET $%d
	`, columns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	var rows []propertyRow
	if err := r.db.SelectContext(ctx, &rows, selectQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch properties: %w", err)
	}

	cards := make([]model.PropertyCard, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, row.toCard())
	}
	return cards, total, nil
}

// GetPropertyByID retrieves a single property; nil when not found.
func (r *PropertyRepository) GetPropertyByID(ctx context.Context, id string) (*model.PropertyCard, error) {
	var row propertyRow
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = $1`, propertyColumns)
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	card := row.toCard()
	return &card, nil
}

// EmbeddingItem pairs a property with its freshly computed vector.
type EmbeddingItem struct {
	PropertyID string    `json:"property_id" binding:"required"`
	Embedding  []float32 `json:"embedding" binding:"required"`
}

// BatchUpdateEmbeddings updates embedding vectors for multiple properties.
// Individual row failures are collected, not fatal to the batch.
func (r *PropertyRepository) BatchUpdateEmbeddings(ctx context.Context, items []EmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE properties SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		if _, err := stmt.ExecContext(ctx, vec, item.PropertyID); err != nil {
			errors = append(errors, fmt.Sprintf("property %s: %v", item.PropertyID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}

func (row propertyRow) toCard() model.PropertyCard {
	card := model.PropertyCard{
		ID:         row.ID,
		Slug:       row.Slug.String,
		Address:    row.Address.String,
		Title:      row.Address.String,
		City:       row.City.String,
		State:      row.State.String,
		PostalCode: row.PostalCode.String,
		PhotoURL:   row.MainPhotoURL.String,
		Highlights: []string{},
	}
	if card.ID == "" {
		if card.Slug != "" {
			card.ID = card.Slug
		} else {
			card.ID = uuid.NewString()
		}
	}
	if row.ListPrice.Valid {
		price := row.ListPrice.Float64
		card.Price = &price
	}
	if row.BedroomsTotal.Valid {
		beds := int(row.BedroomsTotal.Int64)
		card.Bedrooms = &beds
	}
	if row.BathroomsTotal.Valid {
		baths := int(row.BathroomsTotal.Int64)
		card.Bathrooms = &baths
	}
	if row.LivingArea.Valid {
		area := row.LivingArea.Float64
		card.LivingArea = &area
	}
	if card.Slug != "" {
		card.URL = "/properties/" + card.Slug
	} else {
		card.URL = "/properties/" + card.ID
	}
	if row.HasPool.Valid && row.HasPool.Bool {
		card.Highlights = append(card.Highlights, "Pool")
	} else if row.Features.Valid && strings.Contains(strings.ToLower(row.Features.String), "pool") {
		card.Highlights = append(card.Highlights, "Pool")
	}
	return card
}
