package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/id"
	"github.com/monomori/monomori-server/internal/sse"
	"github.com/monomori/monomori-server/internal/store"
)

// baseColumns are the columns every category table shares, in scan order.
//
//nolint:gochecknoglobals // Static column list
var baseColumns = []string{
	"id", "category", "subcategory", "primary_image", "additional_images",
	"date_added", "last_modified", "tags", "barcode", "custom_fields",
}

// Collection is the data access object of one category table.
type Collection struct {
	store  *Store
	schema *domain.Schema

	columns   []string
	selectSQL string
	insertSQL string
	updateSQL string
}

func newCollection(s *Store, schema *domain.Schema) *Collection {
	columns := make([]string, 0, len(baseColumns)+len(schema.Fields))
	columns = append(columns, baseColumns...)
	for _, f := range schema.Fields {
		columns = append(columns, f.Column())
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	var sets []string
	for i, col := range columns {
		quoted[i] = quote(col)
		placeholders[i] = "?"
		if col != "id" && col != "date_added" {
			sets = append(sets, quote(col)+" = ?")
		}
	}

	return &Collection{
		store:     s,
		schema:    schema,
		columns:   columns,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), schema.Table),
		insertSQL: fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
			schema.Table, strings.Join(quoted, ", "), strings.Join(placeholders, ", ")),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", schema.Table, strings.Join(sets, ", ")),
	}
}

// Schema returns the category schema this collection stores.
func (c *Collection) Schema() *domain.Schema {
	return c.schema
}

// Category returns the category this collection stores.
func (c *Collection) Category() domain.Category {
	return c.schema.Category
}

// ListAll returns every item, most recently added first.
func (c *Collection) ListAll(ctx context.Context) ([]domain.Item, error) {
	return c.query(ctx, c.selectSQL+" ORDER BY date_added DESC, id")
}

// Get retrieves an item by id.
// Returns store.ErrNotFound if the item does not exist.
func (c *Collection) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	row := c.store.db.QueryRowContext(ctx, c.selectSQL+" WHERE id = ?", itemID)
	item, err := c.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Count returns the number of items.
func (c *Collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.schema.Table).Scan(&n)
	return n, err
}

// Search returns the items where any search field contains q, ignoring
// case. List fields match when any element does. The order is that of
// ListAll, and an empty q returns everything.
func (c *Collection) Search(ctx context.Context, q string) ([]domain.Item, error) {
	items, err := c.ListAll(ctx)
	if err != nil || q == "" {
		return items, err
	}

	fold := cases.Fold()
	needle := fold.String(q)
	matched := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if c.matches(fold, item, needle) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (c *Collection) matches(fold cases.Caser, item domain.Item, needle string) bool {
	for _, name := range c.schema.SearchFields {
		if list := item.Attributes.Strings(name); list != nil {
			for _, v := range list {
				if strings.Contains(fold.String(v), needle) {
					return true
				}
			}
			continue
		}
		if strings.Contains(fold.String(item.Attributes.String(name)), needle) {
			return true
		}
	}
	return false
}

// InsertOrReplace writes an item, replacing any row with the same id.
// An empty id is generated, and zero timestamps are set to now. The stored
// item is returned.
func (c *Collection) InsertOrReplace(ctx context.Context, item domain.Item) (domain.Item, error) {
	item, err := c.prepare(item)
	if err != nil {
		return domain.Item{}, err
	}

	now := time.Now()
	if item.ID == "" {
		if item.ID, err = id.Generate(c.schema.IDPrefix); err != nil {
			return domain.Item{}, err
		}
	}
	if item.DateAdded.IsZero() {
		item.DateAdded = now
	}
	if item.LastModified.IsZero() {
		item.LastModified = now
	}
	item.DateAdded = item.DateAdded.UTC().Truncate(time.Millisecond)
	item.LastModified = item.LastModified.UTC().Truncate(time.Millisecond)

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Item{}, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+c.schema.Table+" WHERE id = ?)", item.ID).Scan(&exists)
	if err != nil {
		return domain.Item{}, err
	}

	args, err := c.encode(item)
	if err != nil {
		return domain.Item{}, err
	}
	if _, err := tx.ExecContext(ctx, c.insertSQL, args...); err != nil {
		return domain.Item{}, fmt.Errorf("insert %s: %w", c.schema.Table, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Item{}, err
	}

	published := item.Clone()
	if exists {
		c.store.emit(sse.NewItemUpdatedEvent(&published))
	} else {
		c.store.emit(sse.NewItemCreatedEvent(&published))
	}
	c.reindex(item.ID)
	return item, nil
}

// Update rewrites an existing item and bumps its lastModified time. The
// stored dateAdded is kept. The boolean is false, and nothing is written,
// when no row has the item's id.
func (c *Collection) Update(ctx context.Context, item domain.Item) (domain.Item, bool, error) {
	if item.ID == "" {
		return domain.Item{}, false, nil
	}
	item, err := c.prepare(item)
	if err != nil {
		return domain.Item{}, false, err
	}
	item.LastModified = time.Now().UTC().Truncate(time.Millisecond)

	encoded, err := c.encode(item)
	if err != nil {
		return domain.Item{}, false, err
	}
	args := make([]any, 0, len(encoded))
	for i, col := range c.columns {
		if col != "id" && col != "date_added" {
			args = append(args, encoded[i])
		}
	}
	args = append(args, item.ID)

	res, err := c.store.db.ExecContext(ctx, c.updateSQL, args...)
	if err != nil {
		return domain.Item{}, false, fmt.Errorf("update %s: %w", c.schema.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Item{}, false, err
	}
	if n == 0 {
		return domain.Item{}, false, nil
	}

	stored, err := c.Get(ctx, item.ID)
	if err != nil {
		return domain.Item{}, false, err
	}

	published := stored.Clone()
	c.store.emit(sse.NewItemUpdatedEvent(&published))
	c.reindex(stored.ID)
	return *stored, true, nil
}

// Delete removes an item. A missing item is not an error.
func (c *Collection) Delete(ctx context.Context, item domain.Item) error {
	return c.DeleteByID(ctx, item.ID)
}

// DeleteByID removes an item by id. A missing id is not an error.
func (c *Collection) DeleteByID(ctx context.Context, itemID string) error {
	res, err := c.store.db.ExecContext(ctx, "DELETE FROM "+c.schema.Table+" WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.schema.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	category := c.schema.Category
	c.store.emit(sse.NewItemDeletedEvent(category, itemID))
	c.reindex(itemID)
	return nil
}

// DeleteAll removes every item of the category and returns how many rows
// were removed.
func (c *Collection) DeleteAll(ctx context.Context) (int64, error) {
	res, err := c.store.db.ExecContext(ctx, "DELETE FROM "+c.schema.Table)
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", c.schema.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	category := c.schema.Category
	c.store.emit(sse.NewCollectionClearedEvent(category, n))
	c.store.index(func(ctx context.Context, idx store.SearchIndexer) error {
		return idx.DeleteCategory(ctx, category)
	}, "category", category)
	return n, nil
}

// FindBy returns the items whose field equals value, most recently added
// first. Enum values are matched by canonical name, and list fields match
// when any element equals value. Only text, enum and list fields plus
// subcategory, barcode and tags can be filtered on.
func (c *Collection) FindBy(ctx context.Context, field, value string) ([]domain.Item, error) {
	col, kind, enum, ok := c.filterColumn(field)
	if !ok {
		return nil, store.ErrInvalidInput.WithMessage(fmt.Sprintf("cannot filter %s by %q", c.schema.Category, field))
	}
	if enum != nil {
		if value = enum.Parse(value); value == "" {
			return []domain.Item{}, nil
		}
	}

	where := quote(col) + " = ?"
	if kind == domain.KindList {
		where = "EXISTS (SELECT 1 FROM json_each(" + quote(col) + ") WHERE json_each.value = ?)"
	}
	return c.query(ctx, c.selectSQL+" WHERE "+where+" ORDER BY date_added DESC, id", value)
}

// Distinct returns the sorted non-empty values a field takes across the
// category, e.g. every series of the comics collection. List fields
// contribute each element.
func (c *Collection) Distinct(ctx context.Context, field string) ([]string, error) {
	col, kind, _, ok := c.filterColumn(field)
	if !ok {
		return nil, store.ErrInvalidInput.WithMessage(fmt.Sprintf("no distinct values for %s field %q", c.schema.Category, field))
	}

	query := fmt.Sprintf(
		"SELECT DISTINCT %[1]s FROM %[2]s WHERE %[1]s IS NOT NULL AND %[1]s != '' ORDER BY %[1]s",
		quote(col), c.schema.Table)
	if kind == domain.KindList {
		query = fmt.Sprintf(
			"SELECT DISTINCT j.value FROM %s, json_each(%s.%s) AS j WHERE j.value != '' ORDER BY j.value",
			c.schema.Table, c.schema.Table, quote(col))
	}

	rows, err := c.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (c *Collection) filterColumn(field string) (string, domain.FieldKind, *domain.EnumSet, bool) {
	switch field {
	case "subcategory":
		if c.schema.Subcategory != nil {
			return "subcategory", domain.KindEnum, c.schema.Subcategory, true
		}
		return "subcategory", domain.KindText, nil, true
	case "barcode":
		return "barcode", domain.KindText, nil, true
	case "tags":
		return "tags", domain.KindList, nil, true
	}

	f, ok := c.schema.Field(field)
	if !ok || !domain.SearchableKind(f.Kind) {
		return "", 0, nil, false
	}
	return f.Column(), f.Kind, f.Enum, true
}

// prepare normalises an item against the schema and checks required fields.
func (c *Collection) prepare(item domain.Item) (domain.Item, error) {
	item, err := c.schema.Normalize(item)
	if err != nil {
		return domain.Item{}, store.ErrInvalidInput.WithCause(err)
	}
	if missing := c.schema.Missing(item); len(missing) > 0 {
		return domain.Item{}, store.ErrInvalidInput.WithMessage(
			fmt.Sprintf("missing required field: %s", strings.Join(missing, ", ")))
	}
	return item, nil
}

// reindex queues an index update for one item. The worker reads the row
// when the job runs and indexes it, or removes the document when the row
// is gone, so the index ends up matching the table whatever the order of
// concurrent writers.
func (c *Collection) reindex(itemID string) {
	c.store.index(func(ctx context.Context, idx store.SearchIndexer) error {
		item, err := c.Get(ctx, itemID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return idx.DeleteItem(ctx, c.schema.Category, itemID)
		case err != nil:
			return err
		}
		return idx.IndexItem(ctx, item)
	}, "category", c.schema.Category, "item_id", itemID)
}

func (c *Collection) query(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := c.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// encode returns the column values of an item in column order.
func (c *Collection) encode(item domain.Item) ([]any, error) {
	args := make([]any, 0, len(c.columns))
	args = append(args,
		item.ID,
		string(c.schema.Category),
		nullString(item.Subcategory),
		nullString(item.PrimaryImage),
		encodeList(item.AdditionalImages),
		toMillis(item.DateAdded),
		toMillis(item.LastModified),
		encodeList(item.Tags),
		nullString(item.Barcode),
		item.CustomFields.Encode(),
	)
	for _, f := range c.schema.Fields {
		v, err := encodeValue(f, item.Attributes[f.Name])
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// scan reads one row (sql.Row or sql.Rows) into an item. Corrupt JSON
// decodes to empty collections and unknown enum names to absent values.
func (c *Collection) scan(scanner interface{ Scan(dest ...any) error }) (domain.Item, error) {
	item := domain.NewItem(c.schema.Category)

	var (
		category         string
		subcategory      sql.NullString
		primaryImage     sql.NullString
		additionalImages string
		dateAdded        int64
		lastModified     int64
		tags             string
		barcode          sql.NullString
		customFields     string
	)

	targets := make([]any, len(c.schema.Fields))
	dest := make([]any, 0, len(c.columns))
	dest = append(dest,
		&item.ID, &category, &subcategory, &primaryImage, &additionalImages,
		&dateAdded, &lastModified, &tags, &barcode, &customFields,
	)
	for i, f := range c.schema.Fields {
		targets[i] = scanTarget(f.Kind)
		dest = append(dest, targets[i])
	}

	if err := scanner.Scan(dest...); err != nil {
		return domain.Item{}, err
	}

	if subcategory.Valid {
		item.Subcategory = subcategory.String
		if c.schema.Subcategory != nil {
			item.Subcategory = c.schema.Subcategory.Parse(subcategory.String)
		}
	}
	item.PrimaryImage = primaryImage.String
	item.AdditionalImages = decodeList(additionalImages)
	item.DateAdded = fromMillis(dateAdded)
	item.LastModified = fromMillis(lastModified)
	item.Tags = decodeList(tags)
	item.Barcode = barcode.String
	item.CustomFields = domain.DecodeCustomFields(customFields)

	for i, f := range c.schema.Fields {
		if v, ok := decodeValue(f, targets[i]); ok {
			item.Attributes[f.Name] = v
		} else if f.Kind == domain.KindList {
			item.Attributes[f.Name] = []string{}
		}
	}
	return item, nil
}

func scanTarget(kind domain.FieldKind) any {
	switch kind {
	case domain.KindInt, domain.KindTime:
		return new(sql.NullInt64)
	case domain.KindFloat:
		return new(sql.NullFloat64)
	case domain.KindBool:
		return new(sql.NullBool)
	default:
		return new(sql.NullString)
	}
}

func decodeValue(f domain.Field, target any) (any, bool) {
	switch t := target.(type) {
	case *sql.NullInt64:
		if !t.Valid {
			return nil, false
		}
		if f.Kind == domain.KindTime {
			return fromMillis(t.Int64), true
		}
		return t.Int64, true
	case *sql.NullFloat64:
		return t.Float64, t.Valid
	case *sql.NullBool:
		return t.Bool, t.Valid
	case *sql.NullString:
		if !t.Valid {
			return nil, false
		}
		switch f.Kind {
		case domain.KindList:
			return decodeList(t.String), true
		case domain.KindEnum:
			if f.Enum == nil {
				return t.String, t.String != ""
			}
			v := f.Enum.Parse(t.String)
			return v, v != ""
		default:
			return t.String, true
		}
	}
	return nil, false
}

func encodeValue(f domain.Field, v any) (any, error) {
	if f.Kind == domain.KindList {
		list, _ := v.([]string)
		return encodeList(list), nil
	}
	if v == nil {
		return nil, nil
	}
	switch f.Kind {
	case domain.KindTime:
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrFieldType, f.Name)
		}
		return toMillis(t), nil
	case domain.KindText, domain.KindEnum, domain.KindInt, domain.KindFloat, domain.KindBool:
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrFieldType, f.Name)
}

func encodeList(list []string) string {
	if list == nil {
		return "[]"
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeList(raw string) []string {
	list := []string{}
	if raw == "" {
		return list
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

func quote(col string) string {
	return `"` + col + `"`
}
