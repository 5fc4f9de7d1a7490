package etl

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/BartekS5/tourmap/pkg/models"
)

const DefaultMappingTable = "wholesaler_field_mappings"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLMappingStore keeps mapping records in SQL Server, one row per mapped
// field, plus a companion <Table>_enabled table listing enabled field ids.
type SQLMappingStore struct {
	DB    *sql.DB
	Table string
}

func NewSQLMappingStore(db *sql.DB, table string) (*SQLMappingStore, error) {
	if table == "" {
		table = DefaultMappingTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &SQLMappingStore{DB: db, Table: table}, nil
}

func (s *SQLMappingStore) enabledTable() string { return s.Table + "_enabled" }

// EnsureSchema creates both tables when they do not exist.
func (s *SQLMappingStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`IF OBJECT_ID(N'%[1]s', N'U') IS NULL
CREATE TABLE %[1]s (
	id NVARCHAR(36) NOT NULL PRIMARY KEY,
	wholesaler_id NVARCHAR(100) NOT NULL,
	section NVARCHAR(100) NOT NULL,
	our_field NVARCHAR(100) NOT NULL,
	source_type NVARCHAR(10) NOT NULL,
	api_field NVARCHAR(500) NULL,
	fixed_value NVARCHAR(MAX) NULL,
	lookup_by NVARCHAR(100) NULL,
	value_map NVARCHAR(MAX) NULL,
	string_transform NVARCHAR(MAX) NULL,
	updated_at DATETIME2 NOT NULL
)`, s.Table),
		fmt.Sprintf(`IF OBJECT_ID(N'%[1]s', N'U') IS NULL
CREATE TABLE %[1]s (
	wholesaler_id NVARCHAR(100) NOT NULL,
	field_id NVARCHAR(200) NOT NULL,
	PRIMARY KEY (wholesaler_id, field_id)
)`, s.enabledTable()),
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create mapping tables: %w", err)
		}
	}
	return nil
}

func (s *SQLMappingStore) Load(ctx context.Context, wholesalerID string) (*models.MappingDocument, error) {
	query := fmt.Sprintf(`SELECT section, our_field, source_type, api_field, fixed_value, lookup_by, value_map, string_transform, updated_at
FROM %s WHERE wholesaler_id = @p1 ORDER BY section, our_field`, s.Table)

	rows, err := s.DB.QueryContext(ctx, query, wholesalerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mappings for %s: %w", wholesalerID, err)
	}
	defer rows.Close()

	doc := &models.MappingDocument{Version: 1, WholesalerID: wholesalerID}
	for rows.Next() {
		var (
			rec                 models.MappingRecord
			sourceType          string
			api, fixed, lookup  sql.NullString
			valueMap, transform sql.NullString
			updated             time.Time
		)
		if err := rows.Scan(&rec.Section, &rec.OurField, &sourceType, &api, &fixed, &lookup, &valueMap, &transform, &updated); err != nil {
			return nil, err
		}
		rec.SourceType = models.SourceType(sourceType)
		rec.APIField = nullable(api)
		rec.FixedValue = nullable(fixed)
		rec.LookupBy = nullable(lookup)
		if valueMap.Valid && valueMap.String != "" {
			if err := json.Unmarshal([]byte(valueMap.String), &rec.ValueMap); err != nil {
				return nil, fmt.Errorf("field %s.%s value_map: %w", rec.Section, rec.OurField, err)
			}
		}
		if transform.Valid && transform.String != "" {
			rec.StringTransform = &models.TransformSpec{}
			if err := json.Unmarshal([]byte(transform.String), rec.StringTransform); err != nil {
				return nil, fmt.Errorf("field %s.%s string_transform: %w", rec.Section, rec.OurField, err)
			}
		}
		if updated.After(doc.UpdatedAt) {
			doc.UpdatedAt = updated
		}
		doc.Mappings = append(doc.Mappings, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	enabled, err := s.loadEnabled(ctx, wholesalerID)
	if err != nil {
		return nil, err
	}
	if len(doc.Mappings) == 0 && len(enabled) == 0 {
		return nil, fmt.Errorf("wholesaler %s: %w", wholesalerID, models.ErrMappingNotFound)
	}
	doc.EnabledFields = enabled
	if _, err := doc.MappingSet(); err != nil {
		return nil, fmt.Errorf("stored mapping for %s: %w", wholesalerID, err)
	}
	return doc, nil
}

func (s *SQLMappingStore) loadEnabled(ctx context.Context, wholesalerID string) ([]string, error) {
	query := fmt.Sprintf("SELECT field_id FROM %s WHERE wholesaler_id = @p1 ORDER BY field_id", s.enabledTable())
	rows, err := s.DB.QueryContext(ctx, query, wholesalerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enabled fields for %s: %w", wholesalerID, err)
	}
	defer rows.Close()

	enabled := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		enabled = append(enabled, id)
	}
	return enabled, rows.Err()
}

// Save replaces every stored row of the wholesaler in one transaction.
func (s *SQLMappingStore) Save(ctx context.Context, doc *models.MappingDocument) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{s.Table, s.enabledTable()} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE wholesaler_id = @p1", table), doc.WholesalerID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	insert := fmt.Sprintf(`INSERT INTO %s (id, wholesaler_id, section, our_field, source_type, api_field, fixed_value, lookup_by, value_map, string_transform, updated_at)
VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9, @p10, @p11)`, s.Table)
	now := time.Now().UTC()
	for _, rec := range doc.Mappings {
		valueMap, err := jsonColumn(rec.ValueMap, len(rec.ValueMap) > 0)
		if err != nil {
			return err
		}
		transform, err := jsonColumn(rec.StringTransform, rec.StringTransform != nil)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, insert,
			uuid.NewString(), doc.WholesalerID, rec.Section, rec.OurField, string(rec.SourceType),
			nullString(rec.APIField), nullString(rec.FixedValue), nullString(rec.LookupBy),
			valueMap, transform, now)
		if err != nil {
			return fmt.Errorf("failed to insert %s.%s: %w", rec.Section, rec.OurField, err)
		}
	}

	enabledInsert := fmt.Sprintf("INSERT INTO %s (wholesaler_id, field_id) VALUES (@p1, @p2)", s.enabledTable())
	for _, id := range doc.EnabledFields {
		if _, err := tx.ExecContext(ctx, enabledInsert, doc.WholesalerID, id); err != nil {
			return fmt.Errorf("failed to insert enabled field %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func jsonColumn(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
