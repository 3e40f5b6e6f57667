package pkg

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// TableColumn is one column of a table in the public schema
type TableColumn struct {
	TableName  string `json:"table_name"`
	ColumnName string `json:"column_name"`
	DataType   string `json:"data_type"`
	IsNullable string `json:"is_nullable"`
}

// FindPublicColumns lists the columns of every table in the public schema
func FindPublicColumns(ctx context.Context, db *sql.DB) ([]TableColumn, error) {
	query := `
        SELECT table_name, column_name, data_type, is_nullable
        FROM information_schema.columns
        WHERE table_schema = 'public'
        ORDER BY table_name, ordinal_position
    `

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var columns []TableColumn
	for rows.Next() {
		var col TableColumn
		if err := rows.Scan(&col.TableName, &col.ColumnName, &col.DataType, &col.IsNullable); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return columns, nil
}

// MissingTables returns the wanted tables that have no column in columns, sorted
func MissingTables(columns []TableColumn, wanted ...string) []string {
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col.TableName] = true
	}

	var missing []string
	for _, table := range wanted {
		if !present[table] {
			missing = append(missing, table)
		}
	}
	sort.Strings(missing)
	return missing
}
