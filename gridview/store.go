package gridview

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Store persists views. Create returns the server id; the Manager then uses that id
// as the view name for every later call.
type Store interface {
	Create(ctx context.Context, view View) (string, error)
	Update(ctx context.Context, view View) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, gridName string) ([]View, error)
}

// MemoryStore keeps views in process.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int
	order  []string
	views  map[string]View
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{views: make(map[string]View)}
}

func (s *MemoryStore) Create(_ context.Context, view View) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := strconv.Itoa(s.nextID)
	view.ID = ""
	view.Name = id
	view.Filters = copyMap(view.Filters)
	view.Sorters = copyMap(view.Sorters)
	s.views[id] = view
	s.order = append(s.order, id)
	return id, nil
}

func (s *MemoryStore) Update(_ context.Context, view View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[view.Name]; !ok {
		return withMeta(ErrViewNotFound, "", map[string]any{"name": view.Name})
	}
	view.Filters = copyMap(view.Filters)
	view.Sorters = copyMap(view.Sorters)
	s.views[view.Name] = view
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[name]; !ok {
		return withMeta(ErrViewNotFound, "", map[string]any{"name": name})
	}
	delete(s.views, name)
	for i, id := range s.order {
		if id == name {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, gridName string) ([]View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]View, 0, len(s.order))
	for _, id := range s.order {
		if v := s.views[id]; v.GridName == gridName {
			out = append(out, v)
		}
	}
	return out, nil
}

// SQLStore persists views in a SQL table keyed by an autoincrement id.
type SQLStore struct {
	db    *sql.DB
	table string
}

// NewSQLStore builds a store over db using table (default "grid_views").
func NewSQLStore(db *sql.DB, table string) *SQLStore {
	if table == "" {
		table = "grid_views"
	}
	return &SQLStore{db: db, table: table}
}

func (s *SQLStore) Create(ctx context.Context, view View) (string, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return "", err
	}
	filters, sorters, err := encodeState(view)
	if err != nil {
		return "", err
	}
	q := fmt.Sprintf(`INSERT INTO %s (label, type, grid_name, filters, sorters) VALUES (?, ?, ?, ?, ?)`, s.table)
	result, err := s.db.ExecContext(ctx, q, view.Label, string(view.Type), view.GridName, filters, sorters)
	if err != nil {
		return "", storeFailure(err, "create")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return "", storeFailure(err, "create")
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *SQLStore) Update(ctx context.Context, view View) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	id, err := parseViewID(view.Name)
	if err != nil {
		return err
	}
	filters, sorters, err := encodeState(view)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`UPDATE %s SET label=?, type=?, grid_name=?, filters=?, sorters=? WHERE id=?`, s.table)
	result, err := s.db.ExecContext(ctx, q, view.Label, string(view.Type), view.GridName, filters, sorters, id)
	if err != nil {
		return storeFailure(err, "update")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return withMeta(ErrViewNotFound, "", map[string]any{"name": view.Name})
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, name string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	id, err := parseViewID(name)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE id=?`, s.table)
	result, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return storeFailure(err, "delete")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return withMeta(ErrViewNotFound, "", map[string]any{"name": name})
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, gridName string) ([]View, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT id, label, type, grid_name, filters, sorters FROM %s WHERE grid_name = ? ORDER BY id`, s.table)
	rows, err := s.db.QueryContext(ctx, q, gridName)
	if err != nil {
		return nil, storeFailure(err, "list")
	}
	defer rows.Close()

	var out []View
	for rows.Next() {
		var (
			id             int64
			view           View
			viewType       string
			filters, sorts sql.NullString
		)
		if err := rows.Scan(&id, &view.Label, &viewType, &view.GridName, &filters, &sorts); err != nil {
			return nil, storeFailure(err, "list")
		}
		view.Name = strconv.FormatInt(id, 10)
		view.Type = Type(viewType)
		if filters.Valid && filters.String != "" {
			if err := json.Unmarshal([]byte(filters.String), &view.Filters); err != nil {
				return nil, storeFailure(err, "decode filters").WithMetadata(map[string]any{"name": view.Name})
			}
		}
		if sorts.Valid && sorts.String != "" {
			if err := json.Unmarshal([]byte(sorts.String), &view.Sorters); err != nil {
				return nil, storeFailure(err, "decode sorters").WithMetadata(map[string]any{"name": view.Name})
			}
		}
		out = append(out, view)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure(err, "list")
	}
	return out, nil
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return storeFailure(stderrors.New("sql store not configured"), "setup")
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		type TEXT NOT NULL,
		grid_name TEXT NOT NULL,
		filters TEXT,
		sorters TEXT
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return storeFailure(err, "setup")
	}
	return nil
}

func encodeState(view View) (string, string, error) {
	filters, err := json.Marshal(view.Filters)
	if err != nil {
		return "", "", storeFailure(err, "encode filters")
	}
	sorters, err := json.Marshal(view.Sorters)
	if err != nil {
		return "", "", storeFailure(err, "encode sorters")
	}
	return string(filters), string(sorters), nil
}

func parseViewID(name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(name), 10, 64)
	if err != nil {
		return 0, withMeta(ErrViewNotFound, "", map[string]any{"name": name})
	}
	return id, nil
}
