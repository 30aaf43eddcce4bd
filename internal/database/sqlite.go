package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lsfd202201/internal/database/migrations"
	"lsfd202201/internal/model"
	"lsfd202201/internal/site"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the site.Store interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:   db,
		path: path,
	}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection. The caller
// is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:   db,
		path: "",
	}
}

// OpenConnection opens and configures a SQLite database connection with
// appropriate PRAGMAs. Exported for tools and tests that need a properly
// configured connection. path can be a file path or ":memory:".
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward
	// compatibility).
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Waiting on locks beats returning SQLITE_BUSY to a web request.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Article operations

func (s *SQLiteDatabase) CreateArticle(ctx context.Context, a *model.Article) (*model.Article, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (title, author, date, content, timestamp) VALUES (?, ?, ?, ?, ?)`,
		a.Title, a.Author, a.Date, a.Content, a.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("inserting article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new article id: %w", err)
	}

	created := *a
	created.ID = id
	return &created, nil
}

func (s *SQLiteDatabase) GetArticle(ctx context.Context, id int64) (*model.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, author, date, content, timestamp FROM articles WHERE id = ?`, id)

	var a model.Article
	err := row.Scan(&a.ID, &a.Title, &a.Author, &a.Date, &a.Content, &a.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding article by id: %w", err)
	}
	return &a, nil
}

func (s *SQLiteDatabase) ListArticles(ctx context.Context) ([]*model.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, author, date, content, timestamp FROM articles ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (s *SQLiteDatabase) ListArticlePage(ctx context.Context, page, pageSize int) ([]*model.Article, int, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting articles: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, author, date, content, timestamp FROM articles
		 ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("listing article page: %w", err)
	}
	defer rows.Close()

	articles, err := scanArticles(rows)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// UpdateArticleContent replaces the content of the article with the given id.
// It reports whether the article existed. The update is a single statement,
// so a failed attempt leaves the row untouched.
func (s *SQLiteDatabase) UpdateArticleContent(ctx context.Context, id int64, content string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE articles SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return false, fmt.Errorf("updating article content: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated rows: %w", err)
	}
	return n > 0, nil
}

// DeleteArticle removes the article with the given id and reports whether it
// existed. Deleting a missing id is not an error.
func (s *SQLiteDatabase) DeleteArticle(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting article: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted rows: %w", err)
	}
	return n > 0, nil
}

func scanArticles(rows *sql.Rows) ([]*model.Article, error) {
	var result []*model.Article
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Author, &a.Date, &a.Content, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning article row: %w", err)
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating article rows: %w", err)
	}
	return result, nil
}

// Role operations

func (s *SQLiteDatabase) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, is_default, permissions FROM roles WHERE name = ?`, name)

	var r model.Role
	err := row.Scan(&r.ID, &r.Name, &r.Default, &r.Permissions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding role by name: %w", err)
	}
	return &r, nil
}

func (s *SQLiteDatabase) ListRoles(ctx context.Context) ([]*model.Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, is_default, permissions FROM roles ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	defer rows.Close()

	var result []*model.Role
	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Default, &r.Permissions); err != nil {
			return nil, fmt.Errorf("scanning role row: %w", err)
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating role rows: %w", err)
	}
	return result, nil
}

// SaveRole upserts a role by name in a single transaction: an existing role
// keeps its id and has its default flag and permission mask replaced, a
// missing role is inserted.
func (s *SQLiteDatabase) SaveRole(ctx context.Context, r *model.Role) (*model.Role, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	saved := *r

	var existingID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM roles WHERE name = ?`, r.Name).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO roles (name, is_default, permissions) VALUES (?, ?, ?)`,
			r.Name, r.Default, r.Permissions)
		if err != nil {
			return nil, fmt.Errorf("inserting role: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading new role id: %w", err)
		}
		saved.ID = id
	case err != nil:
		return nil, fmt.Errorf("finding role: %w", err)
	default:
		_, err := tx.ExecContext(ctx,
			`UPDATE roles SET is_default = ?, permissions = ? WHERE id = ?`,
			r.Default, r.Permissions, existingID)
		if err != nil {
			return nil, fmt.Errorf("updating role: %w", err)
		}
		saved.ID = existingID
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return &saved, nil
}

// User operations

func (s *SQLiteDatabase) CreateUser(ctx context.Context, u *model.User) error {
	roleID := sql.NullInt64{Int64: u.RoleID, Valid: u.RoleID != 0}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, password_hash, role_id) VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, u.PasswordHash, roleID)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, password_hash, role_id FROM users WHERE name = ?`, name)

	var u model.User
	var roleID sql.NullInt64
	err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding user by name: %w", err)
	}
	u.RoleID = roleID.Int64
	return &u, nil
}

func (s *SQLiteDatabase) UpdateUserPassword(ctx context.Context, id, passwordHash string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return false, fmt.Errorf("updating user password: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated rows: %w", err)
	}
	return n > 0, nil
}

// Feedback operations

func (s *SQLiteDatabase) CreateFeedback(ctx context.Context, f *model.Feedback) (*model.Feedback, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (body, author, timestamp) VALUES (?, ?, ?)`,
		f.Body, f.Author, f.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("inserting feedback: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new feedback id: %w", err)
	}

	created := *f
	created.ID = id
	return &created, nil
}

func (s *SQLiteDatabase) ListFeedback(ctx context.Context) ([]*model.Feedback, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, body, author, timestamp FROM feedback ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var result []*model.Feedback
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.Body, &f.Author, &f.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning feedback row: %w", err)
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedback rows: %w", err)
	}
	return result, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp applies all pending schema migrations.
func (s *SQLiteDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements site.Store
var _ site.Store = (*SQLiteDatabase)(nil)
