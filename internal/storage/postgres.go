package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/xaenox/study-bot/internal/models"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.String("host", config.Host),
		zap.String("dbname", config.DBName))

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	tagRows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color_hex, created_at FROM tags ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("error querying tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tag models.Tag
		if err := tagRows.Scan(&tag.ID, &tag.Name, &tag.ColorHex, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning tag: %w", err)
		}
		snap.Tags = append(snap.Tags, tag)
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	noteRows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, level, creation_date, last_check_in_date, study_count
		FROM notes
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("error querying notes: %w", err)
	}
	defer noteRows.Close()
	for noteRows.Next() {
		var note models.Note
		err := noteRows.Scan(
			&note.ID,
			&note.Title,
			&note.Content,
			&note.Level,
			&note.CreationDate,
			&note.LastCheckInDate,
			&note.StudyCount,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning note: %w", err)
		}
		snap.Notes = append(snap.Notes, note)
	}
	if err := noteRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	linkRows, err := s.db.QueryContext(ctx, `SELECT note_id, tag_id FROM note_tags ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("error querying note tags: %w", err)
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var link models.Link
		if err := linkRows.Scan(&link.NoteID, &link.TagID); err != nil {
			return nil, fmt.Errorf("error scanning note tag: %w", err)
		}
		snap.Links = append(snap.Links, link)
	}
	if err := linkRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note tags: %w", err)
	}

	commentRows, err := s.db.QueryContext(ctx,
		`SELECT id, note_id, content, date FROM comments ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("error querying comments: %w", err)
	}
	defer commentRows.Close()
	for commentRows.Next() {
		var c models.Comment
		if err := commentRows.Scan(&c.ID, &c.NoteID, &c.Content, &c.Date); err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		snap.Comments = append(snap.Comments, c)
	}
	if err := commentRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return snap, nil
}

func (s *PostgresStorage) SaveNote(ctx context.Context, note models.Note) error {
	query := `
		INSERT INTO notes (id, title, content, level, creation_date, last_check_in_date, study_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			level = EXCLUDED.level,
			last_check_in_date = EXCLUDED.last_check_in_date,
			study_count = EXCLUDED.study_count`

	_, err := s.db.ExecContext(ctx, query,
		note.ID,
		note.Title,
		note.Content,
		int(note.Level),
		note.CreationDate,
		note.LastCheckInDate,
		note.StudyCount,
	)
	if err != nil {
		return fmt.Errorf("error saving note: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeleteNote(ctx context.Context, noteID string) error {
	// note_tags and comments go with it through ON DELETE CASCADE
	return s.deleteByID(ctx, `DELETE FROM notes WHERE id = $1`, noteID)
}

func (s *PostgresStorage) SaveTag(ctx context.Context, tag models.Tag) error {
	query := `
		INSERT INTO tags (id, name, color_hex, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			color_hex = EXCLUDED.color_hex`

	if _, err := s.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.ColorHex, tag.CreatedAt); err != nil {
		return fmt.Errorf("error saving tag: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeleteTag(ctx context.Context, tagID string) error {
	return s.deleteByID(ctx, `DELETE FROM tags WHERE id = $1`, tagID)
}

func (s *PostgresStorage) ReplaceNoteTags(ctx context.Context, noteID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = $1`, noteID); err != nil {
		return fmt.Errorf("error clearing note tags: %w", err)
	}
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO note_tags (note_id, tag_id) VALUES ($1, $2)`, noteID, tagID)
		if err != nil {
			return fmt.Errorf("error inserting note tag %s: %w", tagID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing note tags: %w", err)
	}
	return nil
}

func (s *PostgresStorage) SaveComment(ctx context.Context, comment models.Comment) error {
	query := `
		INSERT INTO comments (id, note_id, content, date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			note_id = EXCLUDED.note_id,
			content = EXCLUDED.content,
			date = EXCLUDED.date`

	if _, err := s.db.ExecContext(ctx, query, comment.ID, comment.NoteID, comment.Content, comment.Date); err != nil {
		return fmt.Errorf("error saving comment: %w", err)
	}
	return nil
}

func (s *PostgresStorage) deleteByID(ctx context.Context, query, id string) error {
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error deleting %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
