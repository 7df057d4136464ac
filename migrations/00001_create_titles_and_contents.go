package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(Up, Down)
}

func Up(tx *sql.Tx) error {
	createTitlesTable := `
	CREATE TABLE titles (
		id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		poster_url VARCHAR(500) NOT NULL,
		release_date TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`
	if _, err := tx.Exec(createTitlesTable); err != nil {
		return fmt.Errorf("could not create titles table: %w", err)
	}

	createContentsTable := `
	CREATE TABLE contents (
		id UUID PRIMARY KEY,
		title_id UUID NOT NULL REFERENCES titles(id),
		location_url VARCHAR(500) NOT NULL,
		stream_url VARCHAR(500),
		status VARCHAR(20) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'processing', 'ready', 'failed')),
		size_in_bytes BIGINT NOT NULL DEFAULT -1,
		duration_in_seconds BIGINT NOT NULL DEFAULT -1,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`
	if _, err := tx.Exec(createContentsTable); err != nil {
		return fmt.Errorf("could not create contents table: %w", err)
	}

	createContentIndexes := `
	CREATE INDEX idx_contents_title_id ON contents(title_id);
	CREATE INDEX idx_contents_status ON contents(status);
	`
	if _, err := tx.Exec(createContentIndexes); err != nil {
		return fmt.Errorf("could not create contents indexes: %w", err)
	}

	return nil
}

func Down(tx *sql.Tx) error {
	for _, table := range []string{"contents", "titles"} {
		if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)); err != nil {
			return fmt.Errorf("could not drop table %s: %w", table, err)
		}
	}
	return nil
}
