package database

import "database/sql"

// Schema notes:
//   - next_follow_up_date holds a plain YYYY-MM-DD string. Lexicographic
//     comparison on that column is calendar comparison, so the selection
//     predicates (= today, < today) work identically on both drivers.
//   - Deleting a user cascades to clients and from clients to followups.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		plan VARCHAR(10) NOT NULL DEFAULT 'free',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		company VARCHAR(255) NULL,
		email VARCHAR(255) NULL,
		phone VARCHAR(50) NULL,
		notes TEXT NULL,
		created_at DATETIME NOT NULL,
		CONSTRAINT fk_clients_user FOREIGN KEY (user_id)
			REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS followups (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		client_id BIGINT NOT NULL,
		reason TEXT NOT NULL,
		next_follow_up_date VARCHAR(10) NOT NULL,
		status VARCHAR(10) NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL,
		CONSTRAINT fk_followups_client FOREIGN KEY (client_id)
			REFERENCES clients (id) ON DELETE CASCADE
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		plan TEXT NOT NULL DEFAULT 'free',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		company TEXT,
		email TEXT,
		phone TEXT,
		notes TEXT,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS followups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
		reason TEXT NOT NULL,
		next_follow_up_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL
	)`,
}

// Migrate creates the tables if they don't exist.
func Migrate(db *sql.DB, driver string) error {
	stmts := mysqlSchema
	if driver == "sqlite" {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
