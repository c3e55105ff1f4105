package storage

import (
	"database/sql"
	"log"

	_ "modernc.org/sqlite"
)

var db *sql.DB

func InitDB(dbPath string) {
	var err error

	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		log.Fatal("InitDB(): Failed to open database :", err)
	}
	if err = db.Ping(); err != nil {
		log.Fatal("storage.InitDB(): Failed to connect to database: ", err)
	}

	createUsersTable := `
	CREATE TABLE IF NOT EXISTS users (
			"id" INTEGER PRIMARY KEY AUTOINCREMENT,
			"username" TEXT NOT NULL UNIQUE,
			"student_id" TEXT NOT NULL UNIQUE,
			"password_hash" TEXT NOT NULL,
			"egov_password_enc" BLOB NOT NULL,
			"egov_nonce" BLOB NOT NULL,
			"created_at" DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	createSessionsTable := `
	CREATE TABLE IF NOT EXISTS sessions (
			"session_id" TEXT PRIMARY KEY,
			"username" TEXT NOT NULL,
			"created_at" DATETIME NOT NULL,
			"expires_at" DATETIME NOT NULL,
			FOREIGN KEY(username) REFERENCES users(username)
	)`

	if _, err := db.Exec(createUsersTable); err != nil {
		log.Fatalf("InitDB(): Failed to create users table: %v", err)
	}
	if _, err := db.Exec(createSessionsTable); err != nil {
		log.Fatalf("InitDB(): Failed to create sessions table: %v", err)
	}
	log.Println("InitDB(): Init and create table successfully!")
}

func CloseDB() {
	if db != nil {
		db.Close()
	}
}
