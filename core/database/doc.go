// Package database handles the PostgreSQL connection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) that
// configures the pgx-backed Postgres driver from the application's
// configuration, applies connection pool limits, and verifies the
// connection with a bounded ping before handing it out.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
