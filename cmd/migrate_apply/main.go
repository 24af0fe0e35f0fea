package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/storage/sqlite"

	"github.com/joho/godotenv"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations instead of listing them")
	dir := flag.String("dir", filepath.Join("internal", "migrations"), "migrations directory")
	flag.Parse()

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	cfg := &config.Config{DatabaseURL: dsn}
	if cfg.UsesSQLite() {
		// the sqlite store migrates its own schema on open
		s, err := sqlite.Open(cfg.SQLitePath())
		if err != nil {
			logger.Fatal("open sqlite store", "error", err)
		}
		_ = s.Close()
		fmt.Printf("sqlite schema ready at %s\n", cfg.SQLitePath())
		return
	}

	files, err := os.ReadDir(*dir)
	if err != nil {
		logger.Fatal("read migrations dir", "error", err)
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		if !*apply {
			fmt.Println(name)
			continue
		}
		b, err := os.ReadFile(filepath.Join(*dir, name))
		if err != nil {
			logger.Fatal("read migration", "file", name, "error", err)
		}
		if _, err := pool.Exec(context.Background(), string(b)); err != nil {
			logger.Fatal("apply migration", "file", name, "error", err)
		}
		fmt.Printf("applied %s\n", name)
	}
}
