// qaexport copies completed Q&A exchanges from Firestore into Postgres so
// they can be analysed with plain SQL. Reruns are safe: rows are keyed by
// exchange ID and existing ones are left alone.
//
// DATABASE_URL=postgres://... go run cmd/qaexport/main.go -project my-project
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"google.golang.org/api/iterator"

	"github.com/klipach/tutorguru/store"
)

const dbDriver = "postgres"

var schema = `
CREATE TABLE IF NOT EXISTS qa_exchanges (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	lesson_id TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	answer_created_at TIMESTAMPTZ,
	exported_at TIMESTAMPTZ NOT NULL
);`

const insertExchange = `
INSERT INTO qa_exchanges (id, user_id, question, answer, lesson_id, created_at, answer_created_at, exported_at)
VALUES (:id, :user_id, :question, :answer, :lesson_id, :created_at, :answer_created_at, :exported_at)
ON CONFLICT (id) DO NOTHING`

type exchangeRow struct {
	ID              string     `db:"id"`
	UserID          string     `db:"user_id"`
	Question        string     `db:"question"`
	Answer          string     `db:"answer"`
	LessonID        string     `db:"lesson_id"`
	CreatedAt       time.Time  `db:"created_at"`
	AnswerCreatedAt *time.Time `db:"answer_created_at"`
	ExportedAt      time.Time  `db:"exported_at"`
}

func main() {
	projectPtr := flag.String("project", os.Getenv("FIREBASE_PROJECT_ID"), "Firestore project ID")
	dsnPtr := flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres connection string")
	sincePtr := flag.Duration("since", 0, "Only export exchanges younger than this (0 = all)")
	flag.Parse()

	if *projectPtr == "" {
		log.Fatalf("Please provide a project via the -project flag or FIREBASE_PROJECT_ID")
	}
	if *dsnPtr == "" {
		log.Fatalf("Please provide a Postgres DSN via the -dsn flag or DATABASE_URL")
	}

	ctx := context.Background()
	fs, err := firestore.NewClient(ctx, *projectPtr)
	if err != nil {
		log.Fatalf("error connecting to Firestore: %v", err)
	}
	defer fs.Close()

	db, err := sqlx.Connect(dbDriver, *dsnPtr)
	if err != nil {
		log.Fatalf("error connecting to Postgres: %v", err)
	}
	defer db.Close()
	db.MustExec(schema)

	query := fs.Collection("qa").Where("status", "==", store.StatusCompleted)
	if *sincePtr > 0 {
		query = query.Where("created_at", ">=", time.Now().Add(-*sincePtr))
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	exported, skipped := 0, 0
	exportedAt := time.Now().UTC()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Fatalf("error reading exchange: %v", err)
		}

		rec := store.QARecord{}
		if err := snap.DataTo(&rec); err != nil {
			log.Printf("skipping malformed exchange %s: %v", snap.Ref.ID, err)
			skipped++
			continue
		}

		res, err := db.NamedExecContext(ctx, insertExchange, exchangeRow{
			ID:              rec.ID,
			UserID:          rec.UserID,
			Question:        rec.Question,
			Answer:          rec.Answer,
			LessonID:        rec.LessonID,
			CreatedAt:       rec.CreatedAt,
			AnswerCreatedAt: rec.AnswerCreatedAt,
			ExportedAt:      exportedAt,
		})
		if err != nil {
			log.Fatalf("error inserting exchange %s: %v", rec.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			exported++
		} else {
			skipped++
		}
	}

	log.Printf("exported %d exchanges, skipped %d", exported, skipped)
}
