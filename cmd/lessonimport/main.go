// lessonimport bulk-loads lessons from a spreadsheet into Firestore. The
// expected sheet layout is one lesson per row:
//
//	Subject | Topic | Title | Difficulty | Duration (min) | Summary | Content | Tags
//
// Tags are comma separated. Rows that cannot be parsed are reported and
// skipped; the import carries on.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/klipach/tutorguru/store"
)

func main() {
	filePtr := flag.String("file", "lessons.xlsx", "Workbook to import")
	sheetPtr := flag.String("sheet", "Lessons", "Sheet holding the lessons")
	projectPtr := flag.String("project", os.Getenv("FIREBASE_PROJECT_ID"), "Firestore project ID")
	flag.Parse()

	if *projectPtr == "" {
		log.Fatalf("Please provide a project via the -project flag or FIREBASE_PROJECT_ID")
	}

	f, err := excelize.OpenFile(*filePtr)
	if err != nil {
		log.Fatalf("error opening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(*sheetPtr)
	if err != nil {
		log.Fatalf("error reading sheet %q: %v", *sheetPtr, err)
	}

	ctx := context.Background()
	fs, err := firestore.NewClient(ctx, *projectPtr)
	if err != nil {
		log.Fatalf("error connecting to Firestore: %v", err)
	}
	defer fs.Close()
	st := store.New(fs)

	imported, skipped := 0, 0
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		lesson, err := parseRow(row)
		if err != nil {
			log.Printf("row %d skipped: %v", i+1, err)
			skipped++
			continue
		}
		lesson.ID = uuid.NewString()
		lesson.CreatedAt = time.Now().UTC()

		if err := st.SaveLesson(ctx, lesson); err != nil {
			log.Fatalf("error storing lesson from row %d: %v", i+1, err)
		}
		imported++
	}

	log.Printf("imported %d lessons, skipped %d rows", imported, skipped)
}

func parseRow(row []string) (*store.LessonRecord, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	subject := cell(0)
	topic := cell(1)
	title := cell(2)
	if subject == "" || title == "" {
		return nil, fmt.Errorf("subject and title are required")
	}

	difficulty := strings.ToLower(cell(3))
	switch difficulty {
	case "beginner", "intermediate", "advanced":
	default:
		return nil, fmt.Errorf("unknown difficulty %q", cell(3))
	}

	duration, err := strconv.Atoi(cell(4))
	if err != nil || duration <= 0 {
		return nil, fmt.Errorf("invalid duration %q", cell(4))
	}

	rec := &store.LessonRecord{
		Subject:         subject,
		Topic:           topic,
		Title:           title,
		Difficulty:      difficulty,
		DurationMinutes: duration,
		Summary:         cell(5),
	}
	if body := cell(6); body != "" {
		rec.Content = []store.ContentSection{{
			Title:   title,
			Content: body,
			Order:   1,
			Type:    "text",
		}}
	}
	if tags := cell(7); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				rec.Tags = append(rec.Tags, t)
			}
		}
	}
	return rec, nil
}
