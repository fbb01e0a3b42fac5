package testutil

import (
	"fmt"
	"testing"
	"time"

	"coursehub/database"
	courseModels "coursehub/models/course"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens an isolated in-memory sqlite database with the full schema migrated.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("get sql db: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func SeedCourse(tb testing.TB, db *gorm.DB, ownerID uint, mutate ...func(*courseModels.Course)) *courseModels.Course {
	tb.Helper()
	c := &courseModels.Course{
		Title:       "Algebra basics",
		Description: "Linear equations and inequalities",
		Category:    courseModels.Category1AS,
		Module:      "math",
		OwnerID:     ownerID,
		IsActive:    true,
	}
	for _, m := range mutate {
		m(c)
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

// PublishedCourse marks a seeded course as published.
func PublishedCourse(c *courseModels.Course) {
	now := time.Now().UTC()
	c.IsPublished = true
	c.PublishedAt = &now
}

func SeedSection(tb testing.TB, db *gorm.DB, courseID uint, order int, mutate ...func(*courseModels.Section)) *courseModels.Section {
	tb.Helper()
	s := &courseModels.Section{
		Title:         fmt.Sprintf("Section %d", order),
		CourseID:      courseID,
		OrderIndex:    order,
		IsRequired:    true,
		IsActive:      true,
		Prerequisites: []courseModels.Prerequisite{},
	}
	for _, m := range mutate {
		m(s)
	}
	if err := db.Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

// PublishedSection marks a seeded section as published.
func PublishedSection(s *courseModels.Section) {
	now := time.Now().UTC()
	s.IsPublished = true
	s.PublishedAt = &now
}

func SeedResource(tb testing.TB, db *gorm.DB, sectionID uint, order int, typ courseModels.ResourceType, content string, mutate ...func(*courseModels.Resource)) *courseModels.Resource {
	tb.Helper()
	r := &courseModels.Resource{
		Title:      fmt.Sprintf("Resource %d", order),
		SectionID:  sectionID,
		Type:       typ,
		Content:    content,
		OrderIndex: order,
		IsRequired: true,
		IsActive:   true,
	}
	for _, m := range mutate {
		m(r)
	}
	if err := db.Create(r).Error; err != nil {
		tb.Fatalf("seed resource: %v", err)
	}
	return r
}

// PublishedResource marks a seeded resource as published.
func PublishedResource(r *courseModels.Resource) {
	r.IsPublished = true
}

func SeedQuiz(tb testing.TB, db *gorm.DB, resourceID uint, order int) *courseModels.Quiz {
	tb.Helper()
	q := &courseModels.Quiz{
		Question:   fmt.Sprintf("Question %d?", order),
		OrderIndex: order,
		ResourceID: resourceID,
		Answers:    []string{"yes", "no"},
		Answer:     "yes",
	}
	if err := db.Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

func SeedProgress(tb testing.TB, db *gorm.DB, userID, courseID, sectionID uint, mutate ...func(*courseModels.Progress)) *courseModels.Progress {
	tb.Helper()
	p := courseModels.NewProgress(userID, courseID, sectionID, time.Now().UTC())
	for _, m := range mutate {
		m(&p)
	}
	if err := db.Create(&p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return &p
}

// Orders returns the order values of live children under a parent, ascending.
func Orders(tb testing.TB, db *gorm.DB, model any, parentColumn string, parentID uint, liveOnly bool) []int {
	tb.Helper()
	q := db.Model(model).Where(parentColumn+" = ?", parentID)
	if liveOnly {
		q = q.Where("is_deleted = ?", false)
	}
	var orders []int
	if err := q.Order("order_index asc").Pluck("order_index", &orders).Error; err != nil {
		tb.Fatalf("load orders: %v", err)
	}
	return orders
}
