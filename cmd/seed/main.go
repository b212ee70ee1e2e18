package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/wanderwise/wanderwise-backend/config"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/repository"
	"github.com/wanderwise/wanderwise-backend/internal/db"
	"github.com/wanderwise/wanderwise-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	importBatchSize = 500
	reviewColumns   = 6
)

type seedAccount struct {
	Email    string
	Password string
	FullName string
	Role     model.UserRole
}

var seedAccounts = []seedAccount{
	{Email: "admin@wanderwise.test", Password: "admin-password", FullName: "Ada Admin", Role: model.RoleAdmin},
	{Email: "traveler@wanderwise.test", Password: "traveler-password", FullName: "Theo Traveler", Role: model.RoleUser},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ctx := context.Background()
	conn := db.GetDB()
	users, err := seedUsers(ctx, repository.NewUserRepository(conn))
	if err != nil {
		log.Fatal("Failed to seed users:", err)
	}
	author := users[len(users)-1].ID

	reviews := sampleReviews(author)
	if len(os.Args) > 1 {
		filePath := os.Args[1]
		fmt.Printf("Reading XLSX file: %s\n", filePath)
		imported, skipped, err := readReviewsFromXLSX(filePath, author)
		if err != nil {
			log.Fatal("Failed to read XLSX:", err)
		}
		fmt.Printf("Valid reviews: %d, skipped rows: %d\n", len(imported), skipped)
		reviews = append(reviews, imported...)
	}

	if err := conn.WithContext(ctx).CreateInBatches(reviews, importBatchSize).Error; err != nil {
		log.Fatal("Failed to create reviews:", err)
	}

	fmt.Println("Seed completed successfully!")
	fmt.Printf("Users: %d, reviews created: %d\n", len(users), len(reviews))
}

// seedUsers creates the fixed accounts, reusing any that already exist.
func seedUsers(ctx context.Context, repo repository.UserRepository) ([]model.User, error) {
	out := make([]model.User, 0, len(seedAccounts))
	for _, a := range seedAccounts {
		existing, err := repo.FindByEmail(ctx, a.Email)
		if err == nil {
			out = append(out, *existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		hash, err := util.HashPassword(a.Password)
		if err != nil {
			return nil, err
		}
		user := model.User{
			Email:        a.Email,
			PasswordHash: hash,
			FullName:     a.FullName,
			Role:         a.Role,
			IsActive:     true,
		}
		if err := repo.Create(ctx, &user); err != nil {
			return nil, fmt.Errorf("create %s: %w", a.Email, err)
		}
		out = append(out, user)
	}
	return out, nil
}

func sampleReviews(author uint) []model.Review {
	text := func(s string) *string { return &s }
	return []model.Review{
		{ReviewableType: model.ReviewableDestination, ReviewableID: 1, UserID: &author, Rating: 5,
			Title: text("Worth every step"), Body: text("The old town at dawn is unforgettable."), Status: model.ReviewStatusPublished},
		{ReviewableType: model.ReviewableActivity, ReviewableID: 10, UserID: &author, Rating: 4,
			Title: text("Sunset kayak tour"), Body: text("Calm water, friendly guides."), Status: model.ReviewStatusPending},
		{ReviewableType: model.ReviewableAccommodation, ReviewableID: 3, UserID: &author, Rating: 2,
			Title: text("Noisy at night"), Status: model.ReviewStatusPending},
		{ReviewableType: model.ReviewableActivity, ReviewableID: 11, UserID: &author, Rating: 1,
			Body: text("Spam link removed by support."), Status: model.ReviewStatusRejected},
		{ReviewableType: model.ReviewableDestination, ReviewableID: 2, UserID: &author, Rating: 3,
			Title: text("Unfinished notes"), Status: model.ReviewStatusDraft},
	}
}

// readReviewsFromXLSX imports the first sheet. Columns after the header row:
// reviewable_type, reviewable_id, rating, title, body, status. Blank status
// means pending.
func readReviewsFromXLSX(filePath string, author uint) ([]model.Review, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var reviews []model.Review
	skipped := 0
	for _, row := range rows[1:] {
		review, ok := parseReviewRow(row, author)
		if !ok {
			skipped++
			continue
		}
		reviews = append(reviews, review)
	}
	return reviews, skipped, nil
}

func parseReviewRow(row []string, author uint) (model.Review, bool) {
	cells := make([]string, reviewColumns)
	for i := 0; i < reviewColumns && i < len(row); i++ {
		cells[i] = strings.TrimSpace(row[i])
	}

	rt, ok := model.NormalizeReviewableType(cells[0])
	if !ok {
		return model.Review{}, false
	}
	id, err := strconv.ParseUint(cells[1], 10, 64)
	if err != nil || id == 0 {
		return model.Review{}, false
	}
	rating, err := strconv.Atoi(cells[2])
	if err != nil || !model.ValidRating(rating) {
		return model.Review{}, false
	}

	status := model.ReviewStatusPending
	if cells[5] != "" {
		status = model.ReviewStatus(strings.ToLower(cells[5]))
		if !status.Valid() {
			return model.Review{}, false
		}
	}

	review := model.Review{
		ReviewableType: rt,
		ReviewableID:   uint(id),
		UserID:         &author,
		Rating:         rating,
		Status:         status,
	}
	if cells[3] != "" {
		review.Title = &cells[3]
	}
	if cells[4] != "" {
		review.Body = &cells[4]
	}
	if review.Title == nil && review.Body == nil {
		return model.Review{}, false
	}
	return review, true
}
