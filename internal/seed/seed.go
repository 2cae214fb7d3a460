// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"soundbite/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumSnippets int
	ShouldClean bool
	// MaxDays spreads created_at timestamps over this many past days.
	MaxDays int
}

var genres = []string{
	"jazz", "lofi", "hiphop", "ambient", "techno", "folk",
	"spoken-word", "field-recording", "synthwave", "acoustic",
}

// Run seeds the database with users, snippets, comments, and engagements.
// Counters are written to match the seeded engagement records, so the seeded
// state satisfies the counter consistency the application maintains at
// runtime.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		log.Println("Cleaning existing data...")
		for _, table := range []string{"notifications", "engagements", "comments", "snippets", "users"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clean %s: %w", table, err)
			}
		}
	}

	users, err := seedUsers(db, opts.NumUsers)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d users", len(users))

	snippets, err := seedSnippets(db, users, opts)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d snippets", len(snippets))

	if err := seedEngagements(db, users, snippets); err != nil {
		return err
	}
	log.Println("Seeded engagements, comments, and notifications")

	return nil
}

func seedUsers(db *gorm.DB, n int) ([]*models.User, error) {
	if n <= 0 {
		n = 25
	}
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Handle:   fmt.Sprintf("%s%d", gofakeit.Username(), i),
			ImageURL: fmt.Sprintf("https://img.example/avatars/%s.png", uuid.NewString()),
			Bio:      gofakeit.Sentence(8),
			Location: gofakeit.City(),
			Website:  gofakeit.URL(),
		}
		if err := db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

func seedSnippets(db *gorm.DB, users []*models.User, opts Options) ([]*models.Snippet, error) {
	n := opts.NumSnippets
	if n <= 0 {
		n = 100
	}
	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}

	snippets := make([]*models.Snippet, 0, n)
	for i := 0; i < n; i++ {
		owner := users[rand.Intn(len(users))]
		createdAt := time.Now().UTC().Add(-time.Duration(rand.Intn(maxDays*24)) * time.Hour)
		snippet := &models.Snippet{
			ID:            uuid.NewString(),
			Body:          gofakeit.Sentence(12),
			AudioURL:      fmt.Sprintf("https://cdn.example/audio/%s.mp3", uuid.NewString()),
			Genre:         genres[rand.Intn(len(genres))],
			OwnerHandle:   owner.Handle,
			OwnerImageURL: owner.ImageURL,
			CreatedAt:     createdAt,
		}
		if err := db.Create(snippet).Error; err != nil {
			return nil, fmt.Errorf("create snippet: %w", err)
		}
		snippets = append(snippets, snippet)
	}
	return snippets, nil
}

func seedEngagements(db *gorm.DB, users []*models.User, snippets []*models.Snippet) error {
	for _, snippet := range snippets {
		likers := pickUsers(users, rand.Intn(6))
		for _, liker := range likers {
			like := &models.Engagement{
				ID:         uuid.NewString(),
				Kind:       models.EngagementLike,
				UserHandle: liker.Handle,
				SnippetID:  snippet.ID,
				CreatedAt:  snippet.CreatedAt.Add(time.Duration(rand.Intn(72)) * time.Hour),
			}
			if err := db.Create(like).Error; err != nil {
				return fmt.Errorf("create like: %w", err)
			}
			snippet.LikeCount++

			if liker.Handle != snippet.OwnerHandle {
				notification := &models.Notification{
					ID:              like.ID,
					RecipientHandle: snippet.OwnerHandle,
					SenderHandle:    liker.Handle,
					Type:            models.NotificationLike,
					SnippetID:       snippet.ID,
					Read:            rand.Intn(2) == 0,
					CreatedAt:       like.CreatedAt,
				}
				if err := db.Create(notification).Error; err != nil {
					return fmt.Errorf("create notification: %w", err)
				}
			}
		}

		listeners := pickUsers(users, rand.Intn(12))
		for _, listener := range listeners {
			play := &models.Engagement{
				ID:         uuid.NewString(),
				Kind:       models.EngagementPlay,
				UserHandle: listener.Handle,
				SnippetID:  snippet.ID,
				CreatedAt:  snippet.CreatedAt.Add(time.Duration(rand.Intn(72)) * time.Hour),
			}
			if err := db.Create(play).Error; err != nil {
				return fmt.Errorf("create play: %w", err)
			}
			snippet.PlayCount++
		}

		for i := 0; i < rand.Intn(4); i++ {
			author := users[rand.Intn(len(users))]
			comment := &models.Comment{
				ID:             uuid.NewString(),
				SnippetID:      snippet.ID,
				Body:           gofakeit.Sentence(10),
				AuthorHandle:   author.Handle,
				AuthorImageURL: author.ImageURL,
				CreatedAt:      snippet.CreatedAt.Add(time.Duration(rand.Intn(96)) * time.Hour),
			}
			if err := db.Create(comment).Error; err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
			snippet.CommentCount++

			if author.Handle != snippet.OwnerHandle {
				notification := &models.Notification{
					ID:              comment.ID,
					RecipientHandle: snippet.OwnerHandle,
					SenderHandle:    author.Handle,
					Type:            models.NotificationComment,
					SnippetID:       snippet.ID,
					Read:            rand.Intn(2) == 0,
					CreatedAt:       comment.CreatedAt,
				}
				if err := db.Create(notification).Error; err != nil {
					return fmt.Errorf("create notification: %w", err)
				}
			}
		}

		if err := db.Model(&models.Snippet{}).Where("id = ?", snippet.ID).Updates(map[string]any{
			"like_count":    snippet.LikeCount,
			"play_count":    snippet.PlayCount,
			"comment_count": snippet.CommentCount,
		}).Error; err != nil {
			return fmt.Errorf("update counters: %w", err)
		}
	}
	return nil
}

// pickUsers returns up to n distinct users in random order.
func pickUsers(users []*models.User, n int) []*models.User {
	if n > len(users) {
		n = len(users)
	}
	perm := rand.Perm(len(users))
	picked := make([]*models.User, 0, n)
	for _, idx := range perm[:n] {
		picked = append(picked, users[idx])
	}
	return picked
}
