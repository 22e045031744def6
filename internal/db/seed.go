package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matcha-app/matcha-core/internal/tags"
)

var seedFirstNames = []string{
	"Emma", "Liam", "Olivia", "Noah", "Ava", "Ethan", "Sophia", "Mason",
	"Isabella", "William", "Mia", "James", "Charlotte", "Benjamin", "Amelia",
	"Lucas", "Harper", "Henry", "Evelyn", "Alexander",
}

var seedLastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez",
}

var seedBiographies = []string{
	"Bookworm looking for my reading buddy.",
	"Dog person (don't tell my cat).",
	"Tech geek by day, gamer by night.",
	"Believer in fate and spontaneous road trips.",
	"Yoga and meditation enthusiast.",
	"Movie marathons are my cardio.",
	"Food lover who can't cook to save my life.",
	"Looking for my partner in crime.",
	"Adventure awaits! Join me?",
	"Coffee, cats, and good vibes.",
	"Living life one pun at a time.",
	"Sarcasm is my love language.",
}

// SeedTestData resets the database and populates it with demo profiles and
// graph edges.
//
// Behavior:
//  1. Clears every table owned by this core.
//  2. Creates 50 completed profiles with hashed passwords, tags, image
//     identifiers and coordinates inside the demo window.
//  3. Generates likes (~70% rate, opposite-gender pairs) with every 3rd
//     forced mutual, then derives the connection rows for mutual pairs and
//     records the matching view edges.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	tables := []string{
		"chat_messages", "connections", "blocks", "likes", "views",
		"user_images", "user_tags", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE chat_messages AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('users', 'user_images', 'chat_messages')")
	}

	log.Println("Cleared existing data")

	// --- Seed users (even ids female, odd male per creation order) ---
	const population = 50

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userIDs := make([]uint64, 0, population)
	genders := make(map[uint64]Gender, population)
	for i := 1; i <= population; i++ {
		first := seedFirstNames[r.Intn(len(seedFirstNames))]
		last := seedLastNames[r.Intn(len(seedLastNames))]
		username := fmt.Sprintf("%s%s%d", first, last, i)
		gender := Gender(i % 2)

		user := User{
			Username:         username,
			Email:            fmt.Sprintf("%s@example.com", username),
			PasswordHash:     string(hash),
			Firstname:        first,
			Surname:          last,
			Verified:         true,
			Age:              18 + r.Intn(28),
			Gender:           gender,
			SexualPreference: Preference(r.Intn(3)),
			Biography:        seedBiographies[r.Intn(len(seedBiographies))],
			Latitude:         40.0 + r.Float64()*15.0,
			Longitude:        -15.0 + r.Float64()*5.0,
			Fame:             r.Intn(1001),
			Completed:        true,
			LastConnection:   time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		userIDs = append(userIDs, user.ID)
		genders[user.ID] = gender

		// 1-5 tags from the fixed vocabulary
		for _, t := range pickTags(r, 1+r.Intn(5)) {
			db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&UserTag{UserID: user.ID, Tag: t})
		}

		// 1-4 opaque image identifiers
		numImages := 1 + r.Intn(4)
		for i := 0; i < numImages; i++ {
			db.Create(&UserImage{UserID: user.ID, UUID: uuid.NewString()})
		}
	}
	log.Printf("Seeded %d users.", population)

	// --- Seed likes (~70% rate between opposite-gender pairs) ---
	type pair struct{ liker, liked uint64 }
	liked := make(map[pair]bool)
	counter := 0
	for _, likerID := range userIDs {
		for j := 0; j < 8; j++ {
			likedID := userIDs[r.Intn(len(userIDs))]
			if likedID == likerID || genders[likedID] == genders[likerID] {
				continue
			}

			wantLike := r.Intn(100) < 70

			// guarantee mutual likes every 3rd attempt
			if counter%3 == 0 {
				wantLike = true
				if !liked[pair{likedID, likerID}] {
					db.Clauses(clause.OnConflict{DoNothing: true}).
						Create(&Like{LikerID: likedID, LikedID: likerID})
					liked[pair{likedID, likerID}] = true
				}
			}
			counter++

			if !wantLike || liked[pair{likerID, likedID}] {
				continue
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&Like{LikerID: likerID, LikedID: likedID}).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}
			liked[pair{likerID, likedID}] = true

			// a like implies the profile was seen first
			db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&View{ViewerID: likerID, ViewedID: likedID})
		}
	}

	// --- Derive connections for mutual pairs ---
	connections := 0
	for p := range liked {
		if p.liker >= p.liked || !liked[pair{p.liked, p.liker}] {
			continue
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&Connection{UserAID: p.liker, UserBID: p.liked}).Error; err != nil {
			return fmt.Errorf("failed to seed connection: %w", err)
		}
		connections++

		// a short conversation on the first few matches
		if connections <= 5 {
			db.Create(&ChatMessage{
				SenderID: p.liker, RecipientID: p.liked,
				SentAt: time.Now().Add(-2 * time.Hour), Body: "Hey! We matched :)",
			})
			db.Create(&ChatMessage{
				SenderID: p.liked, RecipientID: p.liker,
				SentAt: time.Now().Add(-1 * time.Hour), Body: "Hey, nice to meet you!",
			})
		}
	}
	log.Printf("Seeded %d likes, %d connections.", len(liked), connections)

	return nil
}

// pickTags draws n distinct tags from the vocabulary.
func pickTags(r *rand.Rand, n int) []string {
	idx := r.Perm(len(tags.Vocabulary))
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, tags.Vocabulary[i])
	}
	return out
}
