package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clubhouse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FakePassword is shared by every generated member.
const FakePassword = "password123"

// Factory generates demo members and spreads them across existing clubs.
// It is meant for development databases only.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	cost  int
}

// NewFactory returns a Factory. A zero seed uses the current time.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, faker: gofakeit.New(seed), cost: bcrypt.DefaultCost}
}

func (f *Factory) WithBcryptCost(cost int) *Factory {
	f.cost = cost
	return f
}

// BuildMember returns an unsaved member with fake identity fields. The
// suffix keeps usernames and emails unique within one batch.
func (f *Factory) BuildMember(suffix int, hash string) *models.User {
	handle := strings.ToLower(f.faker.FirstName() + "." + f.faker.LastName())
	handle = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, handle)
	username := fmt.Sprintf("%s%d", handle, suffix)
	if len(username) > 80 {
		username = username[len(username)-80:]
	}
	return &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@%s", username, f.faker.DomainName()),
		PasswordHash: hash,
		Role:         models.RoleMember,
	}
}

// CreateMembers inserts n fake members and joins each one to a random
// subset of the existing clubs.
func (f *Factory) CreateMembers(ctx context.Context, n int) ([]models.User, error) {
	if n <= 0 {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(FakePassword), f.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var clubIDs []uint
	if err := f.db.WithContext(ctx).Model(&models.Club{}).Pluck("id", &clubIDs).Error; err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}

	var start int64
	if err := f.db.WithContext(ctx).Model(&models.User{}).Count(&start).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	users := make([]models.User, 0, n)
	err = f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < n; i++ {
			u := f.BuildMember(int(start)+i+1, string(hash))
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("create member %s: %w", u.Username, err)
			}
			for _, clubID := range clubIDs {
				if !f.faker.Bool() {
					continue
				}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&models.ClubMember{ClubID: clubID, UserID: u.ID}).Error; err != nil {
					return fmt.Errorf("join club %d: %w", clubID, err)
				}
			}
			users = append(users, *u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
