package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clubhouse/internal/cache"
	"clubhouse/internal/models"
	"clubhouse/internal/repository"

	"go.uber.org/multierr"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Report counts the changes a reconcile run made. A run against an already
// reconciled database reports all zeroes.
type Report struct {
	UsersCreated     int
	UsersUpdated     int
	ClubsCreated     int
	ClubsUpdated     int
	ClubsRenamed     int
	ClubsRemoved     int
	EventsCreated    int
	EventsUpdated    int
	MembershipsAdded int
	AttendeesAdded   int
}

// Changed reports whether anything was written.
func (r Report) Changed() bool {
	return r != Report{}
}

// Reconciler applies a Baseline. Each user and club is written in its own
// transaction so one bad item does not block the rest.
type Reconciler struct {
	db         *gorm.DB
	clubs      repository.ClubRepository
	bcryptCost int
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{
		db:         db,
		clubs:      repository.NewClubRepository(db),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost for inserted users.
func (r *Reconciler) WithBcryptCost(cost int) *Reconciler {
	r.bcryptCost = cost
	return r
}

// Reconcile applies b to db with default settings.
func Reconcile(ctx context.Context, db *gorm.DB, b *Baseline) (Report, error) {
	return NewReconciler(db).Reconcile(ctx, b)
}

// Reconcile upserts users, removes retired clubs, then upserts clubs with
// their memberships, events and attendance. All item failures are returned
// together.
func (r *Reconciler) Reconcile(ctx context.Context, b *Baseline) (Report, error) {
	var (
		report Report
		errs   error
	)

	userIDs := make(map[string]uint, len(b.Users))
	for _, spec := range b.Users {
		id, err := r.reconcileUser(ctx, spec, &report)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("user %q: %w", spec.Username, err))
			continue
		}
		userIDs[spec.Username] = id
	}

	for _, name := range b.Remove.Clubs {
		if err := r.removeClub(ctx, name, &report); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remove club %q: %w", name, err))
		}
	}

	for _, spec := range b.Clubs {
		if err := r.reconcileClub(ctx, spec, userIDs, &report); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("club %q: %w", spec.Name, err))
		}
	}

	if report.Changed() {
		cache.InvalidateClubList(ctx)
	}
	slog.InfoContext(ctx, "seed reconcile finished",
		"users_created", report.UsersCreated,
		"clubs_created", report.ClubsCreated,
		"clubs_renamed", report.ClubsRenamed,
		"clubs_removed", report.ClubsRemoved,
		"events_created", report.EventsCreated,
		"errors", len(multierr.Errors(errs)),
	)
	return report, errs
}

func (r *Reconciler) reconcileUser(ctx context.Context, spec UserSpec, report *Report) (uint, error) {
	role := models.RoleMember
	if spec.Role != "" {
		parsed, ok := models.ParseRole(spec.Role)
		if !ok {
			return 0, fmt.Errorf("unknown role %q", spec.Role)
		}
		role = parsed
	}

	var id uint
	updated := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("username = ?", spec.Username).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, err := bcrypt.GenerateFromPassword([]byte(spec.Password), r.bcryptCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			user = models.User{
				Username:     spec.Username,
				Email:        spec.Email,
				PasswordHash: string(hash),
				Role:         role,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			report.UsersCreated++
		case err != nil:
			return err
		default:
			updates := map[string]any{}
			if user.Email != spec.Email {
				updates["email"] = spec.Email
			}
			if user.Role != role {
				updates["role"] = role
			}
			if len(updates) > 0 {
				if err := tx.Model(&user).Updates(updates).Error; err != nil {
					return err
				}
				updated = true
				report.UsersUpdated++
			}
		}
		id = user.ID
		return nil
	})
	if updated {
		cache.InvalidateUser(ctx, id)
	}
	return id, err
}

func (r *Reconciler) removeClub(ctx context.Context, name string, report *Report) error {
	var club models.Club
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&club).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := r.clubs.DeleteCascade(ctx, club.ID); err != nil {
		return err
	}
	report.ClubsRemoved++
	return nil
}

func (r *Reconciler) reconcileClub(ctx context.Context, spec ClubSpec, userIDs map[string]uint, report *Report) error {
	lookup := func(username string) (uint, error) {
		id, ok := userIDs[username]
		if !ok {
			return 0, fmt.Errorf("user %q was not reconciled", username)
		}
		return id, nil
	}

	var (
		clubID uint
		delta  Report
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		club, err := findClub(tx, spec)
		if err != nil {
			return err
		}

		var presidentID *uint
		if spec.President != "" {
			id, err := lookup(spec.President)
			if err != nil {
				return err
			}
			presidentID = &id
		}

		if club == nil {
			club = &models.Club{
				Name:        spec.Name,
				Description: spec.Description,
				ImageURL:    spec.ImageURL,
				PresidentID: presidentID,
			}
			if err := tx.Omit(clause.Associations).Create(club).Error; err != nil {
				return err
			}
			delta.ClubsCreated++
		} else {
			updates := map[string]any{}
			if club.Name != spec.Name {
				updates["name"] = spec.Name
				delta.ClubsRenamed++
			}
			if club.Description != spec.Description {
				updates["description"] = spec.Description
			}
			if club.ImageURL != spec.ImageURL {
				updates["image_url"] = spec.ImageURL
			}
			if !sameID(club.PresidentID, presidentID) {
				updates["president_id"] = presidentID
			}
			if len(updates) > 0 {
				if err := tx.Model(club).Updates(updates).Error; err != nil {
					return err
				}
				delta.ClubsUpdated++
			}
		}
		clubID = club.ID

		for _, username := range spec.Members {
			userID, err := lookup(username)
			if err != nil {
				return err
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.ClubMember{ClubID: club.ID, UserID: userID})
			if res.Error != nil {
				return res.Error
			}
			delta.MembershipsAdded += int(res.RowsAffected)
		}

		for _, es := range spec.Events {
			if err := reconcileEvent(ctx, tx, club.ID, es, lookup, &delta); err != nil {
				return fmt.Errorf("event %q: %w", es.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	report.ClubsCreated += delta.ClubsCreated
	report.ClubsUpdated += delta.ClubsUpdated
	report.ClubsRenamed += delta.ClubsRenamed
	report.EventsCreated += delta.EventsCreated
	report.EventsUpdated += delta.EventsUpdated
	report.MembershipsAdded += delta.MembershipsAdded
	report.AttendeesAdded += delta.AttendeesAdded
	if delta.Changed() {
		cache.InvalidateClub(ctx, clubID)
	}
	return nil
}

// findClub looks a club up by its current name, then by each previous name.
func findClub(tx *gorm.DB, spec ClubSpec) (*models.Club, error) {
	for _, name := range append([]string{spec.Name}, spec.PreviousNames...) {
		var club models.Club
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).First(&club).Error
		if err == nil {
			return &club, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func reconcileEvent(ctx context.Context, tx *gorm.DB, clubID uint, spec EventSpec, lookup func(string) (uint, error), delta *Report) error {
	date, err := parseDate(spec.Date)
	if err != nil {
		return err
	}

	var event models.Event
	err = tx.Where("club_id = ? AND name = ?", clubID, spec.Name).First(&event).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		event = models.Event{
			Name:        spec.Name,
			Description: spec.Description,
			Date:        date,
			Location:    spec.Location,
			ImageURL:    spec.ImageURL,
			ClubID:      clubID,
		}
		if err := tx.Omit(clause.Associations).Create(&event).Error; err != nil {
			return err
		}
		delta.EventsCreated++
	case err != nil:
		return err
	default:
		updates := map[string]any{}
		if event.Description != spec.Description {
			updates["description"] = spec.Description
		}
		if !event.Date.Equal(date) {
			updates["date"] = date
		}
		if event.Location != spec.Location {
			updates["location"] = spec.Location
		}
		if event.ImageURL != spec.ImageURL {
			updates["image_url"] = spec.ImageURL
		}
		if len(updates) > 0 {
			if err := tx.Model(&event).Updates(updates).Error; err != nil {
				return err
			}
			delta.EventsUpdated++
		}
	}

	for _, username := range spec.Attendees {
		userID, err := lookup(username)
		if err != nil {
			return err
		}
		added, err := repository.NewEventRepository(tx).AddAttendee(ctx, event.ID, userID)
		if err != nil {
			return err
		}
		if added {
			delta.AttendeesAdded++
		}
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(models.EventDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must look like 2006-01-02T15:04", raw)
	}
	return t, nil
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
