package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	ClubKeyPrefix = "club:%d"
	ClubListKey   = "clubs:all"
)

const (
	UserTTL = 5 * time.Minute
	ClubTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ClubKey(clubID uint) string {
	return fmt.Sprintf(ClubKeyPrefix, clubID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateClub drops the club detail and the club listing.
func InvalidateClub(ctx context.Context, clubID uint) {
	Invalidate(ctx, ClubKey(clubID), ClubListKey)
}

func InvalidateClubList(ctx context.Context) {
	Invalidate(ctx, ClubListKey)
}
