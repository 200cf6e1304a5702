// Package policy decides which roles may perform which operations.
package policy

import (
	"fmt"

	"clubhouse/internal/models"
)

// Action enumerates every guarded operation.
type Action string

const (
	ActionRegister           Action = "register"
	ActionAuthenticate       Action = "authenticate"
	ActionBrowse             Action = "browse"
	ActionJoinClub           Action = "join_club"
	ActionLeaveClub          Action = "leave_club"
	ActionSubmitClubRequest  Action = "submit_club_request"
	ActionCreateClub         Action = "create_club"
	ActionListClubRequests   Action = "list_club_requests"
	ActionResolveClubRequest Action = "resolve_club_request"
	ActionDeleteClub         Action = "delete_club"
	ActionUpdateClub         Action = "update_club"
	ActionCreateEvent        Action = "create_event"
	ActionViewUsers          Action = "view_users"
	ActionManageUsers        Action = "manage_users"
)

// Actions lists every known action.
var Actions = []Action{
	ActionRegister,
	ActionAuthenticate,
	ActionBrowse,
	ActionJoinClub,
	ActionLeaveClub,
	ActionSubmitClubRequest,
	ActionCreateClub,
	ActionListClubRequests,
	ActionResolveClubRequest,
	ActionDeleteClub,
	ActionUpdateClub,
	ActionCreateEvent,
	ActionViewUsers,
	ActionManageUsers,
}

var memberActions = map[Action]bool{
	ActionRegister:          true,
	ActionAuthenticate:      true,
	ActionBrowse:            true,
	ActionJoinClub:          true,
	ActionLeaveClub:         true,
	ActionSubmitClubRequest: true,
}

var knownActions = func() map[Action]bool {
	m := make(map[Action]bool, len(Actions))
	for _, a := range Actions {
		m[a] = true
	}
	return m
}()

// Allow reports whether role may perform action. Unknown roles or actions are denied.
func Allow(role models.Role, action Action) bool {
	if !knownActions[action] {
		return false
	}
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleMember:
		return memberActions[action]
	default:
		return false
	}
}

// Authorize returns a Forbidden error unless user may perform action.
// A nil user is treated as unauthenticated.
func Authorize(user *models.User, action Action) error {
	if user == nil {
		return models.NewUnauthorizedError("authentication required")
	}
	if !Allow(user.Role, action) {
		return models.NewForbiddenError(fmt.Sprintf("role %q may not %s", user.Role, action))
	}
	return nil
}
