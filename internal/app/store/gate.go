package store

import "biochat/internal/app/user"

// View is a top-level page of the client.
type View string

const (
	ViewLanding    View = "landing"
	ViewHome       View = "home"
	ViewChat       View = "chat"
	ViewAdmin      View = "admin"
	ViewRestricted View = "restricted"
)

// RestrictedNotice is the only content a banned user can reach.
const RestrictedNotice = "Your account has been suspended by the administration due to violation of community guidelines."

// ParseView maps a page name to a View. Unknown or empty names map to ViewHome.
func ParseView(s string) View {
	switch v := View(s); v {
	case ViewLanding, ViewHome, ViewChat, ViewAdmin, ViewRestricted:
		return v
	default:
		return ViewHome
	}
}

// ResolveView returns the view u may actually see when requesting requested.
// Anonymous visitors land on the landing page, banned users only ever see the
// restricted notice, and the admin dashboard requires the admin role.
func ResolveView(u *user.User, requested View) View {
	if u == nil {
		return ViewLanding
	}

	if u.IsBanned {
		return ViewRestricted
	}

	switch requested {
	case ViewAdmin:
		if u.IsAdmin() {
			return ViewAdmin
		}
		return ViewHome
	case ViewChat:
		return ViewChat
	default:
		return ViewHome
	}
}

// ViewFor resolves the view for userID. An empty or unknown id is treated as anonymous.
func (s *Store) ViewFor(userID string, requested View) View {
	if userID == "" {
		return ResolveView(nil, requested)
	}

	u, ok := s.User(userID)
	if !ok {
		return ResolveView(nil, requested)
	}
	return ResolveView(&u, requested)
}
