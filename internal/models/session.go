package models

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the authorization role attached to a session.
type Role string

const (
	RoleNone     Role = ""
	RoleListener Role = "listener"
	RoleArtist   Role = "artist"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a wire value to a [Role]. Unknown values map to [RoleNone].
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleListener:
		return RoleListener
	case RoleArtist:
		return RoleArtist
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleNone
	}
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// Identity is the identity object returned by the login and session probe endpoints.
type Identity struct {
	Role            string `json:"role"`
	UserID          *int64 `json:"userId,omitempty"`
	ArtistProfileID *int64 `json:"artistProfileId,omitempty"`
	DisplayName     string `json:"displayName,omitempty"`
	Username        string `json:"username,omitempty"`
}

// Name returns the display name, falling back to the username.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Username
}

// Session is the authenticated identity of the current client.
//
// The zero value is the anonymous session.
type Session struct {
	Credential      string
	Role            Role
	UserID          *int64
	ArtistProfileID *int64
	DisplayName     string
}

// SessionFromIdentity derives a session from a credential and the identity it belongs to.
//
// An artist profile id is kept only for the artist role.
func SessionFromIdentity(credential string, id Identity) Session {
	s := Session{
		Credential:  credential,
		Role:        ParseRole(id.Role),
		UserID:      copyID(id.UserID),
		DisplayName: id.Name(),
	}
	if s.Role == RoleArtist {
		s.ArtistProfileID = copyID(id.ArtistProfileID)
	}
	return s
}

// Authenticated reports whether the session carries a credential and a role.
func (s Session) Authenticated() bool {
	return s.Credential != "" && s.Role != RoleNone
}

// Validate checks the session invariants.
func (s Session) Validate() error {
	if (s.Role != RoleNone) != (s.Credential != "") {
		return errors.New("role and credential must be set together")
	}
	if s.ArtistProfileID != nil && s.Role != RoleArtist {
		return fmt.Errorf("artist profile id set for role %s", s.Role)
	}
	return nil
}

// Clone returns a copy that shares no pointers with s.
func (s Session) Clone() Session {
	s.UserID = copyID(s.UserID)
	s.ArtistProfileID = copyID(s.ArtistProfileID)
	return s
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
