package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// userNamespace seeds the name-based user ids of the local authenticator.
var userNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://polygonfordummies.app/users"))

// LocalAuthenticator accepts any non-empty credentials. There is no backend:
// the session only gates navigation, it proves nothing about the user.
type LocalAuthenticator struct{}

func (LocalAuthenticator) Login(_ context.Context, email, password string) (Session, error) {
	if blank(email) || blank(password) {
		return Session{}, ErrInvalidCredentials
	}
	email = strings.TrimSpace(email)
	name := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		name = email[:at]
	}
	return Session{UserID: userID(email), DisplayName: name, Email: email}, nil
}

func (LocalAuthenticator) Signup(_ context.Context, name, email, password string) (Session, error) {
	if blank(name) || blank(email) || blank(password) {
		return Session{}, ErrInvalidCredentials
	}
	email = strings.TrimSpace(email)
	return Session{UserID: userID(email), DisplayName: strings.TrimSpace(name), Email: email}, nil
}

func userID(email string) string {
	return "user-" + uuid.NewSHA1(userNamespace, []byte(strings.ToLower(email))).String()
}
