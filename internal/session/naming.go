package session

import (
	"regexp"
	"strings"

	"github.com/simon/vigil/internal/clierr"
)

// DefaultBase is the base session name when --session is not given.
const DefaultBase = "default"

// Separator joins the base name and the local user.
const Separator = "-"

var validToken = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_-]*$`)

// Name is a fully qualified, user-scoped tmux session name, produced by
// Resolve, Qualify or Parse.
type Name string

func (n Name) String() string { return string(n) }

// Resolve derives the session name <base>-<user>.
func Resolve(base, user string) (Name, error) {
	if err := checkToken(base, "base name"); err != nil {
		return "", err
	}
	if err := checkToken(user, "user"); err != nil {
		return "", err
	}
	return Name(base + Separator + user), nil
}

// Qualify turns a name given on the command line into a session name. A name
// that already carries the -<user> suffix is used as is; anything else is
// treated as a base name.
func Qualify(name, user string) (Name, error) {
	suffix := Separator + user
	if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
		if err := checkToken(name, "session name"); err != nil {
			return "", err
		}
		return Name(name), nil
	}
	return Resolve(name, user)
}

// Display strips the user suffix from a session name.
func Display(name Name, user string) string {
	return strings.TrimSuffix(string(name), Separator+user)
}

// SanitizeUser maps an OS-reported username onto the characters allowed in
// session names. tmux itself rewrites '.' and ':' in session names, so
// anything outside [A-Za-z0-9_-], and a leading '-', becomes '_'.
func SanitizeUser(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "user"
	}
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-' && i > 0:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func checkToken(s, what string) error {
	if s == "" {
		return clierr.InvalidName(s, what+" is empty")
	}
	if !validToken.MatchString(s) {
		return clierr.InvalidName(s, what+" must be letters, digits, '-' and '_', not starting with '-'")
	}
	return nil
}
