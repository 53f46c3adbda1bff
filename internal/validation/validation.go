// Package validation concentra as regras de formato dos campos de entrada.
// Cada função devolve a mensagem de erro ou "" quando o valor é válido.
package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxEmailLength    = 100
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 8
)

var (
	emailRe        = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRe     = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	usernameCharRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

func Email(email string) string {
	switch {
	case email == "":
		return "Email is required"
	case len(email) > MaxEmailLength:
		return "Email is too long (max 100 characters)"
	case !emailRe.MatchString(email):
		return "Email format is invalid"
	}
	return ""
}

func Username(username string) string {
	n := utf8.RuneCountInString(username)
	switch {
	case username == "":
		return "Username is required"
	case n < MinUsernameLength:
		return "Username must be at least 3 characters"
	case n > MaxUsernameLength:
		return "Username must be less than 30 characters"
	case !usernameRe.MatchString(username):
		return "Username can only contain letters, numbers, and underscores"
	}
	return ""
}

// Password exige minúscula, maiúscula, dígito e um caractere especial
func Password(password string) string {
	if password == "" {
		return "Password is required"
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "Password must be at least 8 characters"
	}
	if !strongPassword(password) {
		return "Password must include at least one uppercase letter, one lowercase letter, one number, and one special character"
	}
	return ""
}

// LoginPassword só confere presença e tamanho; a força é checada no cadastro
func LoginPassword(password string) string {
	if password == "" {
		return "Password is required"
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "Password must be at least 8 characters"
	}
	return ""
}

func strongPassword(p string) bool {
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}

// Register valida o cadastro e junta todas as falhas com ". "
func Register(email, username, password string) string {
	return join(Email(email), Username(username), Password(password))
}

func Login(email, password string) string {
	return join(Email(email), LoginPassword(password))
}

// ProfileUpdate para na primeira falha. Campos vazios contam como ausentes.
func ProfileUpdate(username, profileImageURL string) string {
	if username == "" && profileImageURL == "" {
		return "At least one field must be provided for update"
	}
	if username != "" {
		n := utf8.RuneCountInString(username)
		if n < MinUsernameLength || n > MaxUsernameLength {
			return "Username must be between 3 and 30 characters"
		}
		if !usernameCharRe.MatchString(username) {
			return "Username can only contain letters, numbers, and underscores"
		}
	}
	if profileImageURL != "" && !AbsoluteURL(profileImageURL) {
		return "Profile image URL must be a valid URL"
	}
	return ""
}

// AbsoluteURL aceita qualquer URL com esquema (http:, https:, data:, ...)
func AbsoluteURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}

// SanitizeEmail aplica trim e lowercase
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func join(msgs ...string) string {
	var out []string
	for _, m := range msgs {
		if m != "" {
			out = append(out, m)
		}
	}
	return strings.Join(out, ". ")
}
