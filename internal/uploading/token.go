package uploading

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Token is the saved OAuth credential for the upload account. The file is
// produced by a one-time out-of-band authorization flow.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Valid reports whether the access token can still be presented.
func (t Token) Valid() bool {
	if strings.TrimSpace(t.AccessToken) == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return time.Now().Before(t.Expiry.Add(-30 * time.Second))
}

// LoadToken reads the token file written by the authorization flow.
func LoadToken(path string) (Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Token{}, fmt.Errorf("read token file: %w", err)
	}
	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return Token{}, fmt.Errorf("decode token file: %w", err)
	}
	return token, nil
}
