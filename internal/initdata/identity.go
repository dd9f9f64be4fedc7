package initdata

import (
	"encoding/json"
	"strconv"
	"time"
)

// Identity is the Telegram user a verified payload was issued for
type Identity struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name,omitempty"`
	Username        string `json:"username,omitempty"`
	LanguageCode    string `json:"language_code,omitempty"`
	IsPremium       bool   `json:"is_premium,omitempty"`
	PhotoURL        string `json:"photo_url,omitempty"`
	AllowsWriteToPM bool   `json:"allows_write_to_pm,omitempty"`
}

// DisplayName returns the username when present, otherwise the first name
func (i *Identity) DisplayName() string {
	if i.Username != "" {
		return i.Username
	}
	return i.FirstName
}

// LaunchParams are the signed, non-identity fields of an accepted payload
type LaunchParams struct {
	AuthDate     time.Time
	QueryID      string
	ChatType     string
	ChatInstance string
	StartParam   string
}

// userRecord mirrors Identity with a nullable id so a missing id is detectable
type userRecord struct {
	ID              *int64 `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	LanguageCode    string `json:"language_code"`
	IsPremium       bool   `json:"is_premium"`
	PhotoURL        string `json:"photo_url"`
	AllowsWriteToPM bool   `json:"allows_write_to_pm"`
}

// parseAuthDate reads auth_date as Unix seconds
func parseAuthDate(fs FieldSet) (int64, error) {
	raw, ok := fs.Get(FieldAuthDate)
	if !ok {
		return 0, reject(MissingTimestamp)
	}

	authDate, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, reject(MalformedData)
	}
	return authDate, nil
}

// checkFreshness rejects payloads older than maxAge seconds. Future-dated
// payloads are accepted; only the positive direction is bounded. authDate is
// never subtracted so extreme signed values cannot wrap around.
func checkFreshness(authDate, now, maxAge int64) error {
	if authDate < now-maxAge {
		return reject(Expired)
	}
	return nil
}

// extractIdentity decodes the user field. The numeric id is the only
// required attribute.
func extractIdentity(fs FieldSet) (*Identity, error) {
	raw, ok := fs.Get(FieldUser)
	if !ok || raw == "" {
		return nil, reject(PayloadParseError)
	}

	var rec userRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, reject(PayloadParseError)
	}
	if rec.ID == nil {
		return nil, reject(PayloadParseError)
	}

	return &Identity{
		ID:              *rec.ID,
		FirstName:       rec.FirstName,
		LastName:        rec.LastName,
		Username:        rec.Username,
		LanguageCode:    rec.LanguageCode,
		IsPremium:       rec.IsPremium,
		PhotoURL:        rec.PhotoURL,
		AllowsWriteToPM: rec.AllowsWriteToPM,
	}, nil
}

func launchParams(fs FieldSet, authDate int64) LaunchParams {
	p := LaunchParams{AuthDate: time.Unix(authDate, 0).UTC()}
	p.QueryID, _ = fs.Get(FieldQueryID)
	p.ChatType, _ = fs.Get(FieldChatType)
	p.ChatInstance, _ = fs.Get(FieldChatInstance)
	p.StartParam, _ = fs.Get(FieldStartParam)
	return p
}
