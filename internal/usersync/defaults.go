package usersync

import (
	"github.com/gogotex/gogotex/backend/user-sync/internal/clerk"
	"github.com/gogotex/gogotex/backend/user-sync/internal/models"
)

// Field rules applied to provider payloads. An absent, null or empty value
// takes the rule's fallback.
//
//	created: email    <- first address        | ""
//	         username <- username             | "user_" + id
//	         photoUrl <- image_url            | ""
//	         names    <- first/last name      (required, no fallback)
//	updated: firstName, lastName, username, photoUrl <- payload | ""

const generatedUsernamePrefix = "user_"

// FallbackUsername is the username given to accounts created without one.
func FallbackUsername(externalID string) string {
	return generatedUsernamePrefix + externalID
}

func valueOr(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}

func hasNames(d clerk.UserData) bool {
	return valueOr(d.FirstName, "") != "" && valueOr(d.LastName, "") != ""
}

func createdRecord(d clerk.UserData) *models.User {
	return &models.User{
		ExternalID: d.ID,
		Email:      d.PrimaryEmail(),
		Username:   valueOr(d.Username, FallbackUsername(d.ID)),
		FirstName:  valueOr(d.FirstName, ""),
		LastName:   valueOr(d.LastName, ""),
		PhotoURL:   valueOr(d.ImageURL, ""),
	}
}

func updatedFields(d clerk.UserData) models.UserUpdate {
	return models.UserUpdate{
		FirstName: valueOr(d.FirstName, ""),
		LastName:  valueOr(d.LastName, ""),
		Username:  valueOr(d.Username, ""),
		PhotoURL:  valueOr(d.ImageURL, ""),
	}
}
