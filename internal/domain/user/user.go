package user

import "time"

type User struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	PasswordHash   string         `json:"-"` // never expose hash in JSON
	ProfilePicture string         `json:"profilePicture"`
	ExamRecords    map[string]any `json:"examRecords"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// PublicUser is the slice of a User that auth responses return.
type PublicUser struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

// Profile is the public read view: everything except the password hash
// and updatedAt.
type Profile struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	ProfilePicture string         `json:"profilePicture"`
	ExamRecords    map[string]any `json:"examRecords"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
	}
}

func (u User) Profile() Profile {
	records := u.ExamRecords
	if records == nil {
		records = map[string]any{}
	}

	return Profile{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		ExamRecords:    records,
		CreatedAt:      u.CreatedAt,
	}
}

// Changes is a partial update: empty strings mean "keep the stored value".
type Changes struct {
	Username     string
	Email        string
	PasswordHash string
}
