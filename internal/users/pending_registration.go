package users

import "time"

// PendingRegistration stages a registration attempt until the emailed code is
// verified. Entries live in the keyed cache under the applicant's email and
// expire after params.PendingRegistrationExpiration; re-registering the same
// email overwrites the previous entry.
type PendingRegistration struct {
	Email       string    `json:"email"`
	Code        string    `json:"code"`
	Password    string    `json:"password"` // bcrypt hash, never plaintext
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Birthday    string    `json:"birthday"`
	Phone       string    `json:"phone"`
	ValidIDPath string    `json:"validIDPath"`
	CreatedAt   time.Time `json:"createdAt"`
}
