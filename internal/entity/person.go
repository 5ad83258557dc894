package entity

// Person is a row in the personnel store. Read-only from this service.
type Person struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
}
