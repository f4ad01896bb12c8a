package user

// User represents a player account.
type User struct {
	ID        string // ID is a server generated UUID, immutable once assigned
	Name      string // Name is the display name used to log in
	Email     string // Email is unique across all users
	Password  string // Password holds the bcrypt hash, never the cleartext
	Highscore int64  // Highscore is the last score submitted by the client
}
