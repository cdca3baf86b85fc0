package core

// LoginChallenge is the server's answer to the first half of the login
// handshake: a single-use nonce plus the public salt the client needs to
// reproduce the stored password hash locally.
type LoginChallenge struct {
	NonceID      string // Identifier under which the server nonce is stored
	ServerNonce  uint64 // Cryptographically unpredictable challenge value
	PasswordSalt string // Public per-user salt from the directory
}

// UserCredential is a read-only directory record. The hash is the salted
// slow hash of the user's password; the raw password never reaches this
// service.
type UserCredential struct {
	Username     string
	PasswordHash string
	PasswordSalt string
}
