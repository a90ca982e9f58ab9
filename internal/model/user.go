package model

import "time"

// User represents an application user record as stored in the `users`
// table. Only the bcrypt hash of the password survives into storage;
// the plain password never leaves the auth handler.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – CUSTOMER or ADMIN.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           int64     // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}
