// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides accounts, sessions and token generation.

# Accounts

	accounts, err := auth.Open(ctx, persister, clock.Real(), auth.DefaultSessionTTL)
	user, err := accounts.Register(ctx, "alice", "hunter22")

Usernames are 2-30 characters and unique ignoring case. Passwords are
6-100 characters and stored as bcrypt hashes.

# Sessions

	token, user, err := accounts.Login(ctx, "Alice", "hunter22")
	user, ok := accounts.Resolve(token)
	err = accounts.Logout(ctx, token)

Tokens are random 24-byte (192-bit) secrets, URL-safe base64 encoded.
The transport layer carries them in the sid cookie. Expired sessions are
ignored by Resolve and dropped on the next login.

# Legacy Hashes

Older data files store passwords as "salt:hex" scrypt hashes
(N=16384, r=8, p=1, 64-byte key, salt used as text). VerifyPassword accepts
them and Login replaces them with bcrypt after a successful sign-in.

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
