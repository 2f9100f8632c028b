package security

// Uppercase and digits only; codes are shared verbally and typed back in.
const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const inviteCodeLength = 8

// InviteCode returns a fresh 8-character squad invite code. Uniqueness is
// the caller's concern; collisions are retried at insertion time.
func InviteCode() (string, error) {
	return RandomString(inviteCodeLength, inviteCodeAlphabet)
}
