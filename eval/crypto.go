package eval

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"echo/value"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 2
	argonKeyLen  = 32
)

// builtinCryptPassword hashes a player password for storage, in the
// same argon2id-with-embedded-params format the legacy compat
// extension used: "$argon2id$v=19$m=...,t=...,p=...$salt$hash".
func builtinCryptPassword(e *Evaluator, args []value.Value) value.Result {
	if len(args) != 1 {
		return value.Err(value.ErrMissingArgument, "crypt_password")
	}
	pw, ok := args[0].(value.StringValue)
	if !ok {
		return value.Err(value.ErrTypeError, "crypt_password requires a string")
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return value.Err(value.ErrStorageError, "crypt_password: "+err.Error())
	}
	return value.Ok(value.NewString(hashPassword(pw.Val, salt)))
}

// builtinCheckPassword verifies a password against a hash produced by
// crypt_password, returning a boolean.
func builtinCheckPassword(e *Evaluator, args []value.Value) value.Result {
	if len(args) != 2 {
		return value.Err(value.ErrMissingArgument, "check_password")
	}
	pw, ok1 := args[0].(value.StringValue)
	encoded, ok2 := args[1].(value.StringValue)
	if !ok1 || !ok2 {
		return value.Err(value.ErrTypeError, "check_password requires two strings")
	}
	salt, _, ok := parseHashedPassword(encoded.Val)
	if !ok {
		return value.Ok(value.NewBool(false))
	}
	return value.Ok(value.NewBool(hashPassword(pw.Val, salt) == encoded.Val))
}

func hashPassword(password string, salt []byte) string {
	h := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(h),
	)
}

func parseHashedPassword(encoded string) (salt []byte, hash []byte, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, false
	}
	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, false
	}
	return salt, hash, true
}
