package eval

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"strings"

	"golang.org/x/crypto/ripemd160"

	"echo/value"
)

// hasherFor returns a fresh hash.Hash for the named algorithm, the same
// set the teacher's getHasher supports. An empty name defaults to
// sha256.
func hasherFor(algo string) (hash.Hash, bool) {
	switch strings.ToLower(algo) {
	case "md5":
		return md5.New(), true
	case "sha1":
		return sha1.New(), true
	case "sha224":
		return sha256.New224(), true
	case "sha256", "":
		return sha256.New(), true
	case "sha384":
		return sha512.New384(), true
	case "sha512":
		return sha512.New(), true
	case "ripemd160":
		return ripemd160.New(), true
	default:
		return nil, false
	}
}

// builtinStringHash hashes a string's UTF-8 bytes with the named
// algorithm (default sha256), rendering uppercase hex unless binary is
// truthy, in which case the raw digest bytes are returned as a string.
func builtinStringHash(e *Evaluator, args []value.Value) value.Result {
	if len(args) < 1 || len(args) > 3 {
		return value.Err(value.ErrMissingArgument, "string_hash")
	}
	str, ok := args[0].(value.StringValue)
	if !ok {
		return value.Err(value.ErrTypeError, "string_hash requires a string")
	}
	algo := "sha256"
	if len(args) >= 2 {
		a, ok := args[1].(value.StringValue)
		if !ok {
			return value.Err(value.ErrTypeError, "string_hash algorithm must be a string")
		}
		algo = a.Raw()
	}
	binary := len(args) >= 3 && args[2].Truthy()

	h, ok := hasherFor(algo)
	if !ok {
		return value.Err(value.ErrTypeError, "string_hash: unsupported algorithm "+algo)
	}
	h.Write([]byte(str.Raw()))
	digest := h.Sum(nil)
	if binary {
		return value.Ok(value.NewString(string(digest)))
	}
	return value.Ok(value.NewString(strings.ToUpper(hex.EncodeToString(digest))))
}

// builtinBinaryHash is string_hash's counterpart for data that is
// already a digest or other non-textual payload; since this value
// model has no separate MOO binary-string encoding, it hashes the same
// raw bytes string_hash does.
func builtinBinaryHash(e *Evaluator, args []value.Value) value.Result {
	return builtinStringHash(e, args)
}
