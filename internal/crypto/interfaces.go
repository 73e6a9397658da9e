package crypto

// KeyChainService owns the at-rest encryption scheme for locally persisted
// secrets (the identity private key and encrypted attachment blobs). It knows
// nothing about the network, the handshake store or the capsule format; its
// only job is to generate and protect keys.
//
// Scheme:
//
//	Salt, DEK = GenerateEncryptionSalt() + GenerateDEK()   (step 1)
//	KEK       = GenerateKEK(passphrase, salt)              (step 2)
//	EncDEK    = GetEncryptedDEK(DEK, KEK)                  (step 3)
type KeyChainService interface {
	// GenerateEncryptionSalt generates a random salt (16 bytes / 128 bits).
	// The salt is not a secret; it is stored in the clear next to the
	// encrypted identity so that equal passphrases yield different KEKs.
	GenerateEncryptionSalt() ([]byte, error)

	// GenerateDEK generates a random data-encryption key (32 bytes / 256
	// bits). The DEK encrypts local payloads and never leaves the device in
	// the clear.
	GenerateDEK() ([]byte, error)

	// GenerateKEK derives a key-encryption key from a passphrase and salt
	// via Argon2id. The KEK exists only in memory.
	GenerateKEK(passphrase string, salt []byte) []byte

	// GetEncryptedDEK wraps the DEK with the KEK using AES-256-GCM.
	// The result (nonce ‖ ciphertext) is safe to persist on disk.
	GetEncryptedDEK(DEK, KEK []byte) ([]byte, error)

	// DecryptDEK unwraps the encrypted DEK using the KEK. It expects the
	// input blob in the format nonce ‖ ciphertext. Returns the original DEK
	// or an error if authentication fails (e.g. wrong passphrase/KEK).
	DecryptDEK(encryptedDEK, KEK []byte) ([]byte, error)

	// EncryptData serializes the given value to JSON and encrypts it with
	// the DEK. Returns a base64-encoded blob (nonce ‖ ciphertext).
	EncryptData(data any, DEK []byte) (string, error)

	// DecryptData decrypts a base64-encoded blob with the DEK and
	// unmarshals the result into the target pointer (same contract as
	// json.Unmarshal).
	DecryptData(encryptedB64 string, DEK []byte, target any) error

	// EncryptBytes encrypts a raw byte payload with the DEK using
	// AES-256-GCM and returns the binary blob nonce ‖ ciphertext. Used for
	// attachment originals, which are too large to round-trip through JSON.
	EncryptBytes(plaintext, DEK []byte) ([]byte, error)

	// DecryptBytes reverses EncryptBytes.
	DecryptBytes(blob, DEK []byte) ([]byte, error)
}
