package domain

// Algorithm represents the cryptographic algorithm used for encryption.
//
// All supported algorithms provide Authenticated Encryption with Associated
// Data (AEAD), ensuring both confidentiality and authenticity of encrypted
// data. The algorithm is recorded on every encrypted secret so records remain
// decryptable across algorithm changes.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	// Uses a 256-bit key, a 12-byte random nonce, and a 16-byte authentication
	// tag. Preferred on CPUs with AES-NI hardware acceleration.
	AESGCM Algorithm = "AES-256-GCM"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption
	// algorithm. Same key, nonce, and tag sizes as AESGCM, with constant-time
	// software performance on platforms without AES-NI.
	ChaCha20 Algorithm = "ChaCha20-Poly1305"
)

// KeySize is the required size in bytes for master keys and DEKs.
const KeySize = 32

// NonceSize is the AEAD nonce size in bytes for both supported algorithms.
const NonceSize = 12
