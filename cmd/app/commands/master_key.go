package commands

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	cryptoService "github.com/allisson/scopedb/internal/crypto/service"
)

// RunCreateMasterKey generates a cryptographically secure 32-byte master key
// for envelope encryption and prints the environment configuration to copy
// into a .env file or secrets manager.
//
// With --kms-key-uri the key is wrapped through the KMS keeper before output,
// so the plaintext never leaves the process. Without it the key is printed
// base64-encoded as-is; only acceptable for local development.
func RunCreateMasterKey(ctx context.Context, kmsKeyURI string) error {
	masterKey, err := cryptoService.GenerateMasterKey()
	if err != nil {
		return err
	}
	defer masterKey.Close()

	if kmsKeyURI == "" {
		fmt.Println("# Master Key Configuration (plaintext mode, local development only)")
		fmt.Println("# Copy these environment variables to your .env file")
		fmt.Println()
		fmt.Printf("SCOPEDB_MASTER_KEY=%q\n", masterKey.Encoded())
		return nil
	}

	keeper, err := secrets.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			fmt.Printf("# Warning: failed to close KMS keeper: %v\n", closeErr)
		}
	}()

	ciphertext, err := keeper.Encrypt(ctx, masterKey.Key)
	if err != nil {
		return fmt.Errorf("failed to encrypt master key with KMS: %w", err)
	}

	fmt.Println("# Master Key Configuration (KMS mode)")
	fmt.Println("# Copy these environment variables to your .env file or secrets manager")
	fmt.Println()
	fmt.Printf("KMS_KEY_URI=%q\n", kmsKeyURI)
	fmt.Printf("SCOPEDB_MASTER_KEY=%q\n", base64.StdEncoding.EncodeToString(ciphertext))
	return nil
}
