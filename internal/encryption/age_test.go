package encryption

import (
	"bytes"
	"path/filepath"
	"testing"

	"snip-go/internal/config"
)

func newTestAgeEncryptor(t *testing.T) *AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	cfg := config.EncryptionConfig{
		PublicKeyPath:  filepath.Join(dir, "keys", "snip.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "snip.key"),
	}
	return NewAgeEncryptor(cfg)
}

func TestAgeEncryptor_IsConfigured_BeforeSetup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)
	if e.IsConfigured() {
		t.Error("IsConfigured() = true before Setup, want false")
	}
}

func TestAgeEncryptor_Setup_IsConfigured(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)

	if err := e.Setup("test-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if !e.IsConfigured() {
		t.Error("IsConfigured() = false after Setup, want true")
	}
}

func TestAgeEncryptor_EncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "simple text", input: []byte("hello world")},
		{name: "empty", input: []byte{}},
		{name: "binary", input: []byte{0x00, 0xff, 0x10, 0x80}},
	}

	e := newTestAgeEncryptor(t)
	if err := e.Setup("test-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ciphertext bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &ciphertext); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if bytes.Contains(ciphertext.Bytes(), tt.input) && len(tt.input) > 0 {
				t.Error("ciphertext contains plaintext")
			}

			ctx, err := e.Unlock("test-passphrase")
			if err != nil {
				t.Fatalf("Unlock() error = %v", err)
			}

			var plaintext bytes.Buffer
			if err := ctx.Decrypt(&ciphertext, &plaintext); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(plaintext.Bytes(), tt.input) {
				t.Errorf("Decrypt() = %v, want %v", plaintext.Bytes(), tt.input)
			}
		})
	}
}

func TestAgeEncryptor_Unlock_WrongPassphrase(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)

	if err := e.Setup("correct-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if _, err := e.Unlock("wrong-passphrase"); err == nil {
		t.Error("Unlock() with wrong passphrase expected error")
	}
}

func TestAgeEncryptor_Encrypt_WithoutSetup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)

	var out bytes.Buffer
	if err := e.Encrypt(bytes.NewReader([]byte("data")), &out); err == nil {
		t.Error("Encrypt() without Setup expected error")
	}
}
