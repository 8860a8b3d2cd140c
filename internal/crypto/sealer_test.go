package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestSealUnseal_RoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair error: %v", err)
	}
	msg := bytes.Repeat([]byte{0x11}, KeySize)

	sealed, err := Seal(msg, kp.PublicKey[:])
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}
	if len(sealed) != len(msg)+48 {
		t.Fatalf("sealed length = %d, want %d", len(sealed), len(msg)+48)
	}

	got, err := Unseal(sealed, kp.PublicKey[:], kp.PrivateKey[:])
	if err != nil {
		t.Fatalf("Unseal error: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("round trip mismatch")
	}
}

func TestSeal_IsRandomised(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair error: %v", err)
	}

	a, _ := Seal([]byte("m"), kp.PublicKey[:])
	b, _ := Seal([]byte("m"), kp.PublicKey[:])
	if bytes.Equal(a, b) {
		t.Fatalf("two seals of the same message must differ")
	}
}

func TestUnseal_WrongRecipient(t *testing.T) {
	alice, _ := GenerateKeyPair()
	bob, _ := GenerateKeyPair()

	sealed, err := Seal([]byte("for alice"), alice.PublicKey[:])
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}

	if _, err := Unseal(sealed, bob.PublicKey[:], bob.PrivateKey[:]); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestUnseal_Tampered(t *testing.T) {
	kp, _ := GenerateKeyPair()
	sealed, err := Seal([]byte("payload"), kp.PublicKey[:])
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}

	sealed[len(sealed)-1] ^= 0xFF
	if _, err := Unseal(sealed, kp.PublicKey[:], kp.PrivateKey[:]); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("err = %v, want ErrAuthenticationFailed", err)
	}
	if _, err := Unseal(sealed[:20], kp.PublicKey[:], kp.PrivateKey[:]); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("short box: err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestSeal_RejectsMalformedKey(t *testing.T) {
	if _, err := Seal([]byte("x"), make([]byte, 31)); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("err = %v, want ErrInvalidKey", err)
	}
	kp, _ := GenerateKeyPair()
	if _, err := Unseal(make([]byte, 64), kp.PublicKey[:], make([]byte, 5)); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestWipe(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{4, 5}
	Wipe(a, nil, b)

	if !bytes.Equal(a, []byte{0, 0, 0}) || !bytes.Equal(b, []byte{0, 0}) {
		t.Fatalf("buffers not wiped: %v %v", a, b)
	}
}
