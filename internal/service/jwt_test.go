package service

import "testing"

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT(42)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	uid, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if uid != 42 {
		t.Fatalf("user id = %d, want 42", uid)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	InitJWT("secret-one")
	token, err := GenerateJWT(7)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	InitJWT("secret-two")
	if _, err := ParseJWT(token); err == nil {
		t.Fatal("token signed with a different secret must not parse")
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	InitJWT("test-secret")
	if _, err := ParseJWT("not-a-token"); err == nil {
		t.Fatal("garbage token must not parse")
	}
}

func TestInitJWTPanicsOnEmptySecret(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty secret")
		}
	}()
	InitJWT("")
}
