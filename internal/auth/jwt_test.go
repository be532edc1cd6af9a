package auth

import (
	"testing"

	"github.com/florapedia/api/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	user := &model.User{ID: 7, Username: "linnaeus", Role: model.RoleSuperAdmin}

	token, err := GenerateAccessToken(user, "test-secret")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ValidateAccessToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.UserID != 7 || claims.Username != "linnaeus" || claims.Role != model.RoleSuperAdmin {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	user := &model.User{ID: 1, Username: "someone", Role: model.RoleUser}
	token, err := GenerateAccessToken(user, "secret-a")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := ValidateAccessToken(token, "secret-b"); err == nil {
		t.Error("token validated under the wrong secret")
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	if _, err := ValidateAccessToken("not-a-jwt", "secret"); err == nil {
		t.Error("garbage token validated")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("wrong password accepted")
	}
}
