package apitest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrsteele09/go-menu-client/users"
)

type accessClaims struct {
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	Generation int    `json:"gen"`
	jwtlib.RegisteredClaims
}

type authResponse struct {
	User         users.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

type userKey struct{}

func userFromContext(ctx context.Context) users.User {
	u, _ := ctx.Value(userKey{}).(users.User)
	return u
}

func (s *Server) issueLocked(u users.User) (string, string, error) {
	now := NowTimeFunc()
	claims := accessClaims{
		Phone:      u.Phone,
		Role:       string(u.Role),
		Generation: s.generation,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	access, err := s.signer.sign(claims)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.refreshTokens.create(u.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *Server) respondWithTokensLocked(w http.ResponseWriter, u users.User, status int) {
	access, refresh, err := s.issueLocked(u)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "", err.Error())
		return
	}
	WriteJSON(w, status, authResponse{User: u, AccessToken: access, RefreshToken: refresh})
}

// verify returns the user an access token belongs to.
func (s *Server) verify(raw string) (users.User, error) {
	var claims accessClaims
	if err := s.signer.parse(raw, &claims); err != nil {
		return users.User{}, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if claims.Generation < s.generation {
		return users.User{}, errors.New("token revoked")
	}
	a, ok := s.accounts[claims.Phone]
	if !ok || a.user.ID != claims.Subject {
		return users.User{}, errors.New("unknown user")
	}
	return a.user, nil
}

// hashPassword uses the minimum bcrypt cost to keep tests fast.
func hashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("apitest: hash password: %v", err))
	}
	return string(hash)
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearer(r)
		if raw == "" {
			WriteError(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}
		u, err := s.verify(raw)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
	})
}

func (s *Server) requireRole(role users.RoleType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userFromContext(r.Context()).Role != role {
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	a, ok := s.accounts[req.Phone]
	if !ok {
		WriteError(w, http.StatusUnauthorized, "", "Invalid credentials")
		return
	}
	if a.passwordHash == "" {
		s.pendingSetup = a.user.Phone
		WriteJSON(w, http.StatusOK, map[string]bool{"requiresPasswordSetup": true})
		return
	}
	if !checkPassword(a.passwordHash, req.Password) {
		WriteError(w, http.StatusUnauthorized, "", "Invalid credentials")
		return
	}
	s.respondWithTokensLocked(w, a.user, http.StatusOK)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone     string `json:"phone"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Phone == "" || len(req.Password) < users.MinPasswordLength {
		WriteError(w, http.StatusBadRequest, "", "phone and a password of at least 8 characters are required")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if _, exists := s.accounts[req.Phone]; exists {
		WriteError(w, http.StatusConflict, "", "Phone already registered")
		return
	}
	u := s.addUserLocked(req.Phone, req.Password, users.RoleRestaurantOwner, req.FirstName, req.LastName)
	s.respondWithTokensLocked(w, u, http.StatusCreated)
}

// setPassword applies to the bearer's account, or else to the last login that asked for
// password setup.
func (s *Server) setPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Password != req.ConfirmPassword {
		WriteError(w, http.StatusBadRequest, "", "Passwords do not match")
		return
	}
	if len(req.Password) < users.MinPasswordLength {
		WriteError(w, http.StatusBadRequest, "", "password must be longer than or equal to 8 characters")
		return
	}

	phone := ""
	if raw := bearer(r); raw != "" {
		u, err := s.verify(raw)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}
		phone = u.Phone
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if phone == "" {
		phone = s.pendingSetup
	}
	a, ok := s.accounts[phone]
	if !ok {
		WriteError(w, http.StatusUnauthorized, "", "Unauthorized")
		return
	}
	a.passwordHash = hashPassword(req.Password)
	if s.pendingSetup == phone {
		s.pendingSetup = ""
	}
	s.respondWithTokensLocked(w, a.user, http.StatusOK)
}

// refresh rotates the refresh token: the presented one stops working.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	hook := s.refreshHook
	s.lock.Unlock()
	if hook != nil {
		hook()
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	stored := s.refreshTokens.get(req.RefreshToken)
	if s.failRefresh || stored == nil {
		WriteError(w, http.StatusUnauthorized, "", "Invalid refresh token")
		return
	}
	s.refreshTokens.delete(req.RefreshToken)

	for _, a := range s.accounts {
		if a.user.ID == stored.UserID {
			access, refresh, err := s.issueLocked(a.user)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "", err.Error())
				return
			}
			WriteJSON(w, http.StatusOK, map[string]string{"accessToken": access, "refreshToken": refresh})
			return
		}
	}
	WriteError(w, http.StatusUnauthorized, "", "Invalid refresh token")
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.lock.Lock()
	s.refreshTokens.delete(req.RefreshToken)
	s.lock.Unlock()
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
