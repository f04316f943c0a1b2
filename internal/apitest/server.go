// Package apitest runs an in-memory menu API for tests. It speaks the same routes, payloads
// and error bodies as the real backend, signs HS256 access tokens and lets tests steer the
// failure modes the client has to handle.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-menu-client/restaurants"
	"github.com/jrsteele09/go-menu-client/users"
)

// BasePath is where the API is mounted, matching the default base URL.
const BasePath = "/api/v1"

type account struct {
	user         users.User
	passwordHash string // Empty until a password is set
}

type restaurantState struct {
	restaurant restaurants.Restaurant
	ownerID    string
	categories []restaurants.Category
	items      []restaurants.MenuItem
	settings   restaurants.Settings
	qrCodes    []restaurants.QRCode
}

// Upload is a file received on /storage/upload.
type Upload struct {
	Folder   string
	FileName string
	Content  []byte
}

type Server struct {
	*httptest.Server

	api    chi.Router
	signer *hmacSigner

	lock            sync.Mutex
	accounts        map[string]*account // By phone
	refreshTokens   *refreshTokens
	restaurants     map[string]*restaurantState
	restaurantOrder []string
	pendingSetup    string
	generation      int
	accessTTL       time.Duration
	failRefresh     bool
	refreshHook     func()
	calls           map[string]int
	uploads         []Upload
	menuLanguages   []string
	nextID          int
}

// New starts a server and closes it when the test ends.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		signer:        newHMACSigner("apitest-secret"),
		accounts:      make(map[string]*account),
		refreshTokens: newRefreshTokens(defaultRefreshTokenTTL),
		restaurants:   make(map[string]*restaurantState),
		calls:         make(map[string]int),
		accessTTL:     15 * time.Minute,
	}

	r := chi.NewRouter()
	r.Use(logRequests, s.countCalls)
	r.Route(BasePath, func(api chi.Router) {
		s.api = api
		s.routes(api)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the URL to hand to apiclient.New.
func (s *Server) BaseURL() string {
	return s.URL + BasePath
}

func (s *Server) routes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/register", s.register)
		r.Post("/set-password", s.setPassword)
		r.Post("/refresh", s.refresh)
		r.Post("/logout", s.logout)
	})

	r.Route("/public", func(r chi.Router) {
		r.Get("/qr-codes/{code}", s.publicQRCode)
		r.Get("/menus/restaurant/{id}", s.publicMenu)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/storage/upload", s.upload)

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", s.listRestaurants)
			r.With(s.requireRole(users.RoleSuperAdmin)).Post("/", s.createRestaurant)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(s.restaurantAccess)
				r.Get("/", s.getRestaurant)
				r.Patch("/", s.updateRestaurant)
				r.Delete("/", s.deleteRestaurant)

				r.Get("/menus/categories", s.listCategories)
				r.Post("/menus/categories", s.createCategory)
				r.Patch("/menus/categories/{cid}", s.updateCategory)
				r.Delete("/menus/categories/{cid}", s.deleteCategory)

				r.Get("/menus/items", s.listItems)
				r.Post("/menus/items", s.createItem)
				r.Patch("/menus/items/{iid}", s.updateItem)
				r.Delete("/menus/items/{iid}", s.deleteItem)

				r.Get("/settings", s.getSettings)
				r.Patch("/settings", s.updateSettings)

				r.Get("/qr-codes", s.listQRCodes)
				r.Post("/qr-codes", s.createQRCode)
				r.Delete("/qr-codes/{qid}", s.deleteQRCode)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireRole(users.RoleSuperAdmin))
			r.Get("/stats", s.stats)
			r.Get("/restaurants/{id}", s.adminRestaurant)
			r.Patch("/subscriptions/{id}/cancel", s.cancelSubscription)
			r.Patch("/subscriptions/{id}/renew", s.renewSubscription)
		})
	})
}

// Handle registers an extra route relative to BasePath. Authenticated routes go through the
// same bearer check as the real ones. Register before sending requests.
func (s *Server) Handle(method, pattern string, authenticated bool, h http.HandlerFunc) {
	if authenticated {
		s.api.With(s.authenticate).Method(method, pattern, h)
		return
	}
	s.api.Method(method, pattern, h)
}

func (s *Server) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.calls[callKey(r.Method, strings.TrimPrefix(r.URL.Path, BasePath))]++
		s.lock.Unlock()
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Msg("apitest request")
		next.ServeHTTP(w, r)
	})
}

func callKey(method, path string) string {
	return method + " " + strings.TrimRight(path, "/")
}

// Calls returns how many requests reached method and path (relative to BasePath).
func (s *Server) Calls(method, path string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls[callKey(method, path)]
}

// AddUser creates an account. An empty password leaves it waiting for password setup.
func (s *Server) AddUser(phone, password string, role users.RoleType) users.User {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.addUserLocked(phone, password, role, "", "")
}

func (s *Server) addUserLocked(phone, password string, role users.RoleType, first, last string) users.User {
	a := &account{
		user: users.User{
			ID:        s.newIDLocked("usr"),
			Phone:     phone,
			FirstName: first,
			LastName:  last,
			Role:      role,
		},
	}
	if password != "" {
		a.passwordHash = hashPassword(password)
	}
	s.accounts[phone] = a
	return a.user
}

// AddRestaurant creates a restaurant with an active PRO subscription for the owner.
func (s *Server) AddRestaurant(ownerPhone, name string) string {
	s.lock.Lock()
	defer s.lock.Unlock()
	a, ok := s.accounts[ownerPhone]
	if !ok {
		panic(fmt.Sprintf("apitest: no account for %s", ownerPhone))
	}
	return s.addRestaurantLocked(a, restaurants.CreateRestaurantRequest{Name: name, Plan: restaurants.PlanPro, SubscriptionDuration: 1})
}

// ExpireSubscription makes every owner request for the restaurant fail with SUBSCRIPTION_EXPIRED.
func (s *Server) ExpireSubscription(restaurantID string, expiredAt time.Time) {
	s.lock.Lock()
	defer s.lock.Unlock()
	st := s.restaurants[restaurantID]
	st.restaurant.Subscription.Status = restaurants.StatusExpired
	st.restaurant.Subscription.CurrentPeriodEnd = &expiredAt
}

// ExpireAccessTokens rejects every access token issued so far.
func (s *Server) ExpireAccessTokens() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.generation++
}

// FailRefresh makes /auth/refresh answer 401 while fail is set.
func (s *Server) FailRefresh(fail bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failRefresh = fail
}

// OnRefresh runs fn at the start of every /auth/refresh request, before it is answered.
func (s *Server) OnRefresh(fn func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.refreshHook = fn
}

// SetAccessTTL changes the lifetime of access tokens issued from now on.
func (s *Server) SetAccessTTL(ttl time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.accessTTL = ttl
}

// IssueTokens signs in phone without going through /auth/login.
func (s *Server) IssueTokens(phone string) (accessToken, refreshToken string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	a, ok := s.accounts[phone]
	if !ok {
		panic(fmt.Sprintf("apitest: no account for %s", phone))
	}
	access, refresh, err := s.issueLocked(a.user)
	if err != nil {
		panic(err)
	}
	return access, refresh
}

// RefreshTokenValid reports whether the server would still accept refreshToken.
func (s *Server) RefreshTokenValid(refreshToken string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.refreshTokens.get(refreshToken) != nil
}

func (s *Server) Uploads() []Upload {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]Upload, len(s.uploads))
	copy(out, s.uploads)
	return out
}

// MenuLanguages lists the lang parameter of every public menu request.
func (s *Server) MenuLanguages() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]string, len(s.menuLanguages))
	copy(out, s.menuLanguages)
	return out
}

func (s *Server) newIDLocked(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

type errorBody struct {
	StatusCode int        `json:"statusCode"`
	Message    string     `json:"message"`
	Error      string     `json:"error,omitempty"`
	Code       string     `json:"code,omitempty"`
	ExpiredAt  *time.Time `json:"expiredAt,omitempty"`
}

// WriteError writes an error in the backend's format.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorBody{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
		Code:       code,
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "", "invalid request body")
		return false
	}
	return true
}
