package apitest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jrsteele09/go-menu-client/restaurants"
	"github.com/jrsteele09/go-menu-client/users"
)

// SubscriptionExpiredCode is the 403 code for restaurants whose subscription lapsed.
const SubscriptionExpiredCode = "SUBSCRIPTION_EXPIRED"

type restaurantKey struct{}

func restaurantFromContext(ctx context.Context) *restaurantState {
	st, _ := ctx.Value(restaurantKey{}).(*restaurantState)
	return st
}

// writeValidationError answers 400 with a list of messages, the shape the backend uses for
// request validation failures.
func writeValidationError(w http.ResponseWriter, messages ...string) {
	WriteJSON(w, http.StatusBadRequest, map[string]any{
		"statusCode": http.StatusBadRequest,
		"message":    messages,
		"error":      "Bad Request",
	})
}

func addMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

func (s *Server) addRestaurantLocked(owner *account, req restaurants.CreateRestaurantRequest) string {
	now := time.Now()
	plan := req.Plan
	if plan == "" {
		plan = restaurants.PlanPro
	}
	duration := req.SubscriptionDuration
	if duration < 1 {
		duration = 1
	}
	end := addMonths(now, duration)

	id := s.newIDLocked("rst")
	s.restaurantOrder = append(s.restaurantOrder, id)
	s.restaurants[id] = &restaurantState{
		restaurant: restaurants.Restaurant{
			ID:          id,
			Name:        req.Name,
			Slug:        strings.ToLower(strings.ReplaceAll(strings.TrimSpace(req.Name), " ", "-")),
			Description: req.Description,
			Phone:       req.Phone,
			Address:     req.Address,
			Currency:    "EGP",
			CreatedAt:   now,
			Owner: &restaurants.Owner{
				ID:        owner.user.ID,
				Phone:     owner.user.Phone,
				FirstName: owner.user.FirstName,
				LastName:  owner.user.LastName,
			},
			Subscription: &restaurants.Subscription{
				ID:                 s.newIDLocked("sub"),
				Plan:               plan,
				Status:             restaurants.StatusActive,
				CurrentPeriodStart: &now,
				CurrentPeriodEnd:   &end,
				CreatedAt:          &now,
			},
		},
		ownerID: owner.user.ID,
		settings: restaurants.Settings{
			ID:              s.newIDLocked("set"),
			PrimaryColor:    "#0284c7",
			Languages:       []string{"ar", "en"},
			DefaultLanguage: "ar",
		},
	}
	return id
}

func subscriptionLapsed(sub *restaurants.Subscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	if sub.Status == restaurants.StatusExpired || sub.Status == restaurants.StatusCancelled {
		return true
	}
	return sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.Before(now)
}

func writeSubscriptionExpired(w http.ResponseWriter, sub *restaurants.Subscription) {
	WriteJSON(w, http.StatusForbidden, errorBody{
		StatusCode: http.StatusForbidden,
		Message:    "Your subscription has expired. Please renew to continue.",
		Error:      "Forbidden",
		Code:       SubscriptionExpiredCode,
		ExpiredAt:  sub.CurrentPeriodEnd,
	})
}

// withCounts fills the aggregate counters the list endpoints return.
func (st *restaurantState) withCounts() restaurants.Restaurant {
	out := st.restaurant
	out.Count = &restaurants.Counts{
		QRCodes:    len(st.qrCodes),
		MenuItems:  len(st.items),
		Categories: len(st.categories),
	}
	return out
}

// restaurantAccess resolves {id}, checks ownership and, for owners, the subscription.
func (s *Server) restaurantAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := userFromContext(r.Context())

		s.lock.Lock()
		st, ok := s.restaurants[chi.URLParam(r, "id")]
		var lapsed bool
		var sub *restaurants.Subscription
		if ok {
			sub = st.restaurant.Subscription
			lapsed = subscriptionLapsed(sub, time.Now())
		}
		s.lock.Unlock()

		switch {
		case !ok:
			WriteError(w, http.StatusNotFound, "", "Restaurant not found")
		case u.Role != users.RoleSuperAdmin && st.ownerID != u.ID:
			WriteError(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this restaurant")
		case u.Role != users.RoleSuperAdmin && lapsed:
			writeSubscriptionExpired(w, sub)
		default:
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), restaurantKey{}, st)))
		}
	})
}

func (s *Server) listRestaurants(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())

	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]restaurants.Restaurant, 0, len(s.restaurants))
	for _, id := range s.restaurantOrder {
		st := s.restaurants[id]
		if u.Role == users.RoleSuperAdmin || st.ownerID == u.ID {
			out = append(out, st.withCounts())
		}
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) createRestaurant(w http.ResponseWriter, r *http.Request) {
	var req restaurants.CreateRestaurantRequest
	if !decode(w, r, &req) {
		return
	}
	var problems []string
	if strings.TrimSpace(req.Name) == "" {
		problems = append(problems, "name should not be empty")
	}
	if strings.TrimSpace(req.OwnerPhone) == "" {
		problems = append(problems, "ownerPhone should not be empty")
	}
	if len(problems) > 0 {
		writeValidationError(w, problems...)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	owner, ok := s.accounts[req.OwnerPhone]
	if !ok {
		s.addUserLocked(req.OwnerPhone, "", users.RoleRestaurantOwner, req.OwnerFirstName, req.OwnerLastName)
		owner = s.accounts[req.OwnerPhone]
	}
	id := s.addRestaurantLocked(owner, req)
	WriteJSON(w, http.StatusCreated, s.restaurants[id].withCounts())
}

func (s *Server) getRestaurant(w http.ResponseWriter, r *http.Request) {
	st := restaurantFromContext(r.Context())
	s.lock.Lock()
	defer s.lock.Unlock()
	WriteJSON(w, http.StatusOK, st.withCounts())
}

func (s *Server) updateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req restaurants.UpdateRestaurantRequest
	if !decode(w, r, &req) {
		return
	}
	st := restaurantFromContext(r.Context())

	s.lock.Lock()
	defer s.lock.Unlock()
	setIf(&st.restaurant.Name, req.Name)
	setIf(&st.restaurant.Description, req.Description)
	setIf(&st.restaurant.Phone, req.Phone)
	setIf(&st.restaurant.Email, req.Email)
	setIf(&st.restaurant.Address, req.Address)
	setIf(&st.restaurant.Logo, req.Logo)
	WriteJSON(w, http.StatusOK, st.withCounts())
}

func (s *Server) deleteRestaurant(w http.ResponseWriter, r *http.Request) {
	st := restaurantFromContext(r.Context())
	s.lock.Lock()
	delete(s.restaurants, st.restaurant.ID)
	s.restaurantOrder = slices.DeleteFunc(s.restaurantOrder, func(id string) bool { return id == st.restaurant.ID })
	s.lock.Unlock()
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Restaurant deleted"})
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	st := restaurantFromContext(r.Context())
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]restaurants.Category, 0, len(st.categories))
	for _, c := range st.categories {
		n := 0
		for _, item := range st.items {
			if item.CategoryID == c.ID {
				n++
			}
		}
		c.Count = &struct {
			Items int `json:"items"`
		}{Items: n}
		out = append(out, c)
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req restaurants.CategoryRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeValidationError(w, "name should not be empty")
		return
	}
	st := restaurantFromContext(r.Context())

	s.lock.Lock()
	defer s.lock.Unlock()
	c := restaurants.Category{
		ID:          s.newIDLocked("cat"),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	st.categories = append(st.categories, c)
	WriteJSON(w, http.StatusCreated, c)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req restaurants.CategoryRequest
	if !decode(w, r, &req) {
		return
	}
	st := restaurantFromContext(r.Context())
	cid := chi.URLParam(r, "cid")

	s.lock.Lock()
	defer s.lock.Unlock()
	for i := range st.categories {
		if st.categories[i].ID == cid {
			if req.Name != "" {
				st.categories[i].Name = req.Name
			}
			if req.Description != "" {
				st.categories[i].Description = req.Description
			}
			WriteJSON(w, http.StatusOK, st.categories[i])
			return
		}
	}
	WriteError(w, http.StatusNotFound, "", "Category not found")
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	st := restaurantFromContext(r.Context())
	cid := chi.URLParam(r, "cid")

	s.lock.Lock()
	defer s.lock.Unlock()
	for i := range st.categories {
		if st.categories[i].ID == cid {
			st.categories = append(st.categories[:i], st.categories[i+1:]...)
			kept := st.items[:0]
			for _, item := range st.items {
				if item.CategoryID != cid {
					kept = append(kept, item)
				}
			}
			st.items = kept
			WriteJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
			return
		}
	}
	WriteError(w, http.StatusNotFound, "", "Category not found")
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	st := restaurantFromContext(r.Context())
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]restaurants.MenuItem, len(st.items))
	copy(out, st.items)
	WriteJSON(w, http.StatusOK, out)
}

func (st *restaurantState) hasCategory(id string) bool {
	for _, c := range st.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req restaurants.MenuItemRequest
	if !decode(w, r, &req) {
		return
	}
	st := restaurantFromContext(r.Context())

	s.lock.Lock()
	defer s.lock.Unlock()
	var problems []string
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		problems = append(problems, "name should not be empty")
	}
	if req.Price == nil || *req.Price < 0 {
		problems = append(problems, "price must not be less than 0")
	}
	if req.CategoryID == nil || !st.hasCategory(*req.CategoryID) {
		problems = append(problems, "categoryId must reference an existing category")
	}
	if len(problems) > 0 {
		writeValidationError(w, problems...)
		return
	}

	item := restaurants.MenuItem{
		ID:          s.newIDLocked("itm"),
		IsAvailable: true,
	}
	applyItem(&item, req)
	st.items = append(st.items, item)
	WriteJSON(w, http.StatusCreated, item)
}

func applyItem(item *restaurants.MenuItem, req restaurants.MenuItemRequest) {
	setIf(&item.Name, req.Name)
	setIf(&item.Description, req.Description)
	setIf(&item.Price, req.Price)
	setIf(&item.CategoryID, req.CategoryID)
	setIf(&item.Image, req.Image)
	setIf(&item.IsAvailable, req.IsAvailable)
	setIf(&item.IsFeatured, req.IsFeatured)
	if req.Allergens != nil {
		item.Allergens = req.Allergens
	}
	if req.DietaryInfo != nil {
		item.DietaryInfo = req.DietaryInfo
	}
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	var req restaurants.MenuItemRequest
	if !decode(w, r, &req) {
		return
	}
	st := restaurantFromContext(r.Context())
	iid := chi.URLParam(r, "iid")

	s.lock.Lock()
	defer s.lock.Unlock()
	if req.CategoryID != nil && !st.hasCategory(*req.CategoryID) {
		writeValidationError(w, "categoryId must reference an existing category")
		return
	}
	for i := range st.items {
		if st.items[i].ID == iid {
			applyItem(&st.items[i], req)
			WriteJSON(w, http.StatusOK, st.items[i])
			return
		}
	}
	WriteError(w, http.StatusNotFound, "", "Menu item not found")
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	st := restaurantFromContext(r.Context())
	iid := chi.URLParam(r, "iid")

	s.lock.Lock()
	defer s.lock.Unlock()
	for i := range st.items {
		if st.items[i].ID == iid {
			st.items = append(st.items[:i], st.items[i+1:]...)
			WriteJSON(w, http.StatusOK, map[string]string{"message": "Menu item deleted"})
			return
		}
	}
	WriteError(w, http.StatusNotFound, "", "Menu item not found")
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	st := restaurantFromContext(r.Context())
	s.lock.Lock()
	defer s.lock.Unlock()
	WriteJSON(w, http.StatusOK, st.settings)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req restaurants.SettingsUpdate
	if !decode(w, r, &req) {
		return
	}
	st := restaurantFromContext(r.Context())

	s.lock.Lock()
	defer s.lock.Unlock()
	setIf(&st.settings.CustomLogo, req.CustomLogo)
	setIf(&st.settings.PrimaryColor, req.PrimaryColor)
	setIf(&st.settings.DefaultLanguage, req.DefaultLanguage)
	if req.ShowPrices != nil {
		st.settings.ShowPrices = req.ShowPrices
	}
	if req.Languages != nil {
		st.settings.Languages = req.Languages
	}
	WriteJSON(w, http.StatusOK, st.settings)
}

func (s *Server) listQRCodes(w http.ResponseWriter, r *http.Request) {
	st := restaurantFromContext(r.Context())
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]restaurants.QRCode, len(st.qrCodes))
	copy(out, st.qrCodes)
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) createQRCode(w http.ResponseWriter, r *http.Request) {
	st := restaurantFromContext(r.Context())

	s.lock.Lock()
	defer s.lock.Unlock()
	code := fmt.Sprintf("qr%04d", s.nextID+1)
	qr := restaurants.QRCode{
		ID:           s.newIDLocked("qr"),
		Code:         code,
		RestaurantID: st.restaurant.ID,
		QRImageURL:   s.URL + "/static/qr/" + code + ".png",
		PublicURL:    "http://localhost:3000/menu/" + code,
	}
	st.qrCodes = append(st.qrCodes, qr)
	WriteJSON(w, http.StatusCreated, qr)
}

func (s *Server) deleteQRCode(w http.ResponseWriter, r *http.Request) {
	st := restaurantFromContext(r.Context())
	qid := chi.URLParam(r, "qid")

	s.lock.Lock()
	defer s.lock.Unlock()
	for i := range st.qrCodes {
		if st.qrCodes[i].ID == qid {
			st.qrCodes = append(st.qrCodes[:i], st.qrCodes[i+1:]...)
			WriteJSON(w, http.StatusOK, map[string]string{"message": "QR code deleted"})
			return
		}
	}
	WriteError(w, http.StatusNotFound, "", "QR code not found")
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		WriteError(w, http.StatusBadRequest, "", "expected multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeValidationError(w, "file is required")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "", err.Error())
		return
	}
	folder := r.FormValue("folder")
	if folder == "" {
		folder = "uploads"
	}

	s.lock.Lock()
	s.uploads = append(s.uploads, Upload{Folder: folder, FileName: header.Filename, Content: content})
	s.lock.Unlock()

	WriteJSON(w, http.StatusCreated, restaurants.UploadResult{URL: "https://cdn.menu.test/" + folder + "/" + header.Filename})
}
