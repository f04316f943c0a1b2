package apitest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jrsteele09/go-menu-client/publicmenu"
	"github.com/jrsteele09/go-menu-client/restaurants"
)

// publicQRCode resolves a scanned code and counts the scan.
func (s *Server) publicQRCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	s.lock.Lock()
	defer s.lock.Unlock()
	for _, id := range s.restaurantOrder {
		st := s.restaurants[id]
		for i := range st.qrCodes {
			if st.qrCodes[i].Code != code {
				continue
			}
			if subscriptionLapsed(st.restaurant.Subscription, time.Now()) {
				writeSubscriptionExpired(w, st.restaurant.Subscription)
				return
			}
			st.qrCodes[i].ScanCount++
			var out publicmenu.QRCode
			out.ID = st.qrCodes[i].ID
			out.Code = code
			out.Restaurant.ID = st.restaurant.ID
			out.Restaurant.Name = st.restaurant.Name
			WriteJSON(w, http.StatusOK, out)
			return
		}
	}
	WriteError(w, http.StatusNotFound, "", "QR code not found")
}

// publicMenu returns available items grouped by category. Translated names are used when
// the requested language has one.
func (s *Server) publicMenu(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")

	s.lock.Lock()
	defer s.lock.Unlock()
	s.menuLanguages = append(s.menuLanguages, lang)
	st, ok := s.restaurants[chi.URLParam(r, "id")]
	if !ok {
		WriteError(w, http.StatusNotFound, "", "Restaurant not found")
		return
	}
	if subscriptionLapsed(st.restaurant.Subscription, time.Now()) {
		writeSubscriptionExpired(w, st.restaurant.Subscription)
		return
	}

	out := publicmenu.Menu{
		Restaurant: publicmenu.Restaurant{
			ID:         st.restaurant.ID,
			Name:       st.restaurant.Name,
			Logo:       st.settings.CustomLogo,
			CoverImage: st.restaurant.CoverImage,
			Currency:   st.restaurant.Currency,
			Address:    st.restaurant.Address,
			Phone:      st.restaurant.Phone,
		},
		Categories: []publicmenu.Category{},
	}
	out.Settings = &publicmenu.Settings{PrimaryColor: st.settings.PrimaryColor, ShowPrices: st.settings.ShowPrices}

	for _, c := range st.categories {
		if !c.IsActive {
			continue
		}
		pc := publicmenu.Category{ID: c.ID, Name: translated(c.Name, c.NameTranslations, lang), NameTranslations: c.NameTranslations}
		for _, item := range st.items {
			if item.CategoryID == c.ID && item.IsAvailable {
				item.Name = translated(item.Name, item.NameTranslations, lang)
				pc.Items = append(pc.Items, item)
			}
		}
		if pc.Items == nil {
			pc.Items = []restaurants.MenuItem{}
		}
		out.Categories = append(out.Categories, pc)
	}
	WriteJSON(w, http.StatusOK, out)
}

func translated(name string, translations map[string]string, lang string) string {
	if t, ok := translations[lang]; ok && t != "" {
		return t
	}
	return name
}
