package handlers

import (
	"net/http"

	"pifko/internal/apperr"
	"pifko/internal/brewery"
)

// Brewery serves the read-only REST surface of the Brewery-Operations service.
type Brewery struct {
	svc *brewery.Service
}

func NewBrewery(svc *brewery.Service) *Brewery {
	return &Brewery{svc: svc}
}

func (h *Brewery) Routes() []Route {
	return []Route{
		{"GET /{$}", Root("Hello from Brewery Service")},
		{"GET /health", Health("brewery-service")},
		{"GET /beers", h.Beers},
		{"GET /beers/{id}", h.Beer},
		{"GET /recipes", h.Recipes},
		{"GET /recipes/{id}", h.Recipe},
		{"GET /local-storage", h.LocalStorage},
		{"GET /local-storage/low", h.LowStock},
		{"GET /local-storage/{kind}/{id}", h.LocalStock},
		{"GET /production", h.ProductionRuns},
		{"GET /production/feasibility", h.Feasibility},
		{"GET /movements", movements(h.svc.Stock())},
	}
}

func (h *Brewery) Beers(w http.ResponseWriter, r *http.Request) {
	beers, err := h.svc.ListBeers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, "beers", beers, len(beers))
}

func (h *Brewery) Beer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	beer, err := h.svc.GetBeer(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"beer": beer})
}

func (h *Brewery) Recipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.svc.ListRecipes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, "recipes", recipes, len(recipes))
}

func (h *Brewery) Recipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recipe, err := h.svc.GetRecipe(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipe": recipe})
}

func (h *Brewery) LocalStorage(w http.ResponseWriter, r *http.Request) {
	stockLevels(w, r, h.svc.Stock(), "", "local_storage")
}

func (h *Brewery) LocalStock(w http.ResponseWriter, r *http.Request) {
	stockLevel(w, r, h.svc.Stock())
}

func (h *Brewery) LowStock(w http.ResponseWriter, r *http.Request) {
	levels, err := h.svc.LowStock(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, "low_stock", levels, len(levels))
}

func (h *Brewery) ProductionRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.ListProductionRuns(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, "production_runs", runs, len(runs))
}

// Feasibility evaluates GET /production/feasibility?beer_id=&hl=.
func (h *Brewery) Feasibility(w http.ResponseWriter, r *http.Request) {
	beerID, err := queryInt(r, "beer_id", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if beerID <= 0 {
		writeError(w, r, apperr.ErrMalformedInput)
		return
	}
	hl, err := queryInt(r, "hl", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.svc.CheckFeasibility(r.Context(), uint(beerID), hl)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feasibility": result})
}
