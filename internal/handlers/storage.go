package handlers

import (
	"net/http"

	"pifko/internal/stock"
	"pifko/internal/storage"
	"pifko/models"
)

// Storage serves the read-only REST surface of the Storage-Catalog service.
type Storage struct {
	svc *storage.Service
}

func NewStorage(svc *storage.Service) *Storage {
	return &Storage{svc: svc}
}

func (h *Storage) Routes() []Route {
	return []Route{
		{"GET /{$}", Root("Hello from Master Storage Service")},
		{"GET /health", Health("master-storage-service")},
		{"GET /inventory", h.Inventory},
		{"GET /ingredients", h.Ingredients},
		{"GET /ingredients/{kind}", h.IngredientsByKind},
		{"GET /ingredients/{kind}/{id}", h.Ingredient},
		{"GET /storage", h.StockLevels},
		{"GET /storage/{kind}", h.StockLevelsByKind},
		{"GET /storage/{kind}/{id}", h.StockLevel},
		{"GET /storage/{kind}/{id}/check", h.CheckStock},
		{"GET /movements", movements(h.svc.Stock())},
	}
}

func (h *Storage) Inventory(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.InventoryReport(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, "inventory", report, report.Count())
}

func (h *Storage) Ingredients(w http.ResponseWriter, r *http.Request) {
	varieties, err := h.svc.ListVarieties(r.Context(), "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, "ingredients", varieties, len(varieties))
}

func (h *Storage) IngredientsByKind(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	varieties, err := h.svc.ListVarieties(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, kind.Plural(), varieties, len(varieties))
}

func (h *Storage) Ingredient(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	variety, err := h.svc.GetVariety(r.Context(), kind, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ingredient": variety})
}

func (h *Storage) StockLevels(w http.ResponseWriter, r *http.Request) {
	stockLevels(w, r, h.svc.Stock(), "", "storage")
}

func (h *Storage) StockLevelsByKind(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	stockLevels(w, r, h.svc.Stock(), kind, "storage")
}

func (h *Storage) StockLevel(w http.ResponseWriter, r *http.Request) {
	stockLevel(w, r, h.svc.Stock())
}

func (h *Storage) CheckStock(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	needed, err := queryInt(r, "needed", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	check, err := h.svc.CheckStock(r.Context(), kind, id, needed)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"check": check})
}

// stockLevels and stockLevel are shared by the master and local ledgers.
func stockLevels(w http.ResponseWriter, r *http.Request, ledger *stock.Ledger, kind models.IngredientKind, key string) {
	levels, err := ledger.List(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, key, levels, len(levels))
}

func stockLevel(w http.ResponseWriter, r *http.Request, ledger *stock.Ledger) {
	kind, err := parseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	level, err := ledger.Get(r.Context(), kind, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stock": level})
}

func movements(ledger *stock.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := stock.MovementFilter{}
		if raw := r.URL.Query().Get("kind"); raw != "" {
			kind, err := parseKind(raw)
			if err != nil {
				writeError(w, r, err)
				return
			}
			filter.Kind = kind
		}
		id, err := queryInt(r, "ingredient_id", 0)
		if err != nil {
			writeError(w, r, err)
			return
		}
		limit, err := queryInt(r, "limit", 100)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.IngredientID = uint(id)
		filter.Limit = int(limit)

		list, err := ledger.Movements(r.Context(), filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeList(w, "movements", list, len(list))
	}
}
