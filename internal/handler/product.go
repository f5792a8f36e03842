package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/bizdeskhq/bizdesk/internal/domain/product"
)

func encodeProduct(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	e.Float64(p.Price.InexactFloat64())
	e.ObjEnd()
}

// decodeProduct parses the product form body. Price arrives as a JSON number
// or numeric string and is held as a decimal from the boundary inward.
func decodeProduct(body []byte) (*product.Product, error) {
	var p product.Product
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			p.Name, err = d.Str()
		case "price":
			var raw string
			if d.Next() == jx.String {
				raw, err = d.Str()
			} else {
				var num jx.Num
				if num, err = d.Num(); err == nil {
					raw = num.String()
				}
			}
			if err == nil {
				p.Price, err = decimal.NewFromString(raw)
			}
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns the full catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range products {
			encodeProduct(e, &products[i])
		}
		e.ArrEnd()
	})
}

// GetProduct returns one catalog item.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, p) })
}

// CreateProduct adds a catalog item.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}
	p, err := decodeProduct(body)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}
	if p.Name == "" || p.Price.IsNegative() {
		writeErrorMessage(w, http.StatusBadRequest, "name and a non-negative price are required")
		return
	}

	id, err := h.products.Create(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	p.ID = id
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeProduct(e, p) })
}

// UpdateProduct replaces a catalog item. Historical orders keep their
// snapshotted prices.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}
	p, err := decodeProduct(body)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.products.Update(r.Context(), id, p); err != nil {
		writeError(w, err)
		return
	}
	p.ID = id
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, p) })
}

// DeleteProduct removes a catalog item.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
