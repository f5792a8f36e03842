package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/bizdeskhq/bizdesk/internal/domain/customer"
)

func encodeCustomer(e *jx.Encoder, c *customer.Customer) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("mobile")
	e.Str(c.Mobile)
	e.FieldStart("gender")
	e.Str(c.Gender)
	e.ObjEnd()
}

func decodeCustomer(body []byte) (*customer.Customer, error) {
	var c customer.Customer
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			c.Name, err = d.Str()
		case "mobile":
			c.Mobile, err = d.Str()
		case "gender":
			c.Gender, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCustomers returns the customer directory.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range customers {
			encodeCustomer(e, &customers[i])
		}
		e.ArrEnd()
	})
}

// CreateCustomer adds a directory entry. Name and mobile are required.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}
	c, err := decodeCustomer(body)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}
	if c.Name == "" || c.Mobile == "" {
		writeErrorMessage(w, http.StatusBadRequest, "name and mobile are required")
		return
	}

	id, err := h.customers.Create(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	c.ID = id
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeCustomer(e, c) })
}

// UpdateCustomer replaces a directory entry.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}
	c, err := decodeCustomer(body)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.customers.Update(r.Context(), id, c); err != nil {
		writeError(w, err)
		return
	}
	c.ID = id
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCustomer(e, c) })
}

// DeleteCustomer removes a directory entry.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
