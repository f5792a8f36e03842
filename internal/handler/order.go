package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/bizdeskhq/bizdesk/internal/domain/order"
)

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("customerName")
	e.Str(o.CustomerName)
	e.FieldStart("customerMobile")
	e.Str(o.CustomerMobile)
	e.FieldStart("paymentType")
	e.Str(string(o.PaymentType))
	e.FieldStart("total")
	e.Float64(o.Total.InexactFloat64())
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.Format(time.RFC3339))
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("productName")
		e.Str(it.ProductName)
		e.FieldStart("unitPrice")
		e.Float64(it.UnitPrice.InexactFloat64())
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

// decodeSaveRequest parses the order form body. Quantities stay raw text all
// the way to ParseQuantity, mirroring the form field they come from.
func decodeSaveRequest(body []byte) (order.SaveRequest, error) {
	var req order.SaveRequest
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "customerName":
			req.CustomerName, err = d.Str()
		case "customerMobile":
			req.CustomerMobile, err = d.Str()
		case "paymentType":
			var s string
			if s, err = d.Str(); err == nil {
				req.PaymentType = order.PaymentType(s)
			}
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				var item order.ItemInput
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "productId":
						item.ProductID, err = d.Str()
					case "quantity":
						// Accept both "2" and 2; either way it stays text.
						if d.Next() == jx.String {
							item.Quantity, err = d.Str()
						} else {
							var num jx.Num
							if num, err = d.Num(); err == nil {
								item.Quantity = num.String()
							}
						}
					default:
						err = d.Skip()
					}
					return err
				}); err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return req, err
}

// ListOrders returns the full order collection.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.GetAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range orders {
			encodeOrder(e, &orders[i])
		}
		e.ArrEnd()
	})
}

// CreateOrder builds an order from the form input and persists it.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}
	req, err := decodeSaveRequest(body)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}

	o, err := h.orderSvc.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// UpdateOrder replaces an order record in full; the creation timestamp is
// preserved by the store.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}
	req, err := decodeSaveRequest(body)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed body")
		return
	}

	o, err := h.orderSvc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// DeleteOrder removes a single order.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orderSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
